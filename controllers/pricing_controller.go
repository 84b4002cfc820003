// controllers/pricing_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/services"
	"villa-backend/utils"
)

type CalculatePricingRequest struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`

	Adults   int `json:"adults"`
	Children int `json:"children"`
	// Legacy alias used by older clients when adults is absent.
	Guests int `json:"guests"`

	SelectedOptions []services.SelectedOption `json:"selectedOptions"`
}

type PricingController struct {
	Pricing *services.PricingService
}

func NewPricingController(pricing *services.PricingService) *PricingController {
	return &PricingController{Pricing: pricing}
}

// Calculate handles POST /api/pricing/calculate.
func (ctl *PricingController) Calculate(c *gin.Context) {
	var req CalculatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	checkIn, checkOut, ok := parseStayDates(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	adults := req.Adults
	if adults == 0 {
		if req.Guests > 0 {
			adults = req.Guests
		} else {
			adults = 1
		}
	}

	quote, err := ctl.Pricing.CalculateQuote(services.QuoteRequest{
		TenantID:        middleware.TenantID(c),
		PropertyID:      req.PropertyID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Adults:          adults,
		Children:        req.Children,
		SelectedOptions: req.SelectedOptions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, quote)
}
