// controllers/period_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/models"
	"villa-backend/services"
	"villa-backend/utils"
)

type CreatePeriodRequest struct {
	PropertyID *uint  `json:"propertyId,omitempty"` // nil = tenant-global
	Name       string `json:"name" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`

	BasePrice      float64  `json:"basePrice" binding:"required,gt=0"`
	WeekendPremium *float64 `json:"weekendPremium,omitempty"`
	MinNights      *int     `json:"minNights,omitempty"`
	Priority       int      `json:"priority"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

type UpdatePeriodRequest struct {
	Name           *string  `json:"name,omitempty"`
	StartDate      *string  `json:"startDate,omitempty"`
	EndDate        *string  `json:"endDate,omitempty"`
	BasePrice      *float64 `json:"basePrice,omitempty"`
	WeekendPremium *float64 `json:"weekendPremium,omitempty"`
	MinNights      *int     `json:"minNights,omitempty"`
	Priority       *int     `json:"priority,omitempty"`
	IsActive       *bool    `json:"isActive,omitempty"`
}

type PeriodController struct {
	Periods *services.PeriodService
}

func NewPeriodController(periods *services.PeriodService) *PeriodController {
	return &PeriodController{Periods: periods}
}

// Create handles POST /api/periods.
func (ctl *PeriodController) Create(c *gin.Context) {
	var req CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	startDate, err := utils.ParseDate(req.StartDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid startDate")
		return
	}
	endDate, err := utils.ParseDate(req.EndDate)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid endDate")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	period := &models.PricingPeriod{
		TenantID:       middleware.TenantID(c),
		PropertyID:     req.PropertyID,
		Name:           req.Name,
		StartDate:      startDate,
		EndDate:        endDate,
		BasePrice:      req.BasePrice,
		WeekendPremium: req.WeekendPremium,
		MinNights:      req.MinNights,
		Priority:       req.Priority,
		IsActive:       isActive,
	}
	if err := ctl.Periods.Create(period); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, period)
}

// List handles GET /api/periods.
func (ctl *PeriodController) List(c *gin.Context) {
	propertyID, ok := queryUintPtr(c, "propertyId")
	if !ok {
		return
	}
	from, ok := queryDatePtr(c, "startDate")
	if !ok {
		return
	}
	to, ok := queryDatePtr(c, "endDate")
	if !ok {
		return
	}

	periods, err := ctl.Periods.List(middleware.TenantID(c), propertyID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, periods)
}

// Update handles PATCH /api/periods/:id.
func (ctl *PeriodController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.StartDate != nil {
		t, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid startDate")
			return
		}
		updates["start_date"] = t
	}
	if req.EndDate != nil {
		t, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid endDate")
			return
		}
		updates["end_date"] = t
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.WeekendPremium != nil {
		updates["weekend_premium"] = *req.WeekendPremium
	}
	if req.MinNights != nil {
		updates["min_nights"] = *req.MinNights
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	period, err := ctl.Periods.Update(middleware.TenantID(c), id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, period)
}

// Delete handles DELETE /api/periods/:id.
func (ctl *PeriodController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctl.Periods.Delete(middleware.TenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
