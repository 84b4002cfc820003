// controllers/public_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/models"
	"villa-backend/services"
	"villa-backend/utils"
)

// PublicController serves the unauthenticated guest flow: quoting, checking
// and booking a published property, and retrieving one's own booking with the
// access token issued at creation. Tenant scoping still applies via X-Tenant.
type PublicController struct {
	Pricing      *services.PricingService
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
}

func NewPublicController(pricing *services.PricingService, availability *services.AvailabilityService, bookings *services.BookingService) *PublicController {
	return &PublicController{Pricing: pricing, Availability: availability, Bookings: bookings}
}

// ListProperties handles GET /api/public/properties: published only.
func (ctl *PublicController) ListProperties(c *gin.Context) {
	var properties []models.Property
	err := ctl.Pricing.DB.
		Where("tenant_id = ? AND status = ?", middleware.TenantID(c), models.PropertyStatusPublished).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, properties)
}

// CalculatePricing handles POST /api/public/pricing/calculate. Same engine
// as the admin endpoint; the guest sees the identical breakdown.
func (ctl *PublicController) CalculatePricing(c *gin.Context) {
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

// CheckAvailability handles GET /api/public/availability.
func (ctl *PublicController) CheckAvailability(c *gin.Context) {
	propertyID, ok := queryUintPtr(c, "propertyId")
	if !ok {
		return
	}
	if propertyID == nil {
		utils.JSONError(c, http.StatusBadRequest, "propertyId is required")
		return
	}
	checkIn, checkOut, ok := parseStayDates(c, c.Query("checkIn"), c.Query("checkOut"))
	if !ok {
		return
	}

	result, err := ctl.Availability.CheckAvailability(middleware.TenantID(c), *propertyID, checkIn, checkOut, nil)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// CreateBooking handles POST /api/public/bookings. The response includes the
// access token the guest needs to retrieve the booking later.
func (ctl *PublicController) CreateBooking(c *gin.Context) {
	var req CreateBookingPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	checkIn, checkOut, ok := parseStayDates(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	booking, err := ctl.Bookings.CreateBooking(services.CreateBookingRequest{
		TenantID:   middleware.TenantID(c),
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,

		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
		Pets:     req.Pets,

		GuestFirstName:  req.GuestFirstName,
		GuestLastName:   req.GuestLastName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		GuestCountry:    req.GuestCountry,
		GuestAddress:    req.GuestAddress,
		GuestNotes:      req.GuestNotes,
		SpecialRequests: req.SpecialRequests,

		SelectedOptions: req.SelectedOptions,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"booking":     booking,
		"accessToken": booking.AccessToken,
	})
}

// GetBooking handles GET /api/public/bookings/:reference?token=...
func (ctl *PublicController) GetBooking(c *gin.Context) {
	reference := c.Param("reference")
	token := c.Query("token")
	if reference == "" || token == "" {
		utils.JSONError(c, http.StatusBadRequest, "Reference and token are required")
		return
	}

	booking, err := ctl.Bookings.GetByReference(middleware.TenantID(c), reference, token)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}
