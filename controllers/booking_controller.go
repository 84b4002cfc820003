// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/services"
	"villa-backend/utils"
)

type CreateBookingPayload struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	CheckIn    string `json:"checkIn" binding:"required"`
	CheckOut   string `json:"checkOut" binding:"required"`

	Adults   int `json:"adults" binding:"required,min=1"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
	Pets     int `json:"pets"`

	GuestFirstName  string `json:"guestFirstName" binding:"required"`
	GuestLastName   string `json:"guestLastName" binding:"required"`
	GuestEmail      string `json:"guestEmail" binding:"required,email"`
	GuestPhone      string `json:"guestPhone"`
	GuestCountry    string `json:"guestCountry"`
	GuestAddress    string `json:"guestAddress"`
	GuestNotes      string `json:"guestNotes"`
	SpecialRequests string `json:"specialRequests"`

	SelectedOptions []services.SelectedOption `json:"selectedOptions"`
}

type CancelBookingPayload struct {
	Reason string `json:"reason"`
}

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

// Create handles POST /api/bookings.
func (ctl *BookingController) Create(c *gin.Context) {
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
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// List handles GET /api/bookings with filtering, search and pagination.
func (ctl *BookingController) List(c *gin.Context) {
	propertyID, ok := queryUintPtr(c, "propertyId")
	if !ok {
		return
	}
	startDate, ok := queryDatePtr(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := queryDatePtr(c, "endDate")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filters := services.BookingFilters{
		PropertyID: propertyID,
		Status:     c.Query("status"),
		StartDate:  startDate,
		EndDate:    endDate,
		Search:     c.Query("search"),
		Page:       page,
		Limit:      limit,
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
	}

	bookings, total, err := ctl.Bookings.List(middleware.TenantID(c), filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
		"page":     filters.Page,
		"limit":    filters.Limit,
	})
}

// Get handles GET /api/bookings/:id.
func (ctl *BookingController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := ctl.Bookings.Get(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateGuestDetails handles PATCH /api/bookings/:id. Only guest contact
// fields are mutable; dates and money are fixed at creation.
func (ctl *BookingController) UpdateGuestDetails(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var upd services.GuestDetailsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	booking, err := ctl.Bookings.UpdateGuestDetails(middleware.TenantID(c), id, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// Confirm handles POST /api/bookings/:id/confirm.
func (ctl *BookingController) Confirm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := ctl.Bookings.Confirm(middleware.TenantID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// Cancel handles POST /api/bookings/:id/cancel.
func (ctl *BookingController) Cancel(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CancelBookingPayload
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	booking, err := ctl.Bookings.Cancel(middleware.TenantID(c), id, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// Stats handles GET /api/bookings/stats.
func (ctl *BookingController) Stats(c *gin.Context) {
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

	stats, err := ctl.Bookings.Stats(middleware.TenantID(c), propertyID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}
