// controllers/availability_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"villa-backend/middleware"
	"villa-backend/models"
	"villa-backend/services"
	"villa-backend/utils"
)

type CheckAvailabilityRequest struct {
	PropertyID       uint   `json:"propertyId" binding:"required"`
	CheckIn          string `json:"checkIn" binding:"required"`
	CheckOut         string `json:"checkOut" binding:"required"`
	ExcludeBookingID *uint  `json:"excludeBookingId,omitempty"`
}

type CreateBlockedPeriodRequest struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	StartDate  string `json:"startDate" binding:"required"`
	EndDate    string `json:"endDate" binding:"required"`
	Reason     string `json:"reason"`
	Notes      string `json:"notes"`
}

type UpdateBlockedPeriodRequest struct {
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
	Reason    *string `json:"reason,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type AvailabilityController struct {
	Availability *services.AvailabilityService
}

func NewAvailabilityController(availability *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: availability}
}

// Check handles POST /api/availability/check-availability.
func (ctl *AvailabilityController) Check(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	ctl.check(c, req.PropertyID, req.CheckIn, req.CheckOut, req.ExcludeBookingID)
}

// CheckQuery handles GET /api/availability/check-availability with query
// parameters, for clients that cannot send a body.
func (ctl *AvailabilityController) CheckQuery(c *gin.Context) {
	propertyID, ok := queryUintPtr(c, "propertyId")
	if !ok {
		return
	}
	if propertyID == nil {
		utils.JSONError(c, http.StatusBadRequest, "propertyId is required")
		return
	}
	exclude, ok := queryUintPtr(c, "excludeBookingId")
	if !ok {
		return
	}
	ctl.check(c, *propertyID, c.Query("checkIn"), c.Query("checkOut"), exclude)
}

func (ctl *AvailabilityController) check(c *gin.Context, propertyID uint, checkInRaw, checkOutRaw string, exclude *uint) {
	checkIn, checkOut, ok := parseStayDates(c, checkInRaw, checkOutRaw)
	if !ok {
		return
	}

	result, err := ctl.Availability.CheckAvailability(middleware.TenantID(c), propertyID, checkIn, checkOut, exclude)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// CreateBlockedPeriod handles POST /api/availability/blocked-periods.
func (ctl *AvailabilityController) CreateBlockedPeriod(c *gin.Context) {
	var req CreateBlockedPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	startDate, endDate, ok := parseBlockedDates(c, req.StartDate, req.EndDate)
	if !ok {
		return
	}

	blocked := &models.BlockedPeriod{
		PropertyID: req.PropertyID,
		StartDate:  startDate,
		EndDate:    endDate,
		Reason:     req.Reason,
		Notes:      req.Notes,
	}
	if err := ctl.Availability.CreateBlockedPeriod(middleware.TenantID(c), blocked); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, blocked)
}

// ListBlockedPeriods handles GET /api/availability/blocked-periods.
func (ctl *AvailabilityController) ListBlockedPeriods(c *gin.Context) {
	propertyID, ok := queryUintPtr(c, "propertyId")
	if !ok {
		return
	}
	if propertyID == nil {
		utils.JSONError(c, http.StatusBadRequest, "propertyId is required")
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

	blocked, err := ctl.Availability.ListBlockedPeriods(middleware.TenantID(c), *propertyID, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blocked)
}

// UpdateBlockedPeriod handles PATCH /api/availability/blocked-periods/:id.
func (ctl *AvailabilityController) UpdateBlockedPeriod(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateBlockedPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var startDate, endDate *time.Time
	if req.StartDate != nil {
		t, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid startDate")
			return
		}
		startDate = &t
	}
	if req.EndDate != nil {
		t, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid endDate")
			return
		}
		endDate = &t
	}

	blocked, err := ctl.Availability.UpdateBlockedPeriod(middleware.TenantID(c), id, startDate, endDate, req.Reason, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, blocked)
}

// DeleteBlockedPeriod handles DELETE /api/availability/blocked-periods/:id.
func (ctl *AvailabilityController) DeleteBlockedPeriod(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := ctl.Availability.DeleteBlockedPeriod(middleware.TenantID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

func parseBlockedDates(c *gin.Context, startRaw, endRaw string) (time.Time, time.Time, bool) {
	start, err := utils.ParseDate(startRaw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid startDate")
		return time.Time{}, time.Time{}, false
	}
	end, err := utils.ParseDate(endRaw)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid endDate")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
