// controllers/errors.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"villa-backend/services"
	"villa-backend/utils"
)

// respondServiceError maps service-layer errors onto HTTP responses with the
// standard error envelope. Unknown errors are logged and masked as 500.
func respondServiceError(c *gin.Context, err error) {
	var guestErr *services.GuestCountExceededError
	var minStayErr *services.MinimumStayViolationError
	var conflictErr *services.BookingConflictError

	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		utils.JSONError(c, http.StatusNotFound, "Property not found")
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrOptionNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking option not found")
	case errors.Is(err, services.ErrPeriodNotFound):
		utils.JSONError(c, http.StatusNotFound, "Pricing period not found")
	case errors.Is(err, services.ErrBlockedPeriodNotFound):
		utils.JSONError(c, http.StatusNotFound, "Blocked period not found")
	case errors.Is(err, services.ErrInvalidDateRange):
		utils.JSONError(c, http.StatusBadRequest, "Check-out must be after check-in")
	case errors.Is(err, services.ErrInvalidStateTransition):
		utils.JSONError(c, http.StatusBadRequest, "Booking status does not allow this operation")
	case errors.Is(err, services.ErrPropertyHasActiveBookings):
		utils.JSONError(c, http.StatusConflict, "Property has pending or confirmed bookings")
	case errors.As(err, &guestErr):
		utils.JSONErrorWithDetails(c, http.StatusBadRequest, guestErr.Error(), gin.H{
			"maxGuests": guestErr.MaxGuests,
		})
	case errors.As(err, &minStayErr):
		utils.JSONErrorWithDetails(c, http.StatusConflict, minStayErr.Error(), gin.H{
			"requiredMinNights": minStayErr.RequiredNights,
		})
	case errors.As(err, &conflictErr):
		utils.JSONErrorWithDetails(c, http.StatusConflict, "Dates not available", gin.H{
			"conflicts": conflictErr.Conflicts,
		})
	default:
		log.Printf("internal error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// paramID parses the named uint path parameter, responding 400 itself on
// failure.
func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
