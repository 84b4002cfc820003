// services/errors.go
package services

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across services. Controllers map these onto HTTP
// status codes; nothing below should escape the orchestration boundary as an
// unhandled fault.
var (
	ErrTenantNotFound        = errors.New("tenant_not_found")
	ErrPropertyNotFound      = errors.New("property_not_found")
	ErrBookingNotFound       = errors.New("booking_not_found")
	ErrOptionNotFound        = errors.New("option_not_found")
	ErrPeriodNotFound        = errors.New("period_not_found")
	ErrBlockedPeriodNotFound = errors.New("blocked_period_not_found")
	ErrInvalidDateRange      = errors.New("invalid_date_range")
	ErrInvalidStateTransition = errors.New("invalid_state_transition")
)

// GuestCountExceededError carries the property limit for client display.
type GuestCountExceededError struct {
	MaxGuests int
}

func (e *GuestCountExceededError) Error() string {
	return fmt.Sprintf("Maximum %d guests allowed", e.MaxGuests)
}

// MinimumStayViolationError carries the effective minimum so the client can
// self-correct.
type MinimumStayViolationError struct {
	RequiredNights int
}

func (e *MinimumStayViolationError) Error() string {
	return fmt.Sprintf("Minimum stay of %d nights required", e.RequiredNights)
}

const (
	ConflictTypeBooking = "booking"
	ConflictTypeBlocked = "blocked"
)

// Conflict identifies one booking or blocked period that overlaps a
// requested range.
type Conflict struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// BookingConflictError is returned when a create/reschedule collides with
// existing bookings or blocked periods.
type BookingConflictError struct {
	Conflicts []Conflict
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("dates not available (%d conflicts)", len(e.Conflicts))
}
