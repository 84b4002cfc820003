// services/availability_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"villa-backend/models"
)

// AvailabilityService answers "can this stay be booked at all": overlap with
// existing bookings, owner-blocked periods and the minimum-stay rule. It also
// owns blocked-period management.
type AvailabilityService struct {
	DB      *gorm.DB
	Pricing *PricingService
}

func NewAvailabilityService(db *gorm.DB, pricing *PricingService) *AvailabilityService {
	return &AvailabilityService{DB: db, Pricing: pricing}
}

// AvailabilityResult carries enough structure for the caller to render
// exactly what blocks the request.
type AvailabilityResult struct {
	Available bool       `json:"available"`
	Reason    string     `json:"reason,omitempty"`
	Conflicts []Conflict `json:"conflicts,omitempty"`

	// Populated when the stay is shorter than the effective minimum.
	RequiredMinNights int `json:"requiredMinNights,omitempty"`
}

// overlappingBookings finds PENDING/CONFIRMED bookings whose occupancy
// intersects [checkIn, checkOut). The half-open test means a booking that
// checks out on the new arrival date does not conflict.
func overlappingBookings(db *gorm.DB, propertyID uint, checkIn, checkOut time.Time, excludeBookingID *uint) ([]models.Booking, error) {
	q := db.
		Where("property_id = ?", propertyID).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeBookingID != nil {
		q = q.Where("id <> ?", *excludeBookingID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return bookings, nil
}

// bookingsTouchingClosedRange finds PENDING/CONFIRMED bookings touching the
// inclusive range [start, end]. The blocked-period guard uses this closed
// test so that it agrees with CheckAvailability: a block ending on a
// booking's arrival date conflicts on both paths.
func bookingsTouchingClosedRange(db *gorm.DB, propertyID uint, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := db.
		Where("property_id = ?", propertyID).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Where("check_in <= ? AND check_out >= ?", end, start).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return bookings, nil
}

func bookingConflicts(bookings []models.Booking) []Conflict {
	conflicts := make([]Conflict, 0, len(bookings))
	for _, b := range bookings {
		conflicts = append(conflicts, Conflict{
			Type:      ConflictTypeBooking,
			ID:        b.ID,
			StartDate: b.CheckIn,
			EndDate:   b.CheckOut,
		})
	}
	return conflicts
}

// overlappingBlockedPeriods uses a closed-interval test: blocked ranges are
// inclusive on both ends.
func overlappingBlockedPeriods(db *gorm.DB, propertyID uint, checkIn, checkOut time.Time) ([]models.BlockedPeriod, error) {
	var blocked []models.BlockedPeriod
	err := db.
		Where("property_id = ?", propertyID).
		Where("start_date <= ? AND end_date >= ?", checkOut, checkIn).
		Find(&blocked).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked periods: %w", err)
	}
	return blocked, nil
}

// CheckAvailability is the booking gate. Idempotent: identical inputs with no
// intervening writes yield identical results.
func (s *AvailabilityService) CheckAvailability(tenantID, propertyID uint, checkIn, checkOut time.Time, excludeBookingID *uint) (*AvailabilityResult, error) {
	var property models.Property
	err := s.DB.
		Where("tenant_id = ? AND status <> ?", tenantID, models.PropertyStatusArchived).
		First(&property, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDateRange
	}

	var conflicts []Conflict

	bookings, err := overlappingBookings(s.DB, propertyID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		conflicts = append(conflicts, Conflict{
			Type:      ConflictTypeBooking,
			ID:        b.ID,
			StartDate: b.CheckIn,
			EndDate:   b.CheckOut,
		})
	}

	blocked, err := overlappingBlockedPeriods(s.DB, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	for _, bp := range blocked {
		conflicts = append(conflicts, Conflict{
			Type:      ConflictTypeBlocked,
			ID:        bp.ID,
			StartDate: bp.StartDate,
			EndDate:   bp.EndDate,
		})
	}

	if len(conflicts) > 0 {
		return &AvailabilityResult{
			Available: false,
			Reason:    "Dates not available",
			Conflicts: conflicts,
		}, nil
	}

	// Same minimum-stay resolution as the quote path.
	periods, err := s.Pricing.ResolvePeriods(tenantID, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	nights := NightsBetween(checkIn, checkOut)
	if required := EffectiveMinNights(&property, periods, checkIn); nights < required {
		return &AvailabilityResult{
			Available:         false,
			Reason:            fmt.Sprintf("Minimum stay of %d nights required", required),
			RequiredMinNights: required,
		}, nil
	}

	return &AvailabilityResult{Available: true}, nil
}

// CreateBlockedPeriod refuses ranges that touch PENDING/CONFIRMED bookings;
// owners must resolve those bookings first. The guard and the insert run in
// one transaction holding the property row lock, the same lock booking
// creation takes, so a concurrent booking and block over the same range
// serialize instead of both landing.
func (s *AvailabilityService) CreateBlockedPeriod(tenantID uint, blocked *models.BlockedPeriod) error {
	if !blocked.EndDate.After(blocked.StartDate) {
		return ErrInvalidDateRange
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		err := lockForUpdate(tx).Where("tenant_id = ?", tenantID).First(&property, blocked.PropertyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to load property: %w", err)
		}

		bookings, err := bookingsTouchingClosedRange(tx, blocked.PropertyID, blocked.StartDate, blocked.EndDate)
		if err != nil {
			return err
		}
		if len(bookings) > 0 {
			return &BookingConflictError{Conflicts: bookingConflicts(bookings)}
		}

		if err := tx.Create(blocked).Error; err != nil {
			return fmt.Errorf("failed to create blocked period: %w", err)
		}
		return nil
	})
}

func (s *AvailabilityService) ListBlockedPeriods(tenantID, propertyID uint, from, to *time.Time) ([]models.BlockedPeriod, error) {
	var property models.Property
	err := s.DB.Where("tenant_id = ?", tenantID).First(&property, propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	q := s.DB.Where("property_id = ?", propertyID).Order("start_date ASC")
	if from != nil && to != nil {
		q = q.Where("start_date <= ? AND end_date >= ?", *to, *from)
	}

	var blocked []models.BlockedPeriod
	if err := q.Find(&blocked).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocked periods: %w", err)
	}
	return blocked, nil
}

// UpdateBlockedPeriod re-runs the booking-overlap guard against the new
// range, under the same property row lock as creation.
func (s *AvailabilityService) UpdateBlockedPeriod(tenantID, id uint, startDate, endDate *time.Time, reason, notes *string) (*models.BlockedPeriod, error) {
	blocked, err := s.getBlockedPeriod(tenantID, id)
	if err != nil {
		return nil, err
	}

	newStart := blocked.StartDate
	newEnd := blocked.EndDate
	if startDate != nil {
		newStart = *startDate
	}
	if endDate != nil {
		newEnd = *endDate
	}
	if !newEnd.After(newStart) {
		return nil, ErrInvalidDateRange
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := lockForUpdate(tx).First(&property, blocked.PropertyID).Error; err != nil {
			return fmt.Errorf("failed to load property: %w", err)
		}

		bookings, err := bookingsTouchingClosedRange(tx, blocked.PropertyID, newStart, newEnd)
		if err != nil {
			return err
		}
		if len(bookings) > 0 {
			return &BookingConflictError{Conflicts: bookingConflicts(bookings)}
		}

		blocked.StartDate = newStart
		blocked.EndDate = newEnd
		if reason != nil {
			blocked.Reason = *reason
		}
		if notes != nil {
			blocked.Notes = *notes
		}

		if err := tx.Save(blocked).Error; err != nil {
			return fmt.Errorf("failed to update blocked period: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return blocked, nil
}

func (s *AvailabilityService) DeleteBlockedPeriod(tenantID, id uint) error {
	blocked, err := s.getBlockedPeriod(tenantID, id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(blocked).Error; err != nil {
		return fmt.Errorf("failed to delete blocked period: %w", err)
	}
	return nil
}

func (s *AvailabilityService) getBlockedPeriod(tenantID, id uint) (*models.BlockedPeriod, error) {
	var blocked models.BlockedPeriod
	err := s.DB.Preload("Property").First(&blocked, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBlockedPeriodNotFound
		}
		return nil, fmt.Errorf("failed to load blocked period: %w", err)
	}
	if blocked.Property.TenantID != tenantID {
		return nil, ErrBlockedPeriodNotFound
	}
	return &blocked, nil
}
