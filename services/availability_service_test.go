package services_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"villa-backend/models"
	"villa-backend/services"
)

func newAvailability(db *gorm.DB) *services.AvailabilityService {
	return services.NewAvailabilityService(db, services.NewPricingService(db))
}

var seedRefCounter int64

func seedBooking(t *testing.T, db *gorm.DB, tenantID, propertyID uint, status string, checkIn, checkOut time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		TenantID:       tenantID,
		PropertyID:     propertyID,
		Reference:      fmt.Sprintf("SEED%04d", atomic.AddInt64(&seedRefCounter, 1)),
		Status:         status,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Nights:         services.NightsBetween(checkIn, checkOut),
		Adults:         2,
		GuestFirstName: "Jane",
		GuestLastName:  "Doe",
		GuestEmail:     "jane@example.com",
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func TestCheckAvailability_OpenCalendar(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 10), date(2024, time.July, 15), nil)
	require.NoError(t, err)

	assert.True(t, result.Available)
	assert.Empty(t, result.Conflicts)
}

func TestCheckAvailability_BookingOverlap(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	existing := seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusConfirmed,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 12), date(2024, time.July, 18), nil)
	require.NoError(t, err)

	assert.False(t, result.Available)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, services.ConflictTypeBooking, result.Conflicts[0].Type)
	assert.Equal(t, existing.ID, result.Conflicts[0].ID)
}

func TestCheckAvailability_BackToBackStays(t *testing.T) {
	// Departure morning equals the new arrival date: no conflict.
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusConfirmed,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 15), date(2024, time.July, 20), nil)
	require.NoError(t, err)

	assert.True(t, result.Available)
}

func TestCheckAvailability_CancelledBookingDoesNotBlock(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusCancelled,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 12), date(2024, time.July, 18), nil)
	require.NoError(t, err)

	assert.True(t, result.Available)
}

func TestCheckAvailability_BlockedPeriodClosedInterval(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	blocked := &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.July, 10),
		EndDate:    date(2024, time.July, 15),
		Reason:     "Maintenance",
	}
	require.NoError(t, db.Create(blocked).Error)

	availability := newAvailability(db)

	// Blocked ranges are inclusive: arriving on the blocked end date still
	// conflicts, unlike the booking case.
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 15), date(2024, time.July, 20), nil)
	require.NoError(t, err)
	assert.False(t, result.Available)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, services.ConflictTypeBlocked, result.Conflicts[0].Type)

	result, err = availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 16), date(2024, time.July, 20), nil)
	require.NoError(t, err)
	assert.True(t, result.Available)
}

func TestCheckAvailability_MinimumStay(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	property.MinNights = 3
	require.NoError(t, db.Save(property).Error)

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 10), date(2024, time.July, 12), nil)
	require.NoError(t, err)

	assert.False(t, result.Available)
	assert.Equal(t, 3, result.RequiredMinNights)
	assert.Equal(t, "Minimum stay of 3 nights required", result.Reason)
}

func TestCheckAvailability_ExcludesOwnBooking(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	existing := seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusConfirmed,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	result, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 12), date(2024, time.July, 18), &existing.ID)
	require.NoError(t, err)

	assert.True(t, result.Available)
}

func TestCheckAvailability_Idempotent(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusPending,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	first, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 12), date(2024, time.July, 18), nil)
	require.NoError(t, err)
	second, err := availability.CheckAvailability(tenant.ID, property.ID,
		date(2024, time.July, 12), date(2024, time.July, 18), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCreateBlockedPeriod_RefusedOverActiveBooking(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	booking := seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusPending,
		date(2024, time.July, 10), date(2024, time.July, 15))

	availability := newAvailability(db)
	err := availability.CreateBlockedPeriod(tenant.ID, &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.July, 12),
		EndDate:    date(2024, time.July, 20),
	})

	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, booking.ID, conflictErr.Conflicts[0].ID)
}

func TestCreateBlockedPeriod_RefusedWhenTouchingArrivalDate(t *testing.T) {
	// Blocked ranges are inclusive on both ends, so a block ending on a
	// booking's arrival date conflicts with it, matching what
	// CheckAvailability would report for the same calendar.
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	booking := seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusConfirmed,
		date(2024, time.August, 20), date(2024, time.August, 22))

	availability := newAvailability(db)
	err := availability.CreateBlockedPeriod(tenant.ID, &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.August, 10),
		EndDate:    date(2024, time.August, 20),
	})

	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, booking.ID, conflictErr.Conflicts[0].ID)

	// Ending the day before the arrival is fine.
	require.NoError(t, availability.CreateBlockedPeriod(tenant.ID, &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.August, 10),
		EndDate:    date(2024, time.August, 19),
	}))
}

func TestUpdateBlockedPeriod_RefusedWhenExtendedOverBooking(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	availability := newAvailability(db)

	blocked := &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.August, 10),
		EndDate:    date(2024, time.August, 15),
	}
	require.NoError(t, availability.CreateBlockedPeriod(tenant.ID, blocked))

	seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusPending,
		date(2024, time.August, 20), date(2024, time.August, 22))

	newEnd := date(2024, time.August, 20)
	_, err := availability.UpdateBlockedPeriod(tenant.ID, blocked.ID, nil, &newEnd, nil, nil)

	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestBlockedPeriod_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	availability := newAvailability(db)

	blocked := &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.September, 1),
		EndDate:    date(2024, time.September, 10),
		Reason:     "Renovation",
	}
	require.NoError(t, availability.CreateBlockedPeriod(tenant.ID, blocked))

	list, err := availability.ListBlockedPeriods(tenant.ID, property.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)

	newEnd := date(2024, time.September, 12)
	updated, err := availability.UpdateBlockedPeriod(tenant.ID, blocked.ID, nil, &newEnd, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, newEnd, updated.EndDate.UTC())

	badEnd := date(2024, time.August, 1)
	_, err = availability.UpdateBlockedPeriod(tenant.ID, blocked.ID, nil, &badEnd, nil, nil)
	assert.ErrorIs(t, err, services.ErrInvalidDateRange)

	require.NoError(t, availability.DeleteBlockedPeriod(tenant.ID, blocked.ID))
	assert.ErrorIs(t, availability.DeleteBlockedPeriod(tenant.ID, blocked.ID), services.ErrBlockedPeriodNotFound)
}

func TestBlockedPeriod_TenantScoped(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	availability := newAvailability(db)

	blocked := &models.BlockedPeriod{
		PropertyID: property.ID,
		StartDate:  date(2024, time.September, 1),
		EndDate:    date(2024, time.September, 10),
	}
	require.NoError(t, availability.CreateBlockedPeriod(tenant.ID, blocked))

	other := &models.Tenant{Name: "Other", Subdomain: "other", IsActive: true}
	require.NoError(t, db.Create(other).Error)

	assert.ErrorIs(t, availability.DeleteBlockedPeriod(other.ID, blocked.ID), services.ErrBlockedPeriodNotFound)
	_, err := availability.ListBlockedPeriods(other.ID, property.ID, nil, nil)
	assert.ErrorIs(t, err, services.ErrPropertyNotFound)
}
