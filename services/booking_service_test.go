package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"villa-backend/models"
	"villa-backend/services"
)

func newBookingService(db *gorm.DB) *services.BookingService {
	pricing := services.NewPricingService(db)
	availability := services.NewAvailabilityService(db, pricing)
	return services.NewBookingService(db, pricing, availability)
}

func createRequest(tenantID, propertyID uint, checkIn, checkOut time.Time) services.CreateBookingRequest {
	return services.CreateBookingRequest{
		TenantID:       tenantID,
		PropertyID:     propertyID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Adults:         2,
		GuestFirstName: "Jane",
		GuestLastName:  "Doe",
		GuestEmail:     "jane@example.com",
	}
}

func TestCreateBooking_PersistsQuoteTotals(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	enableTouristTax(t, db, tenant.ID)

	bookings := newBookingService(db)
	booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2024, time.July, 15), date(2024, time.July, 18)))
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, 3, booking.Nights)
	assert.Equal(t, 300.0, booking.AccommodationTotal)
	assert.Equal(t, 50.0, booking.CleaningFee)
	// 2 adults x 2/night x 3 nights
	assert.Equal(t, 12.0, booking.TouristTax)
	assert.Equal(t, 350.0, booking.Subtotal)
	assert.Equal(t, 362.0, booking.Total)

	// 15% of the total, withheld from the owner payout.
	assert.Equal(t, 54.3, booking.CommissionAmount)
	assert.Equal(t, 307.7, booking.PayoutAmount)

	assert.NotEmpty(t, booking.AccessToken)

	yearMonth := time.Now().UTC().Format("0601")
	assert.Equal(t, fmt.Sprintf("VS%s0001", yearMonth), booking.Reference)
}

func TestCreateBooking_ReferencesAreSequential(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	bookings := newBookingService(db)
	yearMonth := time.Now().UTC().Format("0601")

	for i := 1; i <= 3; i++ {
		checkIn := date(2025, time.March, i*5)
		booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID, checkIn, checkIn.AddDate(0, 0, 2)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("VS%s%04d", yearMonth, i), booking.Reference)
	}
}

func TestCreateBooking_SequencesAreTenantScoped(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	other := &models.Tenant{Name: "Other", Subdomain: "other", IsActive: true}
	require.NoError(t, db.Create(other).Error)
	otherProperty := newTestProperty(t, db, other.ID)

	bookings := newBookingService(db)
	yearMonth := time.Now().UTC().Format("0601")

	first, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 5), date(2025, time.March, 8)))
	require.NoError(t, err)
	second, err := bookings.CreateBooking(createRequest(other.ID, otherProperty.ID,
		date(2025, time.March, 5), date(2025, time.March, 8)))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("VS%s0001", yearMonth), first.Reference)
	assert.Equal(t, fmt.Sprintf("VS%s0001", yearMonth), second.Reference)
}

func TestCreateBooking_RejectsOverlap(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	bookings := newBookingService(db)
	_, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 15)))
	require.NoError(t, err)

	_, err = bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 12), date(2025, time.March, 18)))

	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.NotEmpty(t, conflictErr.Conflicts)
}

func TestCreateBooking_LockedRecheckCatchesLateBooking(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	checkIn := date(2025, time.March, 10)
	checkOut := date(2025, time.March, 15)

	// A competing booking lands the moment the transaction loads the
	// property row. The outer gate has already passed by then, so only
	// the re-check under the lock can refuse the create.
	injected := false
	err := db.Callback().Query().After("gorm:query").Register("late_booking", func(op *gorm.DB) {
		if injected || op.Statement.Table != "properties" {
			return
		}
		if _, inTx := op.Statement.ConnPool.(gorm.TxCommitter); !inTx {
			return
		}
		injected = true
		rival := &models.Booking{
			TenantID:   tenant.ID,
			PropertyID: property.ID,
			Reference:  "RIVAL0001",
			Status:     models.BookingStatusConfirmed,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			Nights:     5,
			Adults:     2,
		}
		op.AddError(op.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Create(rival).Error)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Query().Remove("late_booking") })

	_, err = bookings.CreateBooking(createRequest(tenant.ID, property.ID, checkIn, checkOut))

	require.True(t, injected)
	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, services.ConflictTypeBooking, conflictErr.Conflicts[0].Type)

	// The refused create left nothing behind.
	var count int64
	require.NoError(t, db.Model(&models.Booking{}).Where("reference LIKE ?", "VS%").Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreateBooking_LockedRecheckCatchesLateBlock(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	checkIn := date(2025, time.March, 10)
	checkOut := date(2025, time.March, 15)

	// Same race as above but with an owner block landing late.
	injected := false
	err := db.Callback().Query().After("gorm:query").Register("late_block", func(op *gorm.DB) {
		if injected || op.Statement.Table != "properties" {
			return
		}
		if _, inTx := op.Statement.ConnPool.(gorm.TxCommitter); !inTx {
			return
		}
		injected = true
		rival := &models.BlockedPeriod{
			PropertyID: property.ID,
			StartDate:  checkIn,
			EndDate:    checkOut,
			Reason:     "Maintenance",
		}
		op.AddError(op.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Create(rival).Error)
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Query().Remove("late_block") })

	_, err = bookings.CreateBooking(createRequest(tenant.ID, property.ID, checkIn, checkOut))

	require.True(t, injected)
	var conflictErr *services.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, services.ConflictTypeBlocked, conflictErr.Conflicts[0].Type)
}

func TestCreateBooking_GuestLimitCheckedFirst(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	// The dates also conflict, but an oversized party gets the capacity
	// error rather than the conflict one.
	seedBooking(t, db, tenant.ID, property.ID, models.BookingStatusConfirmed,
		date(2025, time.March, 10), date(2025, time.March, 15))

	bookings := newBookingService(db)
	req := createRequest(tenant.ID, property.ID, date(2025, time.March, 10), date(2025, time.March, 15))
	req.Adults = 10

	_, err := bookings.CreateBooking(req)

	var guestErr *services.GuestCountExceededError
	require.ErrorAs(t, err, &guestErr)
	assert.Equal(t, property.MaxGuests, guestErr.MaxGuests)
}

func TestCreateBooking_MinimumStayViolation(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	property.MinNights = 4
	require.NoError(t, db.Save(property).Error)

	bookings := newBookingService(db)
	_, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 12)))

	var minStayErr *services.MinimumStayViolationError
	require.ErrorAs(t, err, &minStayErr)
	assert.Equal(t, 4, minStayErr.RequiredNights)
}

func TestCreateBooking_PersistsOptionLines(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)

	optionService := services.NewOptionService(db)
	option := &models.BookingOption{
		TenantID:     tenant.ID,
		Name:         "Airport transfer",
		PricingType:  models.OptionPricingFlat,
		PricePerUnit: 80,
		MinQuantity:  1,
		IsActive:     true,
	}
	require.NoError(t, optionService.Create(option))

	bookings := newBookingService(db)
	req := createRequest(tenant.ID, property.ID, date(2025, time.March, 10), date(2025, time.March, 13))
	req.SelectedOptions = []services.SelectedOption{{OptionID: option.ID, Quantity: 1}}

	booking, err := bookings.CreateBooking(req)
	require.NoError(t, err)

	assert.Equal(t, 80.0, booking.OptionsTotal)

	loaded, err := bookings.Get(tenant.ID, booking.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Options, 1)
	assert.Equal(t, "Airport transfer", loaded.Options[0].Name)
	assert.Equal(t, 80.0, loaded.Options[0].TotalPrice)
}

func TestBookingStateMachine(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 13)))
	require.NoError(t, err)

	confirmed, err := bookings.Confirm(tenant.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	// CONFIRMED cannot be confirmed again.
	_, err = bookings.Confirm(tenant.ID, booking.ID)
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)

	cancelled, err := bookings.Cancel(tenant.ID, booking.ID, "guest request")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	loaded, err := bookings.Get(tenant.ID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "guest request", loaded.CancellationReason)
	require.NotNil(t, loaded.CancellationDate)

	// CANCELLED is terminal.
	_, err = bookings.Cancel(tenant.ID, booking.ID, "again")
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)
	_, err = bookings.Confirm(tenant.ID, booking.ID)
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)
	_, err = bookings.UpdateGuestDetails(tenant.ID, booking.ID, services.GuestDetailsUpdate{})
	assert.ErrorIs(t, err, services.ErrInvalidStateTransition)
}

func TestUpdateGuestDetails(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 13)))
	require.NoError(t, err)

	email := "new@example.com"
	notes := "late arrival"
	updated, err := bookings.UpdateGuestDetails(tenant.ID, booking.ID, services.GuestDetailsUpdate{
		GuestEmail: &email,
		GuestNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, email, updated.GuestEmail)
	assert.Equal(t, notes, updated.GuestNotes)

	// Totals are untouched.
	assert.Equal(t, booking.Total, updated.Total)
}

func TestGetByReference_RequiresAccessToken(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 13)))
	require.NoError(t, err)

	found, err := bookings.GetByReference(tenant.ID, booking.Reference, booking.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)

	_, err = bookings.GetByReference(tenant.ID, booking.Reference, "wrong-token")
	assert.ErrorIs(t, err, services.ErrBookingNotFound)
}

func TestListBookings_FiltersAndPagination(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	for i := 0; i < 5; i++ {
		checkIn := date(2025, time.March, 1+i*5)
		req := createRequest(tenant.ID, property.ID, checkIn, checkIn.AddDate(0, 0, 2))
		if i == 0 {
			req.GuestLastName = "Martin"
		}
		booking, err := bookings.CreateBooking(req)
		require.NoError(t, err)
		if i < 2 {
			_, err = bookings.Confirm(tenant.ID, booking.ID)
			require.NoError(t, err)
		}
	}

	page, total, err := bookings.List(tenant.ID, services.BookingFilters{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page, 2)

	confirmed, total, err := bookings.List(tenant.ID, services.BookingFilters{Status: models.BookingStatusConfirmed})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, confirmed, 2)

	byName, total, err := bookings.List(tenant.ID, services.BookingFilters{Search: "martin"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byName, 1)
	assert.Equal(t, "Martin", byName[0].GuestLastName)

	sorted, _, err := bookings.List(tenant.ID, services.BookingFilters{SortBy: "checkIn", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, sorted, 5)
	assert.True(t, sorted[0].CheckIn.Before(sorted[4].CheckIn))
}

func TestBookingStats(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)

	var made []*models.Booking
	for i := 0; i < 4; i++ {
		checkIn := date(2025, time.March, 1+i*5)
		booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID, checkIn, checkIn.AddDate(0, 0, 2)))
		require.NoError(t, err)
		made = append(made, booking)
	}

	_, err := bookings.Confirm(tenant.ID, made[0].ID)
	require.NoError(t, err)
	_, err = bookings.Confirm(tenant.ID, made[1].ID)
	require.NoError(t, err)
	_, err = bookings.Cancel(tenant.ID, made[2].ID, "changed plans")
	require.NoError(t, err)

	stats, err := bookings.Stats(tenant.ID, nil, nil, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 4, stats.TotalBookings)
	assert.EqualValues(t, 2, stats.ConfirmedBookings)
	assert.EqualValues(t, 1, stats.CancelledBookings)
	assert.Equal(t, 25.0, stats.CancellationRate)
	// Revenue counts CONFIRMED stays only here; both are 2-night weekday
	// stays at 100/night plus 50 cleaning.
	assert.InDelta(t, made[0].Total+made[1].Total, stats.TotalRevenue, 0.001)
	assert.Equal(t, 2.0, stats.AverageStay)
}

func TestPropertyArchive_BlockedByActiveBookings(t *testing.T) {
	db := newTestDB(t)
	tenant := newTestTenant(t, db)
	property := newTestProperty(t, db, tenant.ID)
	bookings := newBookingService(db)
	properties := services.NewPropertyService(db)

	booking, err := bookings.CreateBooking(createRequest(tenant.ID, property.ID,
		date(2025, time.March, 10), date(2025, time.March, 13)))
	require.NoError(t, err)

	_, err = properties.Archive(tenant.ID, property.ID)
	assert.ErrorIs(t, err, services.ErrPropertyHasActiveBookings)

	_, err = bookings.Cancel(tenant.ID, booking.ID, "freeing the calendar")
	require.NoError(t, err)

	archived, err := properties.Archive(tenant.ID, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusArchived, archived.Status)
}
