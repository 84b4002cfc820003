package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"villa-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.StaffUser{},
		&models.Property{},
		&models.PricingPeriod{},
		&models.BlockedPeriod{},
		&models.BookingOption{},
		&models.PropertyBookingOption{},
		&models.PaymentConfiguration{},
		&models.Booking{},
		&models.BookingSelectedOption{},
		&models.BookingSequence{},
	))
	return db
}

func newTestTenant(t *testing.T, db *gorm.DB) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: "Test Rentals", Subdomain: "test", IsActive: true}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// newTestProperty seeds a published villa: 100/night, +20 weekend, 50
// cleaning, up to 4 guests, no minimum stay beyond a single night.
func newTestProperty(t *testing.T, db *gorm.DB, tenantID uint) *models.Property {
	t.Helper()
	property := &models.Property{
		TenantID:       tenantID,
		Name:           "Villa Test",
		Status:         models.PropertyStatusPublished,
		BasePrice:      100,
		WeekendPremium: 20,
		CleaningFee:    50,
		MinNights:      1,
		MaxGuests:      4,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

// enableTouristTax configures 2/adult and 1/child per night.
func enableTouristTax(t *testing.T, db *gorm.DB, tenantID uint) {
	t.Helper()
	cfg := &models.PaymentConfiguration{
		TenantID:             tenantID,
		TouristTaxEnabled:    true,
		TouristTaxType:       models.TouristTaxPerPersonPerNight,
		TouristTaxAdultPrice: 2,
		TouristTaxChildPrice: 1,
		TouristTaxPeriod:     models.TouristTaxPeriodPerNight,
	}
	require.NoError(t, db.Create(cfg).Error)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }
func uintPtr(v uint) *uint       { return &v }
