package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"villa-backend/models"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "villa_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return err
	}

	DB = db

	// Parent tables before children.
	if err := DB.AutoMigrate(
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
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}

// SeedDatabase creates a demo tenant with one property, a couple of booking
// options and a payment configuration so a fresh install answers quotes
// immediately. Idempotent: an existing tenant short-circuits everything.
func SeedDatabase() {
	var tenantCount int64
	DB.Model(&models.Tenant{}).Count(&tenantCount)
	if tenantCount > 0 {
		return
	}

	tenant := models.Tenant{
		Name:      "Demo Rentals",
		Subdomain: "demo",
		IsActive:  true,
	}
	if err := DB.Create(&tenant).Error; err != nil {
		log.Printf("warning: failed to seed demo tenant: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("warning: failed to hash seed password: %v", err)
	} else {
		owner := models.StaffUser{
			TenantID: tenant.ID,
			FullName: "Demo Owner",
			Email:    "owner@demo.local",
			Password: string(hash),
			Role:     "owner",
		}
		if err := DB.Create(&owner).Error; err != nil {
			log.Printf("warning: failed to seed staff user: %v", err)
		}
	}

	property := models.Property{
		TenantID:        tenant.ID,
		Name:            "Villa Azur",
		Status:          models.PropertyStatusPublished,
		BasePrice:       100,
		WeekendPremium:  20,
		CleaningFee:     50,
		SecurityDeposit: 500,
		MinNights:       2,
		MaxGuests:       6,
		City:            "Nice",
	}
	if err := DB.Create(&property).Error; err != nil {
		log.Printf("warning: failed to seed property: %v", err)
		return
	}

	two := 2
	options := []models.BookingOption{
		{
			TenantID:     tenant.ID,
			Name:         "Airport transfer",
			PricingType:  models.OptionPricingFlat,
			PricePerUnit: 80,
			MinQuantity:  1,
			MaxQuantity:  &two,
			IsActive:     true,
			Order:        1,
		},
		{
			TenantID:     tenant.ID,
			Name:         "Breakfast basket",
			PricingType:  models.OptionPricingPerGuestPerNight,
			PricePerUnit: 12,
			MinQuantity:  1,
			IsActive:     true,
			Order:        2,
		},
	}
	if err := DB.Create(&options).Error; err != nil {
		log.Printf("warning: failed to seed booking options: %v", err)
	}

	cfg := models.PaymentConfiguration{
		TenantID:             tenant.ID,
		TouristTaxEnabled:    true,
		TouristTaxType:       models.TouristTaxPerPersonPerNight,
		TouristTaxAdultPrice: 2,
		TouristTaxChildPrice: 1,
		TouristTaxPeriod:     models.TouristTaxPeriodPerNight,
		DepositType:          models.DepositTypeFixed,
		DepositValue:         500,
	}
	if err := DB.Create(&cfg).Error; err != nil {
		log.Printf("warning: failed to seed payment configuration: %v", err)
	}

	log.Println("Demo tenant seeded")
}
