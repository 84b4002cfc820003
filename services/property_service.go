// services/property_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"villa-backend/models"
)

// PropertyService owns property CRUD and the archive transition.
type PropertyService struct {
	DB *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{DB: db}
}

// ErrPropertyHasActiveBookings guards archive/delete while stays are pending.
var ErrPropertyHasActiveBookings = errors.New("property_has_active_bookings")

func (s *PropertyService) Create(property *models.Property) error {
	if property.Status == "" {
		property.Status = models.PropertyStatusDraft
	}
	if property.MinNights < 1 {
		property.MinNights = 1
	}
	if err := s.DB.Create(property).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

func (s *PropertyService) List(tenantID uint, includeArchived bool) ([]models.Property, error) {
	q := s.DB.Where("tenant_id = ?", tenantID).Order("created_at DESC")
	if !includeArchived {
		q = q.Where("status <> ?", models.PropertyStatusArchived)
	}

	var properties []models.Property
	if err := q.Find(&properties).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

func (s *PropertyService) Get(tenantID, id uint) (*models.Property, error) {
	var property models.Property
	err := s.DB.Where("tenant_id = ?", tenantID).First(&property, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}
	return &property, nil
}

func (s *PropertyService) Update(tenantID, id uint, updates map[string]interface{}) (*models.Property, error) {
	property, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(property).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return property, nil
}

// Archive soft-retires the property. Refused while PENDING/CONFIRMED
// bookings exist so guests with upcoming stays keep a live record.
func (s *PropertyService) Archive(tenantID, id uint) (*models.Property, error) {
	property, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}

	var active int64
	err = s.DB.Model(&models.Booking{}).
		Where("property_id = ?", id).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Count(&active).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active bookings: %w", err)
	}
	if active > 0 {
		return nil, ErrPropertyHasActiveBookings
	}

	if err := s.DB.Model(property).Update("status", models.PropertyStatusArchived).Error; err != nil {
		return nil, fmt.Errorf("failed to archive property: %w", err)
	}
	return property, nil
}

func (s *PropertyService) Publish(tenantID, id uint) (*models.Property, error) {
	property, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(property).Update("status", models.PropertyStatusPublished).Error; err != nil {
		return nil, fmt.Errorf("failed to publish property: %w", err)
	}
	return property, nil
}
