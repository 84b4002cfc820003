// services/period_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"villa-backend/models"
)

// PeriodService manages pricing periods. Overlapping periods are allowed;
// scope and priority decide which one applies to a night.
type PeriodService struct {
	DB *gorm.DB
}

func NewPeriodService(db *gorm.DB) *PeriodService {
	return &PeriodService{DB: db}
}

func (s *PeriodService) Create(period *models.PricingPeriod) error {
	if !period.EndDate.After(period.StartDate) && !period.EndDate.Equal(period.StartDate) {
		return ErrInvalidDateRange
	}
	if period.PropertyID != nil {
		var property models.Property
		err := s.DB.Where("tenant_id = ?", period.TenantID).First(&property, *period.PropertyID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to load property: %w", err)
		}
	}
	if err := s.DB.Create(period).Error; err != nil {
		return fmt.Errorf("failed to create pricing period: %w", err)
	}
	return nil
}

// List returns the tenant's periods, optionally narrowed to one property
// (which also includes the tenant-global ones) and a date window.
func (s *PeriodService) List(tenantID uint, propertyID *uint, from, to *time.Time) ([]models.PricingPeriod, error) {
	q := s.DB.Where("tenant_id = ?", tenantID).Order("start_date ASC, priority DESC")
	if propertyID != nil {
		q = q.Where("property_id = ? OR property_id IS NULL", *propertyID)
	}
	if from != nil && to != nil {
		q = q.Where("start_date <= ? AND end_date >= ?", *to, *from)
	}

	var periods []models.PricingPeriod
	if err := q.Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to list pricing periods: %w", err)
	}
	return periods, nil
}

func (s *PeriodService) Get(tenantID, id uint) (*models.PricingPeriod, error) {
	var period models.PricingPeriod
	err := s.DB.Where("tenant_id = ?", tenantID).First(&period, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, fmt.Errorf("failed to load pricing period: %w", err)
	}
	return &period, nil
}

func (s *PeriodService) Update(tenantID, id uint, updates map[string]interface{}) (*models.PricingPeriod, error) {
	period, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(period).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update pricing period: %w", err)
	}
	return period, nil
}

func (s *PeriodService) Delete(tenantID, id uint) error {
	period, err := s.Get(tenantID, id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(period).Error; err != nil {
		return fmt.Errorf("failed to delete pricing period: %w", err)
	}
	return nil
}
