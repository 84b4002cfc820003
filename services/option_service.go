// services/option_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"villa-backend/models"
)

// OptionService manages tenant-wide booking options, their per-property
// overrides and the tenant payment configuration.
type OptionService struct {
	DB *gorm.DB
}

func NewOptionService(db *gorm.DB) *OptionService {
	return &OptionService{DB: db}
}

func (s *OptionService) List(tenantID uint) ([]models.BookingOption, error) {
	var options []models.BookingOption
	err := s.DB.
		Where("tenant_id = ?", tenantID).
		Order("`order` ASC, created_at ASC").
		Find(&options).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking options: %w", err)
	}
	return options, nil
}

func (s *OptionService) Get(tenantID, id uint) (*models.BookingOption, error) {
	var option models.BookingOption
	err := s.DB.
		Preload("Properties").
		Where("tenant_id = ?", tenantID).
		First(&option, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to load booking option: %w", err)
	}
	return &option, nil
}

func (s *OptionService) Create(option *models.BookingOption) error {
	if err := validPricingType(option.PricingType); err != nil {
		return err
	}
	if err := s.DB.Create(option).Error; err != nil {
		return fmt.Errorf("failed to create booking option: %w", err)
	}
	return nil
}

func (s *OptionService) Update(tenantID, id uint, updates map[string]interface{}) (*models.BookingOption, error) {
	if pt, ok := updates["pricing_type"].(string); ok {
		if err := validPricingType(pt); err != nil {
			return nil, err
		}
	}

	option, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(option).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking option: %w", err)
	}
	return option, nil
}

func (s *OptionService) Delete(tenantID, id uint) error {
	res := s.DB.Where("tenant_id = ?", tenantID).Delete(&models.BookingOption{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking option: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOptionNotFound
	}
	return nil
}

// UpsertPropertyOverride creates or replaces the per-property customization
// of a tenant option.
func (s *OptionService) UpsertPropertyOverride(tenantID uint, override *models.PropertyBookingOption) error {
	// Both sides must belong to the tenant.
	var option models.BookingOption
	if err := s.DB.Where("tenant_id = ?", tenantID).First(&option, override.OptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOptionNotFound
		}
		return fmt.Errorf("failed to load booking option: %w", err)
	}
	var property models.Property
	if err := s.DB.Where("tenant_id = ?", tenantID).First(&property, override.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("failed to load property: %w", err)
	}

	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "property_id"}, {Name: "option_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"custom_price", "custom_min_quantity", "custom_max_quantity", "is_enabled", "updated_at",
		}),
	}).Create(override).Error
	if err != nil {
		return fmt.Errorf("failed to upsert property option override: %w", err)
	}
	return nil
}

func (s *OptionService) GetPaymentConfiguration(tenantID uint) (*models.PaymentConfiguration, error) {
	var cfg models.PaymentConfiguration
	err := s.DB.Where("tenant_id = ?", tenantID).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load payment configuration: %w", err)
	}
	return &cfg, nil
}

// UpdatePaymentConfiguration writes the tenant policy, creating the row on
// first use.
func (s *OptionService) UpdatePaymentConfiguration(tenantID uint, cfg *models.PaymentConfiguration) error {
	cfg.TenantID = tenantID

	var existing models.PaymentConfiguration
	err := s.DB.Where("tenant_id = ?", tenantID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.DB.Create(cfg).Error; err != nil {
			return fmt.Errorf("failed to create payment configuration: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load payment configuration: %w", err)
	}

	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := s.DB.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to update payment configuration: %w", err)
	}
	return nil
}

func validPricingType(pt string) error {
	switch pt {
	case models.OptionPricingFlat, models.OptionPricingPerNight,
		models.OptionPricingPerGuest, models.OptionPricingPerGuestPerNight:
		return nil
	default:
		return fmt.Errorf("unknown option pricing type %q", pt)
	}
}

// PriceOptionLine applies the pricing-type formula for one option line.
// The switch is exhaustive over the supported types; an unknown type is a
// programming error surfaced at once rather than silently priced as flat.
func PriceOptionLine(pricingType string, unitPrice decimal.Decimal, quantity, guests, nights int) (decimal.Decimal, error) {
	qty := decimal.NewFromInt(int64(quantity))
	switch pricingType {
	case models.OptionPricingFlat:
		return unitPrice.Mul(qty), nil
	case models.OptionPricingPerNight:
		return unitPrice.Mul(qty).Mul(decimal.NewFromInt(int64(nights))), nil
	case models.OptionPricingPerGuest:
		return unitPrice.Mul(qty).Mul(decimal.NewFromInt(int64(guests))), nil
	case models.OptionPricingPerGuestPerNight:
		return unitPrice.Mul(qty).Mul(decimal.NewFromInt(int64(guests))).Mul(decimal.NewFromInt(int64(nights))), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown option pricing type %q", pricingType)
	}
}

// Skip reasons recorded in the quote's skippedOptions list.
const (
	SkipReasonNotFound        = "not_found"
	SkipReasonInactive        = "inactive"
	SkipReasonDisabledHere    = "disabled_for_property"
	SkipReasonGuestsBelowMin  = "guests_below_minimum"
	SkipReasonGuestsAboveMax  = "guests_above_maximum"
	SkipReasonNightsBelowMin  = "nights_below_minimum"
)

// priceSelectedOptions resolves each selection against the tenant definition
// plus the property override, silently dropping ineligible ones, and sums the
// surviving lines.
func (s *PricingService) priceSelectedOptions(tenantID, propertyID uint, selections []SelectedOption, guests, nights int) ([]OptionLine, []SkippedOption, decimal.Decimal, error) {
	if len(selections) == 0 {
		return nil, nil, decimal.Zero, nil
	}

	ids := make([]uint, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.OptionID)
	}

	var options []models.BookingOption
	if err := s.DB.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&options).Error; err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("failed to load booking options: %w", err)
	}
	byID := make(map[uint]*models.BookingOption, len(options))
	for i := range options {
		byID[options[i].ID] = &options[i]
	}

	var overrides []models.PropertyBookingOption
	if err := s.DB.Where("property_id = ? AND option_id IN ?", propertyID, ids).Find(&overrides).Error; err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("failed to load property option overrides: %w", err)
	}
	overrideByOption := make(map[uint]*models.PropertyBookingOption, len(overrides))
	for i := range overrides {
		overrideByOption[overrides[i].OptionID] = &overrides[i]
	}

	var lines []OptionLine
	var skipped []SkippedOption
	total := decimal.Zero

	for _, sel := range selections {
		option, ok := byID[sel.OptionID]
		if !ok {
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonNotFound})
			continue
		}
		if !option.IsActive {
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonInactive})
			continue
		}

		override := overrideByOption[sel.OptionID]
		if override != nil && !override.IsEnabled {
			// Not offered for this property; dropped, not rejected.
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonDisabledHere})
			continue
		}

		if option.MinGuests != nil && guests < *option.MinGuests {
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonGuestsBelowMin})
			continue
		}
		if option.MaxGuests != nil && guests > *option.MaxGuests {
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonGuestsAboveMax})
			continue
		}
		if option.MinNights != nil && nights < *option.MinNights {
			skipped = append(skipped, SkippedOption{OptionID: sel.OptionID, Reason: SkipReasonNightsBelowMin})
			continue
		}

		quantity := clampQuantity(sel.Quantity, option, override)

		unitPrice := decimal.NewFromFloat(option.PricePerUnit)
		if override != nil && override.CustomPrice != nil {
			unitPrice = decimal.NewFromFloat(*override.CustomPrice)
		}

		lineTotal, err := PriceOptionLine(option.PricingType, unitPrice, quantity, guests, nights)
		if err != nil {
			return nil, nil, decimal.Zero, err
		}
		lineTotal = lineTotal.Round(2)

		lines = append(lines, OptionLine{
			OptionID:   option.ID,
			Name:       option.Name,
			Quantity:   quantity,
			UnitPrice:  unitPrice.InexactFloat64(),
			TotalPrice: lineTotal.InexactFloat64(),
		})
		total = total.Add(lineTotal)
	}

	return lines, skipped, total, nil
}

// clampQuantity bounds the requested quantity by the option's limits, with
// property overrides taking precedence.
func clampQuantity(requested int, option *models.BookingOption, override *models.PropertyBookingOption) int {
	minQ := option.MinQuantity
	maxQ := 0
	if option.MaxQuantity != nil {
		maxQ = *option.MaxQuantity
	}
	if override != nil {
		if override.CustomMinQuantity != nil {
			minQ = *override.CustomMinQuantity
		}
		if override.CustomMaxQuantity != nil {
			maxQ = *override.CustomMaxQuantity
		}
	}

	q := requested
	if minQ > 0 && q < minQ {
		q = minQ
	}
	if maxQ > 0 && q > maxQ {
		q = maxQ
	}
	return q
}
