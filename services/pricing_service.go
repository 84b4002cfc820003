// services/pricing_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"villa-backend/models"
)

// PricingService computes availability-independent price quotes: nightly
// rates with period overrides, long-stay discounts, tourist tax, deposit and
// a la carte options.
type PricingService struct {
	DB *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db}
}

// SelectedOption is one requested add-on, by id and quantity.
type SelectedOption struct {
	OptionID uint `json:"optionId" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// DailyRate is one breakdown row: the resolved price of a single night.
type DailyRate struct {
	Date           string  `json:"date"`
	BasePrice      float64 `json:"basePrice"`
	WeekendPremium float64 `json:"weekendPremium"`
	FinalPrice     float64 `json:"finalPrice"`
	PeriodName     string  `json:"periodName,omitempty"`
}

// OptionLine is one priced add-on in the quote.
type OptionLine struct {
	OptionID   uint    `json:"optionId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// SkippedOption records why a selected option was dropped from the quote.
// Skips are not errors: an option that is disabled for the property or whose
// eligibility bounds don't match is simply not offered.
type SkippedOption struct {
	OptionID uint   `json:"optionId"`
	Reason   string `json:"reason"`
}

// Quote is the full computed price breakdown returned prior to booking
// creation.
type Quote struct {
	Nights               int         `json:"nights"`
	BasePrice            float64     `json:"basePrice"`
	TotalAccommodation   float64     `json:"totalAccommodation"`
	WeekendPremium       float64     `json:"weekendPremium"`
	LongStayDiscount     float64     `json:"longStayDiscount"`
	CleaningFee          float64     `json:"cleaningFee"`
	TouristTax           float64     `json:"touristTax"`
	OptionsTotal         float64     `json:"optionsTotal"`
	DepositAmount        float64     `json:"depositAmount"`
	Subtotal             float64     `json:"subtotal"`
	Total                float64     `json:"total"`
	AveragePricePerNight float64     `json:"averagePricePerNight"`
	Breakdown            []DailyRate `json:"breakdown"`

	SelectedOptions []OptionLine    `json:"selectedOptions,omitempty"`
	SkippedOptions  []SkippedOption `json:"skippedOptions,omitempty"`
}

// QuoteRequest carries everything the pricing engine needs. Dates must be
// normalized to midnight; checkOut is exclusive of occupancy.
type QuoteRequest struct {
	TenantID   uint
	PropertyID uint
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int

	SelectedOptions []SelectedOption
}

// NightsBetween returns the number of occupied nights in [checkIn, checkOut).
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// isWeekendNight: Friday and Saturday nights carry the weekend premium.
func isWeekendNight(night time.Time) bool {
	wd := night.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// ResolvePeriods returns the active pricing periods overlapping the stay,
// ordered so the first period covering a night is the one to apply:
// property-specific before tenant-global, then by explicit priority.
func (s *PricingService) ResolvePeriods(tenantID, propertyID uint, checkIn, checkOut time.Time) ([]models.PricingPeriod, error) {
	var periods []models.PricingPeriod
	err := s.DB.
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("property_id = ? OR property_id IS NULL", propertyID).
		Where("start_date <= ? AND end_date >= ?", checkOut, checkIn).
		Order("property_id IS NULL, priority DESC, id ASC").
		Find(&periods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pricing periods: %w", err)
	}
	return periods, nil
}

// applicablePeriod picks the first period covering the night, relying on the
// resolver ordering. Rates of two periods are never blended on one night.
func applicablePeriod(periods []models.PricingPeriod, night time.Time) *models.PricingPeriod {
	for i := range periods {
		if periods[i].Covers(night) {
			return &periods[i]
		}
	}
	return nil
}

// EffectiveMinNights is the canonical minimum-stay resolution shared by the
// quote path and the availability path: the property default raised by every
// period whose range covers the arrival date.
func EffectiveMinNights(property *models.Property, periods []models.PricingPeriod, checkIn time.Time) int {
	required := property.MinNights
	for i := range periods {
		p := &periods[i]
		if p.MinNights != nil && p.Covers(checkIn) && *p.MinNights > required {
			required = *p.MinNights
		}
	}
	return required
}

// longStayDiscountRate: 10% from 28 nights, 5% from 7 nights.
func longStayDiscountRate(nights int) decimal.Decimal {
	switch {
	case nights >= 28:
		return decimal.NewFromFloat(0.10)
	case nights >= 7:
		return decimal.NewFromFloat(0.05)
	default:
		return decimal.Zero
	}
}

// CalculateTouristTax is a pure function of the tenant configuration, guest
// composition, night count and accommodation total. A nil or disabled
// configuration yields zero.
func CalculateTouristTax(cfg *models.PaymentConfiguration, adults, children, nights int, accommodation decimal.Decimal) decimal.Decimal {
	if cfg == nil || !cfg.TouristTaxEnabled {
		return decimal.Zero
	}

	taxableNights := nights
	if cfg.TouristTaxMaxNights != nil && taxableNights > *cfg.TouristTaxMaxNights {
		taxableNights = *cfg.TouristTaxMaxNights
	}

	switch cfg.TouristTaxType {
	case models.TouristTaxPerPersonPerNight:
		tax := decimal.NewFromFloat(cfg.TouristTaxAdultPrice).Mul(decimal.NewFromInt(int64(adults))).
			Add(decimal.NewFromFloat(cfg.TouristTaxChildPrice).Mul(decimal.NewFromInt(int64(children))))
		if cfg.TouristTaxPeriod == models.TouristTaxPeriodPerNight {
			tax = tax.Mul(decimal.NewFromInt(int64(taxableNights)))
		}
		return tax.Round(2)
	case models.TouristTaxPercentage:
		// AdultPrice doubles as the percentage rate in this mode.
		return accommodation.Mul(decimal.NewFromFloat(cfg.TouristTaxAdultPrice)).Div(decimal.NewFromInt(100)).Round(2)
	case models.TouristTaxFixedPerStay:
		return decimal.NewFromFloat(cfg.TouristTaxAdultPrice).Round(2)
	default:
		return decimal.Zero
	}
}

// CalculateDeposit derives the refundable deposit from the tenant policy and
// the final total. The deposit is informational: collected separately, never
// added into the total.
func CalculateDeposit(cfg *models.PaymentConfiguration, total decimal.Decimal) decimal.Decimal {
	if cfg == nil {
		return decimal.Zero
	}
	switch cfg.DepositType {
	case models.DepositTypePercentage:
		return total.Mul(decimal.NewFromFloat(cfg.DepositValue)).Div(decimal.NewFromInt(100)).Round(2)
	case models.DepositTypeFixed:
		return decimal.NewFromFloat(cfg.DepositValue).Round(2)
	default:
		return decimal.Zero
	}
}

// CalculateQuote walks every night of the stay, applies period overrides and
// weekend premiums, then layers discount, options, tourist tax and deposit on
// top of the accumulated accommodation total.
func (s *PricingService) CalculateQuote(req QuoteRequest) (*Quote, error) {
	var property models.Property
	err := s.DB.
		Where("tenant_id = ? AND status <> ?", req.TenantID, models.PropertyStatusArchived).
		First(&property, req.PropertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	guests := req.Adults + req.Children
	if guests > property.MaxGuests {
		return nil, &GuestCountExceededError{MaxGuests: property.MaxGuests}
	}

	nights := NightsBetween(req.CheckIn, req.CheckOut)
	if nights < 1 {
		return nil, ErrInvalidDateRange
	}

	periods, err := s.ResolvePeriods(req.TenantID, property.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	if required := EffectiveMinNights(&property, periods, req.CheckIn); nights < required {
		return nil, &MinimumStayViolationError{RequiredNights: required}
	}

	// Nightly walk over [checkIn, checkOut). Accumulation stays in decimal;
	// rounding happens once at aggregation, never per night.
	breakdown := make([]DailyRate, 0, nights)
	totalAccommodation := decimal.Zero
	totalWeekendPremium := decimal.Zero

	for night := req.CheckIn; night.Before(req.CheckOut); night = night.AddDate(0, 0, 1) {
		period := applicablePeriod(periods, night)

		basePrice := decimal.NewFromFloat(property.BasePrice)
		premiumRate := decimal.NewFromFloat(property.WeekendPremium)
		periodName := ""
		if period != nil {
			basePrice = decimal.NewFromFloat(period.BasePrice)
			if period.WeekendPremium != nil {
				premiumRate = decimal.NewFromFloat(*period.WeekendPremium)
			}
			periodName = period.Name
		}

		premium := decimal.Zero
		if isWeekendNight(night) {
			premium = premiumRate
		}

		finalPrice := basePrice.Add(premium)
		totalAccommodation = totalAccommodation.Add(finalPrice)
		totalWeekendPremium = totalWeekendPremium.Add(premium)

		breakdown = append(breakdown, DailyRate{
			Date:           night.Format("2006-01-02"),
			BasePrice:      basePrice.InexactFloat64(),
			WeekendPremium: premium.InexactFloat64(),
			FinalPrice:     finalPrice.InexactFloat64(),
			PeriodName:     periodName,
		})
	}

	discount := totalAccommodation.Mul(longStayDiscountRate(nights)).Round(2)
	cleaningFee := decimal.NewFromFloat(property.CleaningFee)

	lines, skipped, optionsTotal, err := s.priceSelectedOptions(req.TenantID, property.ID, req.SelectedOptions, guests, nights)
	if err != nil {
		return nil, err
	}

	cfg, err := s.paymentConfiguration(req.TenantID)
	if err != nil {
		return nil, err
	}

	touristTax := CalculateTouristTax(cfg, req.Adults, req.Children, nights, totalAccommodation)

	subtotal := totalAccommodation.Sub(discount).Add(cleaningFee).Add(optionsTotal).Round(2)
	total := subtotal.Add(touristTax).Round(2)
	deposit := CalculateDeposit(cfg, total)

	return &Quote{
		Nights:               nights,
		BasePrice:            property.BasePrice,
		TotalAccommodation:   totalAccommodation.Round(2).InexactFloat64(),
		WeekendPremium:       totalWeekendPremium.Round(2).InexactFloat64(),
		LongStayDiscount:     discount.InexactFloat64(),
		CleaningFee:          cleaningFee.Round(2).InexactFloat64(),
		TouristTax:           touristTax.InexactFloat64(),
		OptionsTotal:         optionsTotal.Round(2).InexactFloat64(),
		DepositAmount:        deposit.InexactFloat64(),
		Subtotal:             subtotal.InexactFloat64(),
		Total:                total.InexactFloat64(),
		AveragePricePerNight: total.Div(decimal.NewFromInt(int64(nights))).Round(2).InexactFloat64(),
		Breakdown:            breakdown,
		SelectedOptions:      lines,
		SkippedOptions:       skipped,
	}, nil
}

// paymentConfiguration loads the tenant policy; a missing row is not an
// error, it just disables tax and deposit.
func (s *PricingService) paymentConfiguration(tenantID uint) (*models.PaymentConfiguration, error) {
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
