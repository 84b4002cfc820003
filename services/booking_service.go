// services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"villa-backend/models"
)

// Platform commission withheld from the owner payout at booking creation.
// Quotes deliberately do not include it; it is a persistence-time concern.
const commissionRate = 0.15

// BookingService sequences availability check -> price quote -> reference
// generation -> persistence. A booking row is only ever created from a
// validated, available, fully priced quote.
type BookingService struct {
	DB           *gorm.DB
	Pricing      *PricingService
	Availability *AvailabilityService
}

func NewBookingService(db *gorm.DB, pricing *PricingService, availability *AvailabilityService) *BookingService {
	return &BookingService{DB: db, Pricing: pricing, Availability: availability}
}

// CreateBookingRequest is the orchestrator input. Dates are midnight-
// normalized; CheckOut is the departure morning.
type CreateBookingRequest struct {
	TenantID   uint
	PropertyID uint
	CheckIn    time.Time
	CheckOut   time.Time

	Adults   int
	Children int
	Infants  int
	Pets     int

	GuestFirstName  string
	GuestLastName   string
	GuestEmail      string
	GuestPhone      string
	GuestCountry    string
	GuestAddress    string
	GuestNotes      string
	SpecialRequests string

	SelectedOptions []SelectedOption
}

// CreateBooking runs the full gate-then-persist sequence. The availability
// check outside the transaction fails fast; the decisive overlap re-check
// happens inside the transaction with the property row locked, which closes
// the read-then-write race between two concurrent requests.
func (s *BookingService) CreateBooking(req CreateBookingRequest) (*models.Booking, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrInvalidDateRange
	}

	// Capacity is validated before the availability gate: a party that can
	// never fit gets the capacity error even when the dates also conflict.
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
	if guests := req.Adults + req.Children; guests > property.MaxGuests {
		return nil, &GuestCountExceededError{MaxGuests: property.MaxGuests}
	}

	result, err := s.Availability.CheckAvailability(req.TenantID, req.PropertyID, req.CheckIn, req.CheckOut, nil)
	if err != nil {
		return nil, err
	}
	if !result.Available {
		if result.RequiredMinNights > 0 {
			return nil, &MinimumStayViolationError{RequiredNights: result.RequiredMinNights}
		}
		return nil, &BookingConflictError{Conflicts: result.Conflicts}
	}

	quote, err := s.Pricing.CalculateQuote(QuoteRequest{
		TenantID:        req.TenantID,
		PropertyID:      req.PropertyID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Adults:          req.Adults,
		Children:        req.Children,
		SelectedOptions: req.SelectedOptions,
	})
	if err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(quote.Total)
	commission := total.Mul(decimal.NewFromFloat(commissionRate)).Round(2)
	payout := total.Sub(commission)

	booking := &models.Booking{
		TenantID:   req.TenantID,
		PropertyID: req.PropertyID,
		Status:     models.BookingStatusPending,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Nights:     quote.Nights,

		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
		Pets:     req.Pets,

		GuestFirstName:  req.GuestFirstName,
		GuestLastName:   req.GuestLastName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		GuestCountry:    req.GuestCountry,
		GuestAddress:    req.GuestAddress,
		GuestNotes:      req.GuestNotes,
		SpecialRequests: req.SpecialRequests,

		AccommodationTotal: quote.TotalAccommodation,
		CleaningFee:        quote.CleaningFee,
		TouristTax:         quote.TouristTax,
		DiscountAmount:     quote.LongStayDiscount,
		OptionsTotal:       quote.OptionsTotal,
		Subtotal:           quote.Subtotal,
		Total:              quote.Total,
		DepositAmount:      quote.DepositAmount,
		CommissionAmount:   commission.InexactFloat64(),
		PayoutAmount:       payout.InexactFloat64(),

		AccessToken: uuid.NewString(),
	}

	for _, line := range quote.SelectedOptions {
		booking.Options = append(booking.Options, models.BookingSelectedOption{
			OptionID:   line.OptionID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
		})
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		// Serialize creates per property: everyone racing for the same
		// property queues on this row lock.
		var property models.Property
		if err := lockForUpdate(tx).
			Where("tenant_id = ?", req.TenantID).
			First(&property, req.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return err
		}

		// Re-validate overlap now that we hold the lock; a concurrent
		// request may have inserted a booking or a blocked period between
		// the gate and here.
		conflicting, err := overlappingBookings(tx, req.PropertyID, req.CheckIn, req.CheckOut, nil)
		if err != nil {
			return err
		}
		if len(conflicting) > 0 {
			return &BookingConflictError{Conflicts: bookingConflicts(conflicting)}
		}

		blocked, err := overlappingBlockedPeriods(tx, req.PropertyID, req.CheckIn, req.CheckOut)
		if err != nil {
			return err
		}
		if len(blocked) > 0 {
			conflicts := make([]Conflict, 0, len(blocked))
			for _, bp := range blocked {
				conflicts = append(conflicts, Conflict{Type: ConflictTypeBlocked, ID: bp.ID, StartDate: bp.StartDate, EndDate: bp.EndDate})
			}
			return &BookingConflictError{Conflicts: conflicts}
		}

		reference, err := nextReference(tx, req.TenantID, time.Now().UTC())
		if err != nil {
			return err
		}
		booking.Reference = reference

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return booking, nil
}

// nextReference yields "VS" + yy + mm + 4-digit sequence, scoped per tenant
// and month. The sequence row is locked and incremented inside the caller's
// transaction, so references are monotonic and gap-free under sequential
// creation without the string-sort scan race.
func nextReference(tx *gorm.DB, tenantID uint, now time.Time) (string, error) {
	yearMonth := now.Format("0601")

	var seq models.BookingSequence
	err := lockForUpdate(tx).
		Where("tenant_id = ? AND month_key = ?", tenantID, yearMonth).
		First(&seq).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = models.BookingSequence{TenantID: tenantID, YearMonth: yearMonth, LastValue: 1}
		if createErr := tx.Create(&seq).Error; createErr != nil {
			if !isDuplicateKey(createErr) {
				return "", fmt.Errorf("failed to create booking sequence: %w", createErr)
			}
			// Lost the race to create this month's row; lock the winner's.
			if err := lockForUpdate(tx).
				Where("tenant_id = ? AND month_key = ?", tenantID, yearMonth).
				First(&seq).Error; err != nil {
				return "", fmt.Errorf("failed to load booking sequence: %w", err)
			}
			seq.LastValue++
			if err := tx.Save(&seq).Error; err != nil {
				return "", fmt.Errorf("failed to advance booking sequence: %w", err)
			}
		}
	case err != nil:
		return "", fmt.Errorf("failed to load booking sequence: %w", err)
	default:
		seq.LastValue++
		if err := tx.Save(&seq).Error; err != nil {
			return "", fmt.Errorf("failed to advance booking sequence: %w", err)
		}
	}

	return fmt.Sprintf("VS%s%04d", yearMonth, seq.LastValue), nil
}

// lockForUpdate takes a FOR UPDATE row lock on dialects that support it.
// SQLite serializes writers on its own and rejects the clause.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}

// Get returns a tenant-scoped booking with its property and option lines.
func (s *BookingService) Get(tenantID, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("Property").
		Preload("Options").
		Where("tenant_id = ?", tenantID).
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

// GetByReference serves the unauthenticated guest flow; the access token
// issued at creation is required.
func (s *BookingService) GetByReference(tenantID uint, reference, accessToken string) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("Property").
		Preload("Options").
		Where("tenant_id = ? AND reference = ? AND access_token = ?", tenantID, reference, accessToken).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}
	return &booking, nil
}

// Confirm moves PENDING -> CONFIRMED; anything else is an invalid transition.
func (s *BookingService) Confirm(tenantID, id uint) (*models.Booking, error) {
	booking, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending {
		return nil, ErrInvalidStateTransition
	}
	if err := s.DB.Model(booking).Update("status", models.BookingStatusConfirmed).Error; err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}
	return booking, nil
}

// Cancel moves PENDING or CONFIRMED -> CANCELLED, recording when and why.
// CANCELLED and COMPLETED are terminal.
func (s *BookingService) Cancel(tenantID, id uint, reason string) (*models.Booking, error) {
	booking, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusConfirmed {
		return nil, ErrInvalidStateTransition
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":              models.BookingStatusCancelled,
		"cancellation_date":   now,
		"cancellation_reason": reason,
	}
	if err := s.DB.Model(booking).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	return booking, nil
}

// GuestDetailsUpdate carries the mutable contact fields. Monetary fields and
// dates are immutable after creation.
type GuestDetailsUpdate struct {
	GuestFirstName  *string `json:"guestFirstName,omitempty"`
	GuestLastName   *string `json:"guestLastName,omitempty"`
	GuestEmail      *string `json:"guestEmail,omitempty"`
	GuestPhone      *string `json:"guestPhone,omitempty"`
	GuestCountry    *string `json:"guestCountry,omitempty"`
	GuestAddress    *string `json:"guestAddress,omitempty"`
	GuestNotes      *string `json:"guestNotes,omitempty"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

func (s *BookingService) UpdateGuestDetails(tenantID, id uint, upd GuestDetailsUpdate) (*models.Booking, error) {
	booking, err := s.Get(tenantID, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, ErrInvalidStateTransition
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("guest_first_name", upd.GuestFirstName)
	set("guest_last_name", upd.GuestLastName)
	set("guest_email", upd.GuestEmail)
	set("guest_phone", upd.GuestPhone)
	set("guest_country", upd.GuestCountry)
	set("guest_address", upd.GuestAddress)
	set("guest_notes", upd.GuestNotes)
	set("special_requests", upd.SpecialRequests)

	if len(updates) == 0 {
		return booking, nil
	}
	if err := s.DB.Model(booking).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return booking, nil
}

// BookingFilters narrows and pages the tenant's booking list.
type BookingFilters struct {
	PropertyID *uint
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string

	Page      int
	Limit     int
	SortBy    string // createdAt | checkIn | checkOut | total
	SortOrder string // asc | desc
}

var bookingSortColumns = map[string]string{
	"createdAt": "created_at",
	"checkIn":   "check_in",
	"checkOut":  "check_out",
	"total":     "total",
}

// List applies the filters and returns one page plus the total row count.
func (s *BookingService) List(tenantID uint, filters BookingFilters) ([]models.Booking, int64, error) {
	q := s.DB.Model(&models.Booking{}).Where("tenant_id = ?", tenantID)

	if filters.PropertyID != nil {
		q = q.Where("property_id = ?", *filters.PropertyID)
	}
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.StartDate != nil {
		q = q.Where("check_in >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		q = q.Where("check_in <= ?", *filters.EndDate)
	}
	if filters.Search != "" {
		like := "%" + strings.ToLower(filters.Search) + "%"
		q = q.Where(
			"LOWER(reference) LIKE ? OR LOWER(guest_first_name) LIKE ? OR LOWER(guest_last_name) LIKE ? OR LOWER(guest_email) LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	limit := filters.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	column, ok := bookingSortColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		direction = "ASC"
	}

	var bookings []models.Booking
	err := q.
		Preload("Property").
		Preload("Options").
		Order(column + " " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

// BookingStats summarizes a tenant's bookings for the dashboard.
type BookingStats struct {
	TotalBookings     int64   `json:"totalBookings"`
	ConfirmedBookings int64   `json:"confirmedBookings"`
	CancelledBookings int64   `json:"cancelledBookings"`
	CancellationRate  float64 `json:"cancellationRate"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageStay       float64 `json:"averageStay"`
}

func (s *BookingService) Stats(tenantID uint, propertyID *uint, from, to *time.Time) (*BookingStats, error) {
	base := func() *gorm.DB {
		q := s.DB.Model(&models.Booking{}).Where("tenant_id = ?", tenantID)
		if propertyID != nil {
			q = q.Where("property_id = ?", *propertyID)
		}
		if from != nil {
			q = q.Where("check_in >= ?", *from)
		}
		if to != nil {
			q = q.Where("check_in <= ?", *to)
		}
		return q
	}

	stats := &BookingStats{}
	if err := base().Count(&stats.TotalBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	if err := base().Where("status = ?", models.BookingStatusConfirmed).Count(&stats.ConfirmedBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count confirmed bookings: %w", err)
	}
	if err := base().Where("status = ?", models.BookingStatusCancelled).Count(&stats.CancelledBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to count cancelled bookings: %w", err)
	}
	if stats.TotalBookings > 0 {
		stats.CancellationRate = float64(stats.CancelledBookings) / float64(stats.TotalBookings) * 100
	}

	type aggregates struct {
		Revenue float64 `gorm:"column:revenue"`
		AvgStay float64 `gorm:"column:avg_stay"`
	}
	var agg aggregates
	err := base().
		Where("status IN ?", []string{models.BookingStatusConfirmed, models.BookingStatusCompleted}).
		Select("COALESCE(SUM(total), 0) AS revenue, COALESCE(AVG(nights), 0) AS avg_stay").
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate booking revenue: %w", err)
	}
	stats.TotalRevenue = agg.Revenue
	stats.AverageStay = agg.AvgStay

	return stats, nil
}
