// models/booking.go
package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusNoShow    = "NO_SHOW"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TenantID   uint `gorm:"column:tenant_id;uniqueIndex:idx_tenant_reference" json:"tenantId"`
	PropertyID uint `gorm:"index;column:property_id" json:"propertyId"`

	// e.g. VS24070001 — monthly sequence per tenant. Two tenants produce the
	// same reference string in the same month, so uniqueness is scoped to
	// the tenant.
	Reference string `gorm:"column:reference;uniqueIndex:idx_tenant_reference;size:32" json:"reference"`
	Status    string `gorm:"column:status;size:32;default:PENDING" json:"status"`

	// CheckOut is the departure morning: the night of checkOut itself is
	// not occupied.
	CheckIn  time.Time `gorm:"column:check_in;index" json:"checkIn"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"checkOut"`
	Nights   int       `gorm:"column:nights" json:"nights"`

	Adults   int `gorm:"column:adults;default:1" json:"adults"`
	Children int `gorm:"column:children;default:0" json:"children"`
	Infants  int `gorm:"column:infants;default:0" json:"infants"`
	Pets     int `gorm:"column:pets;default:0" json:"pets"`

	GuestFirstName  string `gorm:"size:150" json:"guestFirstName"`
	GuestLastName   string `gorm:"size:150" json:"guestLastName"`
	GuestEmail      string `gorm:"size:150;index" json:"guestEmail"`
	GuestPhone      string `gorm:"size:50" json:"guestPhone"`
	GuestCountry    string `gorm:"size:100" json:"guestCountry,omitempty"`
	GuestAddress    string `gorm:"type:text" json:"guestAddress,omitempty"`
	GuestNotes      string `gorm:"type:text" json:"guestNotes,omitempty"`
	SpecialRequests string `gorm:"type:text" json:"specialRequests,omitempty"`

	AccommodationTotal float64 `json:"accommodationTotal"`
	CleaningFee        float64 `json:"cleaningFee"`
	TouristTax         float64 `json:"touristTax"`
	DiscountAmount     float64 `json:"discountAmount"`
	OptionsTotal       float64 `json:"optionsTotal"`
	Subtotal           float64 `json:"subtotal"`
	Total              float64 `json:"total"`
	DepositAmount      float64 `json:"depositAmount"`
	CommissionAmount   float64 `json:"commissionAmount"`
	PayoutAmount       float64 `json:"payoutAmount"`

	// Lets an unauthenticated guest fetch their own booking.
	AccessToken string `gorm:"size:64;index" json:"-"`

	CancellationDate   *time.Time `json:"cancellationDate,omitempty"`
	CancellationReason string     `gorm:"size:255" json:"cancellationReason,omitempty"`

	Tenant   Tenant   `gorm:"foreignKey:TenantID" json:"-"`
	Property Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Options  []BookingSelectedOption `gorm:"foreignKey:BookingID" json:"options,omitempty"`
}

// IsTerminal reports whether the booking may no longer be mutated.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}

// BookingSelectedOption is the priced option line persisted with a booking.
type BookingSelectedOption struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index;column:booking_id" json:"-"`
	OptionID  uint `gorm:"column:option_id" json:"optionId"`

	Name       string  `gorm:"size:255" json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
}

// BookingSequence backs reference generation: one row per tenant per month,
// incremented atomically inside the booking-creation transaction.
type BookingSequence struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  uint   `gorm:"column:tenant_id;uniqueIndex:idx_tenant_month"`
	YearMonth string `gorm:"column:month_key;size:4;uniqueIndex:idx_tenant_month"`
	LastValue int    `gorm:"column:last_value"`
}
