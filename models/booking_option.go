package models

import (
	"gorm.io/gorm"
)

// Option pricing types. The pricing formula switches exhaustively on these;
// adding a new type means extending pricing.PriceLine as well.
const (
	OptionPricingFlat             = "FLAT"
	OptionPricingPerNight         = "PER_NIGHT"
	OptionPricingPerGuest         = "PER_GUEST"
	OptionPricingPerGuestPerNight = "PER_GUEST_PER_NIGHT"
)

// BookingOption is a tenant-wide a la carte add-on definition.
type BookingOption struct {
	gorm.Model

	TenantID    uint   `json:"tenantId" gorm:"index;column:tenant_id"`
	Name        string `json:"name" gorm:"size:255"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	PricingType  string  `json:"pricingType" gorm:"size:32;default:FLAT"`
	PricePerUnit float64 `json:"pricePerUnit"`

	MinQuantity int  `json:"minQuantity" gorm:"default:0"`
	MaxQuantity *int `json:"maxQuantity,omitempty"`

	// Eligibility bounds; a selection outside them is silently skipped.
	MinGuests *int `json:"minGuests,omitempty"`
	MaxGuests *int `json:"maxGuests,omitempty"`
	MinNights *int `json:"minNights,omitempty"`

	IsActive bool `json:"isActive" gorm:"default:true"`
	Order    int  `json:"order" gorm:"default:0"`

	Tenant     Tenant                  `gorm:"foreignKey:TenantID" json:"-"`
	Properties []PropertyBookingOption `gorm:"foreignKey:OptionID" json:"properties,omitempty"`
}

// PropertyBookingOption overrides a tenant-wide option for one property.
// Absence of a row means the tenant-wide definition applies unmodified.
type PropertyBookingOption struct {
	gorm.Model

	PropertyID uint `json:"propertyId" gorm:"column:property_id;uniqueIndex:idx_property_option"`
	OptionID   uint `json:"optionId" gorm:"column:option_id;uniqueIndex:idx_property_option"`

	CustomPrice       *float64 `json:"customPrice,omitempty"`
	CustomMinQuantity *int     `json:"customMinQuantity,omitempty"`
	CustomMaxQuantity *int     `json:"customMaxQuantity,omitempty"`
	IsEnabled         bool     `json:"isEnabled" gorm:"default:true"`

	Property Property      `gorm:"foreignKey:PropertyID" json:"-"`
	Option   BookingOption `gorm:"foreignKey:OptionID" json:"-"`
}
