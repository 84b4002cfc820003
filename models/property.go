package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PropertyStatusDraft     = "DRAFT"
	PropertyStatusPublished = "PUBLISHED"
	PropertyStatusArchived  = "ARCHIVED"
)

type Property struct {
	gorm.Model

	TenantID uint   `json:"tenantId" gorm:"index;column:tenant_id"`
	Name     string `json:"name" gorm:"size:255"`
	Status   string `json:"status" gorm:"size:32;default:DRAFT"`

	BasePrice       float64 `json:"basePrice"`
	WeekendPremium  float64 `json:"weekendPremium"`
	CleaningFee     float64 `json:"cleaningFee"`
	SecurityDeposit float64 `json:"securityDeposit"`
	MinNights       int     `json:"minNights" gorm:"default:1"`
	MaxGuests       int     `json:"maxGuests" gorm:"default:2"`

	Address string `json:"address" gorm:"type:text"`
	City    string `json:"city" gorm:"size:150"`

	// amenity key -> enabled, e.g. {"petsAllowed": true}
	Amenities datatypes.JSONMap `json:"amenities,omitempty"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}
