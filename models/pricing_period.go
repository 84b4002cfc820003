package models

import (
	"time"

	"gorm.io/gorm"
)

// PricingPeriod is a time-bounded rate override. PropertyID nil means the
// period applies to every property of the tenant; property-specific periods
// outrank global ones, then Priority breaks ties.
type PricingPeriod struct {
	gorm.Model

	TenantID   uint   `json:"tenantId" gorm:"index;column:tenant_id"`
	PropertyID *uint  `json:"propertyId,omitempty" gorm:"index;column:property_id"`
	Name       string `json:"name" gorm:"size:255"`

	// Inclusive on both ends.
	StartDate time.Time `json:"startDate" gorm:"index"`
	EndDate   time.Time `json:"endDate" gorm:"index"`

	BasePrice      float64  `json:"basePrice"`
	WeekendPremium *float64 `json:"weekendPremium,omitempty"`
	MinNights      *int     `json:"minNights,omitempty"`

	Priority int  `json:"priority" gorm:"default:0"`
	IsActive bool `json:"isActive" gorm:"default:true"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}

// Covers reports whether the given night falls inside the period range.
func (p *PricingPeriod) Covers(night time.Time) bool {
	return !night.Before(p.StartDate) && !night.After(p.EndDate)
}
