package models

import (
	"time"

	"gorm.io/gorm"
)

// BlockedPeriod is owner-declared unavailability, independent of bookings.
type BlockedPeriod struct {
	gorm.Model

	PropertyID uint      `json:"propertyId" gorm:"index;column:property_id"`
	StartDate  time.Time `json:"startDate" gorm:"index"`
	EndDate    time.Time `json:"endDate" gorm:"index"`
	Reason     string    `json:"reason,omitempty" gorm:"size:255"`
	Notes      string    `json:"notes,omitempty" gorm:"type:text"`

	Property Property `gorm:"foreignKey:PropertyID" json:"-"`
}
