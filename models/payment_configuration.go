package models

import (
	"gorm.io/gorm"
)

const (
	TouristTaxPerPersonPerNight = "PER_PERSON_PER_NIGHT"
	TouristTaxPercentage        = "PERCENTAGE_OF_ACCOMMODATION"
	TouristTaxFixedPerStay      = "FIXED_PER_STAY"

	TouristTaxPeriodPerNight = "PER_NIGHT"
	TouristTaxPeriodPerStay  = "PER_STAY"

	DepositTypeFixed      = "FIXED"
	DepositTypePercentage = "PERCENTAGE"
)

// PaymentConfiguration holds tenant-level tourist tax and deposit policy.
// One row per tenant; a missing row means no tax and no deposit.
type PaymentConfiguration struct {
	gorm.Model

	TenantID uint `json:"tenantId" gorm:"uniqueIndex;column:tenant_id"`

	TouristTaxEnabled    bool    `json:"touristTaxEnabled" gorm:"default:false"`
	TouristTaxType       string  `json:"touristTaxType,omitempty" gorm:"size:64"`
	TouristTaxAdultPrice float64 `json:"touristTaxAdultPrice"`
	TouristTaxChildPrice float64 `json:"touristTaxChildPrice"`
	TouristTaxPeriod     string  `json:"touristTaxPeriod,omitempty" gorm:"size:32"`
	TouristTaxMaxNights  *int    `json:"touristTaxMaxNights,omitempty"`

	DepositType  string  `json:"depositType,omitempty" gorm:"size:32"`
	DepositValue float64 `json:"depositValue"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}
