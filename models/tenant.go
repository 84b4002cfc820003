package models

import (
	"gorm.io/gorm"
)

type Tenant struct {
	gorm.Model

	Name      string `json:"name" gorm:"size:255"`
	Subdomain string `json:"subdomain" gorm:"uniqueIndex;size:100"`
	IsActive  bool   `json:"isActive" gorm:"default:true"`
}

// StaffUser is seeded for each tenant so the admin UI has an account to log
// in with. Authentication itself lives outside this service.
type StaffUser struct {
	gorm.Model

	TenantID uint   `json:"tenantId" gorm:"index;column:tenant_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email" gorm:"uniqueIndex;size:150"`
	Password string `json:"-" gorm:"size:255"`
	Role     string `json:"role" gorm:"size:64;default:owner"`

	Tenant Tenant `gorm:"foreignKey:TenantID" json:"-"`
}
