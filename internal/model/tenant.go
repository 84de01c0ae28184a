package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents a tenant account, the primary isolation boundary.
// Tenants form a forest: a reseller tenant may carry sub-tenants whose
// ParentTenantID points back at it. Visibility of a tenant covers its own
// rows plus the rows of its direct children.
type Tenant struct {
	ID             string         `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name           string         `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	ParentTenantID *string        `json:"parent_tenant_id,omitempty" gorm:"type:varchar(64);index"`
	Active         bool           `json:"active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}
