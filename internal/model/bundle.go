package model

import (
	"time"

	"gorm.io/gorm"
)

// Bundle represents a billed data bundle assigned to a customer of a tenant
type Bundle struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     string         `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	CustomerName string         `json:"customer_name" gorm:"type:varchar(100);index"`
	Name         string         `json:"name" gorm:"type:varchar(100)"`
	DataLimitMB  int64          `json:"data_limit_mb"`
	PriceCents   int64          `json:"price_cents"`
	Currency     string         `json:"currency" gorm:"type:varchar(3);default:'EUR'"`
	StartsAt     time.Time      `json:"starts_at"`
	ExpiresAt    time.Time      `json:"expires_at" gorm:"index"`
	Active       bool           `json:"active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
