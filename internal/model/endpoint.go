package model

import (
	"time"

	"gorm.io/gorm"
)

// Endpoint represents a SIM device endpoint belonging to a tenant's customer
type Endpoint struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     string         `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	CustomerName string         `json:"customer_name" gorm:"type:varchar(100);index"`
	ICCID        string         `json:"iccid" gorm:"type:varchar(22);uniqueIndex"`
	IMSI         string         `json:"imsi" gorm:"type:varchar(15)"`
	MSISDN       string         `json:"msisdn" gorm:"type:varchar(15)"`
	Label        string         `json:"label" gorm:"type:varchar(100)"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'active'"` // 'active', 'suspended', 'terminated'
	LastSeenAt   *time.Time     `json:"last_seen_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
