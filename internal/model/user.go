package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the user model stored in the database
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password      string         `json:"-" gorm:"type:varchar(255)"`
	Role          string         `json:"role" gorm:"type:varchar(32);not null;default:'tenant'"` // 'platform_admin', 'tenant' or 'customer'
	TenantID      string         `json:"tenant_id" gorm:"type:varchar(64);index"`
	CustomerScope *string        `json:"customer_scope,omitempty" gorm:"type:varchar(100)"` // Set only for customer-role users
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
