package model

import (
	"time"
)

// UsageRecord represents one metered data-usage sample for a SIM endpoint.
// Rows are written by the ingestion pipeline and are read-only to this service.
type UsageRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	TenantID     string    `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	CustomerName string    `json:"customer_name" gorm:"type:varchar(100);index"`
	ICCID        string    `json:"iccid" gorm:"type:varchar(22);index"`
	BytesUp      int64     `json:"bytes_up"`
	BytesDown    int64     `json:"bytes_down"`
	RecordedAt   time.Time `json:"recorded_at" gorm:"index"`
}
