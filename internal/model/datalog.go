package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DataLog is one audited API request, stored in Postgres.
type DataLog struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	RequestID    string         `gorm:"column:request_id;index"`
	Method       string         `gorm:"column:method;size:10;index"`
	Path         string         `gorm:"column:path;not null"`
	Query        datatypes.JSON `gorm:"column:query"`
	RequestBody  datatypes.JSON `gorm:"column:request_body"`
	ResponseBody datatypes.JSON `gorm:"column:response_body"`
	StatusCode   int            `gorm:"column:status_code;index"`
	LatencyMs    int64          `gorm:"column:latency_ms"`
	ClientIP     string         `gorm:"column:client_ip"`
	UserAgent    string         `gorm:"column:user_agent"`
	UserID       string         `gorm:"column:user_id;index"`
	CreatedAt    time.Time      `gorm:"column:created_at;index;not null"`
}

func (DataLog) TableName() string {
	return "data_logs"
}
