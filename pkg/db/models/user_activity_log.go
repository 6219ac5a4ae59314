package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserActivityLog is the denormalized activity feed row built by the
// activity worker from published domain events. Eventually consistent with
// the ledger, never written in request transactions.
type UserActivityLog struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_user_activity_log_user_created"`
	ActionType  string          `gorm:"column:action_type;not null"`
	Description string          `gorm:"column:description;not null"`
	Metadata    json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime;index:idx_user_activity_log_user_created"`
}

// TableName keeps the historical table name.
func (UserActivityLog) TableName() string {
	return "user_activity_log"
}
