package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// LedgerEntry records an immutable signed points movement for a user.
// Positive deltas are awards, negative deltas are store redemptions.
type LedgerEntry struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:idx_points_ledger_user_created"`
	Source      enums.LedgerSource `gorm:"column:source;type:ledger_source_enum;not null"`
	SourceID    *uuid.UUID         `gorm:"column:source_id;type:uuid"`
	PointsDelta int                `gorm:"column:points_delta;not null"`
	Description string             `gorm:"column:description;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime;index:idx_points_ledger_user_created"`
}

// TableName keeps the historical table name.
func (LedgerEntry) TableName() string {
	return "points_ledger"
}
