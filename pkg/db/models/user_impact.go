package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserImpact aggregates the physical-world impact counters for a user.
// Weights are exact decimals so repeated small increments never drift.
type UserImpact struct {
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey"`
	TotalPlasticKg decimal.Decimal `gorm:"column:total_plastic_kg;type:numeric(12,3);not null;default:0"`
	CO2SavedKg     decimal.Decimal `gorm:"column:co2_saved_kg;type:numeric(12,3);not null;default:0"`
	EventsAttended int             `gorm:"column:events_attended;not null;default:0"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
