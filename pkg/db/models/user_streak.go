package models

import (
	"time"

	"github.com/google/uuid"
)

// UserStreak tracks the consecutive-day check-in counter. LastCheckinDate is
// a calendar date in the campus time zone.
type UserStreak struct {
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CurrentStreak   int       `gorm:"column:current_streak;not null;default:0"`
	LastCheckinDate *string   `gorm:"column:last_checkin_date;type:date"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
