package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyCheckin records one campus-day check-in. CheckinDate is a calendar
// date in the campus time zone, not a timestamp.
type DailyCheckin struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_daily_checkins_user_date"`
	CheckinDate   string    `gorm:"column:checkin_date;type:date;not null;uniqueIndex:uq_daily_checkins_user_date"`
	PointsAwarded int       `gorm:"column:points_awarded;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
