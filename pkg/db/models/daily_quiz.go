package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DailyQuiz is the single question published for a campus date. Options is a
// JSON array of answer strings; the correct index never leaves the server.
type DailyQuiz struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Question           string          `gorm:"column:question;not null"`
	Options            json.RawMessage `gorm:"column:options;type:jsonb;not null"`
	CorrectOptionIndex int             `gorm:"column:correct_option_index;not null"`
	PointsReward       int             `gorm:"column:points_reward;not null;default:0"`
	AvailableDate      string          `gorm:"column:available_date;type:date;not null;uniqueIndex"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the historical table name.
func (DailyQuiz) TableName() string {
	return "daily_quizzes"
}
