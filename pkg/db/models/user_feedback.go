package models

import (
	"time"

	"github.com/google/uuid"
)

// UserFeedback is a free-form app rating left by a user.
type UserFeedback struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the historical table name.
func (UserFeedback) TableName() string {
	return "user_feedback"
}
