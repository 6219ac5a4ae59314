package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a campus sustainability event students can RSVP to.
type Event struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string    `gorm:"column:title;not null"`
	Description  *string   `gorm:"column:description"`
	StartAt      time.Time `gorm:"column:start_at;not null;index"`
	Location     *string   `gorm:"column:location"`
	PosterURL    *string   `gorm:"column:poster_url"`
	Organizer    *string   `gorm:"column:organizer"`
	PointsReward int       `gorm:"column:points_reward;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
