package models

import (
	"time"

	"github.com/google/uuid"
)

// Challenge is a photo-proof task worth a fixed points reward.
type Challenge struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string    `gorm:"column:title;not null"`
	Description  *string   `gorm:"column:description"`
	PointsReward int       `gorm:"column:points_reward;not null;default:0"`
	Type         *string   `gorm:"column:type"`
	Frequency    *string   `gorm:"column:frequency"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
