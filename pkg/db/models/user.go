package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// User represents the canonical identity entity. Point balances are
// denormalized here and only ever move together with a ledger entry.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StudentID      string         `gorm:"column:student_id;type:text;not null;uniqueIndex"`
	FullName       string         `gorm:"column:full_name;not null"`
	Department     *string        `gorm:"column:department"`
	Mobile         *string        `gorm:"column:mobile"`
	Email          *string        `gorm:"column:email"`
	PasswordHash   string         `gorm:"column:password_hash;not null"`
	Role           enums.UserRole `gorm:"column:role;type:user_role_enum;not null;default:student"`
	ProfileImgURL  *string        `gorm:"column:profile_img_url"`
	CurrentPoints  int            `gorm:"column:current_points;not null;default:0"`
	LifetimePoints int            `gorm:"column:lifetime_points;not null;default:0"`
	TickType       enums.TickType `gorm:"column:tick_type;type:tick_type_enum;not null;default:none"`
	JoinedAt       time.Time      `gorm:"column:joined_at;autoCreateTime"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
