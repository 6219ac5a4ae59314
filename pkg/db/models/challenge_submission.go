package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// ChallengeSubmission is a user's photo proof for a challenge. At most one
// submission per (challenge, user); moderation status never touches points.
type ChallengeSubmission struct {
	ID            int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	ChallengeID   uuid.UUID              `gorm:"column:challenge_id;type:uuid;not null;uniqueIndex:uq_challenge_submissions_challenge_user"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_challenge_submissions_challenge_user"`
	SubmissionURL *string                `gorm:"column:submission_url"`
	Status        enums.SubmissionStatus `gorm:"column:status;type:submission_status_enum;not null;default:pending"`
	ReviewedBy    *uuid.UUID             `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt    *time.Time             `gorm:"column:reviewed_at"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
