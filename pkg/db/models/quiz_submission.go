package models

import (
	"time"

	"github.com/google/uuid"
)

// QuizSubmission stores a user's graded quiz answer. The result is computed
// server-side once and never changes afterwards.
type QuizSubmission struct {
	ID                  int64     `gorm:"column:id;primaryKey;autoIncrement"`
	QuizID              uuid.UUID `gorm:"column:quiz_id;type:uuid;not null;uniqueIndex:uq_quiz_submissions_quiz_user"`
	UserID              uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_quiz_submissions_quiz_user"`
	SelectedOptionIndex int       `gorm:"column:selected_option_index;not null"`
	IsCorrect           bool      `gorm:"column:is_correct;not null"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime"`
}
