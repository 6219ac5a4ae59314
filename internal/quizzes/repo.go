package quizzes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// Repository manages daily quizzes and graded submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByDate(ctx context.Context, date string) (*models.DailyQuiz, error)
	CreateSubmission(ctx context.Context, submission *models.QuizSubmission) error
	FindSubmission(ctx context.Context, quizID, userID uuid.UUID) (*models.QuizSubmission, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quizzes repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByDate(ctx context.Context, date string) (*models.DailyQuiz, error) {
	var quiz models.DailyQuiz
	if err := r.db.WithContext(ctx).Where("available_date = ?", date).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *repository) CreateSubmission(ctx context.Context, submission *models.QuizSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *repository) FindSubmission(ctx context.Context, quizID, userID uuid.UUID) (*models.QuizSubmission, error) {
	var submission models.QuizSubmission
	err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}
