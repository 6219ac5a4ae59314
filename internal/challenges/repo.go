package challenges

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// Repository manages challenges and their photo submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.Challenge, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error)
	CreateSubmission(ctx context.Context, submission *models.ChallengeSubmission) error
	FindSubmission(ctx context.Context, id int64) (*models.ChallengeSubmission, error)
	ListSubmissionsByUser(ctx context.Context, userID uuid.UUID) ([]models.ChallengeSubmission, error)
	UpdateSubmissionStatus(ctx context.Context, submission *models.ChallengeSubmission) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a challenges repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *repository) CreateSubmission(ctx context.Context, submission *models.ChallengeSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *repository) FindSubmission(ctx context.Context, id int64) (*models.ChallengeSubmission, error) {
	var submission models.ChallengeSubmission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) ListSubmissionsByUser(ctx context.Context, userID uuid.UUID) ([]models.ChallengeSubmission, error) {
	var submissions []models.ChallengeSubmission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repository) UpdateSubmissionStatus(ctx context.Context, submission *models.ChallengeSubmission) error {
	return r.db.WithContext(ctx).
		Model(&models.ChallengeSubmission{}).
		Where("id = ?", submission.ID).
		Updates(map[string]any{
			"status":      submission.Status,
			"reviewed_by": submission.ReviewedBy,
			"reviewed_at": submission.ReviewedAt,
		}).Error
}
