package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
)

// Repository persists app feedback rows.
type Repository interface {
	Create(ctx context.Context, feedback *models.UserFeedback) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a feedback repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, feedback *models.UserFeedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// SubmitInput is one app rating.
type SubmitInput struct {
	UserID  uuid.UUID
	Rating  int
	Comment string
}

// Service records user feedback.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.UserFeedback, error)
}

type service struct {
	repo Repository
}

// NewService wires a feedback service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.UserFeedback, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	feedback := &models.UserFeedback{
		UserID: input.UserID,
		Rating: input.Rating,
	}
	if comment := strings.TrimSpace(input.Comment); comment != "" {
		feedback.Comment = &comment
	}
	if err := s.repo.Create(ctx, feedback); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert feedback")
	}
	return feedback, nil
}
