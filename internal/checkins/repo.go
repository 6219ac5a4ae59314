package checkins

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// Repository manages daily check-in rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, checkin *models.DailyCheckin) error
	Exists(ctx context.Context, userID uuid.UUID, date string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a check-in repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, checkin *models.DailyCheckin) error {
	return r.db.WithContext(ctx).Create(checkin).Error
}

func (r *repository) Exists(ctx context.Context, userID uuid.UUID, date string) (bool, error) {
	var checkin models.DailyCheckin
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND checkin_date = ?", userID, date).
		First(&checkin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
