package streaks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// Repository manages the per-user consecutive check-in counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, userID uuid.UUID) (*models.UserStreak, error)
	Upsert(ctx context.Context, streak *models.UserStreak) error
	ListStale(ctx context.Context, cutoffDate string, limit int) ([]models.UserStreak, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a streaks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, userID uuid.UUID) (*models.UserStreak, error) {
	var streak models.UserStreak
	err := r.db.WithContext(ctx).First(&streak, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserStreak{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

func (r *repository) Upsert(ctx context.Context, streak *models.UserStreak) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_streak", "last_checkin_date", "updated_at"}),
	}).Create(streak).Error
}

// ListStale returns streaks whose holders have not checked in since before
// the cutoff date and still carry a positive counter.
func (r *repository) ListStale(ctx context.Context, cutoffDate string, limit int) ([]models.UserStreak, error) {
	var stale []models.UserStreak
	err := r.db.WithContext(ctx).
		Where("current_streak > 0").
		Where("last_checkin_date IS NULL OR last_checkin_date < ?", cutoffDate).
		Limit(limit).
		Find(&stale).Error
	if err != nil {
		return nil, err
	}
	return stale, nil
}

func (r *repository) Reset(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserStreak{}).
		Where("user_id = ?", userID).
		UpdateColumn("current_streak", 0).Error
}
