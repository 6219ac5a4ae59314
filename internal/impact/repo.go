package impact

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
)

// Repository manages the aggregated physical-impact counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, userID uuid.UUID) (*models.UserImpact, error)
	EnsureRow(ctx context.Context, userID uuid.UUID) error
	AddPlastic(ctx context.Context, userID uuid.UUID, weightKg, co2Kg decimal.Decimal) error
	IncrementEventsAttended(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an impact repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, userID uuid.UUID) (*models.UserImpact, error) {
	var impact models.UserImpact
	err := r.db.WithContext(ctx).First(&impact, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.UserImpact{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &impact, nil
}

func (r *repository) EnsureRow(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO user_impact (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING", userID).Error
}

// AddPlastic increments the weight counters atomically in SQL so concurrent
// logs never lose an increment.
func (r *repository) AddPlastic(ctx context.Context, userID uuid.UUID, weightKg, co2Kg decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.UserImpact{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_plastic_kg": gorm.Expr("total_plastic_kg + ?", weightKg),
			"co2_saved_kg":     gorm.Expr("co2_saved_kg + ?", co2Kg),
		}).Error
}

func (r *repository) IncrementEventsAttended(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.UserImpact{}).
		Where("user_id = ?", userID).
		UpdateColumn("events_attended", gorm.Expr("events_attended + 1")).Error
}
