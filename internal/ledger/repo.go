package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/ecocampus-app/ecocampus-backend/pkg/pagination"
)

// Repository manages the append-only points ledger and the denormalized
// balances that must move with it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error)
	AddUserPoints(ctx context.Context, userID uuid.UUID, delta int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if source != nil {
		q = q.Where("source = ?", *source)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AddUserPoints applies a signed delta to a user's balances in one UPDATE.
// Awards bump both current and lifetime; debits touch current only and
// report false when the balance cannot cover them.
func (r *repository) AddUserPoints(ctx context.Context, userID uuid.UUID, delta int) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	if delta >= 0 {
		res := q.Updates(map[string]any{
			"current_points":  gorm.Expr("current_points + ?", delta),
			"lifetime_points": gorm.Expr("lifetime_points + ?", delta),
		})
		return res.RowsAffected > 0, res.Error
	}
	res := q.Where("current_points >= ?", -delta).
		UpdateColumn("current_points", gorm.Expr("current_points + ?", delta))
	return res.RowsAffected > 0, res.Error
}
