package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// Repository manages events and RSVP/attendance rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	CreateAttendance(ctx context.Context, attendance *models.EventAttendance) error
	FindAttendance(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendance, error)
	ListAttendanceByUser(ctx context.Context, userID uuid.UUID) ([]models.EventAttendance, error)
	DeleteAttendance(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	MarkAttended(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an events repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("start_at >= ?", from).
		Order("start_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) CreateAttendance(ctx context.Context, attendance *models.EventAttendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *repository) FindAttendance(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendance, error) {
	var attendance models.EventAttendance
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *repository) ListAttendanceByUser(ctx context.Context, userID uuid.UUID) ([]models.EventAttendance, error) {
	var attendance []models.EventAttendance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&attendance).Error
	if err != nil {
		return nil, err
	}
	return attendance, nil
}

// DeleteAttendance removes a registered RSVP. Attended rows are immutable.
func (r *repository) DeleteAttendance(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, enums.AttendanceStatusRegistered).
		Delete(&models.EventAttendance{})
	return res.RowsAffected > 0, res.Error
}

// MarkAttended flips registered to attended exactly once.
func (r *repository) MarkAttended(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.EventAttendance{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, enums.AttendanceStatusRegistered).
		Updates(map[string]any{
			"status":      enums.AttendanceStatusAttended,
			"attended_at": at,
		})
	return res.RowsAffected > 0, res.Error
}
