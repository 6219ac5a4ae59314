package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// EventAttendance is the RSVP row for (event, user). Status flips to attended
// exactly once when an organizer scans the student's QR at the venue.
type EventAttendance struct {
	ID         int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	EventID    uuid.UUID              `gorm:"column:event_id;type:uuid;not null;uniqueIndex:uq_event_attendance_event_user"`
	UserID     uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_event_attendance_event_user"`
	Status     enums.AttendanceStatus `gorm:"column:status;type:attendance_status_enum;not null;default:registered"`
	AttendedAt *time.Time             `gorm:"column:attended_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the historical table name.
func (EventAttendance) TableName() string {
	return "event_attendance"
}
