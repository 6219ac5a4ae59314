package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

// UserRegisteredEvent signals a freshly provisioned account.
type UserRegisteredEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	StudentID  string    `json:"student_id"`
	FullName   string    `json:"full_name"`
	Department *string   `json:"department,omitempty"`
}

// CheckinRecordedEvent is emitted when a daily check-in lands.
type CheckinRecordedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	CheckinDate   string    `json:"checkin_date"`
	PointsAwarded int       `json:"points_awarded"`
	CurrentStreak int       `json:"current_streak"`
}

// ChallengeSubmittedEvent is emitted when a photo proof is accepted.
type ChallengeSubmittedEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	ChallengeID    uuid.UUID `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	SubmissionURL  *string   `json:"submission_url,omitempty"`
	PointsAwarded  int       `json:"points_awarded"`
}

// QuizAnsweredEvent is emitted when a daily quiz answer is graded.
type QuizAnsweredEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	IsCorrect     bool      `json:"is_correct"`
	PointsAwarded int       `json:"points_awarded"`
}

// EventRSVPedEvent is emitted on a new event registration.
type EventRSVPedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	EventID    uuid.UUID `json:"event_id"`
	EventTitle string    `json:"event_title"`
}

// EventAttendedEvent is emitted when attendance is confirmed at the venue.
type EventAttendedEvent struct {
	UserID        uuid.UUID `json:"user_id"`
	EventID       uuid.UUID `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	PointsAwarded int       `json:"points_awarded"`
	AttendedAt    time.Time `json:"attended_at"`
}

// PlasticLoggedEvent is emitted when recycled plastic is recorded.
type PlasticLoggedEvent struct {
	UserID        uuid.UUID       `json:"user_id"`
	Item          string          `json:"item"`
	Quantity      int             `json:"quantity"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	PointsAwarded int             `json:"points_awarded"`
}

// PointsRedeemedEvent is emitted when a storefront order debits points.
type PointsRedeemedEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	PointsSpent int       `json:"points_spent"`
}

// PointsAwardedEvent is the generic award notification carried alongside the
// specific activity events. Source matches the ledger entry's source.
type PointsAwardedEvent struct {
	UserID      uuid.UUID          `json:"user_id"`
	Source      enums.LedgerSource `json:"source"`
	PointsDelta int                `json:"points_delta"`
	Description string             `json:"description"`
}

// StreakResetEvent is emitted by the nightly job when a lapsed streak is zeroed.
type StreakResetEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	PreviousStreak int       `json:"previous_streak"`
	ResetOn        string    `json:"reset_on"`
}
