package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const uniqueAttendanceConstraint = "uq_event_attendance_event_user"

// Service manages event listings, RSVPs, and venue attendance.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]EventView, error)
	RSVP(ctx context.Context, eventID, userID uuid.UUID) error
	CancelRSVP(ctx context.Context, eventID, userID uuid.UUID) error
	MarkAttended(ctx context.Context, input MarkAttendedInput) (*AttendResult, error)
}

// EventView is an event plus the caller's RSVP state.
type EventView struct {
	Event     models.Event            `json:"event"`
	Attending bool                    `json:"attending"`
	Status    *enums.AttendanceStatus `json:"status,omitempty"`
}

// MarkAttendedInput identifies the scan performed by an organizer.
type MarkAttendedInput struct {
	EventID uuid.UUID
	UserID  uuid.UUID
	AdminID uuid.UUID
}

// AttendResult reports the confirmed attendance.
type AttendResult struct {
	EventID       uuid.UUID `json:"event_id"`
	UserID        uuid.UUID `json:"user_id"`
	PointsAwarded int       `json:"points_awarded"`
	AttendedAt    time.Time `json:"attended_at"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db     txRunner
	repo   Repository
	impact impact.Repository
	ledger ledger.Service
	outbox outboxEmitter
	clock  *campus.Clock
}

// ServiceParams bundles the dependencies for the events service.
type ServiceParams struct {
	DB         txRunner
	Repo       Repository
	ImpactRepo impact.Repository
	Ledger     ledger.Service
	Outbox     outboxEmitter
	Clock      *campus.Clock
}

// NewService wires an events service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("events repository is required")
	}
	if params.ImpactRepo == nil {
		return nil, fmt.Errorf("impact repository is required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service is required")
	}
	if params.Clock == nil {
		return nil, fmt.Errorf("campus clock is required")
	}
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		impact: params.ImpactRepo,
		ledger: params.Ledger,
		outbox: params.Outbox,
		clock:  params.Clock,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]EventView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	upcoming, err := s.repo.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list events")
	}
	attendance, err := s.repo.ListAttendanceByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list attendance")
	}

	byEvent := make(map[uuid.UUID]models.EventAttendance, len(attendance))
	for _, row := range attendance {
		byEvent[row.EventID] = row
	}

	views := make([]EventView, 0, len(upcoming))
	for _, event := range upcoming {
		view := EventView{Event: event}
		if row, ok := byEvent[event.ID]; ok {
			view.Attending = true
			status := row.Status
			view.Status = &status
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) RSVP(ctx context.Context, eventID, userID uuid.UUID) error {
	if eventID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id and user id are required")
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event")
	}
	if event.StartAt.Before(s.clock.Now()) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "event has already started")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		attendance := &models.EventAttendance{
			EventID: event.ID,
			UserID:  userID,
			Status:  enums.AttendanceStatusRegistered,
		}
		if err := repo.CreateAttendance(ctx, attendance); err != nil {
			if db.IsUniqueViolation(err, uniqueAttendanceConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "already registered for this event")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert attendance")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEventRSVPed,
			AggregateType: enums.AggregateEventAttendance,
			AggregateID:   event.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleStudent)},
			Data: payloads.EventRSVPedEvent{
				UserID:     userID,
				EventID:    event.ID,
				EventTitle: event.Title,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit rsvp event")
		}
		return nil
	})
}

func (s *service) CancelRSVP(ctx context.Context, eventID, userID uuid.UUID) error {
	if eventID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id and user id are required")
	}

	attendance, err := s.repo.FindAttendance(ctx, eventID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load attendance")
	}
	if attendance == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no registration for this event")
	}
	if attendance.Status == enums.AttendanceStatusAttended {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "attendance already confirmed")
	}

	removed, err := s.repo.DeleteAttendance(ctx, eventID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete attendance")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "attendance already confirmed")
	}
	return nil
}

// MarkAttended flips the RSVP to attended from an organizer QR scan and
// grants the event reward exactly once.
func (s *service) MarkAttended(ctx context.Context, input MarkAttendedInput) (*AttendResult, error) {
	if input.EventID == uuid.Nil || input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id and user id are required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}

	event, err := s.repo.FindByID(ctx, input.EventID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load event")
	}

	attendance, err := s.repo.FindAttendance(ctx, input.EventID, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load attendance")
	}
	if attendance == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "student has not registered for this event")
	}

	now := time.Now().UTC()
	var result *AttendResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		flipped, err := repo.MarkAttended(ctx, input.EventID, input.UserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark attended")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "attendance already confirmed")
		}

		if event.PointsReward > 0 {
			if _, err := s.ledger.Award(ctx, tx, ledger.AwardInput{
				UserID:      input.UserID,
				Source:      enums.LedgerSourceEvent,
				SourceID:    &event.ID,
				Points:      event.PointsReward,
				Description: fmt.Sprintf("Attended: %s", event.Title),
			}); err != nil {
				return err
			}
		}

		if err := s.impact.WithTx(tx).IncrementEventsAttended(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bump events attended")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEventAttended,
			AggregateType: enums.AggregateEventAttendance,
			AggregateID:   event.ID,
			Actor:         &outbox.ActorRef{UserID: input.AdminID, Role: string(enums.UserRoleAdmin)},
			Data: payloads.EventAttendedEvent{
				UserID:        input.UserID,
				EventID:       event.ID,
				EventTitle:    event.Title,
				PointsAwarded: event.PointsReward,
				AttendedAt:    now,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit attendance event")
		}

		result = &AttendResult{
			EventID:       event.ID,
			UserID:        input.UserID,
			PointsAwarded: event.PointsReward,
			AttendedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
