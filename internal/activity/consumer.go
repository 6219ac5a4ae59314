package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const activityConsumerName = "activity"

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer projects published domain events into user_activity_log rows.
// Each event type becomes one human-readable feed entry.
type Consumer struct {
	repo    Repository
	manager idempotencyChecker
	logg    *logger.Logger
}

// NewConsumer builds the activity feed consumer.
func NewConsumer(repo Repository, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{repo: repo, manager: manager, logg: logg}, nil
}

// Process turns one outbox envelope into a feed row, once.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	entry, err := buildEntry(eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build activity entry", err)
		return err
	}
	if entry == nil {
		c.logg.Info(logCtx, "event not handled by activity consumer")
		return nil
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, activityConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	if err := c.repo.Create(ctx, entry); err != nil {
		c.logg.Error(logCtx, "failed to insert activity entry", err)
		_ = c.manager.Delete(ctx, activityConsumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "activity entry recorded")
	return nil
}

func buildEntry(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (*models.UserActivityLog, error) {
	switch eventType {
	case enums.EventUserRegistered:
		var data payloads.UserRegisteredEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		return entry(data.UserID, "registration", "Joined EcoCampus", envelope.Data), nil
	case enums.EventCheckinRecorded:
		var data payloads.CheckinRecordedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Daily check-in, streak day %d", data.CurrentStreak)
		return entry(data.UserID, "check_in", desc, envelope.Data), nil
	case enums.EventChallengeSubmitted:
		var data payloads.ChallengeSubmittedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Submitted proof for %q", data.ChallengeTitle)
		return entry(data.UserID, "challenge_submission", desc, envelope.Data), nil
	case enums.EventQuizAnswered:
		var data payloads.QuizAnsweredEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := "Answered the daily quiz"
		if data.IsCorrect {
			desc = fmt.Sprintf("Answered the daily quiz correctly, +%d points", data.PointsAwarded)
		}
		return entry(data.UserID, "quiz_answer", desc, envelope.Data), nil
	case enums.EventEventRSVPed:
		var data payloads.EventRSVPedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Registered for %q", data.EventTitle)
		return entry(data.UserID, "event_rsvp", desc, envelope.Data), nil
	case enums.EventEventAttended:
		var data payloads.EventAttendedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Attended %q", data.EventTitle)
		return entry(data.UserID, "event_attendance", desc, envelope.Data), nil
	case enums.EventPlasticLogged:
		var data payloads.PlasticLoggedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Recycled %dx %s", data.Quantity, data.Item)
		return entry(data.UserID, "plastic_log", desc, envelope.Data), nil
	case enums.EventPointsRedeemed:
		var data payloads.PointsRedeemedEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Redeemed %s for %d points", data.ProductName, data.PointsSpent)
		return entry(data.UserID, "redemption", desc, envelope.Data), nil
	case enums.EventStreakReset:
		var data payloads.StreakResetEvent
		if err := decode(envelope, &data); err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Streak reset after %d days", data.PreviousStreak)
		return entry(data.UserID, "streak_reset", desc, envelope.Data), nil
	default:
		return nil, nil
	}
}

func decode(envelope outbox.PayloadEnvelope, target interface{}) error {
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payload missing")
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func entry(userID uuid.UUID, actionType, description string, metadata json.RawMessage) *models.UserActivityLog {
	return &models.UserActivityLog{
		UserID:      userID,
		ActionType:  actionType,
		Description: description,
		Metadata:    metadata,
	}
}
