package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
)

type envelopeProcessor interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

// Worker pumps activity events from the Pub/Sub subscription into the consumer.
type Worker struct {
	subscription *gcppubsub.Subscriber
	consumer     envelopeProcessor
	logg         *logger.Logger
}

// NewWorker builds the subscription pump.
func NewWorker(subscription *gcppubsub.Subscriber, consumer envelopeProcessor, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("activity subscription is required")
	}
	if consumer == nil {
		return nil, errors.New("activity consumer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{subscription: subscription, consumer: consumer, logg: logg}, nil
}

// Run consumes messages until the context is canceled. Malformed messages are
// acked so they do not clog the subscription; consumer failures nack for redelivery.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) (nack bool) {
	logCtx := w.logg.WithField(ctx, "message_id", msg.ID)

	eventType, envelope, err := decodeMessage(msg)
	if err != nil {
		w.logg.Warn(w.logg.WithField(logCtx, "error", err.Error()), "invalid activity message")
		return false
	}

	if err := w.consumer.Process(logCtx, eventType, envelope); err != nil {
		w.logg.Error(logCtx, "activity message processing failed", err)
		return true
	}
	return false
}

func decodeMessage(msg *gcppubsub.Message) (enums.OutboxEventType, outbox.PayloadEnvelope, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return "", envelope, fmt.Errorf("decode payload envelope: %w", err)
	}

	rawType := strings.TrimSpace(msg.Attributes["event_type"])
	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		return "", envelope, fmt.Errorf("event_type: %w", err)
	}

	if strings.TrimSpace(envelope.EventID) == "" {
		envelope.EventID = strings.TrimSpace(msg.Attributes["event_id"])
	}
	if envelope.EventID == "" {
		return "", envelope, errors.New("event_id missing")
	}
	return eventType, envelope, nil
}
