package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
)

func openOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ddl := `CREATE TABLE outbox_events (
		id text PRIMARY KEY,
		event_type text NOT NULL,
		aggregate_type text NOT NULL,
		aggregate_id text NOT NULL,
		payload text NOT NULL,
		created_at datetime,
		published_at datetime,
		attempt_count integer NOT NULL DEFAULT 0,
		last_error text
	)`
	if err := conn.Exec(ddl).Error; err != nil {
		t.Fatalf("create outbox table: %v", err)
	}
	return conn
}

type quizAnsweredData struct {
	UserID uuid.UUID `json:"user_id"`
}

// Aggregate ids repeat across actions: every answer to today's quiz shares the
// quiz id, every check-in by one user shares the user id. Each Emit must queue
// its own row.
func TestEmitQueuesOneRowPerAction(t *testing.T) {
	conn := openOutboxDB(t)
	svc := NewService(NewRepository(conn), nil)

	quizID := uuid.New()
	for _, answeringUser := range []uuid.UUID{uuid.New(), uuid.New()} {
		err := svc.Emit(context.Background(), conn, DomainEvent{
			EventType:     enums.EventQuizAnswered,
			AggregateType: enums.AggregateQuizSubmission,
			AggregateID:   quizID,
			Actor:         &ActorRef{UserID: answeringUser, Role: string(enums.UserRoleStudent)},
			Data:          quizAnsweredData{UserID: answeringUser},
			Version:       1,
		})
		if err != nil {
			t.Fatalf("emit for user %s: %v", answeringUser, err)
		}
	}

	var rows []models.OutboxEvent
	if err := conn.Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("load outbox rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both answers queued, got %d rows", len(rows))
	}

	seen := map[string]bool{}
	for _, row := range rows {
		if row.AggregateID != quizID {
			t.Fatalf("unexpected aggregate id %s", row.AggregateID)
		}
		var envelope PayloadEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if envelope.EventID == "" {
			t.Fatal("envelope must carry an event id for consumer dedup")
		}
		if seen[envelope.EventID] {
			t.Fatalf("event id %s reused across rows", envelope.EventID)
		}
		seen[envelope.EventID] = true
	}
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventQuizAnswered,
		AggregateType: enums.AggregateQuizSubmission,
		AggregateID:   uuid.New(),
	})
	if err == nil {
		t.Fatal("emit outside a transaction must fail")
	}
}
