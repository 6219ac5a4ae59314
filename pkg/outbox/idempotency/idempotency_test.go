package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingStore struct {
	markerTaken bool
	failWith    error

	setKey     string
	setTTL     time.Duration
	deletedKey string
}

func (s *recordingStore) Get(context.Context, string) (string, error) { return "", nil }

func (s *recordingStore) SetNX(_ context.Context, key string, _ any, ttl time.Duration) (bool, error) {
	s.setKey = key
	s.setTTL = ttl
	if s.failWith != nil {
		return false, s.failWith
	}
	return !s.markerTaken, nil
}

func (s *recordingStore) IdempotencyKey(scope, id string) string {
	return "eco:idempotency:" + scope + ":" + id
}

func (s *recordingStore) Del(_ context.Context, keys ...string) error {
	if len(keys) > 0 {
		s.deletedKey = keys[0]
	}
	return nil
}

func newTestManager(t *testing.T, store *recordingStore, ttl time.Duration) *Manager {
	t.Helper()
	manager, err := NewManager(store, ttl)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager
}

func TestFirstDeliveryClaimsMarker(t *testing.T) {
	store := &recordingStore{}
	manager := newTestManager(t, store, 72*time.Hour)

	eventID := uuid.New()
	already, err := manager.CheckAndMarkProcessed(context.Background(), "activity-worker", eventID)
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if already {
		t.Fatal("first delivery must not report already processed")
	}
	wantKey := "eco:idempotency:evt:processed:activity-worker:" + eventID.String()
	if store.setKey != wantKey {
		t.Fatalf("marker key %q, want %q", store.setKey, wantKey)
	}
	if store.setTTL != 72*time.Hour {
		t.Fatalf("marker ttl %v, want 72h", store.setTTL)
	}
}

func TestRedeliveryIsReportedAsProcessed(t *testing.T) {
	manager := newTestManager(t, &recordingStore{markerTaken: true}, time.Hour)

	already, err := manager.CheckAndMarkProcessed(context.Background(), "activity-worker", uuid.New())
	if err != nil {
		t.Fatalf("CheckAndMarkProcessed: %v", err)
	}
	if !already {
		t.Fatal("redelivery should report already processed")
	}
}

func TestStoreFailureSurfaces(t *testing.T) {
	manager := newTestManager(t, &recordingStore{failWith: errors.New("redis down")}, time.Hour)

	if _, err := manager.CheckAndMarkProcessed(context.Background(), "activity-worker", uuid.New()); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestDeleteReleasesMarker(t *testing.T) {
	store := &recordingStore{}
	manager := newTestManager(t, store, time.Hour)

	eventID := uuid.New()
	if err := manager.Delete(context.Background(), "activity-worker", eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := "eco:idempotency:evt:processed:activity-worker:" + eventID.String()
	if store.deletedKey != want {
		t.Fatalf("deleted %q, want %q", store.deletedKey, want)
	}
}

func TestNewManagerRejectsBadInputs(t *testing.T) {
	if _, err := NewManager(nil, time.Hour); err == nil {
		t.Fatal("nil store must be rejected")
	}
	if _, err := NewManager(&recordingStore{}, -time.Second); err == nil {
		t.Fatal("negative ttl must be rejected")
	}
}
