package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
)

type memoryIdemStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryIdemStore() *memoryIdemStore {
	return &memoryIdemStore{data: map[string]string{}}
}

func (m *memoryIdemStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryIdemStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key], _ = value.(string)
	return true, nil
}

func (m *memoryIdemStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("idem:%s:%s", scope, id)
}

func (m *memoryIdemStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func checkinRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkins", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/checkins"}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestRouteTTLTiers(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		pattern string
		ttl     time.Duration
		covered bool
	}{
		{"redemption gets long ttl", http.MethodPost, "/api/v1/store/redemptions", criticalIdempotencyTTL, true},
		{"attendance scan gets long ttl", http.MethodPost, "/api/admin/v1/events/abc/attendance", criticalIdempotencyTTL, true},
		{"submission review gets long ttl", http.MethodPost, "/api/admin/v1/challenges/submissions/12/review", criticalIdempotencyTTL, true},
		{"checkin gets default ttl", http.MethodPost, "/api/v1/checkins", defaultIdempotencyTTL, true},
		{"challenge submission gets default ttl", http.MethodPost, "/api/v1/challenges/abc/submissions", defaultIdempotencyTTL, true},
		{"quiz submission gets default ttl", http.MethodPost, "/api/v1/quizzes/today/submissions", defaultIdempotencyTTL, true},
		{"login is uncovered", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"get is uncovered", http.MethodGet, "/api/v1/checkins", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ttl, covered := routeTTL(tc.method, tc.pattern)
			if covered != tc.covered {
				t.Fatalf("covered=%v, want %v", covered, tc.covered)
			}
			if covered && ttl != tc.ttl {
				t.Fatalf("ttl=%v, want %v", ttl, tc.ttl)
			}
		})
	}
}

func TestIdempotencyRejectsMissingHeader(t *testing.T) {
	var called bool
	handler := Idempotency(newMemoryIdemStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkinRequest(`{}`, ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without the header")
	}
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	store := newMemoryIdemStore()
	var calls int
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"points_awarded":10}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkinRequest(`{}`, "key-1"))
	if first.Code != http.StatusCreated {
		t.Fatalf("first call: expected 201, got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, checkinRequest(`{}`, "key-1"))

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if replay.Code != http.StatusCreated {
		t.Fatalf("replay: expected stored 201, got %d", replay.Code)
	}
	if got := replay.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("replay lost content type, got %q", got)
	}
	if strings.TrimSpace(replay.Body.String()) != `{"points_awarded":10}` {
		t.Fatalf("replay body mismatch: %s", replay.Body.String())
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryIdemStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), checkinRequest(`{"mood":"good"}`, "key-2"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkinRequest(`{"mood":"great"}`, "key-2"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
}
