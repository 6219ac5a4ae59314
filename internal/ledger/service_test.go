package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, entry *models.LedgerEntry) error
	listFn      func(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error)
	addPointsFn func(ctx context.Context, userID uuid.UUID, delta int) (bool, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID, source, cursor, limit)
	}
	return nil, nil
}

func (f *fakeRepository) AddUserPoints(ctx context.Context, userID uuid.UUID, delta int) (bool, error) {
	if f.addPointsFn != nil {
		return f.addPointsFn(ctx, userID, delta)
	}
	return true, nil
}

func TestService_Award(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	userID := uuid.New()
	sourceID := uuid.New()

	var gotDelta int
	repo.addPointsFn = func(ctx context.Context, id uuid.UUID, delta int) (bool, error) {
		if id != userID {
			t.Fatalf("unexpected user %s", id)
		}
		gotDelta = delta
		return true, nil
	}

	var created *models.LedgerEntry
	repo.createFn = func(ctx context.Context, entry *models.LedgerEntry) error {
		created = entry
		return nil
	}

	got, err := svc.Award(context.Background(), nil, AwardInput{
		UserID:      userID,
		Source:      enums.LedgerSourceCheckIn,
		SourceID:    &sourceID,
		Points:      10,
		Description: "Daily check-in",
	})
	if err != nil {
		t.Fatalf("Award error: %v", err)
	}
	if gotDelta != 10 {
		t.Fatalf("unexpected balance delta %d", gotDelta)
	}
	if created == nil || created.PointsDelta != 10 || created.Source != enums.LedgerSourceCheckIn {
		t.Fatalf("unexpected ledger entry: %+v", created)
	}
	if created.SourceID == nil || *created.SourceID != sourceID {
		t.Fatalf("missing source id: %+v", created)
	}
	if got != created {
		t.Fatal("service should return created entry")
	}
}

func TestService_AwardValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input AwardInput
	}{
		{
			name:  "missing user id",
			input: AwardInput{Source: enums.LedgerSourceQuiz, Points: 5},
		},
		{
			name:  "non-positive points",
			input: AwardInput{UserID: uuid.New(), Source: enums.LedgerSourceQuiz, Points: 0},
		},
		{
			name:  "invalid source",
			input: AwardInput{UserID: uuid.New(), Source: enums.LedgerSource("bogus"), Points: 5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Award(context.Background(), nil, tc.input)
			if err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_SpendInsufficientBalance(t *testing.T) {
	repo := &fakeRepository{
		addPointsFn: func(ctx context.Context, userID uuid.UUID, delta int) (bool, error) {
			return false, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.Spend(context.Background(), nil, SpendInput{
		UserID:  uuid.New(),
		OrderID: uuid.New(),
		Points:  500,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != insufficientPointsMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestService_SpendWritesNegativeEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	var created *models.LedgerEntry
	repo.createFn = func(ctx context.Context, entry *models.LedgerEntry) error {
		created = entry
		return nil
	}

	_, err = svc.Spend(context.Background(), nil, SpendInput{
		UserID:      uuid.New(),
		OrderID:     orderID,
		Points:      120,
		Description: "Redeemed Reusable Bottle",
	})
	if err != nil {
		t.Fatalf("Spend error: %v", err)
	}
	if created == nil || created.PointsDelta != -120 {
		t.Fatalf("expected negative delta, got %+v", created)
	}
	if created.Source != enums.LedgerSourceStorePurchase {
		t.Fatalf("unexpected source %q", created.Source)
	}
	if created.SourceID == nil || *created.SourceID != orderID {
		t.Fatalf("missing order id: %+v", created)
	}
}

func TestService_ListEntriesPaginates(t *testing.T) {
	now := time.Now().UTC()
	entries := make([]models.LedgerEntry, 0, 26)
	for i := 0; i < 26; i++ {
		entries = append(entries, models.LedgerEntry{
			ID:        int64(100 - i),
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error) {
			if limit != pagination.DefaultLimit+1 {
				t.Fatalf("unexpected limit %d", limit)
			}
			return entries, nil
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	page, err := svc.ListEntries(context.Background(), uuid.New(), ListQuery{})
	if err != nil {
		t.Fatalf("ListEntries error: %v", err)
	}
	if len(page.Entries) != pagination.DefaultLimit {
		t.Fatalf("unexpected page size %d", len(page.Entries))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	last := page.Entries[len(page.Entries)-1]
	if cursor.ID != last.ID {
		t.Fatalf("cursor id %d does not match last entry %d", cursor.ID, last.ID)
	}
}

func TestService_ListEntriesRepoError(t *testing.T) {
	expectedErr := errors.New("boom")
	repo := &fakeRepository{
		listFn: func(ctx context.Context, userID uuid.UUID, source *enums.LedgerSource, cursor *pagination.Cursor, limit int) ([]models.LedgerEntry, error) {
			return nil, expectedErr
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.ListEntries(context.Background(), uuid.New(), ListQuery{}); !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error to bubble up, got %v", err)
	}
}
