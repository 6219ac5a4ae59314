package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/impact"
	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	events        []models.Event
	attendance    map[uuid.UUID]*models.EventAttendance
	created       *models.EventAttendance
	createErr     error
	markedFlipped bool
	deleted       bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{attendance: map[uuid.UUID]*models.EventAttendance{}}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error) {
	return f.events, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			return &f.events[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateAttendance(ctx context.Context, attendance *models.EventAttendance) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = attendance
	return nil
}

func (f *fakeRepo) FindAttendance(ctx context.Context, eventID, userID uuid.UUID) (*models.EventAttendance, error) {
	return f.attendance[eventID], nil
}

func (f *fakeRepo) ListAttendanceByUser(ctx context.Context, userID uuid.UUID) ([]models.EventAttendance, error) {
	rows := make([]models.EventAttendance, 0, len(f.attendance))
	for _, row := range f.attendance {
		rows = append(rows, *row)
	}
	return rows, nil
}

func (f *fakeRepo) DeleteAttendance(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	row := f.attendance[eventID]
	if row == nil || row.Status != enums.AttendanceStatusRegistered {
		return false, nil
	}
	f.deleted = true
	delete(f.attendance, eventID)
	return true, nil
}

func (f *fakeRepo) MarkAttended(ctx context.Context, eventID, userID uuid.UUID, at time.Time) (bool, error) {
	row := f.attendance[eventID]
	if row == nil || row.Status != enums.AttendanceStatusRegistered {
		return false, nil
	}
	row.Status = enums.AttendanceStatusAttended
	row.AttendedAt = &at
	f.markedFlipped = true
	return true, nil
}

type fakeImpactRepo struct {
	eventsAttended int
}

func (f *fakeImpactRepo) WithTx(tx *gorm.DB) impact.Repository { return f }

func (f *fakeImpactRepo) Get(ctx context.Context, userID uuid.UUID) (*models.UserImpact, error) {
	return &models.UserImpact{UserID: userID}, nil
}

func (f *fakeImpactRepo) EnsureRow(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeImpactRepo) AddPlastic(ctx context.Context, userID uuid.UUID, weightKg, co2Kg decimal.Decimal) error {
	return nil
}

func (f *fakeImpactRepo) IncrementEventsAttended(ctx context.Context, userID uuid.UUID) error {
	f.eventsAttended++
	return nil
}

type fakeLedger struct {
	awards []ledger.AwardInput
}

func (f *fakeLedger) Award(ctx context.Context, tx *gorm.DB, input ledger.AwardInput) (*models.LedgerEntry, error) {
	f.awards = append(f.awards, input)
	return &models.LedgerEntry{PointsDelta: input.Points}, nil
}

func (f *fakeLedger) Spend(ctx context.Context, tx *gorm.DB, input ledger.SpendInput) (*models.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeLedger) ListEntries(ctx context.Context, userID uuid.UUID, query ledger.ListQuery) (*ledger.EntriesPage, error) {
	return &ledger.EntriesPage{}, nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

func buildService(t *testing.T, repo *fakeRepo) (Service, *fakeLedger, *fakeOutbox, *fakeImpactRepo) {
	t.Helper()
	at := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	clock, err := campus.NewClockAt("Asia/Kolkata", at)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	ledgerSvc := &fakeLedger{}
	outboxSvc := &fakeOutbox{}
	impactRepo := &fakeImpactRepo{}
	svc, err := NewService(ServiceParams{
		DB:         stubTxRunner{},
		Repo:       repo,
		ImpactRepo: impactRepo,
		Ledger:     ledgerSvc,
		Outbox:     outboxSvc,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, ledgerSvc, outboxSvc, impactRepo
}

func upcomingEvent() models.Event {
	return models.Event{
		ID:           uuid.New(),
		Title:        "Campus Clean-up Drive",
		StartAt:      time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
		PointsReward: 50,
	}
}

func TestListMarksAttendingEvents(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	repo.attendance[event.ID] = &models.EventAttendance{
		EventID: event.ID,
		Status:  enums.AttendanceStatusRegistered,
	}
	svc, _, _, _ := buildService(t, repo)

	views, err := svc.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || !views[0].Attending {
		t.Fatalf("unexpected views %+v", views)
	}
	if views[0].Status == nil || *views[0].Status != enums.AttendanceStatusRegistered {
		t.Fatalf("missing status: %+v", views[0])
	}
}

func TestRSVPCreatesRegistration(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	svc, _, outboxSvc, _ := buildService(t, repo)

	userID := uuid.New()
	if err := svc.RSVP(context.Background(), event.ID, userID); err != nil {
		t.Fatalf("rsvp: %v", err)
	}
	if repo.created == nil || repo.created.Status != enums.AttendanceStatusRegistered {
		t.Fatalf("registration not created: %+v", repo.created)
	}
	if len(outboxSvc.events) != 1 || outboxSvc.events[0].EventType != enums.EventEventRSVPed {
		t.Fatalf("unexpected events %+v", outboxSvc.events)
	}
}

func TestRSVPDuplicateIsConflict(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	repo.createErr = errors.New(`duplicate key value violates unique constraint "uq_event_attendance_event_user"`)
	svc, _, _, _ := buildService(t, repo)

	err := svc.RSVP(context.Background(), event.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRSVPPastEvent(t *testing.T) {
	event := upcomingEvent()
	event.StartAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	svc, _, _, _ := buildService(t, repo)

	err := svc.RSVP(context.Background(), event.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelRSVP(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	repo.attendance[event.ID] = &models.EventAttendance{
		EventID: event.ID,
		Status:  enums.AttendanceStatusRegistered,
	}
	svc, _, _, _ := buildService(t, repo)

	if err := svc.CancelRSVP(context.Background(), event.ID, uuid.New()); err != nil {
		t.Fatalf("cancel rsvp: %v", err)
	}
	if !repo.deleted {
		t.Fatal("registration not removed")
	}
}

func TestCancelRSVPAfterAttendance(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	repo.attendance[event.ID] = &models.EventAttendance{
		EventID: event.ID,
		Status:  enums.AttendanceStatusAttended,
	}
	svc, _, _, _ := buildService(t, repo)

	err := svc.CancelRSVP(context.Background(), event.ID, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestMarkAttendedGrantsRewardOnce(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	repo.attendance[event.ID] = &models.EventAttendance{
		EventID: event.ID,
		Status:  enums.AttendanceStatusRegistered,
	}
	svc, ledgerSvc, outboxSvc, impactRepo := buildService(t, repo)

	userID := uuid.New()
	result, err := svc.MarkAttended(context.Background(), MarkAttendedInput{
		EventID: event.ID,
		UserID:  userID,
		AdminID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("mark attended: %v", err)
	}
	if result.PointsAwarded != 50 {
		t.Fatalf("unexpected points %d", result.PointsAwarded)
	}
	if len(ledgerSvc.awards) != 1 || ledgerSvc.awards[0].Source != enums.LedgerSourceEvent {
		t.Fatalf("unexpected awards %+v", ledgerSvc.awards)
	}
	if impactRepo.eventsAttended != 1 {
		t.Fatalf("events attended not bumped: %d", impactRepo.eventsAttended)
	}
	if len(outboxSvc.events) != 1 || outboxSvc.events[0].EventType != enums.EventEventAttended {
		t.Fatalf("unexpected events %+v", outboxSvc.events)
	}

	// Second scan flips nothing and must not double-award.
	_, err = svc.MarkAttended(context.Background(), MarkAttendedInput{
		EventID: event.ID,
		UserID:  userID,
		AdminID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(ledgerSvc.awards) != 1 {
		t.Fatalf("reward granted twice: %+v", ledgerSvc.awards)
	}
}

func TestMarkAttendedWithoutRSVP(t *testing.T) {
	event := upcomingEvent()
	repo := newFakeRepo()
	repo.events = []models.Event{event}
	svc, _, _, _ := buildService(t, repo)

	_, err := svc.MarkAttended(context.Background(), MarkAttendedInput{
		EventID: event.ID,
		UserID:  uuid.New(),
		AdminID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
