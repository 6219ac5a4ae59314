package quizzes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

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
	quiz       *models.DailyQuiz
	submission *models.QuizSubmission
	created    *models.QuizSubmission
	createErr  error
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByDate(ctx context.Context, date string) (*models.DailyQuiz, error) {
	if f.quiz != nil && f.quiz.AvailableDate == date {
		return f.quiz, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateSubmission(ctx context.Context, submission *models.QuizSubmission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = submission
	return nil
}

func (f *fakeRepo) FindSubmission(ctx context.Context, quizID, userID uuid.UUID) (*models.QuizSubmission, error) {
	return f.submission, nil
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

func todayQuiz(t *testing.T) *models.DailyQuiz {
	t.Helper()
	options, err := json.Marshal([]string{"Reduce", "Reuse", "Recycle", "Refuse"})
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}
	return &models.DailyQuiz{
		ID:                 uuid.New(),
		Question:           "Which R comes first in the waste hierarchy?",
		Options:            options,
		CorrectOptionIndex: 3,
		PointsReward:       20,
		AvailableDate:      "2026-03-15",
	}
}

func buildService(t *testing.T, repo *fakeRepo) (Service, *fakeLedger, *fakeOutbox) {
	t.Helper()
	at := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	clock, err := campus.NewClockAt("Asia/Kolkata", at)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	ledgerSvc := &fakeLedger{}
	outboxSvc := &fakeOutbox{}
	svc, err := NewService(ServiceParams{
		DB:     stubTxRunner{},
		Repo:   repo,
		Ledger: ledgerSvc,
		Outbox: outboxSvc,
		Clock:  clock,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, ledgerSvc, outboxSvc
}

func TestTodayReturnsQuizWithoutAnswer(t *testing.T) {
	repo := &fakeRepo{quiz: todayQuiz(t)}
	svc, _, _ := buildService(t, repo)

	view, err := svc.Today(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if view.Answered || view.IsCorrect != nil {
		t.Fatalf("expected unanswered view: %+v", view)
	}
	if view.PointsReward != 20 || view.Question == "" {
		t.Fatalf("incomplete view: %+v", view)
	}
}

func TestTodayReflectsPriorAnswer(t *testing.T) {
	quiz := todayQuiz(t)
	repo := &fakeRepo{
		quiz:       quiz,
		submission: &models.QuizSubmission{QuizID: quiz.ID, IsCorrect: true},
	}
	svc, _, _ := buildService(t, repo)

	view, err := svc.Today(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !view.Answered || view.IsCorrect == nil || !*view.IsCorrect {
		t.Fatalf("expected answered view: %+v", view)
	}
}

func TestTodayNoQuizPublished(t *testing.T) {
	svc, _, _ := buildService(t, &fakeRepo{})

	_, err := svc.Today(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitCorrectAnswerAwardsPoints(t *testing.T) {
	quiz := todayQuiz(t)
	repo := &fakeRepo{quiz: quiz}
	svc, ledgerSvc, outboxSvc := buildService(t, repo)

	result, err := svc.Submit(context.Background(), SubmitInput{
		UserID:      uuid.New(),
		OptionIndex: 3,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.IsCorrect || result.PointsAwarded != 20 {
		t.Fatalf("unexpected result %+v", result)
	}
	if repo.created == nil || !repo.created.IsCorrect || repo.created.SelectedOptionIndex != 3 {
		t.Fatalf("submission not persisted: %+v", repo.created)
	}
	if len(ledgerSvc.awards) != 1 || ledgerSvc.awards[0].Source != enums.LedgerSourceQuiz {
		t.Fatalf("unexpected awards %+v", ledgerSvc.awards)
	}
	if len(outboxSvc.events) != 1 || outboxSvc.events[0].EventType != enums.EventQuizAnswered {
		t.Fatalf("unexpected events %+v", outboxSvc.events)
	}
}

func TestSubmitWrongAnswerAwardsNothing(t *testing.T) {
	quiz := todayQuiz(t)
	repo := &fakeRepo{quiz: quiz}
	svc, ledgerSvc, _ := buildService(t, repo)

	result, err := svc.Submit(context.Background(), SubmitInput{
		UserID:      uuid.New(),
		OptionIndex: 0,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.IsCorrect || result.PointsAwarded != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.CorrectOptionIndex != 3 {
		t.Fatalf("expected revealed answer, got %d", result.CorrectOptionIndex)
	}
	if len(ledgerSvc.awards) != 0 {
		t.Fatalf("wrong answer must not award: %+v", ledgerSvc.awards)
	}
}

func TestSubmitDuplicateIsConflict(t *testing.T) {
	repo := &fakeRepo{
		quiz:      todayQuiz(t),
		createErr: errors.New(`duplicate key value violates unique constraint "uq_quiz_submissions_quiz_user"`),
	}
	svc, _, _ := buildService(t, repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		UserID:      uuid.New(),
		OptionIndex: 1,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSubmitWithoutPublishedQuiz(t *testing.T) {
	// Yesterday's quiz exists but is not resolvable as today's.
	quiz := todayQuiz(t)
	quiz.AvailableDate = "2026-03-14"
	repo := &fakeRepo{quiz: quiz}
	svc, _, _ := buildService(t, repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		UserID:      uuid.New(),
		OptionIndex: 1,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmitOptionOutOfRange(t *testing.T) {
	repo := &fakeRepo{quiz: todayQuiz(t)}
	svc, _, _ := buildService(t, repo)

	_, err := svc.Submit(context.Background(), SubmitInput{
		UserID:      uuid.New(),
		OptionIndex: 9,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
