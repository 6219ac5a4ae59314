package quizzes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const uniqueQuizSubmissionConstraint = "uq_quiz_submissions_quiz_user"

// Service serves the daily quiz and grades answers server-side. The correct
// option index never leaves this package.
type Service interface {
	Today(ctx context.Context, userID uuid.UUID) (*TodayView, error)
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}

// TodayView is today's question with the caller's prior answer, if any.
type TodayView struct {
	QuizID        uuid.UUID       `json:"quiz_id"`
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	PointsReward  int             `json:"points_reward"`
	AvailableDate string          `json:"available_date"`
	Answered      bool            `json:"answered"`
	IsCorrect     *bool           `json:"is_correct,omitempty"`
}

// SubmitInput is one answer to today's quiz. The quiz itself is resolved
// server-side from the campus date, so clients cannot answer past quizzes.
type SubmitInput struct {
	UserID      uuid.UUID
	OptionIndex int
}

// SubmitResult reports the grade and any points granted.
type SubmitResult struct {
	IsCorrect          bool `json:"is_correct"`
	CorrectOptionIndex int  `json:"correct_option_index"`
	PointsAwarded      int  `json:"points_awarded"`
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
	ledger ledger.Service
	outbox outboxEmitter
	clock  *campus.Clock
}

// ServiceParams bundles the dependencies for the quiz service.
type ServiceParams struct {
	DB     txRunner
	Repo   Repository
	Ledger ledger.Service
	Outbox outboxEmitter
	Clock  *campus.Clock
}

// NewService wires a quiz service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("quiz repository is required")
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
		ledger: params.Ledger,
		outbox: params.Outbox,
		clock:  params.Clock,
	}, nil
}

func (s *service) Today(ctx context.Context, userID uuid.UUID) (*TodayView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	quiz, err := s.repo.FindByDate(ctx, s.clock.Today())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no quiz published today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quiz")
	}

	view := &TodayView{
		QuizID:        quiz.ID,
		Question:      quiz.Question,
		Options:       quiz.Options,
		PointsReward:  quiz.PointsReward,
		AvailableDate: quiz.AvailableDate,
	}

	submission, err := s.repo.FindSubmission(ctx, quiz.ID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load submission")
	}
	if submission != nil {
		view.Answered = true
		isCorrect := submission.IsCorrect
		view.IsCorrect = &isCorrect
	}
	return view, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.OptionIndex < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option index must be non-negative")
	}

	quiz, err := s.repo.FindByDate(ctx, s.clock.Today())
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no quiz published today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quiz")
	}

	var options []string
	if err := json.Unmarshal(quiz.Options, &options); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode quiz options")
	}
	if input.OptionIndex >= len(options) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "option index out of range")
	}

	isCorrect := input.OptionIndex == quiz.CorrectOptionIndex
	points := 0
	if isCorrect {
		points = quiz.PointsReward
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		submission := &models.QuizSubmission{
			QuizID:              quiz.ID,
			UserID:              input.UserID,
			SelectedOptionIndex: input.OptionIndex,
			IsCorrect:           isCorrect,
		}
		if err := repo.CreateSubmission(ctx, submission); err != nil {
			if db.IsUniqueViolation(err, uniqueQuizSubmissionConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "quiz already answered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert submission")
		}

		if isCorrect && points > 0 {
			if _, err := s.ledger.Award(ctx, tx, ledger.AwardInput{
				UserID:      input.UserID,
				Source:      enums.LedgerSourceQuiz,
				SourceID:    &quiz.ID,
				Points:      points,
				Description: "Daily quiz",
			}); err != nil {
				return err
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuizAnswered,
			AggregateType: enums.AggregateQuizSubmission,
			AggregateID:   quiz.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: string(enums.UserRoleStudent)},
			Data: payloads.QuizAnsweredEvent{
				UserID:        input.UserID,
				QuizID:        quiz.ID,
				IsCorrect:     isCorrect,
				PointsAwarded: points,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit quiz event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		IsCorrect:          isCorrect,
		CorrectOptionIndex: quiz.CorrectOptionIndex,
		PointsAwarded:      points,
	}, nil
}
