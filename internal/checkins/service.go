package checkins

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/ledger"
	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db"
	"github.com/ecocampus-app/ecocampus-backend/pkg/db/models"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	pkgerrors "github.com/ecocampus-app/ecocampus-backend/pkg/errors"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const uniqueCheckinConstraint = "uq_daily_checkins_user_date"

// Service records daily check-ins: one per campus date, fixed points, and a
// streak that grows only on consecutive days.
type Service interface {
	CheckIn(ctx context.Context, userID uuid.UUID) (*CheckInResult, error)
	CheckedInToday(ctx context.Context, userID uuid.UUID) (bool, error)
	Streak(ctx context.Context, userID uuid.UUID) (*models.UserStreak, error)
}

// CheckInResult reports the outcome of a successful check-in.
type CheckInResult struct {
	CheckinDate   string `json:"checkin_date"`
	PointsAwarded int    `json:"points_awarded"`
	CurrentStreak int    `json:"current_streak"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db      txRunner
	repo    Repository
	streaks streaks.Repository
	ledger  ledger.Service
	outbox  outboxEmitter
	clock   *campus.Clock
	points  int
}

// ServiceParams bundles the dependencies for the check-in service.
type ServiceParams struct {
	DB            txRunner
	Repo          Repository
	StreakRepo    streaks.Repository
	Ledger        ledger.Service
	Outbox        outboxEmitter
	Clock         *campus.Clock
	CheckInPoints int
}

// NewService wires a check-in service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("checkin repository is required")
	}
	if params.StreakRepo == nil {
		return nil, fmt.Errorf("streak repository is required")
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
	if params.CheckInPoints <= 0 {
		return nil, fmt.Errorf("check-in points must be positive")
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		streaks: params.StreakRepo,
		ledger:  params.Ledger,
		outbox:  params.Outbox,
		clock:   params.Clock,
		points:  params.CheckInPoints,
	}, nil
}

func (s *service) CheckIn(ctx context.Context, userID uuid.UUID) (*CheckInResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	today := s.clock.Today()
	yesterday, err := campus.AddDays(today, -1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "derive previous campus date")
	}

	var result *CheckInResult
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		streakRepo := s.streaks.WithTx(tx)

		checkin := &models.DailyCheckin{
			UserID:        userID,
			CheckinDate:   today,
			PointsAwarded: s.points,
		}
		if err := repo.Create(ctx, checkin); err != nil {
			if db.IsUniqueViolation(err, uniqueCheckinConstraint) {
				return pkgerrors.New(pkgerrors.CodeConflict, "already checked in today")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert check-in")
		}

		streak, err := streakRepo.Get(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load streak")
		}
		if streak.LastCheckinDate != nil && *streak.LastCheckinDate == yesterday {
			streak.CurrentStreak++
		} else {
			streak.CurrentStreak = 1
		}
		streak.LastCheckinDate = &today
		if err := streakRepo.Upsert(ctx, streak); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update streak")
		}

		if _, err := s.ledger.Award(ctx, tx, ledger.AwardInput{
			UserID:      userID,
			Source:      enums.LedgerSourceCheckIn,
			Points:      s.points,
			Description: "Daily check-in",
		}); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCheckinRecorded,
			AggregateType: enums.AggregateDailyCheckin,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleStudent)},
			Data: payloads.CheckinRecordedEvent{
				UserID:        userID,
				CheckinDate:   today,
				PointsAwarded: s.points,
				CurrentStreak: streak.CurrentStreak,
			},
			Version: 1,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit check-in event")
		}

		result = &CheckInResult{
			CheckinDate:   today,
			PointsAwarded: s.points,
			CurrentStreak: streak.CurrentStreak,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) CheckedInToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	exists, err := s.repo.Exists(ctx, userID, s.clock.Today())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check today's check-in")
	}
	return exists, nil
}

func (s *service) Streak(ctx context.Context, userID uuid.UUID) (*models.UserStreak, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	streak, err := s.streaks.Get(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load streak")
	}
	return streak, nil
}
