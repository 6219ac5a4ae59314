package cron

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ecocampus-app/ecocampus-backend/internal/streaks"
	"github.com/ecocampus-app/ecocampus-backend/pkg/campus"
	"github.com/ecocampus-app/ecocampus-backend/pkg/enums"
	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox"
	"github.com/ecocampus-app/ecocampus-backend/pkg/outbox/payloads"
)

const streakResetBatchSize = 500

// StreakResetJobParams configures the nightly streak lapse sweep.
type StreakResetJobParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Streaks   streaks.Repository
	Outbox    outboxEmitter
	Clock     *campus.Clock
	BatchSize int
}

// NewStreakResetJob zeroes streaks whose holders missed yesterday's check-in.
func NewStreakResetJob(params StreakResetJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Streaks == nil {
		return nil, fmt.Errorf("streaks repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Clock == nil {
		return nil, fmt.Errorf("campus clock required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = streakResetBatchSize
	}
	return &streakResetJob{
		logg:    params.Logger,
		db:      params.DB,
		streaks: params.Streaks,
		outbox:  params.Outbox,
		clock:   params.Clock,
		batch:   batch,
	}, nil
}

type streakResetJob struct {
	logg    *logger.Logger
	db      txRunner
	streaks streaks.Repository
	outbox  outboxEmitter
	clock   *campus.Clock
	batch   int
}

func (j *streakResetJob) Name() string { return "streak-reset" }

func (j *streakResetJob) Run(ctx context.Context) error {
	today := j.clock.Today()
	// A streak survives as long as the holder checked in today or yesterday.
	cutoff, err := campus.AddDays(today, -1)
	if err != nil {
		return fmt.Errorf("compute cutoff: %w", err)
	}

	var total int
	for {
		stale, err := j.streaks.ListStale(ctx, cutoff, j.batch)
		if err != nil {
			return fmt.Errorf("list lapsed streaks: %w", err)
		}
		if len(stale) == 0 {
			break
		}

		resetInPass := 0
		for _, streak := range stale {
			streak := streak
			err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
				if err := j.streaks.WithTx(tx).Reset(ctx, streak.UserID); err != nil {
					return fmt.Errorf("reset streak: %w", err)
				}
				return j.outbox.Emit(ctx, tx, outbox.DomainEvent{
					EventType:     enums.EventStreakReset,
					AggregateType: enums.AggregateUserStreak,
					AggregateID:   streak.UserID,
					Data: payloads.StreakResetEvent{
						UserID:         streak.UserID,
						PreviousStreak: streak.CurrentStreak,
						ResetOn:        today,
					},
					Version: 1,
				})
			})
			if err != nil {
				logCtx := j.logg.WithField(ctx, "user_id", streak.UserID.String())
				j.logg.Error(logCtx, "failed to reset lapsed streak", err)
				continue
			}
			resetInPass++
			total++
		}

		// Failed rows come back on the next list, so a pass with zero
		// progress would spin forever.
		if resetInPass == 0 || len(stale) < j.batch {
			break
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff_date":   cutoff,
		"streaks_reset": total,
	})
	j.logg.Info(logCtx, "streak lapse sweep complete")
	return nil
}
