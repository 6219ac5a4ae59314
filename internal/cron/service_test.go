package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/ecocampus-app/ecocampus-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	acquires int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newCycleService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestRunCycleContinuesPastFailedJob(t *testing.T) {
	broken := &countingJob{name: "streak-reset", err: errors.New("db down")}
	healthy := &countingJob{name: "outbox-retention"}
	svc := newCycleService(t, &fakeLock{}, broken, healthy)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if broken.runs != 1 {
		t.Fatalf("failing job ran %d times, want 1", broken.runs)
	}
	if healthy.runs != 1 {
		t.Fatalf("healthy job ran %d times, want 1", healthy.runs)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "streak-reset"}
	svc := newCycleService(t, &fakeLock{held: true}, job)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran while lock was held elsewhere")
	}
}

func TestRunCycleReleasesLock(t *testing.T) {
	lock := &fakeLock{}
	svc := newCycleService(t, lock, &countingJob{name: "outbox-retention"})

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if lock.held {
		t.Fatal("lock still held after cycle")
	}
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if lock.acquires != 2 {
		t.Fatalf("expected 2 acquires, got %d", lock.acquires)
	}
}

func TestNewServiceRequiresLockAndLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error without lock")
	}
}
