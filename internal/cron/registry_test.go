package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (j *namedJob) Name() string              { return j.name }
func (j *namedJob) Run(context.Context) error { return nil }

func TestRegistryPreservesOrderAndCopies(t *testing.T) {
	first := &namedJob{name: "streak-reset"}
	second := &namedJob{name: "outbox-retention"}

	registry := NewRegistry(first, nil, second)
	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected nil job skipped, got %d jobs", len(jobs))
	}
	if jobs[0] != first || jobs[1] != second {
		t.Fatal("jobs returned out of registration order")
	}

	jobs[1] = nil
	if registry.Jobs()[1] == nil {
		t.Fatal("Jobs returned the internal slice")
	}
}
