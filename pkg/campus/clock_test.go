package campus

import (
	"testing"
	"time"
)

func TestClockTodayUsesCampusTimeZone(t *testing.T) {
	// 21:00 UTC is already the next calendar day in Kolkata (+05:30).
	at := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	clock, err := NewClockAt("Asia/Kolkata", at)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}

	if got := clock.Today(); got != "2026-03-15" {
		t.Fatalf("unexpected campus date %q", got)
	}
}

func TestNewClockRejectsUnknownZone(t *testing.T) {
	if _, err := NewClock("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-03-01", -1)
	if err != nil {
		t.Fatalf("add days: %v", err)
	}
	if got != "2026-02-28" {
		t.Fatalf("unexpected date %q", got)
	}

	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Fatal("expected error for malformed date")
	}
}
