package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrationsDirectoryIsValid(t *testing.T) {
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations directory failed validation: %v", err)
	}
}

func TestInitialMigrationCreatesCoreTables(t *testing.T) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one migration")
	}

	var combined strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			t.Fatalf("read migration %s: %v", e.Name(), err)
		}
		combined.Write(b)
	}

	sql := combined.String()
	for _, table := range []string{
		"users",
		"points_ledger",
		"daily_checkins",
		"user_streaks",
		"user_impact",
		"challenges",
		"challenge_submissions",
		"daily_quizzes",
		"quiz_submissions",
		"events",
		"event_attendance",
		"stores",
		"products",
		"product_images",
		"orders",
		"order_items",
		"user_feedback",
		"user_activity_log",
		"outbox_events",
	} {
		if !strings.Contains(sql, "CREATE TABLE "+table+" (") {
			t.Errorf("missing CREATE TABLE for %s", table)
		}
	}

	for _, constraint := range []string{
		"uq_daily_checkins_user_date",
		"uq_challenge_submissions_challenge_user",
		"uq_quiz_submissions_quiz_user",
		"uq_event_attendance_event_user",
		"uq_daily_quizzes_available_date",
		"ck_users_current_points_non_negative",
	} {
		if !strings.Contains(sql, constraint) {
			t.Errorf("missing constraint %s", constraint)
		}
	}

	// Outbox aggregate ids repeat across legitimate actions (every answer to a
	// quiz shares the quiz id, every check-in by a user shares the user id), so
	// the table must never be unique-indexed; dedup happens consumer-side on
	// the envelope event id.
	for _, line := range strings.Split(sql, "\n") {
		if strings.Contains(line, "UNIQUE") && strings.Contains(line, "outbox_events") {
			t.Errorf("outbox_events must not carry a unique index: %s", strings.TrimSpace(line))
		}
	}
}
