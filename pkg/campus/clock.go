package campus

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for campus calendar dates.
const DateLayout = "2006-01-02"

// Clock resolves "today" in the campus time zone. Check-ins, quizzes, and
// streaks all key on campus calendar dates rather than UTC timestamps.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock loads the campus time zone.
func NewClock(timeZone string) (*Clock, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("load campus time zone %q: %w", timeZone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewClockAt returns a clock frozen at the given instant, for tests.
func NewClockAt(timeZone string, at time.Time) (*Clock, error) {
	clock, err := NewClock(timeZone)
	if err != nil {
		return nil, err
	}
	clock.now = func() time.Time { return at }
	return clock, nil
}

// Now returns the current instant in the campus time zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current campus calendar date.
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// AddDays shifts a campus date by the given number of days.
func AddDays(date string, days int) (string, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse campus date %q: %w", date, err)
	}
	return parsed.AddDate(0, 0, days).Format(DateLayout), nil
}
