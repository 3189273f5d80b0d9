package clock

import (
	"fmt"
	"math"
	"time"

	"github.com/shake819/remind-api/internal/model"
)

// Clock is the time source injected into the engine and scheduler so tests
// can pin "today" to a fixed calendar day.
type Clock interface {
	Now() time.Time
}

// ZoneClock resolves the current instant in a fixed target timezone. All
// day-boundary decisions are made in this zone, never in server-local time.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock loads the IANA zone name (e.g. "Asia/Tokyo").
func NewZoneClock(name string) (*ZoneClock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", name, err)
	}
	return &ZoneClock{loc: loc}, nil
}

func (c *ZoneClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// DayKey collapses an instant to its calendar day in the instant's own zone.
func DayKey(t time.Time) string {
	return t.Format(model.DateLayout)
}

// ParseDate validates a calendar date string. Format and calendar validity
// are both checked; "2025-02-30" is rejected, not normalised.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DayDistance returns the whole number of calendar days from today (the day
// containing the given instant) to the event date. Negative means the date
// has passed. Rounding absorbs DST-shortened or -lengthened days.
func DayDistance(date string, now time.Time) (int, error) {
	target, err := time.ParseInLocation(model.DateLayout, date, now.Location())
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	todayMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	hours := target.Sub(todayMidnight).Hours()
	return int(math.Round(hours / 24)), nil
}
