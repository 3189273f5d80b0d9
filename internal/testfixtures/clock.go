package testfixtures

import (
	"sync"
	"time"
)

// Clock provides a controllable time source for tests.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock pinned to the supplied instant.
func NewClock(start time.Time) *Clock {
	return &Clock{current: start}
}

// NewClockAt pins the clock to 09:00 of the given calendar day.
func NewClockAt(day string) *Clock {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return &Clock{current: t.Add(9 * time.Hour)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// SetDay moves the clock to the given calendar day, keeping time-of-day.
func (c *Clock) SetDay(day string) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	c.Set(t.Add(9 * time.Hour))
}

// Advance moves the clock forward by the provided duration.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}
