package testfixtures

import (
	"sync"
	"time"

	"github.com/example/baby-pool/internal/slots"
)

// Clock is a controllable time source. Guess validation and the selector
// both derive "today" from it, so moving the clock moves the guessing window.
type Clock struct {
	mu sync.Mutex
	at time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{at: start}
}

// Now returns the instant tracked by the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// NowFunc exposes Now for dependency injection. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Today is the pool date of the clock in loc.
func (c *Clock) Today(loc *time.Location) slots.Date {
	return slots.Today(c.Now(), loc)
}

// MoveTo places the clock at 09:00 UTC on date.
func (c *Clock) MoveTo(date slots.Date) {
	c.Set(date.In(time.UTC).Add(9 * time.Hour))
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.at = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
	return c.at
}
