package clock

import (
	"sync"
	"time"
)

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// SimClock is the simulation wall clock. It advances in whole minutes,
// independent of real time, and answers the peak-hour question used to
// restrict heavy traffic. Safe for concurrent use.
type SimClock struct {
	mu     sync.Mutex
	hour   int
	minute int
}

// NewSimClock returns a clock set to the given time of day.
func NewSimClock(hour, minute int) *SimClock {
	return &SimClock{hour: hour % 24, minute: minute % 60}
}

// Advance moves the clock forward by the given number of minutes.
func (c *SimClock) Advance(minutes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.minute += minutes
	for c.minute >= 60 {
		c.minute -= 60
		c.hour = (c.hour + 1) % 24
	}
}

// HourMinute returns the current simulated time of day.
func (c *SimClock) HourMinute() (hour, minute int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hour, c.minute
}

// IsPeak reports whether the simulated time falls in the morning (07-09) or
// evening (16-19) rush window.
func (c *SimClock) IsPeak() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return (c.hour >= 7 && c.hour <= 9) || (c.hour >= 16 && c.hour <= 19)
}
