package clock

import "time"

// Clock provides the time used for registrations, game starts and archive
// records. Tests substitute mocks.MockClock.
type Clock interface {
	Now() time.Time
	// Since is the time elapsed since t according to this clock
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC, which is what gets archived
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
