package tickdriver

import "time"

// Clock provides the wall-clock time the real-time driver stamps on each
// pulse (see LastPulseAt). The default implementation uses system time;
// SetClock swaps in another. Pacing itself uses a time.Ticker and does
// not read this clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

var clock Clock = realClock{}

// SetClock replaces the package-level clock, returning the previous one
// so callers can restore it during cleanup.
func SetClock(c Clock) Clock {
	prev := clock
	clock = c
	return prev
}

// Now returns the current time from the active clock.
func Now() time.Time { return clock.Now() }
