// Package refresh decides when a cached log must be rebuilt from its source.
package refresh

import "time"

// DefaultInterval is the time a cached log stays fresh.
const DefaultInterval = 12 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// ShouldRefresh reports whether a log last refreshed at last is stale at now.
// A zero last means nothing was ever loaded. A non-positive interval always refreshes.
func ShouldRefresh(last, now time.Time, interval time.Duration) bool {
	if last.IsZero() || interval <= 0 {
		return true
	}
	return now.Sub(last) >= interval
}

// Policy binds an interval to a clock.
type Policy struct {
	Interval time.Duration
	Clock    Clock
}

// NewPolicy builds a Policy. A nil clock falls back to SystemClock.
func NewPolicy(interval time.Duration, clock Clock) Policy {
	if clock == nil {
		clock = SystemClock{}
	}
	return Policy{Interval: interval, Clock: clock}
}

// Due reports whether a log refreshed at last is stale now.
func (p Policy) Due(last time.Time) bool {
	return ShouldRefresh(last, p.Now(), p.Interval)
}

// Now returns the policy clock's current time.
func (p Policy) Now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock.Now()
}

// NextAt returns when a log refreshed at last becomes stale.
func (p Policy) NextAt(last time.Time) time.Time {
	if last.IsZero() {
		return time.Time{}
	}
	return last.Add(p.Interval)
}
