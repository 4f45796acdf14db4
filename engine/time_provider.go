package engine

import "time"

// Clock is a source of the current time
type Clock interface {
	Now() time.Time
}

// TimeProvider provides the real system time with monotonic clock readings
type TimeProvider struct{}

// NewTimeProvider creates a new monotonic time provider
func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *TimeProvider) Now() time.Time {
	return time.Now()
}

// Timer is a cancellable scheduled callback
type Timer interface {
	// Stop cancels the timer, returns false if it was already stopped or has fired
	Stop() bool
}

// Timeline is the serial execution context for all session state transitions
// Every callback scheduled through a Timeline runs on the same goroutine, one at a time
type Timeline interface {
	Clock

	// AfterFunc runs fn once after d
	AfterFunc(d time.Duration, fn func()) Timer

	// Every runs fn every d until stopped, first call after d
	// Missed periods are dropped, not queued
	Every(d time.Duration, fn func()) Timer

	// Post runs fn as soon as the timeline is free
	Post(fn func())
}
