package usecase

import "time"

// SystemClock implements Clock with real time.
type SystemClock struct{}

// NewSystemClock creates a new SystemClock.
func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// After waits for the duration to elapse.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
