package ratelimit

import "time"

// Clock abstracts the limiter's time source so tests can drive waits
// without real sleeps. The system clock reads Go's monotonic clock, so
// a wall-clock step can never produce negative elapsed time or a
// spurious large refill.
type Clock interface {
	// Now returns the current monotonic instant.
	Now() time.Time

	// Sleep pauses the calling goroutine for d.
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the real monotonic clock. It is the default for
// both limiter flavors.
func SystemClock() Clock { return systemClock{} }

// Option configures a limiter at construction.
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock replaces the limiter's time source. Intended for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}
