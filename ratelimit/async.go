package ratelimit

import (
	"context"
	"time"
)

// AsyncLimiter applies the same dual-bucket accounting as Limiter, but
// waits cooperatively: the calling goroutine parks on a timer select
// instead of sleeping, and every wait honors context cancellation. A
// cancelled Acquire never leaves a partial debit behind.
//
// Mutual exclusion is a one-slot channel semaphore held across the
// suspension. That mirrors the blocking limiter's serialization: only
// one caller at a time decides the buckets' future state, and everyone
// else queues behind it.
type AsyncLimiter struct {
	sem      chan struct{}
	requests bucket
	tokens   bucket
	clock    Clock

	// wait parks the caller for d or until ctx is done. Overridable in
	// tests so waits can advance a fake clock instead of elapsing.
	wait func(ctx context.Context, d time.Duration) error
}

// NewAsyncLimiter creates a suspending limiter with both buckets full.
// Returns ErrInvalidConfig if either rate is not positive.
func NewAsyncLimiter(requestsPerSecond, tokensPerMinute float64, opts ...Option) (*AsyncLimiter, error) {
	if err := validateRates(requestsPerSecond, tokensPerMinute); err != nil {
		return nil, err
	}
	o := options{clock: SystemClock()}
	for _, opt := range opts {
		opt(&o)
	}
	now := o.clock.Now()
	return &AsyncLimiter{
		sem:      make(chan struct{}, 1),
		requests: newBucket(requestsPerSecond, requestsPerSecond, now),
		tokens:   newBucket(tokensPerMinute, tokensPerMinute/60, now),
		clock:    o.clock,
		wait:     sleepContext,
	}, nil
}

// Acquire debits requestCost from the request bucket and tokenCost from
// the token bucket, suspending until each bucket can cover its cost. It
// returns the total time waited. If ctx is cancelled while waiting,
// whether for the lock or for a refill, Acquire returns the context
// error and both buckets are left exactly as if the call never
// happened. Negative costs count as zero.
func (l *AsyncLimiter) Acquire(ctx context.Context, requestCost, tokenCost float64) (time.Duration, error) {
	if err := l.lock(ctx); err != nil {
		return 0, err
	}
	defer l.unlock()

	if requestCost < 0 {
		requestCost = 0
	}
	if tokenCost < 0 {
		tokenCost = 0
	}

	var waited time.Duration

	l.requests.refill(l.clock.Now())
	if wait := l.requests.waitFor(requestCost); wait > 0 {
		if err := l.wait(ctx, wait); err != nil {
			return 0, err
		}
		waited += wait
		l.requests.refill(l.clock.Now())
	}
	l.requests.debit(requestCost)

	l.tokens.refill(l.clock.Now())
	if wait := l.tokens.waitFor(tokenCost); wait > 0 {
		if err := l.wait(ctx, wait); err != nil {
			// Roll back the request debit so a cancelled acquire never
			// leaves the buckets half-debited.
			l.requests.credit(requestCost)
			return 0, err
		}
		waited += wait
		l.tokens.refill(l.clock.Now())
	}
	l.tokens.debit(tokenCost)

	return waited, nil
}

// WaitTime reports how long Acquire would wait for the given costs,
// without debiting anything. Semantics match Limiter.WaitTime: the
// sequential wait Acquire would actually pay, advisory only.
func (l *AsyncLimiter) WaitTime(ctx context.Context, requestCost, tokenCost float64) (time.Duration, error) {
	if err := l.lock(ctx); err != nil {
		return 0, err
	}
	defer l.unlock()

	now := l.clock.Now()
	l.requests.refill(now)
	l.tokens.refill(now)
	return previewWait(&l.requests, requestCost, &l.tokens, tokenCost), nil
}

// Refund credits unused tokens back to the token bucket, capped at
// capacity. It never fails; negative amounts are ignored.
func (l *AsyncLimiter) Refund(tokens float64) {
	l.sem <- struct{}{}
	defer l.unlock()

	l.tokens.refill(l.clock.Now())
	l.tokens.credit(tokens)
}

// Reserve acquires one request plus estimate tokens, returning the time
// waited and a Reservation to settle once the true usage is known.
func (l *AsyncLimiter) Reserve(ctx context.Context, estimate float64) (*Reservation, time.Duration, error) {
	waited, err := l.Acquire(ctx, 1, estimate)
	if err != nil {
		return nil, 0, err
	}
	return &Reservation{limiter: l, estimate: estimate}, waited, nil
}

// Snapshot reports a point-in-time view of both buckets, refilled to
// the current instant.
func (l *AsyncLimiter) Snapshot() Snapshot {
	l.sem <- struct{}{}
	defer l.unlock()

	now := l.clock.Now()
	l.requests.refill(now)
	l.tokens.refill(now)
	return Snapshot{
		RequestsAvailable: l.requests.available,
		RequestsCapacity:  l.requests.capacity,
		TokensAvailable:   l.tokens.available,
		TokensCapacity:    l.tokens.capacity,
	}
}

func (l *AsyncLimiter) lock(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *AsyncLimiter) unlock() { <-l.sem }

// sleepContext parks the caller for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
