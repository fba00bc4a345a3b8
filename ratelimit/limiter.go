package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces a request-rate budget and a token-rate budget with
// thread-blocking waits. The request bucket holds at most one second's
// worth of burst (capacity = refill rate = requests per second); the
// token bucket holds a full minute's worth (capacity = tokens per
// minute, refilled at tokens-per-minute/60 per second).
//
// A Limiter is safe for concurrent use. One mutex guards both buckets
// and is held for the whole of every call, including the sleeps inside
// Acquire, so concurrent callers observe the request and token debits
// as a single atomic step. The cost of that simplicity is strict
// serialization: a caller sleeping on one bucket delays callers that
// only need the other.
type Limiter struct {
	mu       sync.Mutex
	requests bucket
	tokens   bucket
	clock    Clock
}

// NewLimiter creates a blocking limiter with both buckets full.
// Returns ErrInvalidConfig if either rate is not positive.
func NewLimiter(requestsPerSecond, tokensPerMinute float64, opts ...Option) (*Limiter, error) {
	if err := validateRates(requestsPerSecond, tokensPerMinute); err != nil {
		return nil, err
	}
	o := options{clock: SystemClock()}
	for _, opt := range opts {
		opt(&o)
	}
	now := o.clock.Now()
	return &Limiter{
		requests: newBucket(requestsPerSecond, requestsPerSecond, now),
		tokens:   newBucket(tokensPerMinute, tokensPerMinute/60, now),
		clock:    o.clock,
	}, nil
}

// Acquire debits requestCost from the request bucket and tokenCost from
// the token bucket, sleeping until each bucket can cover its cost. It
// returns the total time spent waiting and never fails; a caller that
// cannot wait indefinitely should use AsyncLimiter instead. Negative
// costs count as zero.
func (l *Limiter) Acquire(requestCost, tokenCost float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	waited := l.acquireBucket(&l.requests, requestCost)
	waited += l.acquireBucket(&l.tokens, tokenCost)
	return waited
}

// acquireBucket runs the two-branch acquire on one bucket: debit
// immediately if covered, otherwise sleep exactly long enough for the
// deficit to refill, then debit without re-checking (enough time has
// passed by construction).
func (l *Limiter) acquireBucket(b *bucket, cost float64) time.Duration {
	if cost < 0 {
		cost = 0
	}
	b.refill(l.clock.Now())
	wait := b.waitFor(cost)
	if wait > 0 {
		l.clock.Sleep(wait)
		b.refill(l.clock.Now())
	}
	b.debit(cost)
	return wait
}

// WaitTime reports how long Acquire would wait for the given costs,
// without debiting anything. It models the sequential wait Acquire
// actually pays: the request-bucket wait first, then the token-bucket
// wait computed against a token bucket that kept refilling while the
// first wait elapsed. Advisory only: a concurrent Acquire can
// invalidate the answer as soon as it returns.
func (l *Limiter) WaitTime(requestCost, tokenCost float64) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.requests.refill(now)
	l.tokens.refill(now)
	return previewWait(&l.requests, requestCost, &l.tokens, tokenCost)
}

// Refund credits unused tokens back to the token bucket, capped at
// capacity. It never fails; negative amounts are ignored. Use it to
// reconcile an a-priori estimate against the actual usage reported by
// the remote side, or wrap the acquire in Reserve and let the
// Reservation do the arithmetic.
func (l *Limiter) Refund(tokens float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tokens.refill(l.clock.Now())
	l.tokens.credit(tokens)
}

// Reserve acquires one request plus estimate tokens, returning the time
// waited and a Reservation to settle once the true usage is known.
func (l *Limiter) Reserve(estimate float64) (*Reservation, time.Duration) {
	waited := l.Acquire(1, estimate)
	return &Reservation{limiter: l, estimate: estimate}, waited
}

// Snapshot reports a point-in-time view of both buckets, refilled to
// the current instant.
func (l *Limiter) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

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

// Snapshot is a point-in-time view of a limiter's two buckets.
type Snapshot struct {
	RequestsAvailable float64
	RequestsCapacity  float64
	TokensAvailable   float64
	TokensCapacity    float64
}

// previewWait computes the sequential wait Acquire would pay for the
// two costs. Both buckets must be refilled to the same instant first.
// The token bucket keeps refilling while the request wait elapses, so
// that refill is credited before computing the second wait.
func previewWait(req *bucket, requestCost float64, tok *bucket, tokenCost float64) time.Duration {
	if requestCost < 0 {
		requestCost = 0
	}
	if tokenCost < 0 {
		tokenCost = 0
	}

	reqWait := req.waitFor(requestCost)

	tokAvailable := min(tok.capacity, tok.available+reqWait.Seconds()*tok.refillRate)
	var tokWait time.Duration
	if tokAvailable < tokenCost {
		tokWait = time.Duration((tokenCost - tokAvailable) / tok.refillRate * float64(time.Second))
	}
	return reqWait + tokWait
}
