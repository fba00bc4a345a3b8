package ratelimit

import "time"

// bucket is the credit state for a single rate-limited resource.
// All arithmetic lives in the transition methods below; both limiter
// flavors are thin orchestration over the same transitions, so the
// accounting cannot drift between them.
type bucket struct {
	available  float64
	capacity   float64
	refillRate float64 // credits per second
	lastRefill time.Time
}

// newBucket returns a full bucket.
func newBucket(capacity, refillRate float64, now time.Time) bucket {
	return bucket{
		available:  capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: now,
	}
}

// refill credits the bucket for the time elapsed since the last refill,
// capped at capacity. Call it before every read or mutation of
// available; there is no background timer.
func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.available = min(b.capacity, b.available+elapsed*b.refillRate)
	}
	b.lastRefill = now
}

// debit removes cost credits. Callers wait until the credits exist
// before debiting; after a computed wait the debit is unconditional, so
// float drift is clamped at zero instead of going negative.
func (b *bucket) debit(cost float64) {
	b.available -= cost
	if b.available < 0 {
		b.available = 0
	}
}

// credit returns amount credits to the bucket, capped at capacity.
// Non-positive amounts are ignored.
func (b *bucket) credit(amount float64) {
	if amount <= 0 {
		return
	}
	b.available = min(b.capacity, b.available+amount)
}

// waitFor reports how long the bucket needs to refill before cost
// credits are available, zero if they already are. The bucket must have
// been refilled first.
func (b *bucket) waitFor(cost float64) time.Duration {
	if b.available >= cost {
		return 0
	}
	needed := cost - b.available
	return time.Duration(needed / b.refillRate * float64(time.Second))
}
