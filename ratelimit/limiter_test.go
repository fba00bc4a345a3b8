package ratelimit

import (
	"errors"
	"testing"
	"time"
)

// within fails the test unless got is within tol of want. The bucket
// arithmetic is floating point, so timing assertions allow a hair of
// rounding.
func within(t *testing.T, got, want, tol time.Duration) {
	t.Helper()
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > tol {
		t.Errorf("duration = %v, want %v (±%v)", got, want, tol)
	}
}

func TestNewLimiter_Validation(t *testing.T) {
	tests := []struct {
		name string
		rps  float64
		tpm  float64
	}{
		{name: "zero requests per second", rps: 0, tpm: 100},
		{name: "negative requests per second", rps: -1, tpm: 100},
		{name: "zero tokens per minute", rps: 1, tpm: 0},
		{name: "negative tokens per minute", rps: 1, tpm: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLimiter(tt.rps, tt.tpm)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewLimiter_BucketsStartFull(t *testing.T) {
	lim, err := NewLimiter(2, 120, WithClock(newFakeClock()))
	if err != nil {
		t.Fatal(err)
	}

	snap := lim.Snapshot()
	if snap.RequestsAvailable != 2 || snap.RequestsCapacity != 2 {
		t.Errorf("request bucket = %v/%v, want 2/2", snap.RequestsAvailable, snap.RequestsCapacity)
	}
	if snap.TokensAvailable != 120 || snap.TokensCapacity != 120 {
		t.Errorf("token bucket = %v/%v, want 120/120", snap.TokensAvailable, snap.TokensCapacity)
	}
}

func TestLimiter_AcquireImmediate(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(10, 6000, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	waited := lim.Acquire(1, 50)
	if waited != 0 {
		t.Errorf("waited %v, want 0", waited)
	}
	if len(clock.Slept()) != 0 {
		t.Errorf("acquire slept %v, want no sleeps", clock.Slept())
	}

	snap := lim.Snapshot()
	if snap.RequestsAvailable != 9 {
		t.Errorf("requests available = %v, want 9", snap.RequestsAvailable)
	}
	if snap.TokensAvailable != 5950 {
		t.Errorf("tokens available = %v, want 5950", snap.TokensAvailable)
	}
}

// The back-to-back scenario from the reference configuration: 2 req/s
// and 120 tokens/min (2 tokens/s), buckets full, three Acquire(1, 50)
// calls at t=0. The third call pays 0.5s for the request bucket, after
// which the token bucket has 20 + 0.5*2 = 21 tokens and needs another
// 14.5s for the remaining 29.
func TestLimiter_AcquireSequentialWaits(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	within(t, lim.Acquire(1, 50), 0, 0)
	within(t, lim.Acquire(1, 50), 0, 0)
	within(t, lim.Acquire(1, 50), 15*time.Second, time.Millisecond)

	slept := clock.Slept()
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps (request, token), got %v", slept)
	}
	within(t, slept[0], 500*time.Millisecond, time.Millisecond)
	within(t, slept[1], 14500*time.Millisecond, time.Millisecond)

	// Both debits landed in full after the waits.
	snap := lim.Snapshot()
	if snap.RequestsAvailable > 1e-9 {
		t.Errorf("requests available = %v, want 0", snap.RequestsAvailable)
	}
	if snap.TokensAvailable > 1e-9 {
		t.Errorf("tokens available = %v, want 0", snap.TokensAvailable)
	}
}

func TestLimiter_AcquireNegativeCostsCountAsZero(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	if waited := lim.Acquire(-1, -50); waited != 0 {
		t.Errorf("waited %v, want 0", waited)
	}

	snap := lim.Snapshot()
	if snap.RequestsAvailable != 2 || snap.TokensAvailable != 120 {
		t.Errorf("buckets changed by negative costs: %+v", snap)
	}
}

func TestLimiter_Refund(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	lim.Acquire(1, 100) // tokens: 120 -> 20

	// Actual usage was 60, credit back the over-reservation.
	lim.Refund(40)
	snap := lim.Snapshot()
	if snap.TokensAvailable != 60 {
		t.Errorf("tokens available = %v, want 60", snap.TokensAvailable)
	}

	// Refund never exceeds capacity.
	lim.Refund(1000)
	snap = lim.Snapshot()
	if snap.TokensAvailable != 120 {
		t.Errorf("tokens available = %v, want 120 (capped)", snap.TokensAvailable)
	}
}

func TestLimiter_RefundDoesNotTouchRequestBucket(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	lim.Acquire(1, 0)
	lim.Refund(50)

	snap := lim.Snapshot()
	if snap.RequestsAvailable != 1 {
		t.Errorf("requests available = %v, want 1", snap.RequestsAvailable)
	}
}

func TestLimiter_WaitTimeDoesNotMutate(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	first := lim.WaitTime(1, 50)
	second := lim.WaitTime(1, 50)
	if first != second {
		t.Errorf("WaitTime not idempotent: %v then %v", first, second)
	}
	if first != 0 {
		t.Errorf("WaitTime = %v, want 0 with full buckets", first)
	}

	snap := lim.Snapshot()
	if snap.RequestsAvailable != 2 || snap.TokensAvailable != 120 {
		t.Errorf("WaitTime mutated buckets: %+v", snap)
	}
}

// WaitTime models the sequential wait Acquire actually pays, so after
// two depleting acquires it predicts the same 15s the third acquire
// then spends.
func TestLimiter_WaitTimeMatchesSequentialAcquire(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	lim.Acquire(1, 50)
	lim.Acquire(1, 50)

	predicted := lim.WaitTime(1, 50)
	within(t, predicted, 15*time.Second, time.Millisecond)

	waited := lim.Acquire(1, 50)
	within(t, waited, predicted, time.Millisecond)
}

func TestLimiter_RefillRestoresOverTime(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	lim.Acquire(2, 120) // drain both buckets

	clock.Advance(30 * time.Second)
	snap := lim.Snapshot()
	if snap.RequestsAvailable != 2 {
		t.Errorf("requests available = %v, want 2 (capped)", snap.RequestsAvailable)
	}
	if snap.TokensAvailable != 60 {
		t.Errorf("tokens available = %v, want 60", snap.TokensAvailable)
	}
}

func TestLimiter_Reserve(t *testing.T) {
	clock := newFakeClock()
	lim, err := NewLimiter(2, 120, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}

	res, waited := lim.Reserve(100)
	if waited != 0 {
		t.Errorf("waited %v, want 0", waited)
	}
	if res.Estimate() != 100 {
		t.Errorf("estimate = %v, want 100", res.Estimate())
	}

	res.Settle(60)
	snap := lim.Snapshot()
	if snap.TokensAvailable != 60 {
		t.Errorf("tokens available = %v, want 60 after settle", snap.TokensAvailable)
	}
}
