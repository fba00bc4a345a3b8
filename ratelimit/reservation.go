package ratelimit

import "sync"

// refunder is the slice of a limiter a Reservation needs. Both Limiter
// and AsyncLimiter satisfy it.
type refunder interface {
	Refund(tokens float64)
}

// Reservation tracks an estimated token debit awaiting reconciliation
// against the actual usage. Exactly one of Settle, Forfeit or Release
// takes effect; later calls are no-ops. A Reservation is safe for
// concurrent use.
type Reservation struct {
	mu       sync.Mutex
	limiter  refunder
	estimate float64
	settled  bool
}

// Estimate returns the token estimate this reservation debited.
func (r *Reservation) Estimate() float64 { return r.estimate }

// Settle reconciles the reservation against the actual usage, crediting
// back any over-reservation. When actual meets or exceeds the estimate
// nothing happens: deficits are never carried forward or debited again.
// Negative actual counts as zero.
func (r *Reservation) Settle(actual float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settled {
		return
	}
	r.settled = true

	if actual < 0 {
		actual = 0
	}
	if actual < r.estimate {
		r.limiter.Refund(r.estimate - actual)
	}
}

// Forfeit settles the reservation without any refund. Use it when the
// true usage was never observed, such as a stream that ended before its
// terminal usage event: the unused portion of the estimate is
// deliberately forfeited rather than guessed at.
func (r *Reservation) Forfeit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = true
}

// Release refunds the full estimate. This is the refund-on-failure
// policy for callers that know the remote operation consumed nothing.
func (r *Reservation) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settled {
		return
	}
	r.settled = true
	r.limiter.Refund(r.estimate)
}

// Settled reports whether the reservation has been reconciled.
func (r *Reservation) Settled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settled
}
