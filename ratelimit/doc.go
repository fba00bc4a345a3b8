// Package ratelimit throttles LLM API calls against two independent,
// simultaneously-enforced budgets: a request rate (requests per second)
// and a token consumption rate (tokens per minute).
//
// Both budgets are token buckets that start full, so callers can burst
// up to capacity while the long-run average stays bounded. Because the
// true token usage of a call is unknown until the response (or the
// terminal event of a streamed response) arrives, the package supports
// estimate-then-reconcile accounting: reserve an estimate up front,
// then credit back the unused portion once the actual usage is known.
//
// # Blocking
//
// Limiter blocks the calling goroutine until both budgets allow the
// request:
//
//	lim, err := ratelimit.NewLimiter(10, 100000) // 10 req/s, 100K tokens/min
//	if err != nil {
//	    log.Fatal(err)
//	}
//	waited := lim.Acquire(1, estimate)
//	resp := callAPI()
//	lim.Refund(estimate - float64(resp.Usage.TotalTokens))
//
// # Suspending
//
// AsyncLimiter applies identical arithmetic but waits cooperatively and
// honors context cancellation:
//
//	lim, _ := ratelimit.NewAsyncLimiter(10, 100000)
//	waited, err := lim.Acquire(ctx, 1, estimate)
//
// # Reservations
//
// Reserve ties the acquire and the refund together so the refund can
// happen at most once, even when the usage surfaces deep inside a
// stream-watching goroutine:
//
//	res, _, err := lim.Reserve(ctx, estimate)
//	resp, err := callAPI()
//	res.Settle(float64(resp.Usage.TotalTokens))
//
// State is in-memory and process-local. Limiters are independent of
// each other, are not persisted, and reset to full buckets on restart.
package ratelimit
