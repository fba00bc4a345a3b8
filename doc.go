// Package llmrate provides client-side rate limiting for Large Language
// Model APIs.
//
// LLM providers meter two budgets at once: a request rate and a token
// rate. llmrate models both as token buckets and reconciles estimated
// token costs against the usage the provider actually reports. Each
// subpackage can be used independently:
//
//   - ratelimit: dual-budget token-bucket limiter with blocking and
//     context-aware variants, plus estimate-then-settle reservations
//   - tokens: token counting and prompt cost estimation
//   - llm: provider-neutral request, response, and streaming types
//   - ratelimited: a rate-limited wrapper around any llm.Client
//
// # Quick Start
//
// Limiting raw calls:
//
//	import "github.com/randalmurphal/llmrate/ratelimit"
//	lim, _ := ratelimit.NewLimiter(2, 120_000)
//	lim.Acquire(1, 1500) // blocks until both budgets allow it
//
// Wrapping a client:
//
//	import "github.com/randalmurphal/llmrate/ratelimited"
//	client, _ := ratelimited.New(inner, ratelimited.DefaultConfig())
//	resp, _ := client.Complete(ctx, req)
//
// The wrapper estimates each request's token cost up front, waits for
// budget, calls the wrapped client, and credits back the difference
// between the estimate and the reported usage.
package llmrate
