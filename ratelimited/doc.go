// Package ratelimited wraps an llm.Client with dual-budget rate
// limiting and estimate-then-reconcile token accounting.
//
// Before every call the wrapper estimates the request's token cost,
// reserves one request plus that estimate from the limiter (waiting
// cooperatively if either budget is exhausted), performs the call, and
// reconciles the reservation against the usage the provider reports:
// any over-reservation is credited back, deficits are never re-debited.
//
// For streamed calls the true usage only appears on the terminal chunk.
// The wrapper watches the stream and settles when that chunk arrives; a
// stream that ends without it forfeits the estimate, since the true
// consumption was never observed. WithRefundOnError in the Config
// switches both paths to refund the full estimate instead.
//
//	cfg := ratelimited.DefaultConfig()
//	cfg.RequestsPerSecond = 2
//	cfg.TokensPerMinute = 120000
//
//	client, err := ratelimited.New(upstream, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	resp, err := client.Complete(ctx, llm.Request{
//	    Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hello")},
//	})
//
// The wrapper implements llm.Client, so it can stand in anywhere an
// unwrapped client is expected. Rate budgets can be reloaded at runtime
// with ApplyConfig, optionally driven by WatchConfig, which follows a
// YAML, TOML or JSON config file with fsnotify.
package ratelimited
