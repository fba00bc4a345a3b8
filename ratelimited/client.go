package ratelimited

import (
	"context"
	"sync"
	"time"

	"github.com/randalmurphal/llmrate/llm"
	"github.com/randalmurphal/llmrate/ratelimit"
	"github.com/randalmurphal/llmrate/tokens"
	"github.com/rs/zerolog"
)

// Client wraps an llm.Client with dual-budget rate limiting and
// estimate-then-reconcile accounting. It implements llm.Client and is
// safe for concurrent use.
type Client struct {
	inner     llm.Client
	extractor UsageExtractor
	log       zerolog.Logger
	metrics   *Metrics

	mu              sync.RWMutex
	limiter         *ratelimit.AsyncLimiter
	estimator       Estimator
	cfg             Config
	customEstimator bool
}

// ClientOption configures a Client at construction.
type ClientOption func(*Client)

// WithLogger attaches a logger; waits, refunds and forfeits are logged
// at debug level. The default logger discards everything.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithMetrics installs Prometheus collectors for the client to record
// into.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithEstimator replaces the config-built heuristic estimator.
func WithEstimator(e Estimator) ClientOption {
	return func(c *Client) {
		c.estimator = e
		c.customEstimator = true
	}
}

// WithExtractor replaces the default usage extractor.
func WithExtractor(x UsageExtractor) ClientOption {
	return func(c *Client) { c.extractor = x }
}

// WithLimiter supplies a pre-built limiter instead of one built from
// the config, e.g. to share one budget across several clients.
func WithLimiter(l *ratelimit.AsyncLimiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// New creates a rate-limited client around inner.
func New(inner llm.Client, cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		inner:     inner,
		extractor: TotalUsageExtractor{},
		log:       zerolog.Nop(),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.estimator == nil {
		c.estimator = estimatorFromConfig(cfg)
	}
	if c.limiter == nil {
		lim, err := ratelimit.NewAsyncLimiter(cfg.RequestsPerSecond, cfg.TokensPerMinute)
		if err != nil {
			return nil, err
		}
		c.limiter = lim
	}
	return c, nil
}

func estimatorFromConfig(cfg Config) *HeuristicEstimator {
	return NewHeuristicEstimatorWith(
		tokens.NewEstimatingCounterWithRatio(cfg.CharsPerToken),
		cfg.ResponseReserve,
	)
}

// Complete reserves the estimated cost, performs the wrapped call, and
// reconciles the reservation against the reported usage. A failed call
// keeps its reservation unless the config enables RefundOnError.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	lim, cfg, estimate := c.prepare(req)

	res, waited, err := lim.Reserve(ctx, estimate)
	if err != nil {
		c.count(outcomeCancelled)
		return nil, err
	}
	c.observeReserve(waited, estimate)

	callCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := c.inner.Complete(callCtx, req)
	if err != nil {
		c.settleFailure(res, cfg)
		c.count(outcomeError)
		return nil, err
	}

	c.settle(res, float64(c.extractor.FromResponse(resp)))
	c.count(outcomeOK)
	return resp, nil
}

// Stream reserves the estimated cost, starts the wrapped stream, and
// re-emits its chunks while watching for the terminal chunk carrying
// the true usage. The reservation settles when that chunk arrives; a
// stream that ends without it forfeits the estimate (or refunds it in
// full under RefundOnError).
func (c *Client) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamChunk, error) {
	lim, cfg, estimate := c.prepare(req)

	res, waited, err := lim.Reserve(ctx, estimate)
	if err != nil {
		c.count(outcomeCancelled)
		return nil, err
	}
	c.observeReserve(waited, estimate)

	inner, err := c.inner.Stream(ctx, req)
	if err != nil {
		c.settleFailure(res, cfg)
		c.count(outcomeError)
		return nil, err
	}

	out := make(chan llm.StreamChunk)
	go c.watchStream(ctx, cfg, inner, out, res)
	return out, nil
}

// watchStream forwards chunks and reconciles the reservation exactly
// once, whether the stream finishes, errors out, or the receiver stops
// listening.
func (c *Client) watchStream(ctx context.Context, cfg Config, in <-chan llm.StreamChunk, out chan<- llm.StreamChunk, res *ratelimit.Reservation) {
	defer close(out)

forward:
	for chunk := range in {
		if chunk.Done {
			c.settle(res, float64(c.extractor.FromChunk(chunk)))
		}
		select {
		case out <- chunk:
		case <-ctx.Done():
			break forward
		}
	}

	if res.Settled() {
		c.count(outcomeOK)
		return
	}
	c.settleFailure(res, cfg)
	c.count(outcomeError)
}

// WaitTime previews how long a Complete or Stream call for req would
// wait before reaching the remote API. Advisory only: a concurrent call
// can invalidate the answer immediately.
func (c *Client) WaitTime(ctx context.Context, req llm.Request) (time.Duration, error) {
	lim, _, estimate := c.prepare(req)
	return lim.WaitTime(ctx, 1, estimate)
}

// ApplyConfig replaces the rate budget and accounting knobs at runtime,
// e.g. from a WatchConfig channel. The new limiter starts with full
// buckets; reservations already in flight settle against the limiter
// they debited.
func (c *Client) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	lim, err := ratelimit.NewAsyncLimiter(cfg.RequestsPerSecond, cfg.TokensPerMinute)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.limiter = lim
	c.cfg = cfg
	if !c.customEstimator {
		c.estimator = estimatorFromConfig(cfg)
	}
	c.mu.Unlock()

	c.log.Info().
		Float64("requests_per_second", cfg.RequestsPerSecond).
		Float64("tokens_per_minute", cfg.TokensPerMinute).
		Msg("applied new rate budget")
	return nil
}

// Limiter returns the current limiter, e.g. for snapshot inspection.
func (c *Client) Limiter() *ratelimit.AsyncLimiter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limiter
}

// Close releases the wrapped client.
func (c *Client) Close() error {
	return c.inner.Close()
}

// prepare reads the current limiter, config and estimate under one
// lock acquisition so a concurrent ApplyConfig cannot tear them apart.
func (c *Client) prepare(req llm.Request) (*ratelimit.AsyncLimiter, Config, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	estimate := c.estimator.Estimate(req)
	if estimate < 0 {
		estimate = 0
	}
	return c.limiter, c.cfg, float64(estimate)
}

func (c *Client) observeReserve(waited time.Duration, estimate float64) {
	if c.metrics != nil {
		c.metrics.ThrottleWait.Observe(waited.Seconds())
		c.metrics.TokensReserved.Add(estimate)
	}
	c.log.Debug().
		Dur("waited", waited).
		Float64("estimate", estimate).
		Msg("reserved rate budget")
}

// settle reconciles a reservation against the observed usage and
// records the credited difference.
func (c *Client) settle(res *ratelimit.Reservation, actual float64) {
	if res.Settled() {
		return
	}
	refund := res.Estimate() - actual
	res.Settle(actual)

	if refund > 0 && c.metrics != nil {
		c.metrics.TokensRefunded.Add(refund)
	}
	c.log.Debug().
		Float64("estimate", res.Estimate()).
		Float64("actual", actual).
		Msg("reconciled usage")
}

// settleFailure applies the configured policy for calls whose true
// usage was never observed.
func (c *Client) settleFailure(res *ratelimit.Reservation, cfg Config) {
	if cfg.RefundOnError {
		res.Release()
		if c.metrics != nil {
			c.metrics.TokensRefunded.Add(res.Estimate())
		}
		c.log.Debug().Float64("estimate", res.Estimate()).Msg("released reservation after failure")
		return
	}

	res.Forfeit()
	if c.metrics != nil {
		c.metrics.TokensForfeited.Add(res.Estimate())
	}
	c.log.Debug().Float64("estimate", res.Estimate()).Msg("forfeited reservation after failure")
}

func (c *Client) count(outcome string) {
	if c.metrics != nil {
		c.metrics.Requests.WithLabelValues(outcome).Inc()
	}
}
