package ratelimited

import "github.com/prometheus/client_golang/prometheus"

// Call outcomes recorded in the requests counter.
const (
	outcomeOK        = "ok"
	outcomeError     = "error"
	outcomeCancelled = "cancelled"
)

// Metrics holds the Prometheus collectors a rate-limited client records
// into when installed with WithMetrics.
type Metrics struct {
	Requests        *prometheus.CounterVec
	ThrottleWait    prometheus.Histogram
	TokensReserved  prometheus.Counter
	TokensRefunded  prometheus.Counter
	TokensForfeited prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmrate_requests_total",
				Help: "Completion and stream calls by outcome",
			},
			[]string{"outcome"},
		),
		ThrottleWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "llmrate_throttle_wait_seconds",
				Help:    "Time spent waiting on the rate limiter before each call",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		TokensReserved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmrate_tokens_reserved_total",
				Help: "Tokens debited up front as call estimates",
			},
		),
		TokensRefunded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmrate_tokens_refunded_total",
				Help: "Estimated tokens credited back after reconciliation",
			},
		),
		TokensForfeited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "llmrate_tokens_forfeited_total",
				Help: "Estimated tokens kept debited because true usage was never observed",
			},
		),
	}

	reg.MustRegister(m.Requests, m.ThrottleWait, m.TokensReserved, m.TokensRefunded, m.TokensForfeited)
	return m
}
