package ratelimited

import (
	"github.com/randalmurphal/llmrate/llm"
	"github.com/randalmurphal/llmrate/tokens"
)

// Estimator produces the a-priori token estimate the limiter debits
// before a call. Estimates must be non-negative; they are reconciled
// against the provider-reported usage afterwards, so erring high is
// safe and erring low under-throttles.
type Estimator interface {
	Estimate(req llm.Request) int
}

// HeuristicEstimator estimates chat requests with a character-ratio
// counter plus fixed per-message and image surcharges, and reserves a
// flat overhead for the response.
type HeuristicEstimator struct {
	counter tokens.Counter

	// ResponseReserve is added to every estimate to budget for the
	// reply before its size is known.
	ResponseReserve int
}

// NewHeuristicEstimator creates an estimator with the default character
// ratio and response reserve.
func NewHeuristicEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{
		counter:         tokens.NewEstimatingCounter(),
		ResponseReserve: DefaultConfig().ResponseReserve,
	}
}

// NewHeuristicEstimatorWith creates an estimator with a custom counter
// and response reserve. A nil counter uses the default.
func NewHeuristicEstimatorWith(counter tokens.Counter, responseReserve int) *HeuristicEstimator {
	if counter == nil {
		counter = tokens.NewEstimatingCounter()
	}
	if responseReserve < 0 {
		responseReserve = 0
	}
	return &HeuristicEstimator{
		counter:         counter,
		ResponseReserve: responseReserve,
	}
}

// Estimate counts the request's messages. Text is counted through the
// character-ratio counter; every message pays a framing surcharge,
// named messages one token more, and image parts a flat approximation.
func (e *HeuristicEstimator) Estimate(req llm.Request) int {
	count := 0
	for _, m := range req.Messages {
		count += tokens.MessageOverheadTokens
		if m.Name != "" {
			count += tokens.NameTokens
		}

		if m.IsMultimodal() {
			for _, part := range m.ContentParts {
				switch part.Type {
				case llm.ContentText:
					count += e.counter.Count(part.Text)
				case llm.ContentImage:
					count += tokens.ImageTokens
				}
			}
		} else {
			count += e.counter.Count(m.Content)
		}
	}
	count += tokens.ReplyPrimerTokens
	count += e.ResponseReserve
	return count
}
