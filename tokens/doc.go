// Package tokens provides token estimation for LLM payloads.
//
// Estimation is based on the rule-of-thumb that approximately 4
// characters equals 1 token for English text. This gives a fast,
// conservative estimate without a model-specific tokenizer, which is
// all the rate-limiting layer needs: estimates are reconciled against
// the provider-reported usage after each call.
//
// # Counter
//
// The Counter interface provides token counting methods:
//
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, world!")     // ~3 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// For one-off counting, use the convenience function:
//
//	count := tokens.EstimateTokens("Hello, world!")
//
// # Chat surcharges
//
// Chat payloads cost more than their raw text: every message carries
// framing tokens, named messages add one more, and image parts are
// charged a flat approximation. The exported constants carry those
// surcharges so estimators can apply them uniformly; EstimateResponse
// sizes the reply a prompt is likely to provoke.
package tokens
