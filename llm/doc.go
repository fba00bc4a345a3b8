// Package llm defines the provider-agnostic client surface that the
// rate-limiting layer wraps.
//
// The package carries only the shapes the estimate-then-reconcile
// protocol needs: chat messages (plain text or multimodal), a request,
// a response with token usage, and a streaming chunk whose Done variant
// is the terminal event carrying the true usage of a streamed call.
//
// Implementations of Client talk to an actual API; MockClient is a test
// double with scripted responses and streams.
package llm
