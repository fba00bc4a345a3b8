package llm

import "context"

// Client is the interface for LLM API clients. Implementations must be
// safe for concurrent use.
type Client interface {
	// Complete sends a request and returns the full response.
	// The context controls cancellation and timeouts.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Stream sends a request and returns a channel of response chunks.
	// The channel is closed when streaming completes; the final chunk
	// has Done set and carries the cumulative usage. Errors during
	// streaming are returned via chunk.Error.
	Stream(ctx context.Context, req Request) (<-chan StreamChunk, error)

	// Close releases any resources held by the client.
	Close() error
}
