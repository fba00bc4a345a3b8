package llm

import (
	"context"
	"sync"
)

// MockClient is a test double for Client. It supports fixed responses,
// sequential responses, scripted streams, and custom handlers.
type MockClient struct {
	mu           sync.Mutex
	responses    []string
	responseIdx  int
	usage        Usage
	err          error
	chunks       []StreamChunk
	completeFunc func(ctx context.Context, req Request) (*Response, error)

	// Calls tracks all requests for assertions.
	Calls []Request
}

// NewMockClient creates a mock that returns a fixed response.
func NewMockClient(response string) *MockClient {
	return &MockClient{responses: []string{response}}
}

// WithResponses configures sequential responses. Each call to Complete
// returns the next response in the list, cycling back to the beginning
// after exhausting all responses.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.responses = responses
	return m
}

// WithUsage configures the usage attached to every response.
func (m *MockClient) WithUsage(u Usage) *MockClient {
	m.usage = u
	return m
}

// WithError configures the mock to always return an error.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// WithStreamChunks scripts the chunks emitted by Stream.
func (m *MockClient) WithStreamChunks(chunks ...StreamChunk) *MockClient {
	m.chunks = chunks
	return m
}

// WithCompleteFunc sets a custom handler for Complete calls.
// This takes precedence over fixed responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.completeFunc = fn
	return m
}

// Complete returns the configured response, error, or handler result.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.completeFunc
	err := m.err
	var content string
	if len(m.responses) > 0 {
		content = m.responses[m.responseIdx%len(m.responses)]
		m.responseIdx++
	}
	usage := m.usage
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return &Response{
		Content:      content,
		Usage:        usage,
		FinishReason: "stop",
	}, nil
}

// Stream emits the scripted chunks. With no script configured it emits
// one content chunk with the fixed response followed by a Done chunk
// carrying the configured usage.
func (m *MockClient) Stream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	err := m.err
	chunks := m.chunks
	if chunks == nil {
		var content string
		if len(m.responses) > 0 {
			content = m.responses[0]
		}
		usage := m.usage
		chunks = []StreamChunk{
			{Content: content},
			{Done: true, Usage: &usage},
		}
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, len(chunks))
	go func() {
		defer close(ch)
		for _, chunk := range chunks {
			select {
			case ch <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// Close implements Client. It is a no-op.
func (m *MockClient) Close() error { return nil }

// CallCount returns the number of Complete and Stream calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or a zero Request if no
// calls were made.
func (m *MockClient) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}
	}
	return m.Calls[len(m.Calls)-1]
}
