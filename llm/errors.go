package llm

import (
	"errors"
	"fmt"
)

// Sentinel errors for client operations.
var (
	// ErrUnavailable indicates the LLM service is unavailable.
	ErrUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the remote side rejected the request for
	// exceeding its rate limits.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidRequest indicates the request is malformed.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("request timed out")
)

// Error wraps client errors with context.
type Error struct {
	Provider  string // Provider name ("mistral", "openai", etc.)
	Op        string // Operation that failed ("complete", "stream")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new client error.
func NewError(provider, op string, err error, retryable bool) *Error {
	return &Error{
		Provider:  provider,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrTimeout)
}
