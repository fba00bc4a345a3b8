package llm_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/randalmurphal/llmrate/llm"
	"github.com/stretchr/testify/assert"
)

func TestError_Unwrap(t *testing.T) {
	err := llm.NewError("mistral", "complete", llm.ErrRateLimited, true)

	assert.True(t, errors.Is(err, llm.ErrRateLimited))
	assert.Contains(t, err.Error(), "mistral complete")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "wrapped retryable error",
			err:       llm.NewError("mistral", "complete", errors.New("503"), true),
			retryable: true,
		},
		{
			name:      "wrapped non-retryable error",
			err:       llm.NewError("mistral", "complete", errors.New("400"), false),
			retryable: false,
		},
		{
			name:      "rate limited sentinel",
			err:       fmt.Errorf("call failed: %w", llm.ErrRateLimited),
			retryable: true,
		},
		{
			name:      "timeout sentinel",
			err:       llm.ErrTimeout,
			retryable: true,
		},
		{
			name:      "invalid request",
			err:       llm.ErrInvalidRequest,
			retryable: false,
		},
		{
			name:      "plain error",
			err:       errors.New("boom"),
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, llm.IsRetryable(tt.err))
		})
	}
}
