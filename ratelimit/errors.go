package ratelimit

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a limiter was constructed with a
// non-positive rate.
var ErrInvalidConfig = errors.New("invalid rate limiter configuration")

// validateRates checks the two budget parameters shared by both limiter
// flavors.
func validateRates(requestsPerSecond, tokensPerMinute float64) error {
	if requestsPerSecond <= 0 {
		return fmt.Errorf("%w: requests per second must be positive, got %v",
			ErrInvalidConfig, requestsPerSecond)
	}
	if tokensPerMinute <= 0 {
		return fmt.Errorf("%w: tokens per minute must be positive, got %v",
			ErrInvalidConfig, tokensPerMinute)
	}
	return nil
}
