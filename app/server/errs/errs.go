// Package errs holds the sentinel errors shared by the intake and admin
// components. Callers match them with errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// Bot heuristics.
	ErrInvalid = errors.New("invalid submission")
	ErrTooFast = errors.New("submitted too fast")

	// Input and throttling.
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limited")

	// Store outcomes.
	ErrDuplicate = errors.New("duplicate")
	ErrNotFound  = errors.New("not found")
	ErrStorage   = errors.New("storage error")

	ErrUnauthorized = errors.New("unauthorized")
)

// RateLimitedError carries the delay the client should wait before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfterSeconds rounds the delay up to whole seconds.
func (e *RateLimitedError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}
