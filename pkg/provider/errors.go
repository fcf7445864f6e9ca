package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the upstream error taxonomy. Callers match with
// errors.Is; none of these are ever cached.
var (
	// ErrUpstreamUnavailable covers network failures, timeouts and 5xx
	// responses after the adapter's own retry budget is spent. Retryable
	// by the next request, not retried further here.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamRateLimited is surfaced when the upstream answers 429 or
	// when the backoff tracker is still within a Retry-After window.
	// Distinct from unavailability so callers can back off.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")

	// ErrNotFound means the upstream confirms the entity does not exist.
	ErrNotFound = errors.New("entity not found upstream")

	// ErrValidation marks a malformed or incomplete upstream payload.
	ErrValidation = errors.New("upstream payload failed validation")

	// ErrRetryExhausted is returned when all retry attempts are spent.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass classifies an upstream failure for retry and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (never retried).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Error carries upstream failure context.
type Error struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// shouldRetry determines if an error class should be retried.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassClient:
		// 4xx errors are never retried (wastes the request budget).
		return false
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
