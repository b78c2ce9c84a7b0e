package provider

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for classification via errors.Is.
var (
	// ErrRateLimited matches rate-limit (HTTP 429-class) failures.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrOverloaded matches overload (HTTP 503-class) failures.
	ErrOverloaded = errors.New("provider overloaded")
)

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It carries the retry-after duration if the provider supplied one.
type RateLimitError struct {
	// Provider is the name of the provider that rate limited the request.
	Provider string

	// Model is the model the request was addressed to.
	Model string

	// RetryAfter is the duration to wait before retrying (0 if the
	// provider gave no hint).
	RetryAfter time.Duration

	// Message is the error message from the provider.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limited model %q (retry after %s)",
			e.Provider, e.Model, e.RetryAfter)
	}
	return fmt.Sprintf("provider %q rate limited model %q", e.Provider, e.Model)
}

// Is implements error matching for errors.Is().
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// OverloadedError represents a provider capacity overload (HTTP 503).
// It carries the retry-after duration if the provider supplied one.
type OverloadedError struct {
	// Provider is the name of the provider that reported overload.
	Provider string

	// Model is the model the request was addressed to.
	Model string

	// RetryAfter is the duration to wait before retrying (0 if the
	// provider gave no hint).
	RetryAfter time.Duration

	// Message is the error message from the provider.
	Message string
}

// Error implements the error interface.
func (e *OverloadedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q overloaded for model %q (retry after %s)",
			e.Provider, e.Model, e.RetryAfter)
	}
	return fmt.Sprintf("provider %q overloaded for model %q", e.Provider, e.Model)
}

// Is implements error matching for errors.Is().
func (e *OverloadedError) Is(target error) bool {
	return target == ErrOverloaded
}

// ProviderError represents any provider failure that is not a capacity
// signal: bad requests, auth failures, server errors, malformed responses.
// These pass through the coordinator unchanged and never trigger a
// cooldown, so an unrelated fault cannot blacklist a healthy model.
type ProviderError struct {
	// Provider is the name of the provider that returned the error.
	Provider string

	// Model is the model the request was addressed to.
	Model string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error for model %q (status %d): %s",
			e.Provider, e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error for model %q: %s", e.Provider, e.Model, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// IsCapacityError reports whether err is a capacity-classified failure
// (rate limited or overloaded) and returns the provider's retry-after hint,
// which is zero when the provider gave none.
func IsCapacityError(err error) (retryAfter time.Duration, ok bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter, true
	}
	var ole *OverloadedError
	if errors.As(err, &ole) {
		return ole.RetryAfter, true
	}
	return 0, false
}
