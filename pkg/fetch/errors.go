package fetch

import (
	"fmt"
	"time"
)

// Error is the common fetch-failure wrapper. Every error returned by a
// Client wraps one, carrying which external source failed so log entries
// can name it.
type Error struct {
	// Source names the external source ("spend", "baseline").
	Source string

	// Cause is the underlying failure.
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AuthError indicates the source rejected our credentials (401/403).
// Never retried.
type AuthError struct {
	Source  string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Source, e.Message)
}

// APIError indicates a non-2xx response that is not an auth failure.
type APIError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Source, e.StatusCode, e.Message)
}

// ParseError indicates a 2xx response whose payload could not be decoded
// or did not contain the expected field.
type ParseError struct {
	Source      string
	RawResponse string
	Cause       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Source, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates the request exceeded the configured timeout or
// the context was cancelled.
type TimeoutError struct {
	Source  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out after %s", e.Source, e.Timeout)
}
