package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a retry backoff wait.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass categorizes request failures for retry decisions and metrics.
type ErrorClass string

const (
	// ClassDefinitive marks authentication and permission rejections.
	// These are never retried.
	ClassDefinitive ErrorClass = "definitive"

	// ClassThrottle marks HTTP 429 responses. Retried with faster
	// backoff growth, since the feed asked us to slow down.
	ClassThrottle ErrorClass = "throttle"

	// ClassTransient marks timeouts, transport failures, and every other
	// non-2xx status. Retried up to the attempt ceiling.
	ClassTransient ErrorClass = "transient"
)

// classifyStatus maps a non-2xx HTTP status to an error class.
func classifyStatus(status int) ErrorClass {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassDefinitive
	case http.StatusTooManyRequests:
		return ClassThrottle
	default:
		return ClassTransient
	}
}

// RequestError is a retriable request failure: a transport error, a
// timeout, or a non-2xx status other than an auth rejection.
type RequestError struct {
	Endpoint   string
	StatusCode int // zero when the request never produced a response
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lerg %s error on %s: %v", e.Class, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("lerg %s error on %s: status %d", e.Class, e.Endpoint, e.StatusCode)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// DefinitiveError is an authentication or permission rejection. It is
// surfaced on the first attempt so a bad token is not mistaken for a
// transient outage.
type DefinitiveError struct {
	Endpoint   string
	StatusCode int
}

// Error implements the error interface.
func (e *DefinitiveError) Error() string {
	return fmt.Sprintf("lerg request rejected on %s: status %d (check API token)", e.Endpoint, e.StatusCode)
}

// shouldRetry reports whether an error may be retried.
func shouldRetry(err error) bool {
	var definitive *DefinitiveError
	return !errors.As(err, &definitive)
}

// errorClass extracts the class of a request error for metrics and logs.
func errorClass(err error) ErrorClass {
	var definitive *DefinitiveError
	if errors.As(err, &definitive) {
		return ClassDefinitive
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Class
	}
	return ClassTransient
}
