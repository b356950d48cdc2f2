package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorClass
	}{
		{"unauthorized", http.StatusUnauthorized, ClassDefinitive},
		{"forbidden", http.StatusForbidden, ClassDefinitive},
		{"too many requests", http.StatusTooManyRequests, ClassThrottle},
		{"not found", http.StatusNotFound, ClassTransient},
		{"server error", http.StatusInternalServerError, ClassTransient},
		{"bad gateway", http.StatusBadGateway, ClassTransient},
		{"service unavailable", http.StatusServiceUnavailable, ClassTransient},
		{"gateway timeout", http.StatusGatewayTimeout, ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	withStatus := &RequestError{
		Endpoint:   "npa,nxx,block_id",
		StatusCode: 503,
		Class:      ClassTransient,
	}
	if msg := withStatus.Error(); !strings.Contains(msg, "503") || !strings.Contains(msg, "npa,nxx,block_id") {
		t.Errorf("Error() = %q, want status and endpoint mentioned", msg)
	}

	withCause := &RequestError{
		Endpoint: "npa,nxx",
		Class:    ClassTransient,
		Err:      errors.New("connection reset"),
	}
	if msg := withCause.Error(); !strings.Contains(msg, "connection reset") {
		t.Errorf("Error() = %q, want cause mentioned", msg)
	}
}

func TestRequestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &RequestError{Endpoint: "npa,nxx", Class: ClassTransient, Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestDefinitiveError_Error(t *testing.T) {
	err := &DefinitiveError{Endpoint: "npa,nxx,block_id", StatusCode: 401}

	msg := err.Error()
	if !strings.Contains(msg, "401") {
		t.Errorf("Error() = %q, want status mentioned", msg)
	}
	if !strings.Contains(msg, "check API token") {
		t.Errorf("Error() = %q, want token hint", msg)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "transient request error",
			err:      &RequestError{Endpoint: "npa,nxx", StatusCode: 500, Class: ClassTransient},
			expected: true,
		},
		{
			name:     "throttle request error",
			err:      &RequestError{Endpoint: "npa,nxx", StatusCode: 429, Class: ClassThrottle},
			expected: true,
		},
		{
			name:     "definitive error",
			err:      &DefinitiveError{Endpoint: "npa,nxx", StatusCode: 401},
			expected: false,
		},
		{
			name:     "wrapped definitive error",
			err:      fmt.Errorf("fetch area 201: %w", &DefinitiveError{Endpoint: "npa,nxx", StatusCode: 403}),
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("something else"),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldRetry(tt.err); got != tt.expected {
				t.Errorf("shouldRetry(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestErrorClassOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{
			name:     "definitive",
			err:      &DefinitiveError{Endpoint: "npa,nxx", StatusCode: 401},
			expected: ClassDefinitive,
		},
		{
			name:     "throttle",
			err:      &RequestError{Endpoint: "npa,nxx", StatusCode: 429, Class: ClassThrottle},
			expected: ClassThrottle,
		},
		{
			name:     "transient",
			err:      &RequestError{Endpoint: "npa,nxx", StatusCode: 500, Class: ClassTransient},
			expected: ClassTransient,
		},
		{
			name:     "plain error defaults to transient",
			err:      errors.New("dial tcp: connection refused"),
			expected: ClassTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorClass(tt.err); got != tt.expected {
				t.Errorf("errorClass(%v) = %q, want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestExhaustedErrorWrapping(t *testing.T) {
	last := &RequestError{Endpoint: "npa,nxx,block_id", StatusCode: 500, Class: ClassTransient}
	err := fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, 3, last)

	if !errors.Is(err, ErrRetryExhausted) {
		t.Error("errors.Is() should identify retry exhaustion")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatal("errors.As() should recover the final request error")
	}
	if reqErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", reqErr.StatusCode)
	}
}
