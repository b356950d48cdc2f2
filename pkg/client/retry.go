package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy holds the configuration for retry logic. Both fetch
// strategies consume the same policy for every request they issue.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration

	// Multiplier is the exponential growth factor between waits.
	Multiplier float64
}

// DefaultRetryPolicy returns the retry policy used against the LERG feed.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// retryWithBackoff executes fn with exponential backoff between attempts.
// Definitive errors are returned immediately without further attempts.
// Throttle errors double the pending backoff ahead of the normal growth.
// Waits honor context cancellation and carry ±20% jitter; with doubling
// growth the jittered waits are still strictly increasing.
func retryWithBackoff(ctx context.Context, policy RetryPolicy, logger zerolog.Logger, fn func() error) error {
	var lastErr error
	backoff := policy.InitialBackoff

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Int("attempt", attempt).
					Msg("request succeeded after retry")
			}
			return nil
		}

		if !shouldRetry(err) {
			return err
		}
		lastErr = err

		if attempt >= policy.MaxAttempts {
			break
		}

		class := errorClass(err)
		lergRetriesTotal.WithLabelValues(string(class)).Inc()

		if class == ClassThrottle {
			backoff = capBackoff(time.Duration(float64(backoff)*2), policy.MaxBackoff)
		}

		wait := jitterBackoff(backoff)
		lergRetryBackoffSeconds.WithLabelValues(string(class)).Observe(wait.Seconds())

		logger.Warn().
			Err(err).
			Str("class", string(class)).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("retrying request after backoff")

		select {
		case <-ctx.Done():
			logger.Warn().
				Int("attempt", attempt).
				Msg("context cancelled during retry backoff")
			return fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-time.After(wait):
		}

		backoff = capBackoff(time.Duration(float64(backoff)*policy.Multiplier), policy.MaxBackoff)
	}

	lergRetryExhaustedTotal.WithLabelValues(string(errorClass(lastErr))).Inc()
	logger.Warn().
		Err(lastErr).
		Int("max_attempts", policy.MaxAttempts).
		Msg("retry attempts exhausted")

	return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, policy.MaxAttempts, lastErr)
}

// jitterBackoff spreads a wait ±20% to avoid synchronized retries.
func jitterBackoff(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
}

func capBackoff(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}
