// Package ratelimit paces outbound LERG requests.
//
// The feed answers in tens of milliseconds and tolerates rapid
// sequential queries, so pacing is disabled by default. When enabled it
// spaces calls by a minimum delay and takes a longer breather after
// every batch, which keeps multi-hour legacy runs polite.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request pacing.
var (
	lergPacerWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lerg_pacer_wait_seconds_total",
		Help: "Total time spent waiting in the request pacer",
	})

	lergPacerBatchPausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lerg_pacer_batch_pauses_total",
		Help: "Total number of batch pauses taken by the pacer",
	})
)

// Config holds pacer settings.
type Config struct {
	// CallDelay is the minimum gap between consecutive requests.
	CallDelay time.Duration

	// BatchSize is how many requests run between batch pauses.
	// Zero disables batch pauses.
	BatchSize int

	// BatchPause is the extra wait after each full batch.
	BatchPause time.Duration
}

// DefaultConfig returns the pacing used for polite production runs.
func DefaultConfig() Config {
	return Config{
		CallDelay:  10 * time.Millisecond,
		BatchSize:  100,
		BatchPause: 100 * time.Millisecond,
	}
}

// Pacer spaces outbound requests. A nil Pacer is valid and never waits,
// so callers hold one pointer regardless of whether pacing is enabled.
type Pacer struct {
	limiter    *rate.Limiter
	batchSize  int64
	batchPause time.Duration
	count      atomic.Int64
	logger     zerolog.Logger
}

// New creates a pacer. A zero CallDelay falls back to the default gap.
func New(cfg Config, logger zerolog.Logger) *Pacer {
	if cfg.CallDelay <= 0 {
		cfg.CallDelay = DefaultConfig().CallDelay
	}
	return &Pacer{
		limiter:    rate.NewLimiter(rate.Every(cfg.CallDelay), 1),
		batchSize:  int64(cfg.BatchSize),
		batchPause: cfg.BatchPause,
		logger:     logger,
	}
}

// Wait blocks until the next request may go out. It honors context
// cancellation during both the batch pause and the per-call gap.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}

	start := time.Now()
	defer func() {
		lergPacerWaitSeconds.Add(time.Since(start).Seconds())
	}()

	n := p.count.Add(1)
	if p.batchSize > 0 && p.batchPause > 0 && n%p.batchSize == 0 {
		p.logger.Debug().
			Int64("requests", n).
			Dur("pause", p.batchPause).
			Msg("pacer batch pause")
		lergPacerBatchPausesTotal.Inc()

		timer := time.NewTimer(p.batchPause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return p.limiter.Wait(ctx)
}

// Requests returns how many requests have passed through the pacer.
func (p *Pacer) Requests() int64 {
	if p == nil {
		return 0
	}
	return p.count.Load()
}
