// Package runner drives the area iteration loop: fetch, aggregate,
// record, one area at a time, in order. The first failure of any kind
// aborts the whole run; a partial inventory set is never published.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dnogen/pkg/fetch"
	"dnogen/pkg/inventory"
)

// Prometheus metrics for run orchestration.
var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dno_runs_total",
		Help: "Total runs by outcome",
	}, []string{"outcome"})

	areasRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dno_areas_recorded_total",
		Help: "Areas fetched and aggregated successfully",
	})

	areaDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dno_area_duration_seconds",
		Help:    "Time to fetch and aggregate one area",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
	})
)

// State is where the run currently stands.
type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateAggregating State = "aggregating"
	StateRecorded    State = "recorded"
	StateCompleted   State = "completed"
	StateAborted     State = "aborted"
)

// RequestCounter reports how many feed requests have been issued so
// far. *client.Client implements it; the loop snapshots it around each
// area to attribute request counts.
type RequestCounter interface {
	Requests() int64
}

// AbortError terminates a run. It names the area that failed, the
// cause, and the statistics accumulated before the failure.
type AbortError struct {
	Area  string
	Err   error
	Stats *RunStatistics
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("run aborted at area %s: %v", e.Area, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AbortError) Unwrap() error {
	return e.Err
}

// Result is a completed run: final statistics plus the inventory for
// every requested area. It only exists when every area succeeded.
type Result struct {
	Stats       *RunStatistics
	Inventories map[string]*inventory.Inventory
}

// Config holds the runner configuration.
type Config struct {
	// Fetcher is the retrieval strategy the run drives. Required.
	Fetcher fetch.Fetcher

	// Counter attributes feed requests to areas when set.
	Counter RequestCounter
}

// Runner executes runs. The loop itself is sequential; State may be
// read concurrently while a run is active.
type Runner struct {
	fetcher fetch.Fetcher
	counter RequestCounter
	logger  zerolog.Logger

	mu    sync.RWMutex
	state State
	area  string
}

// New creates a runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Runner{
		fetcher: cfg.Fetcher,
		counter: cfg.Counter,
		logger:  log.With().Str("component", "runner").Logger(),
		state:   StatePending,
	}, nil
}

// State returns the current run state and the area it applies to.
func (r *Runner) State() (State, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.area
}

func (r *Runner) setState(state State, area string) {
	r.mu.Lock()
	r.state = state
	r.area = area
	r.mu.Unlock()
}

// Run processes the areas in order. On success it returns the complete
// result; on any failure it returns a nil result and an *AbortError,
// and no area after the failing one is attempted.
func (r *Runner) Run(ctx context.Context, areas []string) (*Result, error) {
	stats := newStatistics(r.fetcher.Name())
	stats.PlannedAreas = len(areas)
	inventories := make(map[string]*inventory.Inventory, len(areas))

	r.logger.Info().
		Str("strategy", stats.Strategy).
		Int("areas", len(areas)).
		Msg("run started")

	for i, area := range areas {
		if err := ctx.Err(); err != nil {
			return nil, r.abort(stats, area, err)
		}

		areaStart := time.Now()
		requestsBefore := r.requests()

		r.setState(StateFetching, area)
		records, err := r.fetcher.Fetch(ctx, area)
		if err != nil {
			return nil, r.abort(stats, area, err)
		}

		r.setState(StateAggregating, area)
		inv, err := inventory.Aggregate(area, records)
		if err != nil {
			return nil, r.abort(stats, area, err)
		}

		r.setState(StateRecorded, area)
		elapsed := time.Since(areaStart)
		stats.record(AreaStats{
			Area:       area,
			Records:    len(records),
			Exchanges:  len(inv.Exchanges()),
			Space:      inv.Size(),
			Assigned:   inv.AssignedCount(),
			Unassigned: inv.UnassignedCount(),
			Requests:   r.requests() - requestsBefore,
			Elapsed:    elapsed,
		})
		inventories[area] = inv

		areasRecordedTotal.Inc()
		areaDuration.Observe(elapsed.Seconds())
		r.progress(i+1, len(areas), stats)
	}

	stats.finalize(OutcomeCompleted, "")
	r.setState(StateCompleted, "")
	runsTotal.WithLabelValues(string(OutcomeCompleted)).Inc()

	r.logger.Info().
		Int("areas", len(stats.Areas)).
		Int("assigned", stats.TotalAssigned).
		Int("unassigned", stats.TotalUnassigned).
		Int64("requests", stats.TotalRequests).
		Dur("elapsed", stats.Elapsed).
		Msg("run completed")

	return &Result{Stats: stats, Inventories: inventories}, nil
}

func (r *Runner) abort(stats *RunStatistics, area string, err error) error {
	stats.finalize(OutcomeAborted, area)
	r.setState(StateAborted, area)
	runsTotal.WithLabelValues(string(OutcomeAborted)).Inc()

	r.logger.Error().
		Err(err).
		Str("area", area).
		Int("areas_recorded", len(stats.Areas)).
		Msg("run aborted")

	return &AbortError{Area: area, Err: err, Stats: stats}
}

func (r *Runner) requests() int64 {
	if r.counter == nil {
		return 0
	}
	return r.counter.Requests()
}

// progress logs one line per recorded area with a running ETA, the
// only sign of life during an hours-long legacy run.
func (r *Runner) progress(done, total int, stats *RunStatistics) {
	elapsed := time.Since(stats.StartedAt)
	var eta time.Duration
	if done > 0 && done < total {
		eta = time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	}

	last := stats.Areas[len(stats.Areas)-1]
	r.logger.Info().
		Str("area", last.Area).
		Int("done", done).
		Int("total", total).
		Int("records", last.Records).
		Int("assigned", last.Assigned).
		Dur("elapsed", elapsed).
		Dur("eta", eta).
		Msg("area recorded")
}
