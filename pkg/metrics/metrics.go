// Package metrics provides the centralized Prometheus metrics registry for
// the DNO generator. All metrics are defined in their respective packages
// (client, cache, ratelimit, runner) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the generator.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - lerg_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - lerg_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - lerg_errors_total{class} (Counter): Errors by class (definitive, throttle, transient)
//
// Retry Metrics (pkg/client):
//   - lerg_retries_total{class} (Counter): Retry attempts by error class
//   - lerg_retry_backoff_seconds{class} (Histogram): Backoff duration by error class
//   - lerg_retry_exhausted_total{class} (Counter): Requests that exhausted max retries
//
// Page Cache Metrics (pkg/cache):
//   - lerg_page_cache_hits_total (Counter): Pages served from the cache
//   - lerg_page_cache_misses_total (Counter): Page cache misses
//   - lerg_page_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pacer Metrics (pkg/ratelimit):
//   - lerg_pacer_wait_seconds_total (Counter): Total time spent waiting in the pacer
//   - lerg_pacer_batch_pauses_total (Counter): Batch pauses taken by the pacer
//
// Run Metrics (pkg/runner):
//   - dno_runs_total{outcome} (Counter): Runs by outcome (completed, aborted)
//   - dno_areas_recorded_total (Counter): Areas fetched and aggregated successfully
//   - dno_area_duration_seconds (Histogram): Time to fetch and aggregate one area
//
// Example Prometheus Queries:
//
//   # Page Cache Hit Rate
//   sum(rate(lerg_page_cache_hits_total[5m])) /
//   (sum(rate(lerg_page_cache_hits_total[5m])) + sum(rate(lerg_page_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(lerg_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(lerg_request_duration_seconds_bucket[5m]))
//
//   # Area Throughput During a Run
//   rate(dno_areas_recorded_total[5m])
//
//   # Retry Pressure by Class
//   sum by (class) (rate(lerg_retries_total[5m]))
