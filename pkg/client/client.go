// Package client implements the LERG-6 HTTP request layer: token
// authentication, per-attempt timeouts, retry with exponential backoff,
// error classification, and optional pacing and page caching.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dnogen/pkg/cache"
	"dnogen/pkg/ratelimit"
)

// Prometheus metrics for LERG client operations.
var (
	lergRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lerg_requests_total",
		Help: "Total LERG requests by endpoint and status",
	}, []string{"endpoint", "status"})

	lergRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lerg_request_duration_seconds",
		Help:    "LERG request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 45},
	}, []string{"endpoint"})

	lergErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lerg_errors_total",
		Help: "Total LERG request errors by class",
	}, []string{"class"})

	lergRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lerg_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"class"})

	lergRetryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lerg_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"class"})

	lergRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lerg_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"class"})
)

// DefaultBaseURL is the LERG-6 query root.
const DefaultBaseURL = "https://api-dev.ringer.tel/v1/telique/lerg/lerg_6"

// Client issues authenticated LERG-6 queries with the full request
// discipline. The run loop drives it from a single goroutine; only the
// request counter is safe to read concurrently.
type Client struct {
	httpClient *http.Client
	config     Config
	pacer      *ratelimit.Pacer
	pages      *cache.Manager
	logger     zerolog.Logger
	requests   atomic.Int64
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the LERG-6 query root. Defaults to DefaultBaseURL.
	BaseURL string

	// APIToken is sent as the x-api-token header on every request. Required.
	APIToken string

	// RequestTimeout bounds each attempt independently of backoff waits.
	RequestTimeout time.Duration

	// Retry governs attempts and backoff growth for transient failures.
	Retry RetryPolicy

	// Pacer spaces outbound requests when set. Nil disables pacing.
	Pacer *ratelimit.Pacer

	// Pages caches page responses for re-runs when set. Nil disables caching.
	Pages *cache.Manager
}

// DefaultConfig returns the configuration used against the production feed.
func DefaultConfig(token string) Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		APIToken:       token,
		RequestTimeout: 45 * time.Second,
		Retry:          DefaultRetryPolicy(),
	}
}

// New creates a LERG client.
func New(cfg Config) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("api token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	logger := log.With().Str("component", "lerg-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
		pacer:  cfg.Pacer,
		pages:  cfg.Pages,
		logger: logger,
	}, nil
}

// GetJSON issues one GET against a query path and decodes the JSON body
// into v. Pacing applies once per logical request; each attempt carries
// the auth header and its own timeout; failures are classified and
// retried per the policy. v must tolerate being decoded into again on a
// retry after a truncated body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	endpoint := endpointLabel(path)

	fullPath := path
	if enc := query.Encode(); enc != "" {
		fullPath = path + "?" + enc
	}
	requestURL := c.config.BaseURL + "/" + fullPath

	start := time.Now()
	defer func() {
		lergRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if c.pages != nil {
		entry, err := c.pages.Get(ctx, fullPath)
		switch {
		case err == nil:
			c.logger.Debug().
				Str("path", fullPath).
				Time("fetched_at", entry.FetchedAt).
				Msg("page cache hit")
			lergRequestsTotal.WithLabelValues(endpoint, "cache").Inc()
			return json.Unmarshal(entry.Body, v)
		case !errors.Is(err, cache.ErrMiss):
			c.logger.Warn().Err(err).Str("path", fullPath).Msg("page cache read failed")
		}
	}

	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return fmt.Errorf("pacing wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-token", c.config.APIToken)
	req.Header.Set("Accept", "application/json")

	var body []byte
	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		c.requests.Add(1)

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("request failed")
			lergErrorsTotal.WithLabelValues(string(ClassTransient)).Inc()
			lergRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &RequestError{Endpoint: endpoint, Class: ClassTransient, Err: reqErr}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			class := classifyStatus(resp.StatusCode)
			lergErrorsTotal.WithLabelValues(string(class)).Inc()
			lergRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("class", string(class)).
				Msg("request rejected")

			if class == ClassDefinitive {
				return &DefinitiveError{Endpoint: endpoint, StatusCode: resp.StatusCode}
			}
			return &RequestError{Endpoint: endpoint, StatusCode: resp.StatusCode, Class: class}
		}

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			lergErrorsTotal.WithLabelValues(string(ClassTransient)).Inc()
			lergRequestsTotal.WithLabelValues(endpoint, "read_error").Inc()
			return &RequestError{Endpoint: endpoint, Class: ClassTransient, Err: readErr}
		}

		if decodeErr := json.Unmarshal(b, v); decodeErr != nil {
			// The feed occasionally truncates bodies under load; a
			// fresh attempt usually returns a parseable page.
			lergErrorsTotal.WithLabelValues(string(ClassTransient)).Inc()
			lergRequestsTotal.WithLabelValues(endpoint, "decode_error").Inc()
			return &RequestError{Endpoint: endpoint, Class: ClassTransient, Err: fmt.Errorf("decode response: %w", decodeErr)}
		}

		body = b
		lergRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	})
	if retryErr != nil {
		return retryErr
	}

	if c.pages != nil {
		if err := c.pages.Set(ctx, fullPath, body); err != nil {
			c.logger.Warn().Err(err).Str("path", fullPath).Msg("page cache write failed")
		}
	}

	return nil
}

// Requests returns the number of HTTP requests issued so far, including
// retry attempts. The run loop snapshots this around each area.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// endpointLabel reduces a query path to its selector for metric labels,
// keeping cardinality independent of the area being fetched.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}
