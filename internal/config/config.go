// Package config loads generator configuration from the environment.
// Every variable is also readable under the DNO_ prefix, which wins
// over the bare name when both are set.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full environment-driven configuration of a run.
// Behavior toggles here are read once at startup and passed to the
// components that need them; nothing downstream reads the environment.
type Config struct {
	// APIToken authenticates against the LERG feed.
	APIToken string `envconfig:"API_TOKEN" required:"true"`

	// BaseURL overrides the feed root. Empty means the built-in default.
	BaseURL string `envconfig:"API_BASE_URL"`

	// BulkFetch selects the single-step strategy. The two-step legacy
	// strategy is kept for result verification against old runs.
	BulkFetch bool `envconfig:"BULK_FETCH" default:"true"`

	// Debug lowers the log level to debug.
	Debug bool `envconfig:"DEBUG"`

	// RateLimit enables client-side request pacing.
	RateLimit bool `envconfig:"RATE_LIMIT"`

	// OutputDir is where the artifact files land.
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`

	// MetricsAddr serves /metrics and /health while a run is active
	// when set, e.g. ":9090". Empty disables the listener.
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// RedisAddr enables the page-response cache when set.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// CacheTTL bounds how long cached pages survive.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"6h"`

	// EmailNotifications turns run notifications on or off.
	EmailNotifications bool `envconfig:"EMAIL_NOTIFICATIONS" default:"true"`

	// SendGridAPIKey authenticates notification delivery. Empty skips
	// delivery without failing the run.
	SendGridAPIKey    string `envconfig:"SENDGRID_API_KEY"`
	SendGridFromEmail string `envconfig:"SENDGRID_FROM_EMAIL" default:"dno-generator@teliax.com"`
	SendGridToEmail   string `envconfig:"SENDGRID_TO_EMAIL" default:"engineering@teliax.com"`

	// BigQueryProject and BigQueryTable locate the traceback table.
	// Both empty disables the feed.
	BigQueryProject string `envconfig:"BIGQUERY_PROJECT"`
	BigQueryTable   string `envconfig:"BIGQUERY_TABLE"`

	// GoogleCredentials optionally points at a service account key
	// for the traceback query.
	GoogleCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("dno", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if (c.BigQueryProject == "") != (c.BigQueryTable == "") {
		return fmt.Errorf("bigquery project and table must be set together")
	}
	return nil
}
