// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Page cache operations (hit/miss, key, TTL)
//   - Per-page request flow (offset, rows returned)
//   - Pacer waits and batch pauses
//
// Info: Normal operation events
//   - Area completed (records, assigned, unassigned, elapsed)
//   - Run progress with ETA
//   - Run completed with totals
//   - Artifact files written
//
// Warn: Warning conditions that don't prevent operation
//   - Retry attempts (attempt, class, backoff)
//   - Page cache errors (fallback to direct request)
//   - Rows skipped as invalid in artifact output
//   - Notification delivery failures
//
// Error: Error conditions requiring attention
//   - Retries exhausted for a page
//   - Rejected credentials (definitive, no retry)
//   - Run aborted (failing area and cause)
//   - Configuration errors
//
// Context Fields:
//   - area: NPA being processed
//   - endpoint: LERG selector path
//   - offset: pagination offset of the request
//   - attempt: retry attempt number
//   - class: error classification (definitive, throttle, transient)
//   - backoff: wait before the next attempt
//   - status_code: HTTP status code
//   - records: row count for a page or area
//   - elapsed: time spent on an area or run
