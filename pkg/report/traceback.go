package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	bigquery "google.golang.org/api/bigquery/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"dnogen/pkg/logging"
)

// TracebackSourceITG labels rows contributed by the traceback feed.
const TracebackSourceITG = "ITG"

// DefaultTracebackRows caps how many traceback rows one query returns.
const DefaultTracebackRows = 10000

// tracebackQueryTimeout bounds the query server-side.
const tracebackQueryTimeout = 60 * time.Second

// TracebackRecord is one externally reported number destined for the
// unassigned artifact. CreatedAt is passed through to the CSV verbatim,
// in whatever form the store returns it.
type TracebackRecord struct {
	Digits    string
	Source    string
	CreatedAt string
}

// TracebackSource supplies reported numbers to merge into the
// unassigned artifact. Implementations return an empty slice when the
// feed has nothing; errors are the caller's to downgrade, the run
// itself never depends on traceback data.
type TracebackSource interface {
	Fetch(ctx context.Context) ([]TracebackRecord, error)
}

// TracebackConfig locates the traceback table.
type TracebackConfig struct {
	// Project is the BigQuery project to bill the query to.
	Project string

	// Table is the fully qualified table, e.g. "proj.DNO.2025_08".
	Table string

	// CredentialsFile optionally points at a service account key.
	// When empty, application default credentials apply.
	CredentialsFile string

	// MaxRows caps the result set. Zero means DefaultTracebackRows.
	MaxRows int64
}

// Enabled reports whether the feed is configured at all.
func (c TracebackConfig) Enabled() bool {
	return c.Project != "" && c.Table != ""
}

// BigQueryTraceback reads reported numbers from a BigQuery table with
// phoneNumber and createDate columns.
type BigQueryTraceback struct {
	service *bigquery.Service
	project string
	table   string
	maxRows int64
	logger  zerolog.Logger
}

// NewBigQueryTraceback creates the feed. The config must be Enabled.
func NewBigQueryTraceback(ctx context.Context, cfg TracebackConfig) (*BigQueryTraceback, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("traceback project and table are required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	service, err := bigquery.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery service: %w", err)
	}

	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultTracebackRows
	}

	return &BigQueryTraceback{
		service: service,
		project: cfg.Project,
		table:   cfg.Table,
		maxRows: maxRows,
		logger:  logging.NewLogger("traceback"),
	}, nil
}

// Fetch runs the query and returns normalized records.
func (s *BigQueryTraceback) Fetch(ctx context.Context) ([]TracebackRecord, error) {
	req := &bigquery.QueryRequest{
		Query:        fmt.Sprintf("SELECT phoneNumber, createDate FROM `%s`", s.table),
		MaxResults:   s.maxRows,
		TimeoutMs:    tracebackQueryTimeout.Milliseconds(),
		UseLegacySql: googleapi.Bool(false),
	}

	resp, err := s.service.Jobs.Query(s.project, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("traceback query: %w", err)
	}
	if !resp.JobComplete {
		return nil, fmt.Errorf("traceback query did not complete within %s", tracebackQueryTimeout)
	}

	records := extractTraceback(resp.Rows)
	s.logger.Info().
		Str("table", s.table).
		Int("records", len(records)).
		Msg("traceback records fetched")
	return records, nil
}

// extractTraceback turns raw result rows into records. Rows missing a
// number or a creation date are dropped, as are numbers that stay
// longer than ten digits after normalization.
func extractTraceback(rows []*bigquery.TableRow) []TracebackRecord {
	var records []TracebackRecord
	for _, row := range rows {
		if row == nil || len(row.F) < 2 {
			continue
		}
		digits, ok := normalizeDigits(cellString(row.F[0]))
		if !ok {
			continue
		}
		created := strings.TrimSpace(cellString(row.F[1]))
		if created == "" {
			continue
		}
		records = append(records, TracebackRecord{
			Digits:    digits,
			Source:    TracebackSourceITG,
			CreatedAt: created,
		})
	}
	return records
}

// normalizeDigits strips the country code from 11-digit numbers and
// rejects anything still longer than a full number. Short codes pass
// through as-is; per-length filtering happens when the artifact is
// written.
func normalizeDigits(digits string) (string, bool) {
	digits = strings.TrimSpace(digits)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if digits == "" || len(digits) > 10 {
		return "", false
	}
	return digits, true
}

func cellString(cell *bigquery.TableCell) string {
	if cell == nil || cell.V == nil {
		return ""
	}
	if s, ok := cell.V.(string); ok {
		return s
	}
	return fmt.Sprint(cell.V)
}
