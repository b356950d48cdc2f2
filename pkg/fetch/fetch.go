// Package fetch implements the two retrieval strategies for LERG-6
// assignment data: the bulk paginated query and the legacy two-step
// walk. Both yield the same record set for the same underlying data;
// the legacy path survives as a configurable fallback for when the
// combined selector misbehaves.
package fetch

import (
	"context"

	"dnogen/pkg/lerg"
)

// Fetcher retrieves the complete record set for one area. A fetch
// either returns every record the feed holds for the area or an error;
// a partial set is never returned.
type Fetcher interface {
	Fetch(ctx context.Context, area string) ([]lerg.Record, error)

	// Name identifies the strategy in logs and run statistics.
	Name() string
}

const (
	// BulkPageSize is the feed's maximum page size.
	BulkPageSize = 10000

	// LegacyPageSize is the page size used by the two-step walk.
	LegacyPageSize = 1000
)
