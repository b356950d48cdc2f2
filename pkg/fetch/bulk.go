package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dnogen/pkg/client"
	"dnogen/pkg/lerg"
)

// BulkFetcher walks the combined npa,nxx,block_id selector with the
// feed's maximum page size. This is the default strategy: most areas
// fit in a single page.
type BulkFetcher struct {
	client   *client.Client
	logger   zerolog.Logger
	pageSize int
}

// NewBulk creates the bulk strategy on top of a client.
func NewBulk(c *client.Client) *BulkFetcher {
	return &BulkFetcher{
		client:   c,
		logger:   log.With().Str("component", "bulk-fetch").Logger(),
		pageSize: BulkPageSize,
	}
}

// Name implements Fetcher.
func (f *BulkFetcher) Name() string {
	return "bulk"
}

// Fetch returns every block record for an area, walking offsets until a
// page shorter than the page size marks the end.
func (f *BulkFetcher) Fetch(ctx context.Context, area string) ([]lerg.Record, error) {
	if !lerg.ValidArea(area) {
		return nil, fmt.Errorf("invalid area %q", area)
	}

	path := "npa,nxx,block_id/npa=" + area
	var records []lerg.Record

	for page, offset := 1, 0; ; page, offset = page+1, offset+f.pageSize {
		query := url.Values{
			"limit":  []string{strconv.Itoa(f.pageSize)},
			"offset": []string{strconv.Itoa(offset)},
		}

		var env envelope
		if err := f.client.GetJSON(ctx, path, query, &env); err != nil {
			return nil, fmt.Errorf("area %s page %d: %w", area, page, err)
		}

		if page == 1 {
			f.logger.Debug().
				Str("area", area).
				Int("total_unique", env.TotalUnique).
				Msg("first page fetched")
		}

		for _, row := range env.Data {
			rec := row.toRecord()
			if rec.Area == "" || rec.Exchange == "" || rec.Block == "" {
				// Blank rows appear in the feed and mean nothing.
				continue
			}
			records = append(records, rec)
		}

		if len(env.Data) < f.pageSize {
			f.logger.Debug().
				Str("area", area).
				Int("pages", page).
				Int("records", len(records)).
				Msg("area drained")
			return records, nil
		}
	}
}
