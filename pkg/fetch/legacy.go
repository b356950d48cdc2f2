package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"dnogen/pkg/client"
	"dnogen/pkg/lerg"
)

// LegacyFetcher is the original two-step walk: enumerate the area's
// exchanges, then query each exchange's block rows individually. It
// issues one request per exchange instead of one per page, so a full
// run takes hours where bulk takes minutes.
type LegacyFetcher struct {
	client   *client.Client
	logger   zerolog.Logger
	pageSize int
}

// NewLegacy creates the legacy strategy on top of a client.
func NewLegacy(c *client.Client) *LegacyFetcher {
	return &LegacyFetcher{
		client:   c,
		logger:   log.With().Str("component", "legacy-fetch").Logger(),
		pageSize: LegacyPageSize,
	}
}

// Name implements Fetcher.
func (f *LegacyFetcher) Name() string {
	return "legacy"
}

// Fetch returns every block record for an area. The record set matches
// what BulkFetcher produces for the same underlying data: records come
// only from step-two rows, so an exchange with no block rows does not
// register here either.
func (f *LegacyFetcher) Fetch(ctx context.Context, area string) ([]lerg.Record, error) {
	if !lerg.ValidArea(area) {
		return nil, fmt.Errorf("invalid area %q", area)
	}

	exchanges, err := f.exchanges(ctx, area)
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("area", area).
		Int("exchanges", len(exchanges)).
		Msg("exchange enumeration complete")

	var records []lerg.Record
	for _, exchange := range exchanges {
		recs, err := f.blocks(ctx, area, exchange)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	f.logger.Debug().
		Str("area", area).
		Int("records", len(records)).
		Msg("area drained")

	return records, nil
}

// exchanges enumerates the area's distinct NXX codes (step one).
func (f *LegacyFetcher) exchanges(ctx context.Context, area string) ([]string, error) {
	path := "npa,nxx/npa=" + area
	seen := make(map[string]struct{})

	for page, offset := 1, 0; ; page, offset = page+1, offset+f.pageSize {
		query := url.Values{
			"limit":  []string{strconv.Itoa(f.pageSize)},
			"offset": []string{strconv.Itoa(offset)},
		}

		var env envelope
		if err := f.client.GetJSON(ctx, path, query, &env); err != nil {
			return nil, fmt.Errorf("area %s exchange page %d: %w", area, page, err)
		}

		for _, row := range env.Data {
			exchange := lerg.Pad3(string(row.NXX))
			if string(row.NPA) == "" || exchange == "" {
				continue
			}
			seen[exchange] = struct{}{}
		}

		if len(env.Data) < f.pageSize {
			break
		}
	}

	exchanges := make([]string, 0, len(seen))
	for exchange := range seen {
		exchanges = append(exchanges, exchange)
	}
	sort.Strings(exchanges)
	return exchanges, nil
}

// blocks fetches one exchange's block rows (step two). Area and
// exchange come from the request; the selector already fixed them.
func (f *LegacyFetcher) blocks(ctx context.Context, area, exchange string) ([]lerg.Record, error) {
	path := "npa,nxx,block_id/npa=" + area + "&nxx=" + exchange
	var records []lerg.Record

	for page, offset := 1, 0; ; page, offset = page+1, offset+f.pageSize {
		query := url.Values{
			"limit":  []string{strconv.Itoa(f.pageSize)},
			"offset": []string{strconv.Itoa(offset)},
		}

		var env envelope
		if err := f.client.GetJSON(ctx, path, query, &env); err != nil {
			return nil, fmt.Errorf("area %s exchange %s page %d: %w", area, exchange, page, err)
		}

		for _, row := range env.Data {
			rec := row.toRecord()
			rec.Area = area
			rec.Exchange = exchange
			if rec.Block == "" {
				continue
			}
			records = append(records, rec)
		}

		if len(env.Data) < f.pageSize {
			break
		}
	}

	return records, nil
}
