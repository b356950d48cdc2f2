package inventory

import (
	"fmt"
	"sort"

	"dnogen/pkg/lerg"
)

// MalformedRecordError rejects a record whose shape makes the whole
// area's inventory untrustworthy.
type MalformedRecordError struct {
	Record lerg.Record
	Reason string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s", e.Record.Key(), e.Reason)
}

// Aggregate folds an area's records into its assignment inventory.
// An exchange exists once any record names it, assigned or not. A
// numeric block is assigned when an assigned record lists it; an
// exchange whose assigned records carry only the A marker has all ten
// blocks assigned. Same records in any order produce the same
// inventory.
func Aggregate(area string, records []lerg.Record) (*Inventory, error) {
	if !lerg.ValidArea(area) {
		return nil, fmt.Errorf("invalid area %q", area)
	}

	observed := make(map[string]struct{})
	numeric := make(map[string]map[string]struct{})
	marked := make(map[string]struct{})

	for _, rec := range records {
		if rec.Area != area {
			return nil, &MalformedRecordError{
				Record: rec,
				Reason: fmt.Sprintf("area %q does not belong to %s", rec.Area, area),
			}
		}
		if !lerg.ValidExchange(rec.Exchange) {
			return nil, &MalformedRecordError{
				Record: rec,
				Reason: fmt.Sprintf("exchange %q is not three digits", rec.Exchange),
			}
		}
		if !lerg.ValidBlock(rec.Block) {
			return nil, &MalformedRecordError{
				Record: rec,
				Reason: fmt.Sprintf("block %q is not 0-9 or %s", rec.Block, lerg.BlockA),
			}
		}

		observed[rec.Exchange] = struct{}{}
		if !rec.Assigned() {
			continue
		}

		if rec.Block == lerg.BlockA {
			marked[rec.Exchange] = struct{}{}
			continue
		}
		if numeric[rec.Exchange] == nil {
			numeric[rec.Exchange] = make(map[string]struct{})
		}
		numeric[rec.Exchange][rec.Block] = struct{}{}
	}

	exchanges := make([]string, 0, len(observed))
	for exchange := range observed {
		exchanges = append(exchanges, exchange)
	}
	sort.Strings(exchanges)

	inv := &Inventory{
		area:      area,
		exchanges: exchanges,
		blocks:    make(map[string][10]bool, len(exchanges)),
		ablocks:   make(map[string]ABlock),
	}

	for _, exchange := range exchanges {
		var flags [10]bool
		explicit := numeric[exchange]
		_, hasMarker := marked[exchange]

		switch {
		case hasMarker && len(explicit) == 0:
			// The marker alone covers the whole exchange.
			for b := range flags {
				flags[b] = true
			}
			inv.ablocks[exchange] = ABlock{Exchange: exchange, AOnly: true}
		default:
			for block := range explicit {
				flags[block[0]-'0'] = true
			}
			if hasMarker {
				inv.ablocks[exchange] = ABlock{
					Exchange: exchange,
					Numeric:  sortedBlocks(explicit),
				}
			}
		}

		for _, set := range flags {
			if set {
				inv.assigned++
			}
		}
		inv.blocks[exchange] = flags
	}

	return inv, nil
}

func sortedBlocks(blocks map[string]struct{}) []string {
	out := make([]string, 0, len(blocks))
	for b := range blocks {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
