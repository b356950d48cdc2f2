// Package lerg defines the domain model for LERG-6 numbering data: areas
// (NPA), exchanges (NXX), and thousands-block identifiers.
package lerg

import "strings"

const (
	// StatusAssigned is the record status that marks a block as assigned.
	StatusAssigned = "assigned"

	// BlockA is the whole-exchange marker block. An exchange whose assigned
	// records carry only BlockA has all ten numeric blocks assigned at once.
	BlockA = "A"
)

// Record is one NPA/NXX/block row returned by the LERG-6 feed.
type Record struct {
	Area     string
	Exchange string
	Block    string
	Status   string
}

// Assigned reports whether the record marks its block as assigned.
func (r Record) Assigned() bool {
	return r.Status == StatusAssigned
}

// Key returns the canonical NPA-NXX-B form of the record.
func (r Record) Key() string {
	return r.Area + "-" + r.Exchange + "-" + r.Block
}

// AllAreas returns every queryable NPA in ascending order. The numbering
// plan allows 800 area codes: first digit 2-9, remaining digits 0-9.
func AllAreas() []string {
	return planCodes()
}

// AllExchanges returns every NXX the numbering plan allows within one area.
// The range is the same as for areas: 200 through 999.
func AllExchanges() []string {
	return planCodes()
}

func planCodes() []string {
	codes := make([]string, 0, 800)
	for n := '2'; n <= '9'; n++ {
		for x1 := '0'; x1 <= '9'; x1++ {
			for x2 := '0'; x2 <= '9'; x2++ {
				codes = append(codes, string([]rune{n, x1, x2}))
			}
		}
	}
	return codes
}

// ValidArea reports whether s is a well-formed NPA: three digits, first 2-9.
func ValidArea(s string) bool {
	return len(s) == 3 && s[0] >= '2' && s[0] <= '9' && digit(s[1]) && digit(s[2])
}

// ValidExchange reports whether s is a three-digit NXX.
func ValidExchange(s string) bool {
	return len(s) == 3 && digit(s[0]) && digit(s[1]) && digit(s[2])
}

// ValidBlock reports whether s is a numeric thousands block or the A marker.
func ValidBlock(s string) bool {
	return s == BlockA || NumericBlock(s)
}

// NumericBlock reports whether s is one of "0" through "9".
func NumericBlock(s string) bool {
	return len(s) == 1 && digit(s[0])
}

func digit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Pad3 left-pads a numeric code to three digits. Feed rows sometimes carry
// npa and nxx values as bare numbers, dropping leading zeros. Empty input
// stays empty so callers can tell absent values from padded ones.
func Pad3(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
