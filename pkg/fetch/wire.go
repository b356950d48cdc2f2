package fetch

import (
	"encoding/json"
	"strings"

	"dnogen/pkg/lerg"
)

// envelope is the feed's response wrapper.
type envelope struct {
	Data        []wireRecord `json:"data"`
	TotalUnique int          `json:"total_unique"`
}

// wireRecord is one feed row. Selector endpoints omit the columns they
// do not project, so every field is optional.
type wireRecord struct {
	NPA     flexString `json:"npa"`
	NXX     flexString `json:"nxx"`
	BlockID flexString `json:"block_id"`
	Status  flexString `json:"status"`
}

// toRecord normalizes a feed row. Codes are zero-padded back to three
// digits; an absent status means assigned, which is all the feed wrote
// historically.
func (w wireRecord) toRecord() lerg.Record {
	status := strings.ToLower(strings.TrimSpace(string(w.Status)))
	if status == "" {
		status = lerg.StatusAssigned
	}
	return lerg.Record{
		Area:     lerg.Pad3(string(w.NPA)),
		Exchange: lerg.Pad3(string(w.NXX)),
		Block:    strings.TrimSpace(string(w.BlockID)),
		Status:   status,
	}
}

// flexString tolerates the feed serving codes as JSON numbers or
// strings. Numeric form drops leading zeros; lerg.Pad3 restores them.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
