package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached page response.
type Entry struct {
	// Body is the raw JSON response body as served by the feed.
	Body json.RawMessage `json:"body"`

	// FetchedAt is when the page was fetched from the feed.
	FetchedAt time.Time `json:"fetched_at"`
}

// Age returns how long ago the page was fetched.
func (e *Entry) Age() time.Duration {
	return time.Since(e.FetchedAt)
}
