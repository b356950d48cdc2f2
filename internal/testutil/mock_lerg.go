// Package testutil provides testing utilities for the LERG client and
// fetch strategies.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"dnogen/pkg/lerg"
)

// MockLERG is a configurable mock of the LERG-6 query API. It serves
// seeded records through the same selectors the real feed exposes,
// honoring limit/offset pagination, and can inject failures per path.
type MockLERG struct {
	server *httptest.Server

	mu         sync.RWMutex
	records    map[string][]lerg.Record
	failures   []*failureRule
	handlers   map[string]http.HandlerFunc
	requests   int
	pathCounts map[string]int
	lastHeader http.Header
}

type failureRule struct {
	substr    string
	status    int
	remaining int // negative means always
}

// NewMockLERG creates a mock feed with no data seeded.
func NewMockLERG() *MockLERG {
	mock := &MockLERG{
		records:    make(map[string][]lerg.Record),
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock feed's base URL.
func (m *MockLERG) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockLERG) Close() {
	m.server.Close()
}

// SeedArea installs the record set served for one area.
func (m *MockLERG) SeedArea(area string, records []lerg.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[area] = records
}

// FailTimes makes the next times requests whose path contains substr
// fail with the given status. Later matching requests succeed again.
func (m *MockLERG) FailTimes(substr string, status, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, &failureRule{substr: substr, status: status, remaining: times})
}

// FailAlways makes every request whose path contains substr fail with
// the given status.
func (m *MockLERG) FailAlways(substr string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, &failureRule{substr: substr, status: status, remaining: -1})
}

// SetHandler overrides the response for an exact request path.
func (m *MockLERG) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// RequestCount returns the total number of requests served.
func (m *MockLERG) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// PathRequestCount returns how many requests had paths containing substr.
func (m *MockLERG) PathRequestCount(substr string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for path, n := range m.pathCounts {
		if strings.Contains(path, substr) {
			count += n
		}
	}
	return count
}

// LastHeader returns the headers of the most recent request.
func (m *MockLERG) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// Reset clears request tracking and failure rules, keeping seeded data.
func (m *MockLERG) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = 0
	m.pathCounts = make(map[string]int)
	m.failures = nil
	m.lastHeader = nil
}

func (m *MockLERG) handle(w http.ResponseWriter, r *http.Request) {
	fullPath := r.URL.Path
	if r.URL.RawQuery != "" {
		fullPath += "?" + r.URL.RawQuery
	}

	m.mu.Lock()
	m.requests++
	m.pathCounts[fullPath]++
	m.lastHeader = r.Header.Clone()

	var failWith int
	for _, rule := range m.failures {
		if rule.remaining != 0 && strings.Contains(fullPath, rule.substr) {
			failWith = rule.status
			if rule.remaining > 0 {
				rule.remaining--
			}
			break
		}
	}
	handler := m.handlers[r.URL.Path]
	m.mu.Unlock()

	if failWith != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(failWith)
		w.Write([]byte(`{"error": "injected failure"}`))
		return
	}

	if handler != nil {
		handler(w, r)
		return
	}

	m.serve(w, r)
}

// serve answers a selector query from the seeded records.
func (m *MockLERG) serve(w http.ResponseWriter, r *http.Request) {
	selector, filter := splitQueryPath(r.URL.Path)
	area := filter.Get("npa")
	exchange := filter.Get("nxx")

	limit := intParam(r, "limit", 10000)
	offset := intParam(r, "offset", 0)

	m.mu.RLock()
	records := m.records[area]
	m.mu.RUnlock()

	var rows []map[string]string
	switch selector {
	case "npa,nxx,block_id":
		for _, rec := range records {
			if exchange != "" && rec.Exchange != exchange {
				continue
			}
			rows = append(rows, map[string]string{
				"npa":      rec.Area,
				"nxx":      rec.Exchange,
				"block_id": rec.Block,
				"status":   rec.Status,
			})
		}
	case "npa,nxx":
		seen := make(map[string]struct{})
		for _, rec := range records {
			if _, ok := seen[rec.Exchange]; ok {
				continue
			}
			seen[rec.Exchange] = struct{}{}
		}
		exchanges := make([]string, 0, len(seen))
		for x := range seen {
			exchanges = append(exchanges, x)
		}
		sort.Strings(exchanges)
		for _, x := range exchanges {
			rows = append(rows, map[string]string{"npa": area, "nxx": x})
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "unknown selector"}`))
		return
	}

	total := len(rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := rows[offset:end]

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data":         page,
		"total_unique": total,
	})
}

// splitQueryPath breaks "/npa,nxx,block_id/npa=201&nxx=555" into the
// selector and its filter values.
func splitQueryPath(path string) (string, url.Values) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return parts[0], url.Values{}
	}
	filter, err := url.ParseQuery(parts[1])
	if err != nil {
		return parts[0], url.Values{}
	}
	return parts[0], filter
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
