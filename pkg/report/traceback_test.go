package report

import (
	"testing"

	bigquery "google.golang.org/api/bigquery/v2"
)

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"full number", "2125551234", "2125551234", true},
		{"country code stripped", "12125551234", "2125551234", true},
		{"short code kept", "611", "611", true},
		{"area exchange kept", "999203", "999203", true},
		{"odd length kept for later filtering", "12345", "12345", true},
		{"whitespace trimmed", " 611 ", "611", true},
		{"eleven digits without country code", "22125551234", "", false},
		{"twelve digits", "123456789012", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeDigits(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("normalizeDigits(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("normalizeDigits(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func row(values ...interface{}) *bigquery.TableRow {
	cells := make([]*bigquery.TableCell, len(values))
	for i, v := range values {
		cells[i] = &bigquery.TableCell{V: v}
	}
	return &bigquery.TableRow{F: cells}
}

func TestExtractTraceback(t *testing.T) {
	rows := []*bigquery.TableRow{
		row("2125551234", "2025-07-15 08:30:00"),
		row("12125559876", "2025-07-16 09:00:00"),
		row(float64(611), "2025-07-17 10:00:00"),
		row("22125551234", "2025-07-18 11:00:00"), // too long after normalization
		row("3035551234", ""),                     // no creation date
		row(nil, "2025-07-19 12:00:00"),           // no number
		row("3035551234"),                         // missing cell
		nil,
	}

	got := extractTraceback(rows)

	want := []TracebackRecord{
		{Digits: "2125551234", Source: "ITG", CreatedAt: "2025-07-15 08:30:00"},
		{Digits: "2125559876", Source: "ITG", CreatedAt: "2025-07-16 09:00:00"},
		{Digits: "611", Source: "ITG", CreatedAt: "2025-07-17 10:00:00"},
	}
	if len(got) != len(want) {
		t.Fatalf("extracted %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractTraceback_Empty(t *testing.T) {
	if got := extractTraceback(nil); len(got) != 0 {
		t.Errorf("extractTraceback(nil) = %v, want empty", got)
	}
}

func TestTracebackConfigEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  TracebackConfig
		want bool
	}{
		{"project and table", TracebackConfig{Project: "p", Table: "p.DNO.2025_08"}, true},
		{"missing table", TracebackConfig{Project: "p"}, false},
		{"missing project", TracebackConfig{Table: "p.DNO.2025_08"}, false},
		{"empty", TracebackConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
