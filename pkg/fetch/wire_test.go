package fetch

import (
	"encoding/json"
	"testing"

	"dnogen/pkg/lerg"
)

func TestWireRecordNormalization(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected lerg.Record
	}{
		{
			name: "string fields",
			body: `{"npa": "201", "nxx": "555", "block_id": "0", "status": "assigned"}`,
			expected: lerg.Record{
				Area: "201", Exchange: "555", Block: "0", Status: "assigned",
			},
		},
		{
			name: "numeric codes padded",
			body: `{"npa": 201, "nxx": 7, "block_id": "1", "status": "assigned"}`,
			expected: lerg.Record{
				Area: "201", Exchange: "007", Block: "1", Status: "assigned",
			},
		},
		{
			name: "absent status defaults to assigned",
			body: `{"npa": "201", "nxx": "555", "block_id": "A"}`,
			expected: lerg.Record{
				Area: "201", Exchange: "555", Block: "A", Status: "assigned",
			},
		},
		{
			name: "status case folded",
			body: `{"npa": "201", "nxx": "555", "block_id": "3", "status": "ASSIGNED"}`,
			expected: lerg.Record{
				Area: "201", Exchange: "555", Block: "3", Status: "assigned",
			},
		},
		{
			name: "null fields stay empty",
			body: `{"npa": null, "nxx": null, "block_id": null, "status": null}`,
			expected: lerg.Record{
				Area: "", Exchange: "", Block: "", Status: "assigned",
			},
		},
		{
			name: "whitespace trimmed",
			body: `{"npa": " 201 ", "nxx": "555", "block_id": " 2 ", "status": " assigned "}`,
			expected: lerg.Record{
				Area: "201", Exchange: "555", Block: "2", Status: "assigned",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var row wireRecord
			if err := json.Unmarshal([]byte(tt.body), &row); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := row.toRecord(); got != tt.expected {
				t.Errorf("toRecord() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestEnvelopeDecode(t *testing.T) {
	body := `{
		"data": [
			{"npa": "201", "nxx": "555", "block_id": "0", "status": "assigned"},
			{"npa": 201, "nxx": 556, "block_id": "A"}
		],
		"total_unique": 2
	}`

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if env.TotalUnique != 2 {
		t.Errorf("TotalUnique = %d, want 2", env.TotalUnique)
	}
	if len(env.Data) != 2 {
		t.Fatalf("rows = %d, want 2", len(env.Data))
	}

	second := env.Data[1].toRecord()
	if second.Exchange != "556" {
		t.Errorf("Exchange = %q, want %q", second.Exchange, "556")
	}
	if second.Block != lerg.BlockA {
		t.Errorf("Block = %q, want %q", second.Block, lerg.BlockA)
	}
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"quoted", `"201"`, "201"},
		{"number", `201`, "201"},
		{"single digit number", `7`, "7"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexString
			if err := json.Unmarshal([]byte(tt.raw), &f); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if string(f) != tt.expected {
				t.Errorf("flexString(%s) = %q, want %q", tt.raw, f, tt.expected)
			}
		})
	}
}
