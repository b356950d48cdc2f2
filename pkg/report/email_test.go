package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"dnogen/pkg/runner"
)

// capturedNotifier returns a notifier whose send is recorded instead
// of hitting SendGrid.
func capturedNotifier(sent *[]*mail.SGMailV3) *Notifier {
	n := NewNotifier(EmailConfig{
		APIKey:  "SG.test-key",
		From:    "dno-generator@example.com",
		To:      "engineering@example.com",
		Enabled: true,
	})
	n.now = func() time.Time {
		return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	}
	n.send = func(m *mail.SGMailV3) (*rest.Response, error) {
		*sent = append(*sent, m)
		return &rest.Response{StatusCode: 202}, nil
	}
	return n
}

func successStats() (*runner.RunStatistics, *Artifacts) {
	stats := &runner.RunStatistics{
		Strategy:     "bulk",
		Elapsed:      150 * time.Second,
		Outcome:      runner.OutcomeCompleted,
		PlannedAreas: 2,
		Areas: []runner.AreaStats{
			{Area: "201"},
			{Area: "212"},
		},
		TotalAssigned: 1234,
		TotalRequests: 42,
	}
	art := &Artifacts{
		AssignedRows:   1234,
		PlanSpace:      20000,
		PlanUnassigned: 18766,
		CondensedRows:  920,
		TracebackRows:  17,
		OutputRows:     937,
	}
	return stats, art
}

func TestNotifySuccess(t *testing.T) {
	var sent []*mail.SGMailV3
	n := capturedNotifier(&sent)

	n.NotifySuccess(successStats())

	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	msg := sent[0]

	if want := "✅ DNO Generation Completed - 1,234 Assigned"; msg.Subject != want {
		t.Errorf("subject = %q, want %q", msg.Subject, want)
	}
	if msg.From.Address != "dno-generator@example.com" {
		t.Errorf("from = %q", msg.From.Address)
	}
	if to := msg.Personalizations[0].To[0].Address; to != "engineering@example.com" {
		t.Errorf("to = %q", to)
	}
	if len(msg.Content) != 1 || msg.Content[0].Type != "text/plain" {
		t.Fatalf("content = %+v, want single text/plain part", msg.Content)
	}

	body := msg.Content[0].Value
	for _, want := range []string{
		"DNO Generation Completed Successfully",
		"- Runtime: 2.5 minutes",
		"- NPAs Processed: 2",
		"- API Calls Made: 42",
		"- Fetch Mode: BULK",
		"- Total Theoretically Possible: 20,000",
		"- Currently Assigned (LERG): 1,234 (6.17%)",
		"- Currently Unassigned: 18,766 (93.83%)",
		"- Condensed Unassigned Entries: 920",
		"- ITG Traceback Records: 17",
		"- assigned_npa_nxx_x.csv - 1,234 records",
		"- unassigned_npa_nxx_x.csv - 937 records",
		"Generated at 2025-08-01T12:00:00Z",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestNotifyFailure(t *testing.T) {
	var sent []*mail.SGMailV3
	n := capturedNotifier(&sent)

	n.NotifyFailure(&runner.AbortError{
		Area: "212",
		Err:  errors.New("lerg request rejected on npa,nxx,block_id: status 401 (check API token)"),
		Stats: &runner.RunStatistics{
			Outcome:       runner.OutcomeAborted,
			FailedArea:    "212",
			PlannedAreas:  3,
			Areas:         []runner.AreaStats{{Area: "201"}},
			Elapsed:       12300 * time.Millisecond,
			TotalAssigned: 5405,
		},
	})

	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	msg := sent[0]

	if want := "❌ DNO Generation Failed at NPA 212"; msg.Subject != want {
		t.Errorf("subject = %q, want %q", msg.Subject, want)
	}

	body := msg.Content[0].Value
	for _, want := range []string{
		"DNO Generation Failed",
		"- Failed NPA: 212",
		"- Error: lerg request rejected on npa,nxx,block_id: status 401 (check API token)",
		"- Time of Failure: 2025-08-01T12:00:00Z",
		"- NPAs Processed: 1 of 3",
		"- Elapsed Time: 12.3 seconds",
		"- Records Collected: 5,405",
		"Data integrity check prevented incomplete data from being written.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestNotifier_DisabledSendsNothing(t *testing.T) {
	n := NewNotifier(EmailConfig{APIKey: "SG.key", From: "a@b.c", To: "d@e.f", Enabled: false})
	n.send = func(*mail.SGMailV3) (*rest.Response, error) {
		t.Fatal("send called with notifications disabled")
		return nil, nil
	}

	n.NotifySuccess(successStats())
}

func TestNotifier_NoKeySendsNothing(t *testing.T) {
	n := NewNotifier(EmailConfig{From: "a@b.c", To: "d@e.f", Enabled: true})

	// No API key leaves send nil; deliver must not reach it.
	n.NotifySuccess(successStats())
}

func TestNotifier_DeliveryFailureIsNonFatal(t *testing.T) {
	n := NewNotifier(EmailConfig{APIKey: "SG.key", From: "a@b.c", To: "d@e.f", Enabled: true})
	n.send = func(*mail.SGMailV3) (*rest.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	n.NotifySuccess(successStats())
}

func TestNotifier_RejectionIsNonFatal(t *testing.T) {
	n := NewNotifier(EmailConfig{APIKey: "SG.key", From: "a@b.c", To: "d@e.f", Enabled: true})
	n.send = func(*mail.SGMailV3) (*rest.Response, error) {
		return &rest.Response{StatusCode: 401, Body: `{"errors":[]}`}, nil
	}

	n.NotifySuccess(successStats())
}

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45 seconds"},
		{60 * time.Second, "60 seconds"},
		{90 * time.Second, "1.5 minutes"},
		{150 * time.Second, "2.5 minutes"},
		{time.Hour, "60.0 minutes"},
	}
	for _, tt := range tests {
		if got := formatRuntime(tt.d); got != tt.want {
			t.Errorf("formatRuntime(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestComma(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{5405, "5,405"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := comma(tt.n); got != tt.want {
			t.Errorf("comma(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
