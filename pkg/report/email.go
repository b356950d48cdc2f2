package report

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"dnogen/pkg/logging"
	"dnogen/pkg/runner"
)

// EmailConfig configures run notifications.
type EmailConfig struct {
	// APIKey is the SendGrid API key. Empty disables delivery.
	APIKey string

	// From is the sender address.
	From string

	// To is the recipient address.
	To string

	// Enabled turns notifications off entirely when false.
	Enabled bool
}

// Notifier sends plain-text run notifications through SendGrid. A
// notifier with no API key or with notifications disabled logs and
// does nothing; delivery problems are logged, never returned, so a
// finished run cannot be failed by its own announcement.
type Notifier struct {
	cfg    EmailConfig
	logger zerolog.Logger
	send   func(*mail.SGMailV3) (*rest.Response, error)
	now    func() time.Time
}

// NewNotifier creates a notifier.
func NewNotifier(cfg EmailConfig) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		logger: logging.NewLogger("notify"),
		now:    time.Now,
	}
	if cfg.APIKey != "" {
		n.send = sendgrid.NewSendClient(cfg.APIKey).Send
	}
	return n
}

// NotifySuccess announces a completed run with its totals.
func (n *Notifier) NotifySuccess(stats *runner.RunStatistics, art *Artifacts) {
	subject := fmt.Sprintf("✅ DNO Generation Completed - %s Assigned", comma(art.AssignedRows))
	n.deliver(subject, successBody(stats, art, n.now().UTC()))
}

// NotifyFailure announces an aborted run, naming the failing area and
// the progress made before it.
func (n *Notifier) NotifyFailure(abort *runner.AbortError) {
	subject := fmt.Sprintf("❌ DNO Generation Failed at NPA %s", abort.Area)
	n.deliver(subject, failureBody(abort, n.now().UTC()))
}

func (n *Notifier) deliver(subject, body string) {
	if !n.cfg.Enabled {
		n.logger.Debug().Str("subject", subject).Msg("email notifications disabled")
		return
	}
	if n.cfg.APIKey == "" {
		n.logger.Warn().Str("subject", subject).Msg("no SendGrid API key configured, skipping notification")
		return
	}

	msg := mail.NewSingleEmailPlainText(
		mail.NewEmail("", n.cfg.From), subject, mail.NewEmail("", n.cfg.To), body)

	resp, err := n.send(msg)
	if err != nil {
		n.logger.Warn().Err(err).Str("subject", subject).Msg("notification delivery failed")
		return
	}
	if resp.StatusCode != http.StatusAccepted {
		n.logger.Warn().
			Int("status_code", resp.StatusCode).
			Str("subject", subject).
			Msg("notification rejected by SendGrid")
		return
	}
	n.logger.Info().Str("to", n.cfg.To).Str("subject", subject).Msg("notification sent")
}

func successBody(stats *runner.RunStatistics, art *Artifacts, at time.Time) string {
	var b strings.Builder
	b.WriteString("DNO Generation Completed Successfully\n\n")

	b.WriteString("Summary\n")
	fmt.Fprintf(&b, "- Runtime: %s\n", formatRuntime(stats.Elapsed))
	fmt.Fprintf(&b, "- NPAs Processed: %d\n", len(stats.Areas))
	fmt.Fprintf(&b, "- API Calls Made: %s\n", comma(int(stats.TotalRequests)))
	fmt.Fprintf(&b, "- Fetch Mode: %s\n\n", strings.ToUpper(stats.Strategy))

	b.WriteString("Results\n")
	fmt.Fprintf(&b, "- Total Theoretically Possible: %s\n", comma(art.PlanSpace))
	fmt.Fprintf(&b, "- Currently Assigned (LERG): %s (%s)\n",
		comma(art.AssignedRows), pct(art.AssignedRows, art.PlanSpace))
	fmt.Fprintf(&b, "- Currently Unassigned: %s (%s)\n",
		comma(art.PlanUnassigned), pct(art.PlanUnassigned, art.PlanSpace))
	fmt.Fprintf(&b, "- Condensed Unassigned Entries: %s\n", comma(art.CondensedRows))
	fmt.Fprintf(&b, "- ITG Traceback Records: %s\n\n", comma(art.TracebackRows))

	b.WriteString("Output Files Generated\n")
	fmt.Fprintf(&b, "- %s - %s records\n", AssignedFile, comma(art.AssignedRows))
	fmt.Fprintf(&b, "- %s - %s records\n", UnassignedFile, comma(art.OutputRows))
	fmt.Fprintf(&b, "- %s\n", ABlockFile)
	fmt.Fprintf(&b, "- %s\n\n", SummaryFile)

	fmt.Fprintf(&b, "Generated at %s\n", at.Format(time.RFC3339))
	return b.String()
}

func failureBody(abort *runner.AbortError, at time.Time) string {
	stats := abort.Stats

	var b strings.Builder
	b.WriteString("DNO Generation Failed\n\n")

	b.WriteString("Error Details\n")
	fmt.Fprintf(&b, "- Failed NPA: %s\n", abort.Area)
	fmt.Fprintf(&b, "- Error: %v\n", abort.Err)
	fmt.Fprintf(&b, "- Time of Failure: %s\n\n", at.Format(time.RFC3339))

	b.WriteString("Progress Before Failure\n")
	fmt.Fprintf(&b, "- NPAs Processed: %d of %d\n", len(stats.Areas), stats.PlannedAreas)
	fmt.Fprintf(&b, "- Elapsed Time: %.1f seconds\n", stats.Elapsed.Seconds())
	fmt.Fprintf(&b, "- Records Collected: %s\n\n", comma(stats.TotalAssigned))

	b.WriteString("Next Steps\n")
	b.WriteString("1. Check network connectivity\n")
	b.WriteString("2. Verify the LERG feed is responding\n")
	b.WriteString("3. Review error logs\n")
	b.WriteString("4. Re-run the generator\n\n")

	b.WriteString("Data integrity check prevented incomplete data from being written.\n")
	return b.String()
}

// formatRuntime renders elapsed time the way operators read it: whole
// seconds under a minute, tenths of minutes above.
func formatRuntime(d time.Duration) string {
	secs := d.Seconds()
	if secs > 60 {
		return fmt.Sprintf("%.1f minutes", secs/60)
	}
	return fmt.Sprintf("%.0f seconds", secs)
}

var numberPrinter = message.NewPrinter(language.English)

func comma(n int) string {
	return numberPrinter.Sprintf("%d", n)
}
