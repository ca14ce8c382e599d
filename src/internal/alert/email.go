// FILE: logseer/src/internal/alert/email.go
package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"logseer/src/internal/config"
	"logseer/src/internal/core"
)

// EmailNotifier delivers alerts over SMTP as plain text
type EmailNotifier struct {
	config *config.EmailConfig
}

// NewEmailNotifier creates an SMTP notifier from configuration
func NewEmailNotifier(cfg *config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{config: cfg}
}

// Name identifies the channel in logs
func (n *EmailNotifier) Name() string {
	return "email"
}

// Notify sends the alert as a plain text email. smtp.SendMail has no
// context support, so the send runs in a goroutine and the context bounds
// the wait.
func (n *EmailNotifier) Notify(ctx context.Context, rec core.AlertRecord) error {
	subject := fmt.Sprintf("[LogSeer %s] %s", rec.Severity, rec.AlertType)
	body := formatAlertBody(rec)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", n.config.FromEmail),
		fmt.Sprintf("To: %s", n.config.ToEmail),
		fmt.Sprintf("Subject: %s", subject),
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", n.config.SMTPServer, n.config.SMTPPort)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.SMTPServer)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.config.FromEmail,
			[]string{n.config.ToEmail}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send timed out: %w", ctx.Err())
	}
}

// SendSummary delivers the daily rollup over the same channel
func (n *EmailNotifier) SendSummary(ctx context.Context, summary core.DailySummary) error {
	rec := core.AlertRecord{
		Timestamp: summary.Timestamp,
		AlertType: "daily_summary",
		Severity:  core.SeverityInfo,
		Message:   formatSummaryBody(summary),
	}
	return n.Notify(ctx, rec)
}

func formatAlertBody(rec core.AlertRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: %s\n", rec.Message)
	fmt.Fprintf(&b, "Severity: %s\n", rec.Severity)
	if rec.LogFile != "" {
		fmt.Fprintf(&b, "Source: %s\n", rec.LogFile)
	}
	if rec.HealthScore != nil {
		fmt.Fprintf(&b, "Health score: %d/10\n", *rec.HealthScore)
	}
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	fmt.Fprintf(&b, "Time: %s\n", ts.Format(time.RFC3339))
	return b.String()
}

func formatSummaryBody(summary core.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily summary for the trailing %s\n\n", summary.Period)

	if len(summary.Analyses) == 0 {
		b.WriteString("No analyses recorded.\n")
	}
	for _, src := range summary.Analyses {
		fmt.Fprintf(&b, "%s: %d analyses, %d errors", src.LogFile, src.AnalysisCount, src.TotalErrors)
		if src.AvgHealthScore != nil {
			fmt.Fprintf(&b, ", avg health %.1f", *src.AvgHealthScore)
		}
		if src.AvgResponseTime != nil {
			fmt.Fprintf(&b, ", avg response %.1fms", *src.AvgResponseTime)
		}
		b.WriteString("\n")
	}

	if len(summary.Alerts) > 0 {
		b.WriteString("\nAlerts by severity:\n")
		for _, a := range summary.Alerts {
			fmt.Fprintf(&b, "- %s: %d\n", a.Severity, a.Count)
		}
	}
	return b.String()
}
