// FILE: logseer/src/internal/monitor/summary.go
package monitor

import (
	"context"
	"time"
)

// Window covered by the daily rollup
const summaryWindow = 24 * time.Hour

// RunDailySummary aggregates the trailing day and sends it over email.
// Called by the scheduler at the configured time, and directly by the
// one-shot summary CLI mode.
func (m *Monitor) RunDailySummary(ctx context.Context) error {
	summary, err := m.store.DailySummary(ctx, summaryWindow)
	if err != nil {
		m.logger.Error("msg", "Failed to build daily summary",
			"component", "monitor",
			"error", err)
		return err
	}

	m.logger.Info("msg", "Daily summary built",
		"component", "monitor",
		"sources", len(summary.Analyses),
		"alert_groups", len(summary.Alerts))

	if m.email == nil || !m.config.Email.Enabled {
		return nil
	}

	if err := m.email.SendSummary(ctx, summary); err != nil {
		m.logger.Error("msg", "Failed to send daily summary",
			"component", "monitor",
			"error", err)
		return err
	}
	return nil
}

// untilNextSummary returns the wait until the next occurrence of the
// configured HH:MM, local time. An unparseable value falls back to 24h.
func untilNextSummary(now time.Time, hhmm string) time.Duration {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return summaryWindow
	}

	next := time.Date(now.Year(), now.Month(), now.Day(),
		t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
