// FILE: logseer/src/internal/monitor/monitor_test.go
package monitor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"logseer/src/internal/alert"
	"logseer/src/internal/config"
	"logseer/src/internal/core"
	"logseer/src/internal/deep"
	"logseer/src/internal/storage"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// fakeDeep returns a canned analysis and records invocations
type fakeDeep struct {
	analysis *core.DeepAnalysis
	calls    int
}

func (f *fakeDeep) Analyze(_ string, _ core.LocalMetrics, _ []core.AnalysisRecord) *core.DeepAnalysis {
	f.calls++
	return f.analysis
}

// failingDeep behaves like a client whose API call failed
type failingDeep struct {
	reason string
}

func (f *failingDeep) Analyze(_ string, metrics core.LocalMetrics, _ []core.AnalysisRecord) *core.DeepAnalysis {
	return deep.Fallback(metrics, f.reason)
}

func testConfig(t *testing.T, sources ...config.SourceConfig) (*config.Config, *storage.Store) {
	t.Helper()

	cfg := &config.Config{
		Sources: sources,
		Monitoring: config.MonitoringConfig{
			CheckIntervalMinutes: 15,
			DailySummaryTime:     "09:00",
			SourcePauseSeconds:   0,
		},
		AnalysisThresholds: config.AnalysisThresholds{
			ErrorCount:      10,
			AvgResponseTime: 2000,
			HighActivity:    1000,
			ErrorRate:       5.0,
		},
		AlertThresholds: config.AlertThresholds{
			HealthScore: 3,
			ErrorCount:  20,
		},
		DeepAnalysis: config.DeepAnalysisConfig{Enabled: true},
	}

	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"), newTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return cfg, store
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMonitor_RunCycle(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()

	t.Run("QuietSourceRecordsBaseline", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", "all fine\nstill fine\n")

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		fake := &fakeDeep{}
		m := New(cfg, store, fake, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 1, summary.Analyzed)
		assert.Equal(t, 0, summary.Deep)
		assert.Equal(t, 0, summary.Alerts)
		assert.Equal(t, 0, fake.calls)

		records, err := store.RecentAnalyses(ctx, "app", time.Hour)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].AITriggered)
		assert.Equal(t, 8, *records[0].HealthScore)
	})

	t.Run("EscalatedSourceRunsDeepAnalysis", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", strings.Repeat("ERROR: kaboom\n", 15))

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		fake := &fakeDeep{analysis: &core.DeepAnalysis{
			HealthScore:    2,
			CriticalIssues: []string{"service failing"},
			Summary:        "widespread failures",
		}}
		m := New(cfg, store, fake, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 1, summary.Analyzed)
		assert.Equal(t, 1, summary.Deep)
		assert.Equal(t, 1, summary.Alerts)
		assert.Equal(t, 1, fake.calls)

		records, err := store.RecentAnalyses(ctx, "app", time.Hour)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].AITriggered)
		assert.Equal(t, 2, *records[0].HealthScore)

		alerts, err := store.UnresolvedAlerts(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, core.SeverityCritical, alerts[0].Severity)
		assert.Equal(t, "log_analysis", alerts[0].AlertType)
		assert.Equal(t, "app", alerts[0].LogFile)
	})

	t.Run("DeepFailureRecordsDegradedResult", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", strings.Repeat("ERROR: kaboom\n", 25))

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		failing := &failingDeep{reason: "timeout"}
		m := New(cfg, store, failing, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 1, summary.Analyzed)
		assert.Equal(t, 1, summary.Deep)
		assert.Equal(t, 1, summary.Alerts)

		records, err := store.RecentAnalyses(ctx, "app", time.Hour)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].AITriggered)
		// 25 errors drive the synthesized score to 3
		assert.Equal(t, 3, *records[0].HealthScore)

		var persisted core.DeepAnalysis
		require.NoError(t, json.Unmarshal([]byte(records[0].AnalysisText), &persisted))
		assert.True(t, persisted.Degraded)
		require.Len(t, persisted.CriticalIssues, 1)
		assert.Contains(t, persisted.CriticalIssues[0], "timeout")

		// The degraded result still feeds the alert policy
		alerts, err := store.UnresolvedAlerts(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, core.SeverityCritical, alerts[0].Severity)
	})

	t.Run("NoNewContentIsSkippedWithoutRecord", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", "some content\n")

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		first := m.RunCycle(ctx)
		assert.Equal(t, 1, first.Analyzed)

		second := m.RunCycle(ctx)
		assert.Equal(t, 1, second.Skipped)
		assert.Equal(t, 0, second.Analyzed)

		records, err := store.RecentAnalyses(ctx, "app", time.Hour)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("WhitespaceOnlyContentIsSkipped", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", "real content\n")

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		first := m.RunCycle(ctx)
		assert.Equal(t, 1, first.Analyzed)

		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		require.NoError(t, err)
		_, err = f.WriteString("\n  \n\t\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())

		second := m.RunCycle(ctx)
		assert.Equal(t, 1, second.Skipped)
		assert.Equal(t, 0, second.Analyzed)

		records, err := store.RecentAnalyses(ctx, "app", time.Hour)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("MissingSourceIsSkipped", func(t *testing.T) {
		cfg, store := testConfig(t, config.SourceConfig{
			Name: "ghost", Path: filepath.Join(t.TempDir(), "absent.log"), Enabled: true,
		})
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 0, summary.Errored)
	})

	t.Run("FailingSourceDoesNotAbortCycle", func(t *testing.T) {
		dir := t.TempDir()
		good := writeLog(t, dir, "good.log", "healthy output\n")

		cfg, store := testConfig(t,
			// A directory stats fine but cannot be read as a log
			config.SourceConfig{Name: "bad", Path: dir, Enabled: true},
			config.SourceConfig{Name: "good", Path: good, Enabled: true},
		)
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 1, summary.Errored)
		assert.Equal(t, 1, summary.Analyzed)
	})

	t.Run("DisabledSourcesIgnored", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", "content\n")

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: false})
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		summary := m.RunCycle(ctx)
		assert.Equal(t, 0, summary.Sources)
		assert.Equal(t, 0, summary.Analyzed)
	})

	t.Run("StatsReflectCycles", func(t *testing.T) {
		dir := t.TempDir()
		path := writeLog(t, dir, "app.log", "content\n")

		cfg, store := testConfig(t, config.SourceConfig{Name: "app", Path: path, Enabled: true})
		m := New(cfg, store, &fakeDeep{}, alert.NewDispatcher(nil, logger), nil, logger)

		m.RunCycle(ctx)
		m.RunCycle(ctx)

		stats := m.Stats()
		assert.Equal(t, int64(2), stats.Cycles)
		assert.Equal(t, []string{"app"}, stats.Sources)
		require.NotNil(t, stats.LastResult)
	})
}

func TestUntilNextSummary(t *testing.T) {
	base := time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC)

	t.Run("LaterToday", func(t *testing.T) {
		assert.Equal(t, time.Hour, untilNextSummary(base, "09:00"))
	})

	t.Run("AlreadyPassedRollsToTomorrow", func(t *testing.T) {
		assert.Equal(t, 23*time.Hour, untilNextSummary(base, "07:00"))
	})

	t.Run("ExactlyNowRollsToTomorrow", func(t *testing.T) {
		assert.Equal(t, 24*time.Hour, untilNextSummary(base, "08:00"))
	})

	t.Run("InvalidFallsBackToDay", func(t *testing.T) {
		assert.Equal(t, 24*time.Hour, untilNextSummary(base, "not-a-time"))
	})
}
