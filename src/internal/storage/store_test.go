// FILE: logseer/src/internal/storage/store_test.go
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"logseer/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(path, log.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func intPtr(v int) *int { return &v }

func TestStore_Analyses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("InsertAndQuery", func(t *testing.T) {
		id, err := store.InsertAnalysis(ctx, core.AnalysisRecord{
			LogFile:         "/var/log/app.log",
			HealthScore:     intPtr(7),
			ErrorCount:      3,
			WarningCount:    1,
			AvgResponseTime: 120.5,
			AnalysisText:    `{"summary":"ok"}`,
			AITriggered:     true,
		})
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))

		records, err := store.RecentAnalyses(ctx, "/var/log/app.log", time.Hour)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 3, records[0].ErrorCount)
		assert.Equal(t, 7, *records[0].HealthScore)
		assert.True(t, records[0].AITriggered)
	})

	t.Run("WindowExcludesOldRecords", func(t *testing.T) {
		_, err := store.InsertAnalysis(ctx, core.AnalysisRecord{
			Timestamp: time.Now().UTC().Add(-48 * time.Hour),
			LogFile:   "/var/log/old.log",
		})
		require.NoError(t, err)

		records, err := store.RecentAnalyses(ctx, "/var/log/old.log", 24*time.Hour)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("QueryIsPerSource", func(t *testing.T) {
		records, err := store.RecentAnalyses(ctx, "/var/log/other.log", time.Hour)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("NewestFirst", func(t *testing.T) {
		base := time.Now().UTC()
		for i := 0; i < 3; i++ {
			_, err := store.InsertAnalysis(ctx, core.AnalysisRecord{
				Timestamp:  base.Add(time.Duration(i) * time.Minute),
				LogFile:    "/var/log/ordered.log",
				ErrorCount: i,
			})
			require.NoError(t, err)
		}

		records, err := store.RecentAnalyses(ctx, "/var/log/ordered.log", time.Hour)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, 2, records[0].ErrorCount)
		assert.Equal(t, 0, records[2].ErrorCount)
	})
}

func TestStore_Alerts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.InsertAlert(ctx, core.AlertRecord{
		AlertType:   "log_analysis",
		Severity:    core.SeverityHigh,
		Message:     "High error count detected: 30 errors",
		LogFile:     "/var/log/app.log",
		HealthScore: intPtr(4),
	})
	require.NoError(t, err)

	t.Run("InsertedUnresolved", func(t *testing.T) {
		alerts, err := store.UnresolvedAlerts(ctx)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, id, alerts[0].ID)
		assert.Equal(t, core.SeverityHigh, alerts[0].Severity)
		assert.Equal(t, 4, *alerts[0].HealthScore)
	})

	t.Run("Resolve", func(t *testing.T) {
		require.NoError(t, store.ResolveAlert(ctx, id))

		alerts, err := store.UnresolvedAlerts(ctx)
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})

	t.Run("ResolveUnknownID", func(t *testing.T) {
		err := store.ResolveAlert(ctx, 99999)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestStore_Cursors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("UnknownFileYieldsZeroCursor", func(t *testing.T) {
		cursor, err := store.Cursor(ctx, "/var/log/new.log")
		require.NoError(t, err)
		assert.Equal(t, int64(0), cursor.Position)
		assert.True(t, cursor.LastModified.IsZero())
	})

	t.Run("CommitAndReload", func(t *testing.T) {
		mtime := time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)
		require.NoError(t, store.CommitCursor(ctx, core.FileCursor{
			LogFile:      "/var/log/app.log",
			Position:     4096,
			LastModified: mtime,
			LastCheck:    time.Now(),
		}))

		cursor, err := store.Cursor(ctx, "/var/log/app.log")
		require.NoError(t, err)
		assert.Equal(t, int64(4096), cursor.Position)
		assert.WithinDuration(t, mtime, cursor.LastModified, time.Millisecond)
	})

	t.Run("CommitOverwrites", func(t *testing.T) {
		require.NoError(t, store.CommitCursor(ctx, core.FileCursor{
			LogFile:      "/var/log/app.log",
			Position:     8192,
			LastModified: time.Now(),
		}))

		cursor, err := store.Cursor(ctx, "/var/log/app.log")
		require.NoError(t, err)
		assert.Equal(t, int64(8192), cursor.Position)
	})
}

func TestStore_DailySummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.InsertAnalysis(ctx, core.AnalysisRecord{
			LogFile:     "/var/log/app.log",
			HealthScore: intPtr(6 + i),
			ErrorCount:  5,
		})
		require.NoError(t, err)
	}
	_, err := store.InsertAlert(ctx, core.AlertRecord{
		AlertType: "log_analysis", Severity: core.SeverityHigh, Message: "m",
	})
	require.NoError(t, err)
	_, err = store.InsertAlert(ctx, core.AlertRecord{
		AlertType: "log_analysis", Severity: core.SeverityHigh, Message: "m",
	})
	require.NoError(t, err)

	summary, err := store.DailySummary(ctx, 24*time.Hour)
	require.NoError(t, err)

	require.Len(t, summary.Analyses, 1)
	assert.Equal(t, "/var/log/app.log", summary.Analyses[0].LogFile)
	assert.Equal(t, 3, summary.Analyses[0].AnalysisCount)
	assert.Equal(t, 15, summary.Analyses[0].TotalErrors)
	require.NotNil(t, summary.Analyses[0].AvgHealthScore)
	assert.InDelta(t, 7.0, *summary.Analyses[0].AvgHealthScore, 0.001)

	require.Len(t, summary.Alerts, 1)
	assert.Equal(t, core.SeverityHigh, summary.Alerts[0].Severity)
	assert.Equal(t, 2, summary.Alerts[0].Count)
}
