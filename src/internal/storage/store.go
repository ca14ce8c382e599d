// FILE: logseer/src/internal/storage/store.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"logseer/src/internal/core"

	"github.com/lixenwraith/log"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the durable record of analyses, alerts and file cursors.
// Single writer per process; SQLite's own transactional guarantees cover
// the rest.
type Store struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// Open opens (creating if necessary) the SQLite database and initializes
// the schema.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer by design; a single connection avoids SQLITE_BUSY churn
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: logger,
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("msg", "Store opened",
		"component", "storage",
		"path", path)

	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			log_file TEXT NOT NULL,
			health_score INTEGER,
			error_count INTEGER,
			warning_count INTEGER,
			avg_response_time REAL,
			analysis_text TEXT,
			local_metrics TEXT,
			ai_triggered BOOLEAN DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			alert_type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			log_file TEXT,
			resolved BOOLEAN DEFAULT 0,
			health_score INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS file_positions (
			log_file TEXT PRIMARY KEY,
			position INTEGER DEFAULT 0,
			last_modified REAL,
			last_check DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_log_file_ts
			ON analyses(log_file, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_resolved
			ON alerts(resolved, timestamp)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAnalysis appends one analysis record and returns its row id
func (s *Store) InsertAnalysis(ctx context.Context, rec core.AnalysisRecord) (int64, error) {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO analyses (timestamp, log_file, health_score, error_count,
			warning_count, avg_response_time, analysis_text, local_metrics, ai_triggered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts, rec.LogFile, rec.HealthScore, rec.ErrorCount, rec.WarningCount,
		rec.AvgResponseTime, rec.AnalysisText, rec.LocalMetrics, rec.AITriggered)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return res.LastInsertId()
}

// InsertAlert appends one alert record (resolved=false) and returns its row id
func (s *Store) InsertAlert(ctx context.Context, rec core.AlertRecord) (int64, error) {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO alerts (timestamp, alert_type, severity, message, log_file, resolved, health_score)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		ts, rec.AlertType, rec.Severity, rec.Message, rec.LogFile, rec.HealthScore)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}
	return res.LastInsertId()
}

// Cursor returns the stored cursor for a log file, or a zero cursor when
// the file has not been seen before.
func (s *Store) Cursor(ctx context.Context, logFile string) (core.FileCursor, error) {
	cursor := core.FileCursor{LogFile: logFile}

	var position int64
	var lastModified sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT position, last_modified FROM file_positions WHERE log_file = ?`,
		logFile).Scan(&position, &lastModified)
	if err == sql.ErrNoRows {
		return cursor, nil
	}
	if err != nil {
		return cursor, fmt.Errorf("failed to load cursor for '%s': %w", logFile, err)
	}

	cursor.Position = position
	if lastModified.Valid {
		sec := int64(lastModified.Float64)
		nsec := int64((lastModified.Float64 - float64(sec)) * 1e9)
		cursor.LastModified = time.Unix(sec, nsec)
	}
	return cursor, nil
}

// CommitCursor upserts the cursor after a successful read
func (s *Store) CommitCursor(ctx context.Context, cursor core.FileCursor) error {
	mtime := float64(cursor.LastModified.UnixNano()) / 1e9

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO file_positions (log_file, position, last_modified, last_check)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		cursor.LogFile, cursor.Position, mtime)
	if err != nil {
		return fmt.Errorf("failed to commit cursor for '%s': %w", cursor.LogFile, err)
	}
	return nil
}

// RecentAnalyses returns analyses for a source inside the trailing window,
// most recent first.
func (s *Store) RecentAnalyses(ctx context.Context, logFile string, window time.Duration) ([]core.AnalysisRecord, error) {
	since := time.Now().UTC().Add(-window)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, log_file, health_score, error_count, warning_count,
			avg_response_time, analysis_text, local_metrics, ai_triggered
		FROM analyses
		WHERE log_file = ? AND timestamp > ?
		ORDER BY timestamp DESC`,
		logFile, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []core.AnalysisRecord
	for rows.Next() {
		var rec core.AnalysisRecord
		var health sql.NullInt64
		var analysisText, localMetrics sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.LogFile, &health,
			&rec.ErrorCount, &rec.WarningCount, &rec.AvgResponseTime,
			&analysisText, &localMetrics, &rec.AITriggered); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		if health.Valid {
			score := int(health.Int64)
			rec.HealthScore = &score
		}
		rec.AnalysisText = analysisText.String
		rec.LocalMetrics = localMetrics.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UnresolvedAlerts returns every alert not yet resolved, most recent first
func (s *Store) UnresolvedAlerts(ctx context.Context) ([]core.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, alert_type, severity, message, log_file, health_score
		FROM alerts WHERE resolved = 0
		ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var records []core.AlertRecord
	for rows.Next() {
		var rec core.AlertRecord
		var logFile sql.NullString
		var health sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.AlertType,
			&rec.Severity, &rec.Message, &logFile, &health); err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		rec.LogFile = logFile.String
		if health.Valid {
			score := int(health.Int64)
			rec.HealthScore = &score
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ResolveAlert marks one alert resolved. Operator action; the pipeline
// itself only ever creates alerts unresolved.
func (s *Store) ResolveAlert(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET resolved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("alert %d not found", id)
	}
	return nil
}

// DailySummary aggregates analyses and alerts over the trailing window
func (s *Store) DailySummary(ctx context.Context, window time.Duration) (core.DailySummary, error) {
	summary := core.DailySummary{
		Timestamp: time.Now().UTC(),
		Period:    window.String(),
	}
	since := time.Now().UTC().Add(-window)

	rows, err := s.db.QueryContext(ctx, `
		SELECT log_file, COUNT(*), AVG(health_score), SUM(error_count), AVG(avg_response_time)
		FROM analyses
		WHERE timestamp > ?
		GROUP BY log_file`, since)
	if err != nil {
		return summary, fmt.Errorf("failed to query analysis summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row core.SourceSummary
		var avgHealth, avgResponse sql.NullFloat64
		var totalErrors sql.NullInt64
		if err := rows.Scan(&row.LogFile, &row.AnalysisCount, &avgHealth,
			&totalErrors, &avgResponse); err != nil {
			return summary, fmt.Errorf("failed to scan summary row: %w", err)
		}
		if avgHealth.Valid {
			v := avgHealth.Float64
			row.AvgHealthScore = &v
		}
		if avgResponse.Valid {
			v := avgResponse.Float64
			row.AvgResponseTime = &v
		}
		row.TotalErrors = int(totalErrors.Int64)
		summary.Analyses = append(summary.Analyses, row)
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	alertRows, err := s.db.QueryContext(ctx, `
		SELECT severity, COUNT(*)
		FROM alerts
		WHERE timestamp > ?
		GROUP BY severity`, since)
	if err != nil {
		return summary, fmt.Errorf("failed to query alert summary: %w", err)
	}
	defer alertRows.Close()

	for alertRows.Next() {
		var row core.AlertCount
		if err := alertRows.Scan(&row.Severity, &row.Count); err != nil {
			return summary, fmt.Errorf("failed to scan alert count: %w", err)
		}
		summary.Alerts = append(summary.Alerts, row)
	}
	return summary, alertRows.Err()
}
