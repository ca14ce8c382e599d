// FILE: logseer/src/internal/core/types.go
package core

import "time"

// Alert severity levels, ordered from least to most urgent
const (
	SeverityInfo     = "INFO"
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// LocalMetrics holds the cheap statistics computed from one chunk of newly
// read log text. Recomputed every cycle, never accumulated.
type LocalMetrics struct {
	TotalLines        int       `json:"total_lines"`
	ErrorCount        int       `json:"error_count"`
	WarningCount      int       `json:"warning_count"`
	AvgResponseTime   float64   `json:"avg_response_time"`
	MaxResponseTime   float64   `json:"max_response_time"`
	ErrorRate         float64   `json:"error_rate"`
	WarningRate       float64   `json:"warning_rate"`
	LogFile           string    `json:"log_file"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
}

// ReadMetadata describes one incremental read of a log source
type ReadMetadata struct {
	FileSize     int64 `json:"file_size"`
	BytesRead    int64 `json:"bytes_read"`
	LinesRead    int   `json:"lines_read"`
	LastPosition int64 `json:"last_position"`
	NewPosition  int64 `json:"new_position"`
	Rotated      bool  `json:"rotated,omitempty"`
}

// FileCursor marks how much of a log source has been consumed.
// One row per source, mutated only by the incremental reader.
type FileCursor struct {
	LogFile      string
	Position     int64
	LastModified time.Time
	LastCheck    time.Time
}

// AnalysisRecord is one persisted analysis. Append-only; forms the
// historical trend series for a source.
type AnalysisRecord struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	LogFile         string    `json:"log_file"`
	HealthScore     *int      `json:"health_score"`
	ErrorCount      int       `json:"error_count"`
	WarningCount    int       `json:"warning_count"`
	AvgResponseTime float64   `json:"avg_response_time"`
	AnalysisText    string    `json:"analysis_text,omitempty"`
	LocalMetrics    string    `json:"local_metrics,omitempty"`
	AITriggered     bool      `json:"ai_triggered"`
}

// AlertRecord is one persisted alert. The resolved flag is the only field
// that changes after creation.
type AlertRecord struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	AlertType   string    `json:"alert_type"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	LogFile     string    `json:"log_file"`
	Resolved    bool      `json:"resolved"`
	HealthScore *int      `json:"health_score"`
}

// SourceSummary is the per-source aggregate used by the daily rollup
type SourceSummary struct {
	LogFile         string   `json:"log_file"`
	AnalysisCount   int      `json:"analysis_count"`
	AvgHealthScore  *float64 `json:"avg_health_score"`
	TotalErrors     int      `json:"total_errors"`
	AvgResponseTime *float64 `json:"avg_response_time"`
}

// AlertCount groups alerts by severity for the daily rollup
type AlertCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// DailySummary is the once-daily rollup over the trailing window
type DailySummary struct {
	Timestamp time.Time       `json:"timestamp"`
	Period    string          `json:"period"`
	Analyses  []SourceSummary `json:"analysis_summary"`
	Alerts    []AlertCount    `json:"alert_summary"`
}
