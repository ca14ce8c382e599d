// FILE: logseer/src/internal/analyzer/local.go
package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"logseer/src/internal/core"
)

// Error-class patterns, tested in order. A line is counted in at most one
// class: error wins over warning.
var errorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(error|ERROR|Error)\b`),
	regexp.MustCompile(`\b(exception|EXCEPTION|Exception)\b`),
	regexp.MustCompile(`\b(fatal|FATAL|Fatal)\b`),
	regexp.MustCompile(`\b(critical|CRITICAL|Critical)\b`),
	regexp.MustCompile(`HTTP/\d\.\d" [45]\d\d`),
	regexp.MustCompile(`\b(failed|FAILED|Failed)\b`),
}

var warningPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(warning|WARNING|Warning)\b`),
	regexp.MustCompile(`\b(warn|WARN|Warn)\b`),
	regexp.MustCompile(`HTTP/\d\.\d" 3\d\d`),
	regexp.MustCompile(`\b(timeout|TIMEOUT|Timeout)\b`),
}

// Matches a trailing "123ms"/"123.4 ms" value or a "time=123.4" key
var responseTimePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ms|time=(\d+(?:\.\d+)?)`)

// LocalAnalyzer computes cheap metrics from raw log text. Pure: no I/O,
// no state, same input always yields the same metrics.
type LocalAnalyzer struct{}

// NewLocalAnalyzer returns the shared pattern-based analyzer
func NewLocalAnalyzer() *LocalAnalyzer {
	return &LocalAnalyzer{}
}

// Analyze scans one chunk of newly read text and returns its metrics
func (a *LocalAnalyzer) Analyze(content, logFile string) core.LocalMetrics {
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	var errorCount, warningCount int
	var responseTimes []float64

	for _, line := range lines {
		switch {
		case matchesAny(line, errorPatterns):
			errorCount++
		case matchesAny(line, warningPatterns):
			warningCount++
		}

		if t, ok := extractResponseTime(line); ok {
			responseTimes = append(responseTimes, t)
		}
	}

	var avgResponse, maxResponse float64
	if len(responseTimes) > 0 {
		var sum float64
		for _, t := range responseTimes {
			sum += t
			if t > maxResponse {
				maxResponse = t
			}
		}
		avgResponse = sum / float64(len(responseTimes))
	}

	metrics := core.LocalMetrics{
		TotalLines:        totalLines,
		ErrorCount:        errorCount,
		WarningCount:      warningCount,
		AvgResponseTime:   avgResponse,
		MaxResponseTime:   maxResponse,
		LogFile:           logFile,
		AnalysisTimestamp: time.Now(),
	}
	if totalLines > 0 {
		metrics.ErrorRate = float64(errorCount) / float64(totalLines) * 100
		metrics.WarningRate = float64(warningCount) / float64(totalLines) * 100
	}
	return metrics
}

// IsErrorLine reports whether a single line matches any error-class
// pattern. Used when sampling the most diagnostic lines of a chunk.
func IsErrorLine(line string) bool {
	return matchesAny(line, errorPatterns)
}

func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func extractResponseTime(line string) (float64, bool) {
	m := responseTimePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	val := m[1]
	if val == "" {
		val = m[2]
	}
	t, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return t, true
}
