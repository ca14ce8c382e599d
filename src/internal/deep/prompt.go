// FILE: logseer/src/internal/deep/prompt.go
package deep

import (
	"fmt"
	"strings"

	"logseer/src/internal/analyzer"
	"logseer/src/internal/core"
)

const (
	recentLogsMarker = "--- RECENT LOGS ---"
	truncatedMarker  = "\n... [truncated]"

	errorLineSample  = 50
	recentLineSample = 50
	recentLineWindow = 100

	// Trend context uses only the newest few prior analyses
	historySample = 5
)

// BuildPrompt assembles the analysis prompt: computed metrics, trend
// context from prior cycles, and a bounded sample of the raw text.
func BuildPrompt(content string, metrics core.LocalMetrics, history []core.AnalysisRecord, maxChars int) string {
	var b strings.Builder

	b.WriteString("Analyze these log entries from ")
	b.WriteString(metrics.LogFile)
	b.WriteString(" and respond with ONLY a JSON object.\n\n")

	fmt.Fprintf(&b, "Current metrics:\n")
	fmt.Fprintf(&b, "- Total lines: %d\n", metrics.TotalLines)
	fmt.Fprintf(&b, "- Errors: %d (%.1f%%)\n", metrics.ErrorCount, metrics.ErrorRate)
	fmt.Fprintf(&b, "- Warnings: %d (%.1f%%)\n", metrics.WarningCount, metrics.WarningRate)
	fmt.Fprintf(&b, "- Avg response time: %.2fms (max %.2fms)\n", metrics.AvgResponseTime, metrics.MaxResponseTime)

	if len(history) > historySample {
		history = history[:historySample]
	}
	if len(history) > 0 {
		b.WriteString("\nRecent history (newest first):\n")
		for _, rec := range history {
			health := "n/a"
			if rec.HealthScore != nil {
				health = fmt.Sprintf("%d", *rec.HealthScore)
			}
			fmt.Fprintf(&b, "- %s: health=%s errors=%d avg_rt=%.1fms\n",
				rec.Timestamp.Format("2006-01-02 15:04"), health, rec.ErrorCount, rec.AvgResponseTime)
		}
	}

	b.WriteString("\nLog sample:\n")
	b.WriteString(truncateContent(content, maxChars))

	b.WriteString("\n\nRespond with JSON matching this shape:\n")
	b.WriteString(`{"health_score": 1-10, "critical_issues": [], "summary": "", ` +
		`"performance_insights": {"response_time_analysis": "", "bottlenecks": [], "recommendations": []}, ` +
		`"error_analysis": {"patterns": [], "root_causes": [], "frequency": ""}, ` +
		`"recommendations": {"high_priority": [], "medium_priority": [], "low_priority": []}, ` +
		`"trend_analysis": ""}`)

	return b.String()
}

// truncateContent keeps the most diagnostic slice of the text: the last
// error lines plus the most recent activity. Output never exceeds maxChars.
func truncateContent(content string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}

	lines := strings.Split(content, "\n")

	var errorLines []string
	for _, line := range lines {
		if analyzer.IsErrorLine(line) {
			errorLines = append(errorLines, line)
		}
	}
	if len(errorLines) > errorLineSample {
		errorLines = errorLines[len(errorLines)-errorLineSample:]
	}

	recent := lines
	if len(recent) > recentLineWindow {
		recent = recent[len(recent)-recentLineWindow:]
	}
	if len(recent) > recentLineSample {
		recent = recent[len(recent)-recentLineSample:]
	}

	var parts []string
	if len(errorLines) > 0 {
		parts = append(parts, strings.Join(errorLines, "\n"))
	}
	parts = append(parts, recentLogsMarker, strings.Join(recent, "\n"))
	result := strings.Join(parts, "\n")

	if len(result) > maxChars {
		cut := maxChars - len(truncatedMarker)
		if cut < 0 {
			cut = 0
		}
		result = result[:cut] + truncatedMarker
	}
	return result
}
