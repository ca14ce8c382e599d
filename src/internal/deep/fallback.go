// FILE: logseer/src/internal/deep/fallback.go
package deep

import (
	"fmt"

	"logseer/src/internal/core"
)

// Fallback synthesizes an analysis from local metrics when the external
// analyzer is unreachable or returns garbage. Total: defined for every
// metrics value.
func Fallback(metrics core.LocalMetrics, reason string) *core.DeepAnalysis {
	health := 7
	switch {
	case metrics.ErrorCount > 20:
		health = 3
	case metrics.ErrorCount > 10:
		health = 5
	case metrics.AvgResponseTime > 2000:
		health = 4
	}

	return &core.DeepAnalysis{
		HealthScore:    health,
		CriticalIssues: []string{fmt.Sprintf("API analysis unavailable: %s", reason)},
		Summary: fmt.Sprintf("Local analysis: %d errors, %.1fms avg response time",
			metrics.ErrorCount, metrics.AvgResponseTime),
		Performance: &core.PerformanceInsights{
			ResponseTimeAnalysis: fmt.Sprintf("Average response time: %.2fms", metrics.AvgResponseTime),
			Bottlenecks:          []string{},
			Recommendations:      []string{"Monitor system resources"},
		},
		ErrorAnalysis: &core.ErrorAnalysis{
			Patterns:   []string{fmt.Sprintf("Local analysis found %d errors", metrics.ErrorCount)},
			RootCauses: []string{"Analysis pending - API unavailable"},
			Frequency:  "Unable to determine",
		},
		Recommends: &core.Recommendations{
			HighPriority:   []string{"Investigate API connectivity"},
			MediumPriority: []string{"Review error patterns manually"},
			LowPriority:    []string{"Update monitoring configuration"},
		},
		TrendAnalysis: "Historical comparison unavailable",
		Degraded:      true,
	}
}

// Baseline synthesizes the record for a quiet cycle that never escalated
// to deep analysis.
func Baseline(reason string) *core.DeepAnalysis {
	return &core.DeepAnalysis{
		HealthScore:    8,
		CriticalIssues: []string{},
		Summary:        fmt.Sprintf("Local analysis only: %s", reason),
	}
}
