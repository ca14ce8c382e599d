// FILE: logseer/src/internal/analyzer/escalation.go
package analyzer

import (
	"fmt"
	"strings"

	"logseer/src/internal/config"
	"logseer/src/internal/core"
)

// NoIssuesReason is returned when no escalation condition fires
const NoIssuesReason = "No significant issues detected"

// EscalationPolicy decides whether a cycle's metrics warrant the expensive
// deep analysis call. Pure decision function over metrics + thresholds.
type EscalationPolicy struct {
	thresholds config.AnalysisThresholds
}

// NewEscalationPolicy creates a policy bound to the configured thresholds
func NewEscalationPolicy(thresholds config.AnalysisThresholds) *EscalationPolicy {
	return &EscalationPolicy{thresholds: thresholds}
}

// Evaluate returns whether deep analysis should run and a human-readable
// reason listing every condition that matched, not just the first.
func (p *EscalationPolicy) Evaluate(m core.LocalMetrics) (bool, string) {
	var reasons []string

	if m.ErrorCount >= p.thresholds.ErrorCount {
		reasons = append(reasons, fmt.Sprintf("High error count: %d", m.ErrorCount))
	}
	if m.AvgResponseTime >= p.thresholds.AvgResponseTime {
		reasons = append(reasons, fmt.Sprintf("High avg response time: %.2fms", m.AvgResponseTime))
	}
	if m.TotalLines >= p.thresholds.HighActivity {
		reasons = append(reasons, fmt.Sprintf("High activity: %d new log lines", m.TotalLines))
	}
	if m.ErrorRate >= p.thresholds.ErrorRate {
		reasons = append(reasons, fmt.Sprintf("High error rate: %.1f%%", m.ErrorRate))
	}

	if len(reasons) == 0 {
		return false, NoIssuesReason
	}
	return true, strings.Join(reasons, "; ")
}
