// FILE: logseer/src/internal/alert/policy.go
package alert

import (
	"fmt"
	"strings"

	"logseer/src/internal/config"
	"logseer/src/internal/core"
)

// AlertType tags every alert raised by the analysis pipeline
const AlertType = "log_analysis"

// Keywords that force a critical alert when they appear in the serialized
// analysis. Matched case-sensitively: the analyzer emits them uppercased
// when it means them.
var criticalKeywords = []string{"CRITICAL", "DOWN", "FATAL", "OFFLINE"}

// Decision is the outcome of evaluating one analysis against the alert
// policy. Triggered=false means no alert is raised or persisted.
type Decision struct {
	Triggered bool
	Severity  string
	Message   string
}

// Policy maps an analysis result and its metrics to at most one alert.
// Rules are checked in priority order; the first match wins.
type Policy struct {
	thresholds config.AlertThresholds
}

// NewPolicy creates an alert policy bound to the configured thresholds
func NewPolicy(thresholds config.AlertThresholds) *Policy {
	return &Policy{thresholds: thresholds}
}

// Evaluate applies the rule chain to one analysis
func (p *Policy) Evaluate(analysis *core.DeepAnalysis, metrics core.LocalMetrics) Decision {
	if analysis.HealthScore <= p.thresholds.HealthScore {
		return Decision{
			Triggered: true,
			Severity:  core.SeverityCritical,
			Message:   fmt.Sprintf("Health score critically low: %d/10", analysis.HealthScore),
		}
	}

	if metrics.ErrorCount > p.thresholds.ErrorCount {
		return Decision{
			Triggered: true,
			Severity:  core.SeverityHigh,
			Message:   fmt.Sprintf("High error count detected: %d errors", metrics.ErrorCount),
		}
	}

	serialized := analysis.Marshal()
	for _, keyword := range criticalKeywords {
		if strings.Contains(serialized, keyword) {
			return Decision{
				Triggered: true,
				Severity:  core.SeverityCritical,
				Message:   fmt.Sprintf("Critical issue detected: %s", keyword),
			}
		}
	}

	if len(analysis.CriticalIssues) >= 3 {
		return Decision{
			Triggered: true,
			Severity:  core.SeverityHigh,
			Message:   fmt.Sprintf("Multiple critical issues: %d issues found", len(analysis.CriticalIssues)),
		}
	}

	return Decision{
		Triggered: false,
		Severity:  core.SeverityInfo,
		Message:   "No alerts triggered",
	}
}
