// FILE: logseer/src/internal/core/analysis.go
package core

import "encoding/json"

// DeepAnalysis is the structured result of one analysis pass, produced
// either by the external deep analyzer or synthesized locally. Degraded
// marks results built by the local fallback path.
type DeepAnalysis struct {
	HealthScore    int                  `json:"health_score"`
	CriticalIssues []string             `json:"critical_issues"`
	Summary        string               `json:"summary"`
	Performance    *PerformanceInsights `json:"performance_insights,omitempty"`
	ErrorAnalysis  *ErrorAnalysis       `json:"error_analysis,omitempty"`
	Recommends     *Recommendations     `json:"recommendations,omitempty"`
	TrendAnalysis  string               `json:"trend_analysis,omitempty"`
	Degraded       bool                 `json:"degraded,omitempty"`
}

// PerformanceInsights is the optional performance sub-section
type PerformanceInsights struct {
	ResponseTimeAnalysis string   `json:"response_time_analysis,omitempty"`
	Bottlenecks          []string `json:"bottlenecks,omitempty"`
	Recommendations      []string `json:"recommendations,omitempty"`
}

// ErrorAnalysis is the optional error-pattern sub-section
type ErrorAnalysis struct {
	Patterns   []string `json:"patterns,omitempty"`
	RootCauses []string `json:"root_causes,omitempty"`
	Frequency  string   `json:"frequency,omitempty"`
}

// Recommendations groups suggested actions by priority
type Recommendations struct {
	HighPriority   []string `json:"high_priority,omitempty"`
	MediumPriority []string `json:"medium_priority,omitempty"`
	LowPriority    []string `json:"low_priority,omitempty"`
}

// Valid reports whether the result carries the required fields within range
func (a *DeepAnalysis) Valid() bool {
	if a == nil {
		return false
	}
	if a.HealthScore < 1 || a.HealthScore > 10 {
		return false
	}
	if a.Summary == "" {
		return false
	}
	return a.CriticalIssues != nil
}

// Marshal serializes the analysis for persistence and keyword scanning
func (a *DeepAnalysis) Marshal() string {
	b, err := json.Marshal(a)
	if err != nil {
		return "{}"
	}
	return string(b)
}
