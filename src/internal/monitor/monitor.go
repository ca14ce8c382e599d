// FILE: logseer/src/internal/monitor/monitor.go
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"logseer/src/internal/alert"
	"logseer/src/internal/analyzer"
	"logseer/src/internal/config"
	"logseer/src/internal/core"
	"logseer/src/internal/deep"
	"logseer/src/internal/storage"
	"logseer/src/internal/tail"

	"github.com/lixenwraith/log"
)

// Trend window handed to the deep analyzer
const historyWindow = 24 * time.Hour

// DeepAnalyzer produces a structured analysis for escalated cycles
type DeepAnalyzer interface {
	Analyze(content string, metrics core.LocalMetrics, history []core.AnalysisRecord) *core.DeepAnalysis
}

// CycleSummary counts the outcomes of one monitoring cycle
type CycleSummary struct {
	Sources  int `json:"sources"`
	Analyzed int `json:"analyzed"`
	Skipped  int `json:"skipped"`
	Errored  int `json:"errored"`
	Deep     int `json:"deep_analyses"`
	Alerts   int `json:"alerts"`
}

// Stats is the live state exposed over the query API
type Stats struct {
	StartTime  time.Time     `json:"start_time"`
	Cycles     int64         `json:"cycles"`
	LastCycle  time.Time     `json:"last_cycle,omitempty"`
	LastResult *CycleSummary `json:"last_result,omitempty"`
	Sources    []string      `json:"sources"`
}

// Monitor drives the periodic read-analyze-alert pipeline across all
// configured sources. One cycle runs at a time; sources are processed
// sequentially within it.
type Monitor struct {
	config     *config.Config
	store      *storage.Store
	reader     *tail.Reader
	local      *analyzer.LocalAnalyzer
	escalation *analyzer.EscalationPolicy
	deep       DeepAnalyzer
	policy     *alert.Policy
	dispatcher *alert.Dispatcher
	email      *alert.EmailNotifier
	logger     *log.Logger

	mu        sync.Mutex
	startTime time.Time
	cycles    int64
	lastCycle time.Time
	lastRes   *CycleSummary

	done chan struct{}
}

// New wires a monitor from its collaborators. The deep analyzer may be
// nil when deep analysis is disabled; escalated cycles then record the
// local fallback.
func New(cfg *config.Config, store *storage.Store, deepAnalyzer DeepAnalyzer,
	dispatcher *alert.Dispatcher, email *alert.EmailNotifier, logger *log.Logger) *Monitor {
	return &Monitor{
		config:     cfg,
		store:      store,
		reader:     tail.NewReader(store, logger),
		local:      analyzer.NewLocalAnalyzer(),
		escalation: analyzer.NewEscalationPolicy(cfg.AnalysisThresholds),
		deep:       deepAnalyzer,
		policy:     alert.NewPolicy(cfg.AlertThresholds),
		dispatcher: dispatcher,
		email:      email,
		logger:     logger,
		startTime:  time.Now(),
		done:       make(chan struct{}),
	}
}

// Run executes cycles on the configured interval until the context is
// cancelled. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.done)

	interval := time.Duration(m.config.Monitoring.CheckIntervalMinutes) * time.Minute
	m.logger.Info("msg", "Monitor started",
		"component", "monitor",
		"interval", interval.String(),
		"sources", len(m.config.EnabledSources()))

	summaryTimer := time.NewTimer(untilNextSummary(time.Now(), m.config.Monitoring.DailySummaryTime))
	defer summaryTimer.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("msg", "Monitor stopping", "component", "monitor")
			return nil
		case <-ticker.C:
			m.RunCycle(ctx)
		case <-summaryTimer.C:
			m.RunDailySummary(ctx)
			summaryTimer.Reset(untilNextSummary(time.Now(), m.config.Monitoring.DailySummaryTime))
		}
	}
}

// Wait blocks until Run has returned
func (m *Monitor) Wait() {
	<-m.done
}

// RunCycle processes every enabled source once and returns the outcome
// counts. A failing source never aborts the cycle.
func (m *Monitor) RunCycle(ctx context.Context) CycleSummary {
	sources := m.config.EnabledSources()
	summary := CycleSummary{Sources: len(sources)}
	pause := time.Duration(m.config.Monitoring.SourcePauseSeconds) * time.Second

	m.logger.Info("msg", "Cycle starting",
		"component", "monitor",
		"sources", len(sources))

	for i, src := range sources {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && pause > 0 {
			select {
			case <-ctx.Done():
				return summary
			case <-time.After(pause):
			}
		}

		outcome := m.processSource(ctx, src)
		switch outcome.status {
		case sourceAnalyzed:
			summary.Analyzed++
		case sourceSkipped:
			summary.Skipped++
		case sourceErrored:
			summary.Errored++
		}
		if outcome.deepRan {
			summary.Deep++
		}
		if outcome.alerted {
			summary.Alerts++
		}
	}

	m.mu.Lock()
	m.cycles++
	m.lastCycle = time.Now()
	m.lastRes = &summary
	m.mu.Unlock()

	m.logger.Info("msg", "Cycle complete",
		"component", "monitor",
		"analyzed", summary.Analyzed,
		"skipped", summary.Skipped,
		"errored", summary.Errored,
		"deep_analyses", summary.Deep,
		"alerts", summary.Alerts)

	return summary
}

type sourceStatus int

const (
	sourceAnalyzed sourceStatus = iota
	sourceSkipped
	sourceErrored
)

type sourceOutcome struct {
	status  sourceStatus
	deepRan bool
	alerted bool
}

// processSource runs the full pipeline for one source. Panics are
// contained here so a single malformed source cannot take the loop down.
func (m *Monitor) processSource(ctx context.Context, src config.SourceConfig) (outcome sourceOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = sourceOutcome{status: sourceErrored}
			m.logger.Error("msg", "Panic while processing source",
				"component", "monitor",
				"source", src.Name,
				"panic", fmt.Sprintf("%v", r))
		}
	}()

	content, meta, err := m.reader.ReadNew(ctx, src.Path)
	if err != nil {
		m.logger.Error("msg", "Failed to read source",
			"component", "monitor",
			"source", src.Name,
			"path", src.Path,
			"error", err)
		return sourceOutcome{status: sourceErrored}
	}

	if strings.TrimSpace(content) == "" {
		m.logger.Debug("msg", "No new content",
			"component", "monitor",
			"source", src.Name)
		return sourceOutcome{status: sourceSkipped}
	}

	// Records are keyed by the logical source name; the cursor table keys
	// on the path, which may change across config edits while the name
	// keeps the history continuous.
	metrics := m.local.Analyze(content, src.Name)

	m.logger.Info("msg", "Source analyzed",
		"component", "monitor",
		"source", src.Name,
		"lines", metrics.TotalLines,
		"errors", metrics.ErrorCount,
		"warnings", metrics.WarningCount,
		"bytes_read", meta.BytesRead,
		"rotated", meta.Rotated)

	escalate, reason := m.escalation.Evaluate(metrics)

	var analysis *core.DeepAnalysis
	deepRan := false
	if escalate && m.config.DeepAnalysis.Enabled && m.deep != nil {
		history, herr := m.store.RecentAnalyses(ctx, src.Name, historyWindow)
		if herr != nil {
			m.logger.Warn("msg", "Failed to load history",
				"component", "monitor",
				"source", src.Name,
				"error", herr)
		}
		m.logger.Info("msg", "Escalating to deep analysis",
			"component", "monitor",
			"source", src.Name,
			"reason", reason)
		analysis = m.deep.Analyze(content, metrics, history)
		deepRan = true
	} else if escalate {
		analysis = deep.Fallback(metrics, "deep analysis disabled")
	} else {
		analysis = deep.Baseline(reason)
	}

	health := analysis.HealthScore
	metricsJSON, _ := json.Marshal(metrics)
	rec := core.AnalysisRecord{
		Timestamp:       time.Now().UTC(),
		LogFile:         src.Name,
		HealthScore:     &health,
		ErrorCount:      metrics.ErrorCount,
		WarningCount:    metrics.WarningCount,
		AvgResponseTime: metrics.AvgResponseTime,
		AnalysisText:    analysis.Marshal(),
		LocalMetrics:    string(metricsJSON),
		AITriggered:     deepRan,
	}
	if _, err := m.store.InsertAnalysis(ctx, rec); err != nil {
		m.logger.Error("msg", "Failed to persist analysis",
			"component", "monitor",
			"source", src.Name,
			"error", err)
		return sourceOutcome{status: sourceErrored, deepRan: deepRan}
	}

	alerted := m.raiseAlert(ctx, src, analysis, metrics)
	return sourceOutcome{status: sourceAnalyzed, deepRan: deepRan, alerted: alerted}
}

// raiseAlert evaluates the alert policy and, when triggered, persists the
// alert and dispatches it. Delivery failures never fail the cycle.
func (m *Monitor) raiseAlert(ctx context.Context, src config.SourceConfig,
	analysis *core.DeepAnalysis, metrics core.LocalMetrics) bool {
	decision := m.policy.Evaluate(analysis, metrics)
	if !decision.Triggered {
		return false
	}

	health := analysis.HealthScore
	rec := core.AlertRecord{
		Timestamp:   time.Now().UTC(),
		AlertType:   alert.AlertType,
		Severity:    decision.Severity,
		Message:     decision.Message,
		LogFile:     src.Name,
		HealthScore: &health,
	}

	id, err := m.store.InsertAlert(ctx, rec)
	if err != nil {
		m.logger.Error("msg", "Failed to persist alert",
			"component", "monitor",
			"source", src.Name,
			"error", err)
	} else {
		rec.ID = id
	}

	m.logger.Warn("msg", "Alert raised",
		"component", "monitor",
		"source", src.Name,
		"severity", decision.Severity,
		"message", decision.Message)

	if m.dispatcher != nil && m.dispatcher.ChannelCount() > 0 {
		m.dispatcher.Dispatch(ctx, rec)
	}
	return true
}

// Stats snapshots the monitor state for the query API
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for _, src := range m.config.EnabledSources() {
		names = append(names, src.Name)
	}

	return Stats{
		StartTime:  m.startTime,
		Cycles:     m.cycles,
		LastCycle:  m.lastCycle,
		LastResult: m.lastRes,
		Sources:    names,
	}
}
