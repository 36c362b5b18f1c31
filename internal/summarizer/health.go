package summarizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/localrivet/extractsum/internal/telemetry"
)

// Version is reported in health reports.
const Version = "1.0.0"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	// StatusHealthy indicates a component is fully operational
	StatusHealthy HealthStatus = "healthy"

	// StatusDegraded indicates a component is operational but with reduced capability
	StatusDegraded HealthStatus = "degraded"

	// StatusUnhealthy indicates a component is not operational
	StatusUnhealthy HealthStatus = "unhealthy"
)

// degradedFailureRate is the share of failed calls above which the
// summarizer is reported as degraded.
const degradedFailureRate = 10.0

// HealthReport contains information about the current health of the summarizer
type HealthReport struct {
	Status        HealthStatus       `json:"status"`
	Timestamp     time.Time          `json:"timestamp"`
	Provider      string             `json:"provider"`
	Components    map[string]string  `json:"components"`
	ResponseTimes map[string]float64 `json:"response_times_ms"`
	Volume        map[string]int64   `json:"volume"`
	SuccessRate   float64            `json:"success_rate"`
	TotalRequests int64              `json:"total_requests"`
	Version       string             `json:"version"`
}

// CreateHealthReport generates a health report for an instrumented summarizer.
// components maps extra component names (for example "history") to their
// status and is copied into the report.
func CreateHealthReport(summarizer *InstrumentedSummarizer, components map[string]HealthStatus) (*HealthReport, error) {
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer is nil")
	}

	m := summarizer.GetMetrics()
	if m == nil {
		return nil, fmt.Errorf("metrics collector is nil")
	}

	totalSuccess := m.GetCounter(telemetry.MetricSummarizeSuccess)
	totalFailure := m.GetCounter(telemetry.MetricSummarizeFailure)
	totalRequests := totalSuccess + totalFailure

	successRate := 100.0
	if totalRequests > 0 {
		successRate = float64(totalSuccess) / float64(totalRequests) * 100.0
	}

	status := StatusHealthy
	if 100.0-successRate > degradedFailureRate {
		status = StatusDegraded
	}

	componentStatus := map[string]string{
		"summarizer": string(StatusHealthy),
	}
	for name, s := range components {
		componentStatus[name] = string(s)
		if s == StatusUnhealthy && status == StatusHealthy {
			status = StatusDegraded
		}
	}

	responseTimes := map[string]float64{
		"avg": float64(m.GetTimerAverage(telemetry.MetricTotalTime)) / float64(time.Millisecond),
		"p95": float64(m.GetTimerP95(telemetry.MetricTotalTime)) / float64(time.Millisecond),
	}

	volume := map[string]int64{
		"input_bytes":        m.GetCounter(telemetry.MetricInputBytes),
		"sentences_selected": m.GetCounter(telemetry.MetricSentencesSelected),
		"empty_summaries":    m.GetCounter(telemetry.MetricEmptySummaries),
		"history_saves":      m.GetCounter(telemetry.MetricHistorySaves),
		"history_size":       int64(m.GetGauge(telemetry.MetricHistorySize)),
		"rate_limited":       m.GetCounter(telemetry.MetricHTTPRateLimited),
	}

	return &HealthReport{
		Status:        status,
		Timestamp:     time.Now(),
		Provider:      summarizer.Name(),
		Components:    componentStatus,
		ResponseTimes: responseTimes,
		Volume:        volume,
		SuccessRate:   successRate,
		TotalRequests: totalRequests,
		Version:       Version,
	}, nil
}

// CreateHealthReportJSON generates a JSON health report for the summarizer
func CreateHealthReportJSON(summarizer *InstrumentedSummarizer, components map[string]HealthStatus) (string, error) {
	report, err := CreateHealthReport(summarizer, components)
	if err != nil {
		return "", err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal health report: %w", err)
	}

	return string(reportJSON), nil
}

// ResetMetrics resets all metrics for the summarizer
func ResetMetrics(summarizer *InstrumentedSummarizer) error {
	if summarizer == nil {
		return fmt.Errorf("summarizer is nil")
	}

	m := summarizer.GetMetrics()
	if m == nil {
		return fmt.Errorf("metrics collector is nil")
	}

	m.Reset()
	return nil
}
