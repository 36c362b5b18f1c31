package summarizer

import (
	"context"
	"time"

	"github.com/localrivet/extractsum/internal/telemetry"
)

// InstrumentedSummarizer wraps a ScoredSummarizer and records call counts,
// volumes and latency in a MetricsCollector.
type InstrumentedSummarizer struct {
	inner   ScoredSummarizer
	metrics *telemetry.MetricsCollector
}

// NewInstrumentedSummarizer wraps inner. A nil collector gets a fresh one.
func NewInstrumentedSummarizer(inner ScoredSummarizer, metrics *telemetry.MetricsCollector) *InstrumentedSummarizer {
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	return &InstrumentedSummarizer{
		inner:   inner,
		metrics: metrics,
	}
}

// Initialize initializes the wrapped summarizer.
func (s *InstrumentedSummarizer) Initialize() error {
	return s.inner.Initialize()
}

// Name returns the wrapped summarizer's name.
func (s *InstrumentedSummarizer) Name() string {
	return s.inner.Name()
}

// GetMetrics returns the metrics collector.
func (s *InstrumentedSummarizer) GetMetrics() *telemetry.MetricsCollector {
	return s.metrics
}

// SummarizeScored delegates to the wrapped summarizer and records the outcome.
func (s *InstrumentedSummarizer) SummarizeScored(ctx context.Context, text string, length int) ([]ScoredSentence, error) {
	startTime := time.Now()
	defer func() {
		s.metrics.RecordTimer(telemetry.MetricTotalTime, time.Since(startTime))
	}()

	s.metrics.IncrementCounter(telemetry.MetricSummarizeCalls, 1)
	s.metrics.RecordTimestamp(telemetry.MetricSummarizeCalls)
	s.metrics.IncrementCounter(telemetry.MetricInputBytes, int64(len(text)))
	s.metrics.SetGauge(telemetry.MetricLastInputBytes, float64(len(text)))

	scored, err := s.inner.SummarizeScored(ctx, text, length)
	if err != nil {
		s.metrics.IncrementCounter(telemetry.MetricSummarizeFailure, 1)
		return nil, err
	}

	s.metrics.IncrementCounter(telemetry.MetricSummarizeSuccess, 1)
	s.metrics.IncrementCounter(telemetry.MetricSentencesSelected, int64(len(scored)))
	if len(scored) == 0 {
		s.metrics.IncrementCounter(telemetry.MetricEmptySummaries, 1)
	}
	return scored, nil
}

// Summarize returns the sentence texts of SummarizeScored.
func (s *InstrumentedSummarizer) Summarize(ctx context.Context, text string, length int) ([]string, error) {
	scored, err := s.SummarizeScored(ctx, text, length)
	if err != nil {
		return nil, err
	}
	return Texts(scored), nil
}
