package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localrivet/extractsum/internal/errortypes"
	"github.com/localrivet/extractsum/internal/history"
	"github.com/localrivet/extractsum/internal/summarizer"
	"github.com/localrivet/extractsum/internal/telemetry"
	"github.com/localrivet/extractsum/internal/textproc"
	"github.com/localrivet/extractsum/internal/tools"
	"github.com/localrivet/extractsum/internal/util"
)

// ErrHistoryDisabled is returned by history operations when no store is configured.
var ErrHistoryDisabled = errors.New("summary history is disabled")

// PipelineOptions holds the limits applied to every request.
type PipelineOptions struct {
	// DefaultLength is used when a request does not give a length.
	DefaultLength int

	// MaxInputBytes rejects larger texts. Zero disables the check.
	MaxInputBytes int
}

// Pipeline validates requests, prepares input, runs the summarizer and
// records the results. It is shared by the MCP tools and the web handlers.
type Pipeline struct {
	summarizer *summarizer.InstrumentedSummarizer
	store      history.Store
	opts       PipelineOptions
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline creates a Pipeline. store may be nil to disable history.
func NewPipeline(sum *summarizer.InstrumentedSummarizer, store history.Store, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultLength <= 0 {
		opts.DefaultLength = summarizer.DefaultSummaryLength
	}
	return &Pipeline{
		summarizer: sum,
		store:      store,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// Metrics returns the collector shared by the pipeline components.
func (p *Pipeline) Metrics() *telemetry.MetricsCollector {
	return p.summarizer.GetMetrics()
}

// HistoryEnabled reports whether summaries are persisted.
func (p *Pipeline) HistoryEnabled() bool {
	return p.store != nil
}

// DefaultLength returns the length used when a request gives none.
func (p *Pipeline) DefaultLength() int {
	return p.opts.DefaultLength
}

// Summarize validates req and returns its summary without recording it.
func (p *Pipeline) Summarize(ctx context.Context, req tools.SummarizeTextRequest) (*tools.Summary, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errortypes.ValidationError(errors.New("text is required"), "invalid summarize request")
	}
	if req.Length < 0 {
		return nil, errortypes.ValidationError(fmt.Errorf("length must not be negative, got %d", req.Length), "invalid summarize request").
			WithField("length", req.Length)
	}
	if p.opts.MaxInputBytes > 0 && len(req.Text) > p.opts.MaxInputBytes {
		return nil, errortypes.ValidationError(fmt.Errorf("text is %d bytes, limit is %d", len(req.Text), p.opts.MaxInputBytes), "input too large").
			WithField("text_bytes", len(req.Text))
	}

	length := req.Length
	if length == 0 {
		length = p.opts.DefaultLength
	}

	text, err := textproc.Prepare(req.Format, req.Text)
	if err != nil {
		return nil, errortypes.ValidationError(err, "invalid input format").WithField("format", req.Format)
	}

	p.logger.Debug("Summarizing text", "text_bytes", len(text), "length", length, "provider", p.summarizer.Name())
	scored, err := p.summarizer.SummarizeScored(ctx, text, length)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to summarize text")
	}

	return &tools.Summary{
		Provider:  p.summarizer.Name(),
		Length:    length,
		Sentences: scored,
	}, nil
}

// SummarizeAndRecord summarizes req and, when history is enabled, stores the
// result and fills in its ID.
func (p *Pipeline) SummarizeAndRecord(ctx context.Context, req tools.SummarizeTextRequest) (*tools.Summary, error) {
	summary, err := p.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}
	if p.store == nil {
		return summary, nil
	}

	now := p.now()
	record := history.Record{
		ID:         util.GenerateHash(req.Text, now.UnixNano()),
		SourceHash: util.ContentHash(req.Text, summary.Length),
		Length:     summary.Length,
		Sentences:  summary.Texts(),
		CreatedAt:  now,
	}

	metrics := p.Metrics()
	if err := p.store.Save(record); err != nil {
		metrics.IncrementCounter(telemetry.MetricHistoryFailures, 1)
		return nil, errortypes.DatabaseError(err, "failed to save summary").WithField("summary_id", record.ID)
	}
	metrics.IncrementCounter(telemetry.MetricHistorySaves, 1)
	p.refreshHistorySize()

	p.logger.Info("Recorded summary", "id", record.ID, "sentences", len(record.Sentences))
	summary.ID = record.ID
	return summary, nil
}

// Get returns a stored summary.
func (p *Pipeline) Get(id string) (*history.Record, error) {
	if err := p.checkHistory(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errortypes.ValidationError(errors.New("id is required"), "invalid summary request")
	}

	record, err := p.store.Get(id)
	if err != nil {
		return nil, p.storeError(err, "failed to get summary", id)
	}
	return record, nil
}

// List returns up to limit stored summaries, newest first. A non-positive
// limit selects tools.DefaultListLimit.
func (p *Pipeline) List(limit int) ([]history.Record, error) {
	if err := p.checkHistory(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = tools.DefaultListLimit
	}

	records, err := p.store.List(limit)
	if err != nil {
		return nil, errortypes.DatabaseError(err, "failed to list summaries").WithField("limit", limit)
	}
	return records, nil
}

// Delete removes a stored summary.
func (p *Pipeline) Delete(id string) error {
	if err := p.checkHistory(); err != nil {
		return err
	}
	if id == "" {
		return errortypes.ValidationError(errors.New("id is required"), "invalid summary request")
	}

	if err := p.store.Delete(id); err != nil {
		return p.storeError(err, "failed to delete summary", id)
	}
	p.refreshHistorySize()
	return nil
}

// Clear removes every stored summary and returns how many were removed.
func (p *Pipeline) Clear() (int, error) {
	if err := p.checkHistory(); err != nil {
		return 0, err
	}

	count, err := p.store.Clear()
	if err != nil {
		return 0, errortypes.DatabaseError(err, "failed to clear summaries")
	}
	p.refreshHistorySize()
	return count, nil
}

// Health builds a health report covering the summarizer and the history store.
func (p *Pipeline) Health() (*summarizer.HealthReport, error) {
	components := map[string]summarizer.HealthStatus{}
	if p.store != nil {
		if p.refreshHistorySize() {
			components["history"] = summarizer.StatusHealthy
		} else {
			components["history"] = summarizer.StatusUnhealthy
		}
	}
	return summarizer.CreateHealthReport(p.summarizer, components)
}

func (p *Pipeline) checkHistory() error {
	if p.store == nil {
		return errortypes.NotFoundError(ErrHistoryDisabled, "history unavailable")
	}
	return nil
}

func (p *Pipeline) storeError(err error, message, id string) error {
	if errors.Is(err, history.ErrNotFound) {
		return errortypes.NotFoundError(err, "summary not found").WithField("summary_id", id)
	}
	return errortypes.DatabaseError(err, message).WithField("summary_id", id)
}

// refreshHistorySize updates the history size gauge and reports whether the
// store answered.
func (p *Pipeline) refreshHistorySize() bool {
	count, err := p.store.Count()
	if err != nil {
		p.logger.Warn("Failed to count stored summaries", "error", err)
		return false
	}
	p.Metrics().SetGauge(telemetry.MetricHistorySize, float64(count))
	return true
}
