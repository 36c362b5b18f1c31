// Package extractsum summarizes text by returning its most representative
// sentences verbatim. Sentences are ranked by the document frequency of
// their content words.
package extractsum

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/localrivet/extractsum/internal/config"
	"github.com/localrivet/extractsum/internal/errortypes"
	"github.com/localrivet/extractsum/internal/history"
	"github.com/localrivet/extractsum/internal/server"
	"github.com/localrivet/extractsum/internal/summarizer"
	"github.com/localrivet/extractsum/internal/tools"
	"github.com/localrivet/extractsum/internal/util"
	"github.com/localrivet/extractsum/internal/web"
)

// Config represents the configuration for the extractsum service.
type Config = config.Config

// Summary is the result of summarizing one text.
type Summary = tools.Summary

// Service summarizes text and, when configured, keeps a history of results.
type Service struct {
	config     *Config
	summarizer *summarizer.InstrumentedSummarizer
	store      history.Store
	pipeline   *server.Pipeline
	toolServer *server.MCPSummaryToolServer
	logger     *slog.Logger
}

// Options defines the options for creating a new Service.
type Options struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewService creates a Service with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewService(opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	switch {
	case opts.Config != nil:
		cfg = opts.Config
		logger.Debug("Using provided Config object for service initialization")
	case opts.ConfigPath != "":
		logger.Info("Loading configuration for service initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			return nil, errortypes.ConfigError(err, "failed to load configuration from path: "+opts.ConfigPath)
		}
	default:
		cfg = DefaultConfig()
	}

	sum, store, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during service initialization", "error", err)
		return nil, err
	}

	pipeline := server.NewPipeline(sum, store, server.PipelineOptions{
		DefaultLength: cfg.Summarizer.DefaultLength,
		MaxInputBytes: cfg.Summarizer.MaxInputBytes,
	}, logger)

	toolServer := server.NewSummaryToolServer(pipeline, logger)
	if err := toolServer.Initialize(); err != nil {
		if store != nil {
			store.Close()
		}
		return nil, errortypes.ConfigError(err, "failed to initialize MCP summary tool server")
	}

	logger.Info("extractsum service initialized", "provider", sum.Name(), "history", store != nil)
	return &Service{
		config:     cfg,
		summarizer: sum,
		store:      store,
		pipeline:   pipeline,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the extractsum service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Summarize returns at most length sentences of text, best first.
// A non-positive length yields an empty summary.
func (s *Service) Summarize(ctx context.Context, text string, length int) ([]string, error) {
	sentences, err := s.summarizer.Summarize(ctx, text, length)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to summarize text")
	}
	return sentences, nil
}

// SummarizeAndRecord summarizes text through the validating pipeline and
// stores the result when history is enabled. A zero length selects the
// configured default.
func (s *Service) SummarizeAndRecord(ctx context.Context, text string, length int) (*Summary, error) {
	return s.pipeline.SummarizeAndRecord(ctx, tools.SummarizeTextRequest{Text: text, Length: length})
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *Config {
	return s.config
}

// Pipeline returns the request pipeline shared by the serving layers.
func (s *Service) Pipeline() *server.Pipeline {
	return s.pipeline
}

// Handler returns the HTTP handler for the web form and JSON API.
func (s *Service) Handler() (http.Handler, error) {
	return web.NewHandler(s.pipeline, web.Options{
		RatePerSecond: s.config.HTTP.RatePerSecond,
		Burst:         s.config.HTTP.Burst,
	}, s.logger)
}

// StartMCP serves the MCP tools on stdio until stdin is closed.
func (s *Service) StartMCP() error {
	s.logger.Info("Starting extractsum MCP service")
	return s.toolServer.Start()
}

// Close stops the MCP server and closes the history store.
func (s *Service) Close() error {
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if s.store != nil {
		s.logger.Info("Closing history store")
		if err := s.store.Close(); err != nil {
			return errortypes.DatabaseError(err, "failed to close history store")
		}
	}
	return nil
}

// CreateComponents builds the instrumented summarizer and, when enabled, the
// history store described by cfg. The returned store is nil when history is
// disabled.
func CreateComponents(cfg *Config, logger *slog.Logger) (*summarizer.InstrumentedSummarizer, history.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	order, err := summarizer.ParseOrder(cfg.Summarizer.Order)
	if err != nil {
		return nil, nil, errortypes.ConfigError(err, "invalid summarizer order")
	}

	logger.Debug("Initializing summarizer", "provider", cfg.Summarizer.Provider, "order", order)
	var inner summarizer.ScoredSummarizer
	switch cfg.Summarizer.Provider {
	case summarizer.ProviderFrequency, "":
		inner = summarizer.NewFrequencySummarizer(&summarizer.FrequencySummarizerConfig{Order: order})
	case summarizer.ProviderLead:
		inner = summarizer.NewLeadSummarizer(nil)
	default:
		logger.Warn("Unknown summarizer provider, using frequency summarizer", "provider", cfg.Summarizer.Provider)
		inner = summarizer.NewFrequencySummarizer(&summarizer.FrequencySummarizerConfig{Order: order})
	}

	sum := summarizer.NewInstrumentedSummarizer(inner, nil)
	if err := sum.Initialize(); err != nil {
		return nil, nil, errortypes.ConfigError(err, "failed to initialize summarizer")
	}

	if !cfg.Store.Enabled {
		return sum, nil, nil
	}

	logger.Info("Initializing SQLite history store", "path", cfg.Store.SQLitePath)
	store := history.NewSQLiteStore()
	if err := store.Initialize(cfg.Store.SQLitePath); err != nil {
		return nil, nil, errortypes.DatabaseError(err, "failed to initialize SQLite history store").
			WithField("path", cfg.Store.SQLitePath)
	}

	return sum, store, nil
}

// GenerateHash creates a summary identifier from the source text and a timestamp.
// This is a convenience wrapper around the internal util.GenerateHash function
func GenerateHash(text string, timestamp int64) string {
	return util.GenerateHash(text, timestamp)
}
