// Package server provides the MCP tool server, the shared summarization
// pipeline and the HTTP error mapping for the extractsum service.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/localrivet/extractsum/internal/errortypes"
	"github.com/localrivet/extractsum/internal/telemetry"
	"github.com/localrivet/extractsum/internal/tools"
	"github.com/localrivet/gomcp/server"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// MCPSummaryToolServer implements the SummaryToolServer interface
// for handling MCP tool calls that summarize text and manage stored summaries.
type MCPSummaryToolServer struct {
	pipeline  *Pipeline
	logger    *slog.Logger
	mcpServer server.Server
}

// NewSummaryToolServer creates a new MCPSummaryToolServer instance.
func NewSummaryToolServer(pipeline *Pipeline, logger *slog.Logger) *MCPSummaryToolServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MCPSummaryToolServer{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Initialize registers the tools with a new MCP server.
func (s *MCPSummaryToolServer) Initialize() error {
	s.logger.Info("Initializing MCP summary tool server")

	if s.pipeline == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer("extractsum")

	srv = srv.Tool(tools.ToolSummarizeText, "Summarize text by returning its most representative sentences verbatim",
		s.handleSummarizeText)

	srv = srv.Tool(tools.ToolGetSummary, "Get a stored summary by ID",
		s.handleGetSummary)

	srv = srv.Tool(tools.ToolListSummaries, "List stored summaries, newest first",
		s.handleListSummaries)

	srv = srv.Tool(tools.ToolDeleteSummary, "Delete a stored summary by ID",
		s.handleDeleteSummary)

	srv = srv.Tool(tools.ToolClearSummaries, "Delete every stored summary",
		s.handleClearSummaries)

	s.mcpServer = srv
	s.logger.Info("MCP summary tool server initialized", "tool_count", 5, "history", s.pipeline.HistoryEnabled())
	return nil
}

// Start runs the MCP server on stdio until stdin is closed.
func (s *MCPSummaryToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	s.logger.Info("Starting MCP summary tool server")
	return s.mcpServer.AsStdio().Run()
}

// Stop gracefully shuts down the MCP server.
func (s *MCPSummaryToolServer) Stop() error {
	s.logger.Info("Stopping MCP summary tool server")
	// The server will exit when stdin is closed
	return nil
}

// toolFailed logs err and returns its client message.
func (s *MCPSummaryToolServer) toolFailed(tool string, err error) string {
	s.pipeline.Metrics().IncrementCounter(telemetry.MetricToolCalls+"."+tool+".failure", 1)
	errortypes.LogError(s.logger, err)
	return err.Error()
}

func (s *MCPSummaryToolServer) countCall(tool string) {
	s.pipeline.Metrics().IncrementCounter(telemetry.MetricToolCalls, 1)
	s.pipeline.Metrics().IncrementCounter(telemetry.MetricToolCalls+"."+tool, 1)
}

// handleSummarizeText handles the summarize_text MCP tool call.
func (s *MCPSummaryToolServer) handleSummarizeText(ctx *server.Context, req tools.SummarizeTextRequest) (tools.SummarizeTextResponse, error) {
	s.countCall(tools.ToolSummarizeText)
	s.logger.Info("Processing summarize_text request", "text_length", len(req.Text), "length", req.Length, "format", req.Format)

	summary, err := s.pipeline.SummarizeAndRecord(context.Background(), req)
	if err != nil {
		return tools.SummarizeTextResponse{
			Status:    tools.StatusError,
			Sentences: []string{},
			Error:     s.toolFailed(tools.ToolSummarizeText, err),
		}, nil
	}

	s.logger.Info("Successfully summarized text", "id", summary.ID, "sentences", len(summary.Sentences))
	return tools.NewSummarizeTextResponse(summary), nil
}

// handleGetSummary handles the get_summary MCP tool call.
func (s *MCPSummaryToolServer) handleGetSummary(ctx *server.Context, req tools.GetSummaryRequest) (tools.GetSummaryResponse, error) {
	s.countCall(tools.ToolGetSummary)
	s.logger.Info("Processing get_summary request", "id", req.ID)

	record, err := s.pipeline.Get(req.ID)
	if err != nil {
		return tools.GetSummaryResponse{
			Status: tools.StatusError,
			Error:  s.toolFailed(tools.ToolGetSummary, err),
		}, nil
	}

	return tools.GetSummaryResponse{Status: tools.StatusSuccess, Summary: record}, nil
}

// handleListSummaries handles the list_summaries MCP tool call.
func (s *MCPSummaryToolServer) handleListSummaries(ctx *server.Context, req tools.ListSummariesRequest) (tools.ListSummariesResponse, error) {
	s.countCall(tools.ToolListSummaries)
	s.logger.Info("Processing list_summaries request", "limit", req.Limit)

	records, err := s.pipeline.List(req.Limit)
	if err != nil {
		return tools.ListSummariesResponse{
			Status: tools.StatusError,
			Error:  s.toolFailed(tools.ToolListSummaries, err),
		}, nil
	}

	s.logger.Info("Successfully listed summaries", "count", len(records))
	return tools.ListSummariesResponse{Status: tools.StatusSuccess, Summaries: records}, nil
}

// handleDeleteSummary handles the delete_summary MCP tool call.
func (s *MCPSummaryToolServer) handleDeleteSummary(ctx *server.Context, req tools.DeleteSummaryRequest) (tools.DeleteSummaryResponse, error) {
	s.countCall(tools.ToolDeleteSummary)
	s.logger.Info("Processing delete_summary request", "id", req.ID)

	if err := s.pipeline.Delete(req.ID); err != nil {
		return tools.DeleteSummaryResponse{
			Status: tools.StatusError,
			Error:  s.toolFailed(tools.ToolDeleteSummary, err),
		}, nil
	}

	s.logger.Info("Successfully deleted summary", "id", req.ID)
	return tools.DeleteSummaryResponse{Status: tools.StatusSuccess}, nil
}

// handleClearSummaries handles the clear_summaries MCP tool call.
func (s *MCPSummaryToolServer) handleClearSummaries(ctx *server.Context, req tools.ClearSummariesRequest) (tools.ClearSummariesResponse, error) {
	s.countCall(tools.ToolClearSummaries)
	s.logger.Info("Processing clear_summaries request")

	if req.Confirmation != tools.ClearConfirmation {
		s.logger.Warn("Clear summaries operation rejected: missing confirmation")
		return tools.ClearSummariesResponse{
			Status: tools.StatusError,
			Error:  "Confirmation required. Set confirmation to 'confirm' to proceed with clearing all summaries",
		}, nil
	}

	count, err := s.pipeline.Clear()
	if err != nil {
		return tools.ClearSummariesResponse{
			Status: tools.StatusError,
			Error:  s.toolFailed(tools.ToolClearSummaries, err),
		}, nil
	}

	s.logger.Info("Successfully cleared summaries", "count", count)
	return tools.ClearSummariesResponse{Status: tools.StatusSuccess, DeletedCount: count}, nil
}
