// Package tools defines the request and response data structures shared by
// the extractsum MCP tools and the JSON web API.
package tools

import (
	"strings"

	"github.com/localrivet/extractsum/internal/history"
	"github.com/localrivet/extractsum/internal/summarizer"
)

const (
	// ToolSummarizeText is the name of the summarize_text MCP tool
	ToolSummarizeText = "summarize_text"

	// ToolGetSummary is the name of the get_summary MCP tool
	ToolGetSummary = "get_summary"

	// ToolListSummaries is the name of the list_summaries MCP tool
	ToolListSummaries = "list_summaries"

	// ToolDeleteSummary is the name of the delete_summary MCP tool
	ToolDeleteSummary = "delete_summary"

	// ToolClearSummaries is the name of the clear_summaries MCP tool
	ToolClearSummaries = "clear_summaries"

	// DefaultListLimit is the number of summaries returned when a
	// list_summaries request gives no limit
	DefaultListLimit = 10

	// ClearConfirmation must be sent with clear_summaries
	ClearConfirmation = "confirm"

	// StatusSuccess and StatusError are the values of every response Status
	StatusSuccess = "success"
	StatusError   = "error"
)

// Summary is the result of summarizing one text.
type Summary struct {
	// ID identifies the stored record. Empty when history is disabled.
	ID string `json:"id,omitempty"`

	// Provider names the summarizer that produced the summary.
	Provider string `json:"provider"`

	// Length is the requested number of sentences after defaults were applied.
	Length int `json:"length"`

	// Sentences are the selected sentences in summary order.
	Sentences []summarizer.ScoredSentence `json:"sentences"`
}

// Texts returns the selected sentences without positions or scores.
func (s *Summary) Texts() []string {
	return summarizer.Texts(s.Sentences)
}

// Text joins the selected sentences with single spaces.
func (s *Summary) Text() string {
	return strings.Join(s.Texts(), " ")
}

// SummarizeTextRequest defines the input schema for summarize_text tool
type SummarizeTextRequest struct {
	// Text is the document to summarize
	Text string `json:"text"`

	// Length is the number of sentences wanted. Zero selects the configured default.
	Length int `json:"length,omitempty"`

	// Format is "text" (default) or "html"
	Format string `json:"format,omitempty"`
}

// SummarizeTextResponse defines the output schema for summarize_text tool
type SummarizeTextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// ID is the identifier of the stored summary, if history is enabled
	ID string `json:"id,omitempty"`

	// Sentences are the selected sentences
	Sentences []string `json:"sentences"`

	// Summary is the selected sentences joined into one paragraph
	Summary string `json:"summary"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// NewSummarizeTextResponse builds a successful response from a summary.
func NewSummarizeTextResponse(summary *Summary) SummarizeTextResponse {
	return SummarizeTextResponse{
		Status:    StatusSuccess,
		ID:        summary.ID,
		Sentences: summary.Texts(),
		Summary:   summary.Text(),
	}
}

// GetSummaryRequest defines the input schema for get_summary tool
type GetSummaryRequest struct {
	// ID is the identifier of the stored summary
	ID string `json:"id"`
}

// GetSummaryResponse defines the output schema for get_summary tool
type GetSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summary is the stored record
	Summary *history.Record `json:"summary,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ListSummariesRequest defines the input schema for list_summaries tool
type ListSummariesRequest struct {
	// Limit is the maximum number of summaries to return, newest first.
	// If not specified, DefaultListLimit will be used
	Limit int `json:"limit,omitempty"`
}

// ListSummariesResponse defines the output schema for list_summaries tool
type ListSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Summaries contains the stored records
	Summaries []history.Record `json:"summaries"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// DeleteSummaryRequest defines the input schema for delete_summary tool
type DeleteSummaryRequest struct {
	// ID is the identifier of the summary to delete
	ID string `json:"id"`
}

// DeleteSummaryResponse defines the output schema for delete_summary tool
type DeleteSummaryResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ClearSummariesRequest defines the input schema for clear_summaries tool
type ClearSummariesRequest struct {
	// Confirmation must be set to "confirm" to prevent accidental clearing
	Confirmation string `json:"confirmation"`
}

// ClearSummariesResponse defines the output schema for clear_summaries tool
type ClearSummariesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// DeletedCount is the number of summaries removed
	DeletedCount int `json:"deleted_count"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
