// Package web serves the summarizer over HTTP: an HTML form for people and
// a small JSON API for programs.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/localrivet/extractsum/internal/errortypes"
	"github.com/localrivet/extractsum/internal/server"
	"github.com/localrivet/extractsum/internal/summarizer"
	"github.com/localrivet/extractsum/internal/telemetry"
	"github.com/localrivet/extractsum/internal/tools"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxFormBytes bounds request bodies before the pipeline applies its own limit.
const maxFormBytes = 8 << 20

// Options configures the HTTP handler.
type Options struct {
	// RatePerSecond is the sustained request rate across all clients.
	// Zero disables rate limiting.
	RatePerSecond int

	// Burst is the number of requests allowed at once.
	Burst int
}

// Handler routes HTTP requests to the summarization pipeline.
type Handler struct {
	pipeline  *server.Pipeline
	templates *template.Template
	limiter   *RateLimiter
	logger    *slog.Logger
	mux       *http.ServeMux
}

type indexPage struct {
	Text      string
	LineCount int
	Error     string
}

type summaryPage struct {
	ID        string
	Sentences []string
}

// NewHandler creates a Handler with every route registered.
func NewHandler(pipeline *server.Pipeline, opts Options, logger *slog.Logger) (*Handler, error) {
	if pipeline == nil {
		return nil, errortypes.ConfigError(server.ErrMissingDependencies, "web handler requires a pipeline")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to parse templates")
	}

	h := &Handler{
		pipeline:  pipeline,
		templates: tmpl,
		limiter:   NewRateLimiter(opts.RatePerSecond, opts.Burst),
		logger:    logger.With("component", "web"),
		mux:       http.NewServeMux(),
	}
	h.register()
	return h, nil
}

func (h *Handler) register() {
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.Handle("POST /summarize", h.limit(http.HandlerFunc(h.handleSummarizeForm)))
	h.mux.Handle("POST /api/summarize", h.limit(http.HandlerFunc(h.handleSummarizeAPI)))
	h.mux.HandleFunc("GET /api/summaries", h.handleListSummaries)
	h.mux.HandleFunc("GET /api/summaries/{id}", h.handleGetSummary)
	h.mux.HandleFunc("DELETE /api/summaries/{id}", h.handleDeleteSummary)
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /metrics", h.handleMetrics)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.pipeline.Metrics().IncrementCounter(telemetry.MetricHTTPRequests, 1)
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) limit(next http.Handler) http.Handler {
	return h.limiter.Middleware(next, func(w http.ResponseWriter, r *http.Request) {
		h.pipeline.Metrics().IncrementCounter(telemetry.MetricHTTPRateLimited, 1)
		h.logger.Warn("Rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		err := errortypes.RateLimitError(errors.New("request rate exceeded"), "too many requests")
		h.writeError(w, r, err)
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", indexPage{LineCount: h.pipeline.DefaultLength()})
}

// handleSummarizeForm handles the HTML form post with text_content and line_count.
func (h *Handler) handleSummarizeForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "index", indexPage{
			LineCount: h.pipeline.DefaultLength(),
			Error:     "The form could not be read.",
		})
		return
	}

	text := r.PostFormValue("text_content")
	page := indexPage{Text: text, LineCount: h.pipeline.DefaultLength()}

	length := 0
	if raw := strings.TrimSpace(r.PostFormValue("line_count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			page.Error = "Number of sentences must be a positive whole number."
			h.render(w, http.StatusBadRequest, "index", page)
			return
		}
		length = n
		page.LineCount = n
	}

	summary, err := h.pipeline.SummarizeAndRecord(r.Context(), tools.SummarizeTextRequest{Text: text, Length: length})
	if err != nil {
		status := server.StatusFor(err)
		errortypes.LogError(h.logger, err)
		if status >= http.StatusInternalServerError {
			page.Error = "The text could not be summarized."
		} else {
			page.Error = err.Error()
		}
		h.render(w, status, "index", page)
		return
	}

	h.render(w, http.StatusOK, "summary", summaryPage{ID: summary.ID, Sentences: summary.Texts()})
}

func (h *Handler) handleSummarizeAPI(w http.ResponseWriter, r *http.Request) {
	var req tools.SummarizeTextRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, server.NewErrorWithStatus(err, http.StatusRequestEntityTooLarge,
				server.StatusCodePayloadTooLarge, "request body too large"))
			return
		}
		h.writeError(w, r, errortypes.ValidationError(err, "invalid JSON body"))
		return
	}

	summary, err := h.pipeline.SummarizeAndRecord(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tools.NewSummarizeTextResponse(summary))
}

func (h *Handler) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.writeError(w, r, errortypes.ValidationError(errors.New("limit must be a non-negative integer"), "invalid list request").
				WithField("limit", raw))
			return
		}
		limit = n
	}

	records, err := h.pipeline.List(limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tools.ListSummariesResponse{Status: tools.StatusSuccess, Summaries: records})
}

func (h *Handler) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	record, err := h.pipeline.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tools.GetSummaryResponse{Status: tools.StatusSuccess, Summary: record})
}

func (h *Handler) handleDeleteSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.pipeline.Delete(r.PathValue("id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.Health()
	if err != nil {
		h.writeError(w, r, errortypes.InternalError(err, "failed to build health report"))
		return
	}

	status := http.StatusOK
	if report.Status == summarizer.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, h.pipeline.Metrics().GetReport())
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := server.StatusFor(err)
	if status < http.StatusInternalServerError {
		h.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	server.WriteError(w, err, status)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("Failed to render template", "template", name, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "status", status, "error", err)
	}
}
