package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localrivet/extractsum/internal/history"
	"github.com/localrivet/extractsum/internal/server"
	"github.com/localrivet/extractsum/internal/summarizer"
	"github.com/localrivet/extractsum/internal/telemetry"
	"github.com/localrivet/extractsum/internal/tools"
)

const catText = "The cat sat. The cat sat on the mat. Dogs bark loudly."

func newTestHandler(t *testing.T, withHistory bool, opts Options) *Handler {
	t.Helper()

	sum := summarizer.NewInstrumentedSummarizer(summarizer.NewFrequencySummarizer(nil), nil)
	if err := sum.Initialize(); err != nil {
		t.Fatalf("Failed to initialize summarizer: %v", err)
	}

	var store history.Store
	if withHistory {
		s := history.NewSQLiteStore()
		if err := s.Initialize(filepath.Join(t.TempDir(), "history.db")); err != nil {
			t.Fatalf("Failed to initialize store: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		store = s
	}

	h, err := NewHandler(server.NewPipeline(sum, store, server.PipelineOptions{}, nil), opts, nil)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewHandlerRequiresPipeline(t *testing.T) {
	if _, err := NewHandler(nil, Options{}, nil); err == nil {
		t.Error("expected error without a pipeline")
	}
}

func TestIndex(t *testing.T) {
	h := newTestHandler(t, false, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="text_content"`, `name="line_count"`, `value="4"`} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %s", want)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestSummarizeForm(t *testing.T) {
	tests := []struct {
		name       string
		values     url.Values
		wantStatus int
		contains   []string
		excludes   []string
	}{
		{
			name:       "one sentence",
			values:     url.Values{"text_content": {catText}, "line_count": {"1"}},
			wantStatus: http.StatusOK,
			contains:   []string{"<li>The cat sat on the mat.</li>"},
			excludes:   []string{"<li>The cat sat.</li>", "Dogs bark loudly."},
		},
		{
			name:       "default count",
			values:     url.Values{"text_content": {catText}},
			wantStatus: http.StatusOK,
			contains:   []string{"<li>The cat sat on the mat.</li>", "<li>The cat sat.</li>", "<li>Dogs bark loudly.</li>"},
		},
		{
			name:       "escapes markup",
			values:     url.Values{"text_content": {"Cats <b>purr</b> loudly."}, "line_count": {"1"}},
			wantStatus: http.StatusOK,
			contains:   []string{"&lt;b&gt;purr&lt;/b&gt;"},
		},
		{
			name:       "invalid count",
			values:     url.Values{"text_content": {catText}, "line_count": {"three"}},
			wantStatus: http.StatusBadRequest,
			contains:   []string{"positive whole number"},
		},
		{
			name:       "zero count",
			values:     url.Values{"text_content": {catText}, "line_count": {"0"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing text",
			values:     url.Values{"line_count": {"2"}},
			wantStatus: http.StatusBadRequest,
			contains:   []string{"text is required"},
		},
	}

	h := newTestHandler(t, false, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(h, tt.values)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			body := rec.Body.String()
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(body, unwanted) {
					t.Errorf("body should not contain %q", unwanted)
				}
			}
		})
	}
}

func TestSummarizeAPI(t *testing.T) {
	h := newTestHandler(t, true, Options{})

	rec := postJSON(h, `{"text": "The cat sat. The cat sat on the mat. Dogs bark loudly.", "length": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp tools.SummarizeTextResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []string{"The cat sat on the mat.", "The cat sat."}
	if diff := cmp.Diff(want, resp.Sentences); diff != "" {
		t.Errorf("Sentences mismatch (-want +got):\n%s", diff)
	}
	if resp.Summary != "The cat sat on the mat. The cat sat." {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if resp.ID == "" {
		t.Error("expected an ID with history enabled")
	}
}

func TestSummarizeAPIErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest, server.StatusCodeValidationError},
		{"empty text", `{"text": ""}`, http.StatusBadRequest, server.StatusCodeValidationError},
		{"negative length", `{"text": "One. Two.", "length": -1}`, http.StatusBadRequest, server.StatusCodeValidationError},
		{"bad format", `{"text": "One. Two.", "format": "rtf"}`, http.StatusBadRequest, server.StatusCodeValidationError},
		{"oversized body", `{"text": "` + strings.Repeat("a", maxFormBytes) + `"}`, http.StatusRequestEntityTooLarge, server.StatusCodePayloadTooLarge},
	}

	h := newTestHandler(t, false, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp server.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestSummaryHistoryRoutes(t *testing.T) {
	h := newTestHandler(t, true, Options{})

	var ids []string
	for _, text := range []string{catText, "Birds sing at dawn. Owls hunt at night."} {
		rec := postJSON(h, `{"text": "`+text+`", "length": 1}`)
		var resp tools.SummarizeTextResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.ID == "" {
			t.Fatalf("summarize failed: %d %s", rec.Code, rec.Body.String())
		}
		ids = append(ids, resp.ID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries?limit=10", nil))
	var list tools.ListSummariesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if rec.Code != http.StatusOK || len(list.Summaries) != 2 {
		t.Fatalf("list: status %d, %d summaries", rec.Code, len(list.Summaries))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries/"+ids[0], nil))
	var got tools.GetSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode get: %v", err)
	}
	if got.Summary == nil || got.Summary.ID != ids[0] {
		t.Fatalf("get returned %+v", got)
	}
	if diff := cmp.Diff([]string{"The cat sat on the mat."}, got.Summary.Sentences); diff != "" {
		t.Errorf("stored sentences mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/summaries/"+ids[0], nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries/"+ids[0], nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestHistoryRoutesDisabled(t *testing.T) {
	h := newTestHandler(t, false, Options{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summaries", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without history", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, false, Options{RatePerSecond: 1, Burst: 2})

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = postJSON(h, `{"text": "One. Two."}`).Code
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("status codes mismatch (-want +got):\n%s", diff)
	}
	if got := h.pipeline.Metrics().GetCounter(telemetry.MetricHTTPRateLimited); got != 1 {
		t.Errorf("rate limited counter = %d, want 1", got)
	}

	// Health is not rate limited.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, true, Options{})
	postJSON(h, `{"text": "One. Two."}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var report summarizer.HealthReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Status != summarizer.StatusHealthy {
		t.Errorf("Status = %s", report.Status)
	}
	if report.TotalRequests != 1 || report.Volume["history_saves"] != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Components["history"] != string(summarizer.StatusHealthy) {
		t.Errorf("history component = %q", report.Components["history"])
	}
}

func TestMetrics(t *testing.T) {
	h := newTestHandler(t, false, Options{})
	postJSON(h, `{"text": "One. Two."}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{telemetry.MetricSummarizeCalls, telemetry.MetricHTTPRequests} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("metrics report missing %s", want)
		}
	}
}
