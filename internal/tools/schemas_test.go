package tools

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localrivet/extractsum/internal/summarizer"
)

func TestSummarizeTextRequestDecoding(t *testing.T) {
	var req SummarizeTextRequest
	if err := json.Unmarshal([]byte(`{"text":"A. B.","length":2,"format":"html"}`), &req); err != nil {
		t.Fatalf("Failed to unmarshal SummarizeTextRequest: %v", err)
	}

	want := SummarizeTextRequest{Text: "A. B.", Length: 2, Format: "html"}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("SummarizeTextRequest mismatch (-want +got):\n%s", diff)
	}

	// length and format are optional
	var minimal SummarizeTextRequest
	if err := json.Unmarshal([]byte(`{"text":"Only text."}`), &minimal); err != nil {
		t.Fatalf("Failed to unmarshal minimal request: %v", err)
	}
	if minimal.Length != 0 || minimal.Format != "" {
		t.Errorf("Expected zero length and format, got %+v", minimal)
	}
}

func TestNewSummarizeTextResponse(t *testing.T) {
	summary := &Summary{
		ID:       "abc",
		Provider: summarizer.ProviderFrequency,
		Length:   2,
		Sentences: []summarizer.ScoredSentence{
			{Index: 3, Text: "Most relevant.", Score: 9},
			{Index: 0, Text: "Second best.", Score: 4},
		},
	}

	resp := NewSummarizeTextResponse(summary)
	want := SummarizeTextResponse{
		Status:    StatusSuccess,
		ID:        "abc",
		Sentences: []string{"Most relevant.", "Second best."},
		Summary:   "Most relevant. Second best.",
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("NewSummarizeTextResponse() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeTextResponseJSON(t *testing.T) {
	resp := NewSummarizeTextResponse(&Summary{Sentences: []summarizer.ScoredSentence{}})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal SummarizeTextResponse: %v", err)
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		t.Fatalf("Failed to unmarshal JSON into map: %v", err)
	}

	// An empty summary is an empty list, not null, and carries no id or error.
	if sentences, ok := jsonMap["sentences"].([]interface{}); !ok || len(sentences) != 0 {
		t.Errorf("Expected empty sentences array, got %v", jsonMap["sentences"])
	}
	if _, ok := jsonMap["id"]; ok {
		t.Error("Expected id to be omitted")
	}
	if _, ok := jsonMap["error"]; ok {
		t.Error("Expected error to be omitted")
	}
}

func TestClearSummariesResponseJSON(t *testing.T) {
	data, err := json.Marshal(ClearSummariesResponse{Status: StatusError, Error: "Confirmation required"})
	if err != nil {
		t.Fatalf("Failed to marshal ClearSummariesResponse: %v", err)
	}

	want := `{"status":"error","deleted_count":0,"error":"Confirmation required"}`
	if string(data) != want {
		t.Errorf("JSON = %s, want %s", data, want)
	}
}
