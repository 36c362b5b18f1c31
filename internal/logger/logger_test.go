package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/localrivet/extractsum/internal/errortypes"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	config := &Config{
		Level:       DEBUG,
		Format:      TEXT,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"test": true},
	}
	logger := New(config)

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.Info("Summarized %d sentences", 4)
	if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "Summarized 4 sentences") {
		t.Errorf("Expected info message in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.WithContext("web").Warn("This is a warning")
	if !strings.Contains(buf.String(), "WARN") ||
		!strings.Contains(buf.String(), "This is a warning") ||
		!strings.Contains(buf.String(), "[web]") {
		t.Errorf("Expected warning with context in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.WithField("b", 2).WithField("a", 1).Error("This is an error")
	if !strings.Contains(buf.String(), "ERROR") ||
		!strings.Contains(buf.String(), "This is an error") ||
		!strings.Contains(buf.String(), " a=1 b=2 test=true") {
		t.Errorf("Expected sorted fields in log output, got: %s", buf.String())
	}
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{
		Level:       INFO,
		Format:      JSON,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"service": ServiceName},
	})

	logger.WithContext("mcp").Info(`quoted "message"`)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "INFO" || entry["message"] != `quoted "message"` {
		t.Errorf("Unexpected JSON entry: %v", entry)
	}
	if entry["service"] != ServiceName || entry["context"] != "mcp" {
		t.Errorf("Expected service and context fields, got: %v", entry)
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:  INFO,
		Format: TEXT,
		Output: &buf,
	})

	logger.Debug("Should not appear")
	if buf.Len() > 0 {
		t.Errorf("DEBUG message should not have been logged, got: %s", buf.String())
	}

	logger.Info("Should appear")
	if buf.Len() == 0 {
		t.Errorf("INFO message should have been logged")
	}

	buf.Reset()
	logger.SetLevel(DISABLED)
	logger.Error("Silenced")
	if buf.Len() > 0 {
		t.Errorf("DISABLED logger should be silent, got: %s", buf.String())
	}

	tests := map[string]LogLevel{"DEBUG": DEBUG, "warning": WARN, "error": ERROR, "off": DISABLED, "unknown": INFO}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if ParseFormat("JSON") != JSON || ParseFormat("text") != TEXT || ParseFormat("") != TEXT {
		t.Error("ParseFormat returned an unexpected format")
	}
}

func TestNewSlog(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog("warn", "json", &buf)

	log.Info("hidden")
	if buf.Len() > 0 {
		t.Errorf("info should be filtered at warn level, got: %s", buf.String())
	}

	log.Warn("visible", "length", 4)
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "visible" || entry["service"] != ServiceName || entry["length"] != float64(4) {
		t.Errorf("Unexpected slog entry: %v", entry)
	}
}

func TestLogErrorAndExitCode(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: DEBUG, Format: TEXT, Output: &buf})

	err := errortypes.ValidationError(errors.New("line count must be a number"), "invalid length").
		WithField("value", "abc")
	logger.LogError(err)

	if !strings.Contains(buf.String(), "invalid length") ||
		!strings.Contains(buf.String(), "error_type=validation") ||
		!strings.Contains(buf.String(), "value=abc") {
		t.Errorf("Error not logged correctly: %s", buf.String())
	}

	tests := []struct {
		err  error
		want int
	}{
		{err: nil, want: ExitOK},
		{err: err, want: ExitUsage},
		{err: errortypes.DatabaseError(errors.New("locked"), "save failed"), want: ExitDatabase},
		{err: errors.New("other"), want: ExitFailure},
		{err: fmt.Errorf("wrapped: %w", err), want: ExitUsage},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
		}
	}
}

func ExampleLogger_WithContext() {
	var buf bytes.Buffer
	logger := New(&Config{
		Level:  DEBUG,
		Format: TEXT,
		Output: &buf,
	})

	componentLogger := logger.WithContext("web", "summarize")
	componentLogger.Info("Summary rendered")

	fmt.Println("Contains context:", strings.Contains(buf.String(), "[web.summarize]"))
	// Output: Contains context: true
}
