package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithDebug(t *testing.T) {
	if !IsEnabled(WithDebug(context.Background(), true)) {
		t.Error("IsEnabled should return true when debug is enabled")
	}
	if IsEnabled(WithDebug(context.Background(), false)) {
		t.Error("IsEnabled should return false when debug is disabled")
	}
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestSetupLogger_Levels(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	SetupLogger(true, LogText, &bytes.Buffer{})
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug mode should enable debug level logging")
	}

	SetupLogger(false, LogText, &bytes.Buffer{})
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default mode should suppress info logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("default mode should keep warnings")
	}
}

func TestSetupLogger_JSON(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	var buf bytes.Buffer
	SetupLogger(false, LogJSON, &buf)
	slog.Warn("unrecognized API response", "call_id", "abc")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if rec["call_id"] != "abc" {
		t.Errorf("call_id = %v", rec["call_id"])
	}
}

func TestParseLogFormat(t *testing.T) {
	if f, err := ParseLogFormat(""); err != nil || f != LogText {
		t.Errorf("empty format: %v %v", f, err)
	}
	if f, err := ParseLogFormat("json"); err != nil || f != LogJSON {
		t.Errorf("json format: %v %v", f, err)
	}
	_, err := ParseLogFormat("xml")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error for xml, got %v", err)
	}
}
