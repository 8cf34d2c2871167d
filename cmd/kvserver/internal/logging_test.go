package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept", "conn_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "kept" || entry["conn_id"] != "abc" {
		t.Errorf("log entry = %v", entry)
	}
}

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: "chatty"}, &bytes.Buffer{}); err == nil {
		t.Error("NewLogger() with unknown level: error = nil")
	}
	if _, err := NewLogger(LogConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("NewLogger() with unknown format: error = nil")
	}
}
