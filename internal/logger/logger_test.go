package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONProduction(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production", true)

	log.Debug("hidden")
	log.Info("visible", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", lines[0], err)
	}
	if entry["msg"] != "visible" || entry["key"] != "value" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["source"]; ok {
		t.Errorf("production logs should not carry source")
	}
}

func TestNew_TextDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "development", false)

	log.Debug("debug line")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("expected debug level in development, got %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Errorf("expected source attribute in development, got %q", out)
	}
}
