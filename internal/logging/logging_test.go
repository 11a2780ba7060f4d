package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleHandlerLayout(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, level))

	logger = NewComponentLogger(logger, "watcher")
	logger.Info("download submitted", Int64(FieldJobID, 101), String("title", "Fight Club"))

	line := buf.String()
	if !strings.Contains(line, "| INFO  | watcher | download submitted") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "job_id=101") {
		t.Fatalf("expected job_id attribute, got %q", line)
	}
	if !strings.Contains(line, `title="Fight Club"`) {
		t.Fatalf("expected quoted title attribute, got %q", line)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, level))

	logger.Info("hidden")
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info should be suppressed at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("warn should be emitted: %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, level))

	logger.Info("pass finished", Int("requests", 3))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if payload["msg"] != "pass finished" {
		t.Fatalf("unexpected msg field: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level field: %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "irilis.log")

	logger, err := New(Options{Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("persisted line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "persisted line") {
		t.Fatalf("expected message in log file, got %q", data)
	}
}

func TestContextLoggerRoundTrip(t *testing.T) {
	base := NewNop().With(String(FieldPassID, "abc"))
	ctx := ContextWithLogger(context.Background(), base)

	if got := WithContext(ctx, nil); got != base {
		t.Fatal("expected the stored logger back")
	}

	fallback := NewNop()
	if got := WithContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected the fallback logger")
	}
	if got := WithContext(context.Background(), nil); got == nil {
		t.Fatal("expected a usable logger even without context or fallback")
	}
}
