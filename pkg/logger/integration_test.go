package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	hostconfig "github.com/shuldan/featurehub/pkg/config"
	"github.com/shuldan/featurehub/pkg/contracts"
)

func TestLoggerIntegration_JSON_CompleteFields(t *testing.T) {
	t.Parallel()
	configData := map[string]any{
		"level":  "warn",
		"format": "json",
		"source": true,
	}

	output := captureLoggerOutput(t, configData, func(logger contracts.Logger) {
		logger.Warn("scope destroyed", "uid", "acme:widget:1", "scope_id", "abc")
	})

	var logEntry map[string]any
	if err := json.Unmarshal(output, &logEntry); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	assertHasKeys(t, logEntry, "time", "level", "msg", "uid", "scope_id", "source")
	assertValue(t, logEntry, "msg", "scope destroyed")
	assertValue(t, logEntry, "uid", "acme:widget:1")
	assertValue(t, logEntry, "level", "WARN")
}

func TestLoggerIntegration_JSON_LevelFiltering(t *testing.T) {
	t.Parallel()
	configData := map[string]any{
		"level":  "warn",
		"format": "json",
	}

	output := captureLoggerOutput(t, configData, func(logger contracts.Logger) {
		logger.Info("should be filtered")
		logger.Warn("warn msg")
	})

	lines := splitLines(string(output))
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line (only warn+), got %d", len(lines))
	}
	if strings.Contains(string(output), "should be filtered") {
		t.Error("Info message should be filtered")
	}
}

func TestLoggerIntegration_JSON_CriticalLevel(t *testing.T) {
	t.Parallel()
	configData := map[string]any{
		"level":  "debug",
		"format": "json",
	}

	output := captureLoggerOutput(t, configData, func(logger contracts.Logger) {
		logger.Critical("registry corrupted")
	})

	var logEntry map[string]any
	if err := json.Unmarshal(output, &logEntry); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	assertValue(t, logEntry, "level", "CRITICAL")
	assertValue(t, logEntry, "msg", "registry corrupted")
}

func TestLoggerIntegration_TextFormat(t *testing.T) {
	t.Parallel()
	output := captureLoggerOutput(t, map[string]any{"level": "trace"}, func(logger contracts.Logger) {
		logger.Trace("resolving", "location", "pkg://a")
	})

	if !strings.Contains(string(output), `TRACE resolving location="pkg://a"`) {
		t.Errorf("Unexpected text output: %q", output)
	}
}

func TestLoggerIntegration_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := NewLogger(WithWriter(buf), WithText())

	scoped := logger.With("feature_app", "acme:widget")
	scoped.Info("created")
	scoped.Error("destroy failed", "reason", "unbind")

	lines := splitLines(buf.String())
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !strings.Contains(line, `feature_app="acme:widget"`) {
			t.Errorf("Line %d missing context attr: %s", i, line)
		}
	}
}

func TestFromConfig_Nil(t *testing.T) {
	t.Parallel()
	if opts := FromConfig(nil); opts != nil {
		t.Errorf("expected no options for nil config, got %d", len(opts))
	}
}

func captureLoggerOutput(t *testing.T, configData map[string]any, logFunc func(logger contracts.Logger)) []byte {
	t.Helper()
	var buf bytes.Buffer

	options := append(FromConfig(hostconfig.NewMapConfig(configData)), WithWriter(&buf))
	logger, err := NewLogger(options...)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logFunc(logger)
	return buf.Bytes()
}

func splitLines(output string) []string {
	output = strings.TrimSpace(output)
	if output == "" {
		return []string{}
	}
	return strings.Split(output, "\n")
}

func assertHasKeys(t *testing.T, m map[string]any, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			t.Errorf("Expected key %q in log entry", k)
		}
	}
}

func assertValue(t *testing.T, m map[string]any, key string, expected any) {
	t.Helper()
	if val, ok := m[key]; !ok {
		t.Errorf("Missing key %q", key)
	} else if val != expected {
		t.Errorf("Key %q: got %v, want %v", key, val, expected)
	}
}
