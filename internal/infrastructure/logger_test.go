package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgpulse/internal/config"
)

func readLastEntry(t *testing.T, content []byte) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")

	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := readLastEntry(t, content)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_OnlyFirstCallApplies(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	dir := t.TempDir()
	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "file", FilePath: filepath.Join(dir, "a.log")})
	require.NoError(t, err)

	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "file", FilePath: filepath.Join(dir, "b.log")})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
	_, statErr := os.Stat(filepath.Join(dir, "b.log"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")

	entry := readLastEntry(t, buf.Bytes())
	assert.Equal(t, "test-trace-123", entry["trace_id"])

	buf.Reset()
	logger.With("component", "loader").InfoContext(ctx, "derived logger")
	entry = readLastEntry(t, buf.Bytes())
	assert.Equal(t, "test-trace-123", entry["trace_id"])
	assert.Equal(t, "loader", entry["component"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		warnShown  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			logger.Debug("debug line")
			assert.Equal(t, tt.debugShown, strings.Contains(buf.String(), "debug line"))

			logger.Warn("warn line")
			assert.Equal(t, tt.warnShown, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)), "existing trace ID must be kept")

	var buf bytes.Buffer
	WithComponent(NewLogger(&buf, "info"), "forecast").InfoContext(ctx, "hello")
	entry := readLastEntry(t, buf.Bytes())
	assert.Equal(t, "forecast", entry["component"])
	assert.Equal(t, traceID, entry["trace_id"])
}
