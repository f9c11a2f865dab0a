package events_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/events"
)

func TestNewLogger(t *testing.T) {
	cfg := &config.LogConfig{
		Level:  "debug",
		Format: "json",
		File:   "",
	}

	logger, err := events.NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Equal(t, events.DebugLevel, logger.Level())
}

func TestNewLoggerFile(t *testing.T) {
	cfg := &config.LogConfig{
		Level:  "info",
		Format: "text",
		File:   filepath.Join(t.TempDir(), "seedrecover.log"),
	}

	logger, err := events.NewLogger(cfg)
	require.NoError(t, err)
	logger.Info("written to file")
	assert.FileExists(t, cfg.File)
}

func TestLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	logger.WithField("test_key", "test_value").Info("test message")

	output := buf.String()
	assert.Contains(t, output, `"test_key":"test_value"`)
	assert.Contains(t, output, `"msg":"test message"`)
	assert.Contains(t, output, `"level":"info"`)
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	fields := map[string]interface{}{
		"strategy": "fragmented",
		"blobs":    3,
	}

	logger.WithFields(fields).Info("multi-field test")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fragmented", entry["strategy"])
	assert.Equal(t, float64(3), entry["blobs"])
	assert.Equal(t, "multi-field test", entry["msg"])
}

func TestLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.DebugLevel, "json", &buf)

	logger.WithFields(map[string]interface{}{
		"password": "hunter2",
		"Mnemonic": "harvest afraid useful",
	}).Debug("should not leak")

	output := buf.String()
	assert.NotContains(t, output, "hunter2")
	assert.NotContains(t, output, "harvest")
	assert.Contains(t, output, "[REDACTED]")
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  events.LogLevel
		msgLevel  events.LogLevel
		shouldLog bool
	}{
		{"debug logger, debug message", events.DebugLevel, events.DebugLevel, true},
		{"debug logger, info message", events.DebugLevel, events.InfoLevel, true},
		{"info logger, debug message", events.InfoLevel, events.DebugLevel, false},
		{"info logger, info message", events.InfoLevel, events.InfoLevel, true},
		{"error logger, warn message", events.ErrorLevel, events.WarnLevel, false},
		{"error logger, error message", events.ErrorLevel, events.ErrorLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := events.NewTestLogger(tt.logLevel, "text", &buf)

			switch tt.msgLevel {
			case events.DebugLevel:
				logger.Debug("test debug")
			case events.InfoLevel:
				logger.Info("test info")
			case events.WarnLevel:
				logger.Warn("test warn")
			case events.ErrorLevel:
				logger.Error("test error")
			}

			if tt.shouldLog {
				assert.NotEmpty(t, buf.String())
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "text", &buf)

	logger.WithFields(map[string]interface{}{"b": 2, "a": "value"}).Info("test message")

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "a=value b=2")
	assert.NotContains(t, output, "\033[")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := events.NewTestLogger(events.InfoLevel, "json", &buf)

	err := assert.AnError
	logger.WithError(err).Error("operation failed")

	output := buf.String()
	assert.Contains(t, output, `"error":"assert.AnError general error for testing"`)
	assert.Contains(t, output, `"msg":"operation failed"`)
	assert.Contains(t, output, `"level":"error"`)

	assert.NotPanics(t, func() { logger.WithError(nil).Info("no error") })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, events.DebugLevel, events.ParseLevel("DEBUG"))
	assert.Equal(t, events.WarnLevel, events.ParseLevel("warn"))
	assert.Equal(t, events.InfoLevel, events.ParseLevel("bogus"))
}
