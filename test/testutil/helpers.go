package testutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheMichaelB/seedrecover/internal/config"
	"github.com/TheMichaelB/seedrecover/internal/events"
)

// LogEntry represents a captured log entry for testing.
type LogEntry struct {
	Level   string                 `json:"level"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"-"`
}

// LogCapture collects JSON log lines.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Entries parses the captured lines.
func (c *LogCapture) Entries(t testing.TB) []LogEntry {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		require.NoError(t, json.Unmarshal([]byte(line), &entry.Fields))
		entries = append(entries, entry)
	}
	return entries
}

// String returns the raw captured output.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// NewTestLogger creates a debug JSON logger writing into a capture.
func NewTestLogger() (*events.Logger, *LogCapture) {
	capture := &LogCapture{}
	return events.NewTestLogger(events.DebugLevel, "json", capture), capture
}

// TestConfig returns the default config with scratch space under t.
func TestConfig(t testing.TB) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage.TempDir = t.TempDir()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	return cfg
}
