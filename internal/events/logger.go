package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/TheMichaelB/seedrecover/internal/config"
)

// LogLevel represents logging severity.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Field names whose values are never written.
var secretFields = map[string]bool{
	"password": true,
	"key":      true,
	"mnemonic": true,
	"phrase":   true,
	"seed":     true,
}

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	level    LogLevel
	format   string
	output   io.Writer
	fields   map[string]interface{}
	hostname string
	color    bool
}

// NewLogger creates a logger from config.
func NewLogger(cfg *config.LogConfig) (*Logger, error) {
	level := parseLevel(cfg.Level)

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = file
	}

	hostname, _ := os.Hostname()

	return &Logger{
		level:    level,
		format:   cfg.Format,
		output:   output,
		fields:   make(map[string]interface{}),
		hostname: hostname,
		color:    cfg.Color && isTerminal(output),
	}, nil
}

// NewTestLogger creates a logger for testing.
func NewTestLogger(level LogLevel, format string, output io.Writer) *Logger {
	return &Logger{
		level:    level,
		format:   format,
		output:   output,
		fields:   make(map[string]interface{}),
		hostname: "test-host",
	}
}

// Level returns the minimum level written.
func (l *Logger) Level() LogLevel {
	return l.level
}

// WithField returns a logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &Logger{
		level:    l.level,
		format:   l.format,
		output:   l.output,
		fields:   newFields,
		hostname: l.hostname,
		color:    l.color,
	}
}

// WithError adds an error field.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string) {
	l.log(DebugLevel, msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string) {
	l.log(InfoLevel, msg)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string) {
	l.log(WarnLevel, msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string) {
	l.log(ErrorLevel, msg)
}

// log writes a log entry.
func (l *Logger) log(level LogLevel, msg string) {
	if l == nil || level < l.level || l.output == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := l.buildEntry(level, msg)

	if l.format == "json" {
		l.writeJSON(entry)
	} else {
		l.writeText(entry)
	}
}

// buildEntry creates a log entry.
func (l *Logger) buildEntry(level LogLevel, msg string) map[string]interface{} {
	// Get caller info
	_, file, line, _ := runtime.Caller(3)
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}

	entry := map[string]interface{}{
		"time":     time.Now().UTC().Format(time.RFC3339Nano),
		"level":    levelString(level),
		"msg":      msg,
		"hostname": l.hostname,
		"caller":   fmt.Sprintf("%s:%d", file, line),
	}

	for k, v := range l.fields {
		if secretFields[strings.ToLower(k)] {
			v = "[REDACTED]"
		}
		entry[k] = v
	}

	return entry
}

// writeJSON outputs JSON format.
func (l *Logger) writeJSON(entry map[string]interface{}) {
	for k, v := range entry {
		switch v.(type) {
		case string, bool, int, int64, uint32, float64, nil:
		default:
			entry[k] = fmt.Sprintf("%v", v)
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = l.output.Write(append(data, '\n'))
}

// writeText outputs human-readable format.
func (l *Logger) writeText(entry map[string]interface{}) {
	levelStr := "[" + strings.ToUpper(entry["level"].(string)) + "]"

	if l.color {
		c := levelColor(entry["level"].(string))
		c.EnableColor()
		levelStr = c.Sprint(levelStr)
	}

	// Format: TIME [LEVEL] Message key=value key=value
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", entry["time"], levelStr, entry["msg"])

	keys := make([]string, 0, len(entry))
	for k := range entry {
		switch k {
		case "time", "level", "msg", "hostname", "caller":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, entry[k])
	}

	sb.WriteByte('\n')
	_, _ = io.WriteString(l.output, sb.String())
}

// Helper functions

func levelColor(level string) *color.Color {
	switch level {
	case "debug":
		return color.New(color.FgCyan)
	case "info":
		return color.New(color.FgGreen)
	case "warn":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(s string) LogLevel {
	return parseLevel(s)
}

func parseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func levelString(l LogLevel) string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
