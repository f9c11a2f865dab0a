package events

import (
	"context"
	"os"
)

type contextKey int

const (
	loggerKey contextKey = iota
	originKey
)

// FromContext extracts logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	// Return default logger
	return defaultLogger
}

// FromContextOr extracts logger from context, falling back to logger.
func FromContextOr(ctx context.Context, logger *Logger) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return logger
}

// WithLogger adds logger to context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithOrigin records the input currently being processed.
func WithOrigin(ctx context.Context, origin string) context.Context {
	logger := FromContext(ctx).WithField("origin", origin)
	ctx = context.WithValue(ctx, originKey, origin)
	return WithLogger(ctx, logger)
}

// GetOrigin retrieves the input origin from context.
func GetOrigin(ctx context.Context) string {
	if origin, ok := ctx.Value(originKey).(string); ok {
		return origin
	}
	return ""
}

var defaultLogger = &Logger{
	level:  InfoLevel,
	format: "text",
	output: os.Stderr,
	fields: make(map[string]interface{}),
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
