package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the request context, falling back to
// the default logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides domain-specific structured log events.
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogDatasetLoaded logs a successful dataset swap.
func (sl *StructuredLogger) LogDatasetLoaded(ctx context.Context, id, source string, rows int) {
	fields := NewFields().
		WithDataset(id, source, rows).
		WithOperation(OpLoad)
	sl.logger.InfoContext(ctx, "Dataset loaded", fields.ToSlice()...)
}

// LogDatasetRejected logs a failed ingestion that left an empty dataset.
func (sl *StructuredLogger) LogDatasetRejected(ctx context.Context, source string, err error) {
	fields := NewFields().
		WithOperation(OpLoad).
		WithError(err)
	fields[FieldSource] = source
	fields["error_type"] = ErrorTypeMalformed
	sl.logger.WarnContext(ctx, "Dataset rejected, falling back to empty table", fields.ToSlice()...)
}
