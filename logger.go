package mutscan

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with scan-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithSubject adds subject and gene fields to the logger.
func (l *Logger) WithSubject(id, gene string) *Logger {
	return &Logger{Logger: l.Logger.With("subject", id, "gene", gene)}
}

// LogVariant logs the outcome of one variant's pipeline.
func (l *Logger) LogVariant(ctx context.Context, label string, impact float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "variant failed",
			"label", label,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "variant completed",
			"label", label,
			"impact", impact,
		)
	}
}

// LogSkip logs a recoverable per-variant skip.
func (l *Logger) LogSkip(ctx context.Context, file, reason string) {
	l.WarnContext(ctx, "variant skipped",
		"file", file,
		"reason", reason,
	)
}

// LogRun logs the run summary.
func (l *Logger) LogRun(ctx context.Context, runID string, completed, skipped int) {
	l.InfoContext(ctx, "scan completed",
		"run_id", runID,
		"variants", completed,
		"skipped", skipped,
	)
}
