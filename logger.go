package filehandler

import (
	"context"
	"log/slog"
	"os"

	"github.com/asger60/filehandler/mount"
)

// Logger wraps slog.Logger with save-specific helpers.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithName adds a save name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("save", name),
	}
}

// LogSave logs a save operation.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int, compressed bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"save", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "save committed",
			"save", name,
			"bytes", bytes,
			"compressed", compressed,
		)
	}
}

// LogLoad logs a load operation. Corrupt and deprecated saves are warnings.
func (l *Logger) LogLoad(ctx context.Context, res LoadResult, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "load failed",
			"save", res.Name,
			"error", err,
		)
	case res.Status == StatusCorrupt:
		l.WarnContext(ctx, "corrupt save removed",
			"save", res.Name,
			"path", res.Path,
			"error", res.Err,
		)
	case res.Status == StatusDeprecated:
		l.WarnContext(ctx, "deprecated save ignored",
			"save", res.Name,
			"stored_version", res.StoredVersion,
		)
	default:
		l.DebugContext(ctx, "load completed",
			"save", res.Name,
			"status", res.Status.String(),
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"save", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"save", name,
		)
	}
}

// LogFlush logs a commit cycle.
func (l *Logger) LogFlush(ctx context.Context, res mount.FlushResult, err error) {
	if err != nil {
		l.WarnContext(ctx, "flush completed with failures",
			"mode", res.Mode.String(),
			"written", res.Written,
			"failed", res.Failed,
			"pending", res.Pending,
			"error", err,
		)
	} else if res.Written > 0 {
		l.InfoContext(ctx, "flush completed",
			"mode", res.Mode.String(),
			"written", res.Written,
			"bytes", res.Bytes,
			"pending", res.Pending,
		)
	}
}
