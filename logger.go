package delaunay

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with triangulation-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithMode adds the handle mode ("delaunay" or "hull") to the logger.
func (l *Logger) WithMode(mode string) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", mode),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogBuild logs the initial triangulation of a handle.
func (l *Logger) LogBuild(ctx context.Context, npoints, nfacets int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"points", npoints,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "build completed",
			"points", npoints,
			"facets", nfacets,
		)
	}
}

// LogFlush logs a flush of buffered points into the kernel.
func (l *Logger) LogFlush(ctx context.Context, rows, rejected int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"rows", rows,
			"interior", rejected,
		)
	}
}

// LogTeardown logs the release of a handle's kernel workspace.
func (l *Logger) LogTeardown(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "teardown failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "teardown completed")
	}
}

// LogArchive logs an archive save or load.
func (l *Logger) LogArchive(ctx context.Context, op, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "archive "+op+" failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "archive "+op+" completed",
			"name", name,
			"bytes", size,
		)
	}
}
