package skycat

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with skycat-specific context.
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

// WithCatalog adds the catalog name to the logger.
func (l *Logger) WithCatalog(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("catalog", name),
	}
}

// LogOpen logs opening a catalog.
func (l *Logger) LogOpen(ctx context.Context, name string, zones, buckets int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "catalog open failed",
			"catalog", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "catalog opened",
			"catalog", name,
			"zones", zones,
			"buckets", buckets,
		)
	}
}

// LogLookup logs an identifier lookup.
func (l *Logger) LogLookup(ctx context.Context, id string, err error) {
	if err != nil {
		l.DebugContext(ctx, "lookup failed",
			"id", id,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "lookup completed",
			"id", id,
		)
	}
}

// LogNearest logs a positional query.
func (l *Logger) LogNearest(ctx context.Context, ra, dec float64, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "nearest failed",
			"ra", ra,
			"dec", dec,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "nearest completed",
			"ra", ra,
			"dec", dec,
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogBatch logs a batch positional query.
func (l *Logger) LogBatch(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "nearest batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.DebugContext(ctx, "nearest batch completed",
			"count", count,
		)
	}
}

// LogSkippedRecords logs records dropped from a cell read because they
// failed to decode.
func (l *Logger) LogSkippedRecords(cell string, skipped int, err error) {
	l.Warn("skipped corrupt records",
		"cell", cell,
		"skipped", skipped,
		"error", err,
	)
}

// LogAugment logs a catalog augmentation pass.
func (l *Logger) LogAugment(ctx context.Context, stars, matched int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "augment failed",
			"stars", stars,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "augment completed",
			"stars", stars,
			"matched", matched,
		)
	}
}
