package symgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with symgo-specific helpers.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithShard adds a shard index field to the logger.
func (l *Logger) WithShard(shard int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shard),
	}
}

// WithVersion adds a snapshot version field to the logger.
func (l *Logger) WithVersion(version uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("version", version),
	}
}

// LogSnapshotSave logs a snapshot write.
func (l *Logger) LogSnapshotSave(ctx context.Context, symbols int, bytes int64, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot save failed",
			"symbols", symbols,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"symbols", symbols,
			"bytes", bytes,
			"duration", duration,
		)
	}
}

// LogSnapshotLoad logs a snapshot read.
func (l *Logger) LogSnapshotLoad(ctx context.Context, symbols int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"symbols", symbols,
			"duration", duration,
		)
	}
}

// LogPublish logs a versioned snapshot publish.
func (l *Logger) LogPublish(ctx context.Context, version uint64, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "publish failed",
			"version", version,
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot published",
			"version", version,
			"key", key,
		)
	}
}

// LogPrune logs the removal of superseded snapshot versions.
func (l *Logger) LogPrune(ctx context.Context, deleted int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prune failed",
			"deleted", deleted,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "prune completed",
			"deleted", deleted,
		)
	}
}

// LogNearCapacity warns that a shard is approaching its local index ceiling.
func (l *Logger) LogNearCapacity(shard int, used, max uint32) {
	l.Warn("shard nearing capacity",
		"shard", shard,
		"used", used,
		"max", max,
	)
}
