package docload

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/docload/internal/round"
)

// Logger wraps slog.Logger with docload-specific context.
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

// WithMode adds a mode field to the logger.
func (l *Logger) WithMode(m Mode) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", m.String()),
	}
}

// WithRound adds a round field to the logger.
func (l *Logger) WithRound(i int) *Logger {
	return &Logger{
		Logger: l.Logger.With("round", i),
	}
}

// LogRoundStart logs that round i of n is about to start.
func (l *Logger) LogRoundStart(ctx context.Context, i, n int) {
	l.InfoContext(ctx, "entering loop",
		"round", i,
		"of", n,
	)
}

// LogRound logs a finished round.
func (l *Logger) LogRound(ctx context.Context, s round.Stats) {
	if s.FailedWrites > 0 {
		l.WarnContext(ctx, "round completed with failures",
			"round", s.Index,
			"writes", s.Writes,
			"failed", s.FailedWrites,
			"failed_splits", s.FailedSplits,
			"duration", s.Duration,
		)
	} else {
		l.InfoContext(ctx, "round completed",
			"round", s.Index,
			"writes", s.Writes,
			"splits", s.Splits,
			"duration", s.Duration,
		)
	}
}

// LogReport logs the outcome of a job.
func (l *Logger) LogReport(ctx context.Context, r *Report) {
	if !r.OK() {
		l.WarnContext(ctx, "job completed with failures",
			"rounds", r.Rounds,
			"writes", r.Writes,
			"failed", r.FailedWrites,
			"duration", r.Duration,
		)
	} else {
		l.InfoContext(ctx, "job completed",
			"rounds", r.Rounds,
			"writes", r.Writes,
			"duration", r.Duration,
		)
	}
}
