package docload

import (
	"log/slog"
	"time"

	"github.com/hupe1980/docload/internal/chunk"
	"github.com/hupe1980/docload/internal/round"
	"github.com/hupe1980/docload/internal/schedule"
)

type options struct {
	mode             Mode
	rounds           int
	splitSize        int
	ceiling          int
	pollInterval     time.Duration // 0 selects the mode default
	uriBase          string        // "" selects the mode default
	maxInFlight      int64
	writeRate        float64
	byteRate         int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Job.
type Option func(*options)

// WithMode selects batched or per-item writing. Default: ModeBatched.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithRounds sets how many times the corpus is written. Default: 1.
// Zero rounds is valid and writes nothing.
func WithRounds(n int) Option {
	return func(o *options) {
		o.rounds = n
	}
}

// WithSplitSize sets the number of documents per batch call. Default: 100.
func WithSplitSize(n int) Option {
	return func(o *options) {
		o.splitSize = n
	}
}

// WithCeiling sets the number of incomplete rounds that holds back the next
// round in batched mode. Default: 30.
func WithCeiling(n int) Option {
	return func(o *options) {
		o.ceiling = n
	}
}

// WithPollInterval sets the completion polling period.
// Default: 200ms in batched mode, 500ms in per-item mode.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithURIBase sets the prefix of every document name.
// Default: /performance/restbatch/ in batched mode, /performance/restfast/ in per-item mode.
func WithURIBase(base string) Option {
	return func(o *options) {
		o.uriBase = base
	}
}

// WithMaxInFlight bounds the concurrent writes of a per-item round.
// Zero (the default) leaves the fan-out unbounded.
func WithMaxInFlight(n int64) Option {
	return func(o *options) {
		o.maxInFlight = n
	}
}

// WithWriteRate limits the documents written per second across all rounds.
// Zero (the default) means unlimited.
func WithWriteRate(perSecond float64) Option {
	return func(o *options) {
		o.writeRate = perSecond
	}
}

// WithByteRate limits the payload bytes written per second across all rounds.
// Zero (the default) means unlimited.
func WithByteRate(perSecond int64) Option {
	return func(o *options) {
		o.byteRate = perSecond
	}
}

// WithMetricsCollector configures a metrics collector for write operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &docload.BasicMetricsCollector{}
//	job, _ := docload.New(c, pool, docload.WithMetricsCollector(metrics))
//	// ... job.Run(ctx) ...
//	stats := metrics.GetStats()
//	fmt.Printf("Batches: %d, Avg latency: %dns\n", stats.BatchWriteCount, stats.BatchWriteAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := docload.NewJSONLogger(slog.LevelInfo)
//	job, _ := docload.New(c, pool, docload.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:             ModeBatched,
		rounds:           1,
		splitSize:        round.DefaultSplitSize,
		ceiling:          schedule.DefaultCeiling,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.pollInterval == 0 {
		o.pollInterval = o.mode.PollInterval()
	}
	if o.uriBase == "" {
		o.uriBase = o.mode.URIBase()
	}
	return o
}

func (o *options) validate() error {
	switch {
	case o.mode != ModeBatched && o.mode != ModePerItem:
		return ErrInvalidMode
	case o.rounds < 0:
		return ErrInvalidRounds
	case chunk.Validate(o.splitSize) != nil:
		return ErrInvalidSplitSize
	case o.ceiling < 1:
		return ErrInvalidCeiling
	case o.pollInterval < 0:
		return ErrInvalidPollInterval
	}
	return nil
}
