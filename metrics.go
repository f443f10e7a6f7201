package docload

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting load metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a Prometheus implementation.
//
// Implementations must be safe for concurrent use: per-item rounds call
// RecordWrite from one goroutine per document.
type MetricsCollector interface {
	// RecordWrite is called after each single-document write.
	// duration is the time taken by the store, err is nil if successful.
	RecordWrite(duration time.Duration, err error)

	// RecordBatchWrite is called after each batch call.
	// count is the number of documents attempted, failed is the number that failed,
	// duration is the total time taken.
	RecordBatchWrite(count, failed int, duration time.Duration)

	// RecordRound is called once per completed round.
	// failed is the number of documents of the round that were not written.
	RecordRound(round int, duration time.Duration, failed int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordWrite(time.Duration, error)         {}
func (NoopMetricsCollector) RecordBatchWrite(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordRound(int, time.Duration, int)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	WriteCount           atomic.Int64
	WriteErrors          atomic.Int64
	WriteTotalNanos      atomic.Int64
	BatchWriteCount      atomic.Int64
	BatchWriteItems      atomic.Int64
	BatchWriteFailed     atomic.Int64
	BatchWriteTotalNanos atomic.Int64
	RoundCount           atomic.Int64
	RoundsWithFailures   atomic.Int64
	RoundTotalNanos      atomic.Int64
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordBatchWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchWrite(count, failed int, duration time.Duration) {
	b.BatchWriteCount.Add(1)
	b.BatchWriteItems.Add(int64(count))
	b.BatchWriteFailed.Add(int64(failed))
	b.BatchWriteTotalNanos.Add(duration.Nanoseconds())
}

// RecordRound implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRound(_ int, duration time.Duration, failed int) {
	b.RoundCount.Add(1)
	b.RoundTotalNanos.Add(duration.Nanoseconds())
	if failed > 0 {
		b.RoundsWithFailures.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		WriteCount:         b.WriteCount.Load(),
		WriteErrors:        b.WriteErrors.Load(),
		WriteAvgNanos:      avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		BatchWriteCount:    b.BatchWriteCount.Load(),
		BatchWriteItems:    b.BatchWriteItems.Load(),
		BatchWriteFailed:   b.BatchWriteFailed.Load(),
		BatchWriteAvgNanos: avg(b.BatchWriteTotalNanos.Load(), b.BatchWriteCount.Load()),
		RoundCount:         b.RoundCount.Load(),
		RoundsWithFailures: b.RoundsWithFailures.Load(),
		RoundAvgNanos:      avg(b.RoundTotalNanos.Load(), b.RoundCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	WriteCount         int64
	WriteErrors        int64
	WriteAvgNanos      int64
	BatchWriteCount    int64
	BatchWriteItems    int64
	BatchWriteFailed   int64
	BatchWriteAvgNanos int64
	RoundCount         int64
	RoundsWithFailures int64
	RoundAvgNanos      int64
}
