package round

import "time"

// Metrics receives per-call measurements from the workers.
type Metrics interface {
	RecordWrite(duration time.Duration, err error)
	RecordBatchWrite(count, failed int, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) RecordWrite(time.Duration, error)         {}
func (noopMetrics) RecordBatchWrite(int, int, time.Duration) {}
