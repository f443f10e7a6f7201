// Package prometheus exports docload metrics to Prometheus.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "docload"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Collector implements docload.MetricsCollector on Prometheus metrics.
type Collector struct {
	writes         *prom.CounterVec
	writeDuration  prom.Histogram
	batches        *prom.CounterVec
	batchDocuments *prom.CounterVec
	batchDuration  prom.Histogram
	rounds         *prom.CounterVec
	roundDuration  prom.Histogram
	lastRound      prom.Gauge
}

// New creates a Collector and registers its metrics with reg.
// mode is attached as a constant label to every metric.
func New(reg prom.Registerer, mode string) (*Collector, error) {
	labels := prom.Labels{"mode": mode}

	c := &Collector{
		writes: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "writes_total",
			Help:        "Total count of single-document writes by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		writeDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   namespace,
			Name:        "write_duration_seconds",
			Help:        "Bucketed histogram of single-document write time (s).",
			ConstLabels: labels,
			Buckets:     prom.ExponentialBuckets(0.0005, 2, 18), // 0.5ms~65s
		}),
		batches: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "batch_writes_total",
			Help:        "Total count of batch calls by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		batchDocuments: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "batch_documents_total",
			Help:        "Total count of documents sent in batch calls by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		batchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   namespace,
			Name:        "batch_write_duration_seconds",
			Help:        "Bucketed histogram of batch call time (s).",
			ConstLabels: labels,
			Buckets:     prom.ExponentialBuckets(0.001, 2, 18), // 1ms~131s
		}),
		rounds: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "rounds_total",
			Help:        "Total count of completed rounds by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		roundDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace:   namespace,
			Name:        "round_duration_seconds",
			Help:        "Bucketed histogram of round time (s).",
			ConstLabels: labels,
			Buckets:     prom.ExponentialBuckets(0.01, 2, 18), // 10ms~1300s
		}),
		lastRound: prom.NewGauge(prom.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_completed_round",
			Help:        "Index of the most recently completed round.",
			ConstLabels: labels,
		}),
	}

	for _, m := range []prom.Collector{
		c.writes, c.writeDuration,
		c.batches, c.batchDocuments, c.batchDuration,
		c.rounds, c.roundDuration, c.lastRound,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RecordWrite implements docload.MetricsCollector.
func (c *Collector) RecordWrite(duration time.Duration, err error) {
	c.writes.WithLabelValues(outcome(err != nil)).Inc()
	c.writeDuration.Observe(duration.Seconds())
}

// RecordBatchWrite implements docload.MetricsCollector.
func (c *Collector) RecordBatchWrite(count, failed int, duration time.Duration) {
	c.batches.WithLabelValues(outcome(failed > 0)).Inc()
	c.batchDocuments.WithLabelValues(outcomeSuccess).Add(float64(count - failed))
	c.batchDocuments.WithLabelValues(outcomeFailure).Add(float64(failed))
	c.batchDuration.Observe(duration.Seconds())
}

// RecordRound implements docload.MetricsCollector.
func (c *Collector) RecordRound(round int, duration time.Duration, failed int) {
	c.rounds.WithLabelValues(outcome(failed > 0)).Inc()
	c.roundDuration.Observe(duration.Seconds())
	c.lastRound.Set(float64(round))
}

func outcome(failed bool) string {
	if failed {
		return outcomeFailure
	}
	return outcomeSuccess
}
