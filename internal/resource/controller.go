package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MaxInFlightWrites is the maximum number of concurrent write tasks.
	MaxInFlightWrites int64

	// WritesPerSec is the maximum number of documents written per second.
	WritesPerSec float64

	// BytesPerSec is the maximum payload throughput.
	BytesPerSec int64
}

// Enabled reports whether any limit is configured.
func (c Config) Enabled() bool {
	return c.MaxInFlightWrites > 0 || c.WritesPerSec > 0 || c.BytesPerSec > 0
}

// Controller manages write concurrency and throughput.
type Controller struct {
	cfg Config

	// Concurrency
	writeSem *semaphore.Weighted // nil if unlimited
	inFlight atomic.Int64
	peak     atomic.Int64

	// Throughput
	docLimiter  *rate.Limiter
	byteLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxInFlightWrites > 0 {
		c.writeSem = semaphore.NewWeighted(cfg.MaxInFlightWrites)
	}

	if cfg.WritesPerSec > 0 {
		burst := max(int(cfg.WritesPerSec), 1)
		c.docLimiter = rate.NewLimiter(rate.Limit(cfg.WritesPerSec), burst)
	}

	if cfg.BytesPerSec > 0 {
		c.byteLimiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), int(cfg.BytesPerSec))
	}

	return c
}

// AcquireWrite reserves a write slot, blocking while all slots are busy.
func (c *Controller) AcquireWrite(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.writeSem != nil {
		if err := c.writeSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.track()
	return nil
}

// TryAcquireWrite reserves a write slot without blocking.
func (c *Controller) TryAcquireWrite() bool {
	if c == nil {
		return true
	}
	if c.writeSem != nil && !c.writeSem.TryAcquire(1) {
		return false
	}
	c.track()
	return true
}

func (c *Controller) track() {
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// ReleaseWrite releases a write slot.
func (c *Controller) ReleaseWrite() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	if c.writeSem != nil {
		c.writeSem.Release(1)
	}
}

// InFlight returns the number of write slots currently held.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// PeakInFlight returns the highest number of write slots held at once.
func (c *Controller) PeakInFlight() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// AcquireRate waits until docs documents totalling bytes payload bytes may be written.
func (c *Controller) AcquireRate(ctx context.Context, docs int, bytes int) error {
	if c == nil {
		return nil
	}
	if err := waitN(ctx, c.docLimiter, docs); err != nil {
		return err
	}
	return waitN(ctx, c.byteLimiter, bytes)
}

// waitN splits n into burst-sized steps so requests larger than the bucket
// still pass instead of failing.
func waitN(ctx context.Context, l *rate.Limiter, n int) error {
	if l == nil {
		return nil
	}
	for n > 0 {
		step := min(n, l.Burst())
		if err := l.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
