// Package rendezvous provides the counter used to detect when every task of
// a round has finished.
package rendezvous

import (
	"context"
	"sync/atomic"
	"time"
)

// Counter counts task completions towards a fixed target.
//
// The count never exceeds the target and never decreases, so Done flips from
// false to true exactly once.
type Counter struct {
	target int64
	count  atomic.Int64
	done   chan struct{}
}

// New creates a counter that is done after target increments.
// A target of zero (or less) is done immediately.
func New(target int) *Counter {
	if target < 0 {
		target = 0
	}
	c := &Counter{
		target: int64(target),
		done:   make(chan struct{}),
	}
	if target == 0 {
		close(c.done)
	}
	return c
}

// Increment records one completion. Calls beyond the target are ignored.
func (c *Counter) Increment() {
	for {
		cur := c.count.Load()
		if cur >= c.target {
			return
		}
		if c.count.CompareAndSwap(cur, cur+1) {
			if cur+1 == c.target {
				close(c.done)
			}
			return
		}
	}
}

// Done reports whether target increments have been recorded.
func (c *Counter) Done() bool {
	return c.count.Load() == c.target
}

// Count returns the completions recorded so far.
func (c *Counter) Count() int { return int(c.count.Load()) }

// Target returns the number of completions the counter waits for.
func (c *Counter) Target() int { return int(c.target) }

// Wait polls Done every interval until it reports true or ctx is done.
//
// There is no timeout: a task that never increments keeps Wait blocked.
func (c *Counter) Wait(ctx context.Context, interval time.Duration) error {
	if c.Done() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-ticker.C:
			if c.Done() {
				return nil
			}
		}
	}
}
