package blobstore

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedStore caps the number of documents written per second.
// A batch of n entries consumes n tokens.
type RateLimitedStore struct {
	inner   Writer
	limiter *rate.Limiter
}

// RateLimited wraps w so that at most perSecond documents are written per second.
// Burst allows short spikes; values below one are raised to one.
func RateLimited(w Writer, perSecond float64, burst int) *RateLimitedStore {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedStore{
		inner:   w,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Put waits for one token and writes the document.
func (s *RateLimitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// PutBatch waits for one token per entry and forwards the batch.
func (s *RateLimitedStore) PutBatch(ctx context.Context, entries []Entry) error {
	n := len(entries)
	for n > 0 {
		step := min(n, s.limiter.Burst())
		if err := s.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return PutBatch(ctx, s.inner, entries)
}

// List forwards to the wrapped store if it can list.
func (s *RateLimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return list(ctx, s.inner, prefix)
}

// LatencyStore adds a fixed delay to every call.
type LatencyStore struct {
	inner   Writer
	latency time.Duration
}

// Latency wraps w so that every Put and PutBatch takes at least d longer.
func Latency(w Writer, d time.Duration) *LatencyStore {
	return &LatencyStore{inner: w, latency: d}
}

func (s *LatencyStore) sleep(ctx context.Context) error {
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Put delays and writes the document.
func (s *LatencyStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// PutBatch delays once and forwards the batch.
func (s *LatencyStore) PutBatch(ctx context.Context, entries []Entry) error {
	if err := s.sleep(ctx); err != nil {
		return err
	}
	return PutBatch(ctx, s.inner, entries)
}

// List forwards to the wrapped store if it can list.
func (s *LatencyStore) List(ctx context.Context, prefix string) ([]string, error) {
	return list(ctx, s.inner, prefix)
}
