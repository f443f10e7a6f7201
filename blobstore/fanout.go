package blobstore

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of parallel Put calls used by stores
// without a native batch API.
const DefaultBatchConcurrency = 8

// PutConcurrent writes entries with up to limit concurrent Put calls.
//
// Every entry is attempted, a failure does not cancel its siblings. The
// result is nil or a *BatchError naming the failed entries.
func PutConcurrent(ctx context.Context, w Writer, entries []Entry, limit int) error {
	if len(entries) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}

	var (
		mu     sync.Mutex
		failed []string
		first  error
	)

	var g errgroup.Group
	g.SetLimit(limit)

	for _, e := range entries {
		g.Go(func() error {
			if err := w.Put(ctx, e.Name, e.Data); err != nil {
				mu.Lock()
				failed = append(failed, e.Name)
				if first == nil {
					first = err
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if first != nil {
		return NewBatchError(failed, len(entries), first)
	}
	return nil
}
