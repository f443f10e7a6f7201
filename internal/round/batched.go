package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/docload/blobstore"
	"github.com/hupe1980/docload/corpus"
	"github.com/hupe1980/docload/internal/chunk"
	"github.com/hupe1980/docload/internal/resource"
)

// DefaultSplitSize is the number of documents per batch call.
const DefaultSplitSize = 100

// Batched writes a whole round as a sequence of batch calls.
type Batched struct {
	Corpus    *corpus.Corpus
	Base      string
	SplitSize int
	Store     blobstore.Writer
	Limits    *resource.Controller
	Metrics   Metrics
	Logger    *slog.Logger
}

// Run writes every split of the corpus in order and marks st completed after
// the last batch call has returned, whatever its outcome. A split is not
// submitted before the previous one has returned.
func (b *Batched) Run(ctx context.Context, st *State) {
	defer st.markCompleted()

	size := b.SplitSize
	if size < 1 {
		size = DefaultSplitSize
	}

	for split := range chunk.Chunks(b.Corpus.Items(), size) {
		b.writeSplit(ctx, st, split)
	}
}

func (b *Batched) writeSplit(ctx context.Context, st *State, split chunk.Split[corpus.Item]) {
	entries := make([]blobstore.Entry, len(split.Items))
	bytes := 0
	for j, it := range split.Items {
		entries[j] = blobstore.Entry{Name: URI(b.Base, st.Index, split.Start+j), Data: it.Content}
		bytes += len(it.Content)
	}

	var (
		err     error
		elapsed time.Duration
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("batch write panicked: %v", r)
			}
		}()

		if err = b.Limits.AcquireRate(ctx, len(entries), bytes); err != nil {
			return
		}

		start := time.Now()
		err = blobstore.PutBatch(ctx, b.Store, entries)
		elapsed = time.Since(start)
	}()

	failed := blobstore.FailedCount(err, len(entries))
	st.recordSplit(split.Start, len(entries), failed, failedIndices(err, entries, split.Start), err)
	b.metrics().RecordBatchWrite(len(entries), failed, elapsed)

	log := b.logger()
	if err != nil {
		log.WarnContext(ctx, "split failed",
			"round", st.Index,
			"offset", split.Start,
			"size", len(entries),
			"failed", failed,
			"error", err,
		)
		return
	}
	log.DebugContext(ctx, "split committed",
		"round", st.Index,
		"offset", split.Start,
		"size", len(entries),
		"duration", elapsed,
	)
}

// failedIndices maps the names of a BatchError back to corpus indices.
// It returns nil when the whole split should be considered failed.
func failedIndices(err error, entries []blobstore.Entry, start int) []uint32 {
	var be *blobstore.BatchError
	if !errors.As(err, &be) {
		return nil
	}

	byName := make(map[string]int, len(entries))
	for j, e := range entries {
		byName[e.Name] = start + j
	}

	out := make([]uint32, 0, len(be.Failed))
	for _, name := range be.Failed {
		if idx, ok := byName[name]; ok {
			out = append(out, uint32(idx))
		}
	}
	return out
}

func (b *Batched) metrics() Metrics {
	if b.Metrics == nil {
		return noopMetrics{}
	}
	return b.Metrics
}

func (b *Batched) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}
