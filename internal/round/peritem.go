package round

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hupe1980/docload/blobstore"
	"github.com/hupe1980/docload/corpus"
	"github.com/hupe1980/docload/internal/rendezvous"
	"github.com/hupe1980/docload/internal/resource"
)

// PerItem writes a round with one concurrent task per document.
//
// Without Limits the fan-out is unbounded: every document of the round is in
// flight at once. With Limits.MaxInFlightWrites set, Start blocks while all
// write slots are taken.
type PerItem struct {
	Corpus  *corpus.Corpus
	Base    string
	Store   blobstore.Writer
	Limits  *resource.Controller
	Metrics Metrics
	Logger  *slog.Logger
}

// Start launches the tasks of the round and returns its rendezvous counter.
//
// Each task writes its document and increments the counter exactly once,
// whether the write succeeded or not. st is marked completed when the counter
// reaches the number of documents. A task whose write never returns keeps the
// round incomplete forever.
func (p *PerItem) Start(ctx context.Context, st *State) *rendezvous.Counter {
	items := p.Corpus.Items()
	rv := rendezvous.New(len(items))
	st.counter = rv

	if len(items) == 0 {
		st.markCompleted()
		return rv
	}

	for i, it := range items {
		if err := p.Limits.AcquireWrite(ctx); err != nil {
			// Interrupted before the task could start; it still counts as attempted.
			st.recordWrite(i, err)
			p.finish(st, rv)
			continue
		}

		go func() {
			defer p.finish(st, rv)
			defer p.Limits.ReleaseWrite()
			p.write(ctx, st, i, it)
		}()
	}

	return rv
}

func (p *PerItem) finish(st *State, rv *rendezvous.Counter) {
	rv.Increment()
	if rv.Done() {
		st.markCompleted()
	}
}

func (p *PerItem) write(ctx context.Context, st *State, index int, it corpus.Item) {
	name := URI(p.Base, st.Index, index)

	var (
		err     error
		elapsed time.Duration
	)

	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("write panicked: %v", r)
			}
		}()

		if err = p.Limits.AcquireRate(ctx, 1, len(it.Content)); err != nil {
			return
		}

		start := time.Now()
		err = p.Store.Put(ctx, name, it.Content)
		elapsed = time.Since(start)
	}()

	st.recordWrite(index, err)
	p.metrics().RecordWrite(elapsed, err)

	if err != nil {
		p.logger().WarnContext(ctx, "write failed",
			"round", st.Index,
			"uri", name,
			"error", err,
		)
		return
	}
	p.logger().DebugContext(ctx, "write completed",
		"round", st.Index,
		"uri", name,
		"duration", elapsed,
	)
}

func (p *PerItem) metrics() Metrics {
	if p.Metrics == nil {
		return noopMetrics{}
	}
	return p.Metrics
}

func (p *PerItem) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
