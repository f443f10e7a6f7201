package round

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/docload/internal/rendezvous"
)

// State is the shared record of one round.
//
// The worker running the round is the only writer; the scheduler only reads
// Completed. All fields are safe for concurrent access.
type State struct {
	Index int

	completed  atomic.Bool
	finish     sync.Once
	onComplete func(*State)
	started    time.Time
	stopped    atomic.Bool
	elapsed    atomic.Int64

	splits       atomic.Int64
	failedSplits atomic.Int64
	writes       atomic.Int64
	failedWrites atomic.Int64

	counter *rendezvous.Counter

	mu       sync.Mutex
	failed   *roaring.Bitmap
	firstErr error
}

// NewState creates the state of round index.
func NewState(index int) *State {
	return &State{
		Index:   index,
		started: time.Now(),
		failed:  roaring.New(),
	}
}

// Completed reports whether the round has finished: every split submitted
// (batched) or every task reported to the rendezvous (per-item).
// Completion says nothing about success.
func (s *State) Completed() bool { return s.completed.Load() }

// OnComplete registers fn to run once when the round completes, before
// Completed reports true. It must be called before the round is started.
func (s *State) OnComplete(fn func(*State)) { s.onComplete = fn }

func (s *State) markCompleted() {
	s.finish.Do(func() {
		s.elapsed.Store(int64(time.Since(s.started)))
		s.stopped.Store(true)
		if s.onComplete != nil {
			s.onComplete(s)
		}
		s.completed.Store(true)
	})
}

// Rendezvous returns the round's counter in per-item mode, nil otherwise.
func (s *State) Rendezvous() *rendezvous.Counter { return s.counter }

// Duration returns the wall time from creation to completion, or so far.
func (s *State) Duration() time.Duration {
	if s.stopped.Load() {
		return time.Duration(s.elapsed.Load())
	}
	return time.Since(s.started)
}

func (s *State) recordSplit(start, n, failed int, failedIdx []uint32, err error) {
	s.splits.Add(1)
	s.writes.Add(int64(n))
	if err == nil {
		return
	}

	s.failedSplits.Add(1)
	s.failedWrites.Add(int64(failed))

	s.mu.Lock()
	defer s.mu.Unlock()
	if failedIdx != nil {
		s.failed.AddMany(failedIdx)
	} else {
		s.failed.AddRange(uint64(start), uint64(start+n))
	}
	if s.firstErr == nil {
		s.firstErr = fmt.Errorf("split at %d: %w", start, err)
	}
}

func (s *State) recordWrite(index int, err error) {
	s.writes.Add(1)
	if err == nil {
		return
	}

	s.failedWrites.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed.Add(uint32(index))
	if s.firstErr == nil {
		s.firstErr = fmt.Errorf("item %d: %w", index, err)
	}
}

// Err returns the first write error of the round, or nil.
func (s *State) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstErr
}

// FailedItems returns a copy of the indices of documents whose write failed.
func (s *State) FailedItems() *roaring.Bitmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed.Clone()
}

// Stats is a snapshot of a round's counters.
type Stats struct {
	Index        int
	Completed    bool
	Splits       int
	FailedSplits int
	Writes       int
	FailedWrites int
	Duration     time.Duration
}

// Stats returns a snapshot of the round's counters.
func (s *State) Stats() Stats {
	return Stats{
		Index:        s.Index,
		Completed:    s.Completed(),
		Splits:       int(s.splits.Load()),
		FailedSplits: int(s.failedSplits.Load()),
		Writes:       int(s.writes.Load()),
		FailedWrites: int(s.failedWrites.Load()),
		Duration:     s.Duration(),
	}
}
