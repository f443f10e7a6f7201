package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/docload/blobstore"
	"github.com/hupe1980/docload/corpus"
	"github.com/hupe1980/docload/internal/rendezvous"
	"github.com/hupe1980/docload/internal/round"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// gatedStore blocks every write of a round until that round's gate is opened.
type gatedStore struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{gates: make(map[string]chan struct{})}
}

func (g *gatedStore) gate(prefix string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[prefix]
	if !ok {
		ch = make(chan struct{})
		g.gates[prefix] = ch
	}
	return ch
}

func (g *gatedStore) open(prefix string) { close(g.gate(prefix)) }

func (g *gatedStore) Put(ctx context.Context, name string, _ []byte) error {
	prefix := name[:len(name)-len("0.xml")]
	select {
	case <-g.gate(prefix):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func oneDoc() *corpus.Corpus {
	return corpus.New([]corpus.Item{{ID: "a.xml", Content: []byte("<a/>")}})
}

func TestRunBatched(t *testing.T) {
	store := blobstore.NewMemoryStore()
	w := &round.Batched{Corpus: oneDoc(), Base: "b/", Store: store}
	s := &Scheduler{Ceiling: 30, PollInterval: time.Millisecond}

	var order []int
	states, err := s.RunBatched(context.Background(), 5, func(i int) *round.State {
		order = append(order, i)
		st := round.NewState(i)
		go w.Run(context.Background(), st)
		return st
	})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	require.Len(t, states, 5)
	assert.Zero(t, InFlight(states))
	assert.Equal(t, int64(5), store.Batches())
}

func TestRunBatched_ZeroLoops(t *testing.T) {
	s := &Scheduler{}
	states, err := s.RunBatched(context.Background(), 0, func(int) *round.State {
		t.Fatal("start must not be called")
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, states)
}

func TestRunBatched_NeverExceedsCeiling(t *testing.T) {
	const (
		loops   = 50
		ceiling = 30
	)

	store := blobstore.Latency(blobstore.NewMemoryStore(), 5*time.Millisecond)
	w := &round.Batched{Corpus: oneDoc(), Base: "b/", Store: store}
	s := &Scheduler{Ceiling: ceiling, PollInterval: time.Millisecond}

	var (
		started []*round.State
		peak    int
	)
	states, err := s.RunBatched(context.Background(), loops, func(i int) *round.State {
		peak = max(peak, InFlight(started)+1)
		st := round.NewState(i)
		started = append(started, st)
		go w.Run(context.Background(), st)
		return st
	})
	require.NoError(t, err)

	assert.Len(t, states, loops)
	assert.LessOrEqual(t, peak, ceiling)
	assert.Zero(t, InFlight(states))
}

func TestRunBatched_BlocksAtCeiling(t *testing.T) {
	store := newGatedStore()
	w := &round.Batched{Corpus: oneDoc(), Base: "b/", Store: store}
	s := &Scheduler{Ceiling: 3, PollInterval: time.Millisecond}

	var started atomic.Int32
	done := make(chan error, 1)
	go func() {
		_, err := s.RunBatched(context.Background(), 5, func(i int) *round.State {
			started.Add(1)
			st := round.NewState(i)
			go w.Run(context.Background(), st)
			return st
		})
		done <- err
	}()

	require.Eventually(t, func() bool { return started.Load() == 3 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), started.Load())

	store.open(round.Prefix("b/", 1))
	require.Eventually(t, func() bool { return started.Load() == 4 }, time.Second, time.Millisecond)

	for _, i := range []int{0, 2, 3} {
		store.open(round.Prefix("b/", i))
	}
	require.Eventually(t, func() bool { return started.Load() == 5 }, time.Second, time.Millisecond)

	select {
	case <-done:
		t.Fatal("scheduler returned while round 4 is still pending")
	case <-time.After(20 * time.Millisecond):
	}

	store.open(round.Prefix("b/", 4))
	require.NoError(t, <-done)
}

func TestRunBatched_HungRoundWaitsUntilCanceled(t *testing.T) {
	store := newGatedStore()
	w := &round.Batched{Corpus: oneDoc(), Base: "b/", Store: store}
	s := &Scheduler{Ceiling: 30, PollInterval: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	runCtx, stopRounds := context.WithCancel(context.Background())
	defer stopRounds()

	done := make(chan error, 1)
	go func() {
		_, err := s.RunBatched(ctx, 2, func(i int) *round.State {
			st := round.NewState(i)
			go w.Run(runCtx, st)
			return st
		})
		done <- err
	}()

	store.open(round.Prefix("b/", 0))

	select {
	case <-done:
		t.Fatal("scheduler returned with a hung round")
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	stopRounds()
}

func TestRunSerial(t *testing.T) {
	store := blobstore.Latency(blobstore.NewMemoryStore(), time.Millisecond)
	w := &round.PerItem{Corpus: corpus.New(make([]corpus.Item, 5)), Base: "f/", Store: store}
	s := &Scheduler{PollInterval: time.Millisecond}

	var prev *rendezvous.Counter
	rounds := 0
	err := s.RunSerial(context.Background(), 4, func(i int) *rendezvous.Counter {
		if prev != nil {
			assert.True(t, prev.Done(), "round %d started before round %d finished", i, i-1)
		}
		rounds++
		prev = w.Start(context.Background(), round.NewState(i))
		return prev
	})
	require.NoError(t, err)
	assert.Equal(t, 4, rounds)
	assert.True(t, prev.Done())
}

func TestRunSerial_HungTask(t *testing.T) {
	s := &Scheduler{PollInterval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	rv := rendezvous.New(2)
	done := make(chan error, 1)
	go func() {
		done <- s.RunSerial(ctx, 3, func(int) *rendezvous.Counter {
			rv.Increment()
			return rv
		})
	}()

	select {
	case <-done:
		t.Fatal("serial scheduler moved past an incomplete round")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
