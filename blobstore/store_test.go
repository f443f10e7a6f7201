package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/docload/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend unavailable")

// putOnlyWriter implements Writer but not BatchWriter.
type putOnlyWriter struct {
	mu     sync.Mutex
	names  []string
	fail   map[string]bool
	active atomic.Int32
	peak   atomic.Int32
	delay  time.Duration
}

func (w *putOnlyWriter) Put(_ context.Context, name string, _ []byte) error {
	n := w.active.Add(1)
	defer w.active.Add(-1)
	for {
		p := w.peak.Load()
		if n <= p || w.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if w.delay > 0 {
		time.Sleep(w.delay)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.names = append(w.names, name)
	if w.fail[name] {
		return errBackend
	}
	return nil
}

func entries(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{Name: fmt.Sprintf("/t/0/%d.xml", i), Data: []byte("<x/>")}
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("hello")
	require.NoError(t, s.Put(ctx, "/a/1.xml", data))
	data[0] = 'j'

	got, err := s.Get("/a/1.xml")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	require.NoError(t, s.PutBatch(ctx, []Entry{{Name: "/a/2.xml"}, {Name: "/b/1.xml"}}))

	names, err := s.List(ctx, "/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/a/1.xml", "/a/2.xml"}, names)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(1), s.Puts())
	assert.Equal(t, int64(1), s.Batches())

	_, err = s.Get("/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(ctx, "x", nil), context.Canceled)
	assert.ErrorIs(t, s.PutBatch(ctx, entries(1)), context.Canceled)
	assert.Equal(t, 0, s.Len())
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStore(root)

	require.NoError(t, s.Put(ctx, "/performance/restbatch/0/0.xml", []byte("<a/>")))
	require.NoError(t, s.Put(ctx, "performance/restbatch/1/0.xml", []byte("<b/>")))

	data, err := os.ReadFile(filepath.Join(root, "performance", "restbatch", "0", "0.xml"))
	require.NoError(t, err)
	assert.Equal(t, "<a/>", string(data))

	names, err := s.List(ctx, "/performance/restbatch/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/performance/restbatch/0/0.xml", "/performance/restbatch/1/0.xml"}, names)

	names, err = s.List(ctx, "/performance/restbatch/1/")
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	s := NewLocalStore(filepath.Join(t.TempDir(), "nope"))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_InvalidName(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	for _, name := range []string{"", "/", "."} {
		assert.ErrorIs(t, s.Put(context.Background(), name, nil), ErrInvalidName, "name=%q", name)
	}

	// Traversal is cleaned against the root rather than escaping it.
	require.NoError(t, s.Put(context.Background(), "../../x.xml", []byte("x")))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/x.xml"}, names)
}

func TestLocalStore_SyncFailure(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("bad.xml", fs.Fault{FailOnSync: true})
	s := NewLocalStoreFS(t.TempDir(), ffs)

	err := s.Put(context.Background(), "/d/bad.xml", []byte("x"))
	assert.ErrorIs(t, err, fs.ErrInjected)

	require.NoError(t, s.Put(context.Background(), "/d/good.xml", []byte("x")))
	names, err := s.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/good.xml"}, names)
}

func TestPutBatch_UsesBatchWriter(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, PutBatch(context.Background(), s, entries(5)))
	assert.Equal(t, int64(1), s.Batches())
	assert.Equal(t, int64(0), s.Puts())
	assert.Equal(t, 5, s.Len())
}

func TestPutBatch_SequentialFallback(t *testing.T) {
	w := &putOnlyWriter{fail: map[string]bool{"/t/0/1.xml": true, "/t/0/3.xml": true}}

	err := PutBatch(context.Background(), w, entries(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)

	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, []string{"/t/0/1.xml", "/t/0/3.xml"}, be.Failed)
	assert.Equal(t, 5, be.Total)
	assert.Equal(t, 2, FailedCount(err, 5))

	// In order, every entry attempted.
	assert.Equal(t, []string{"/t/0/0.xml", "/t/0/1.xml", "/t/0/2.xml", "/t/0/3.xml", "/t/0/4.xml"}, w.names)

	assert.NoError(t, PutBatch(context.Background(), w, nil))
}

func TestFailedCount(t *testing.T) {
	assert.Equal(t, 0, FailedCount(nil, 10))
	assert.Equal(t, 10, FailedCount(errBackend, 10))
	assert.Equal(t, 1, FailedCount(NewBatchError([]string{"a"}, 10, errBackend), 10))
}

func TestPutConcurrent(t *testing.T) {
	w := &putOnlyWriter{delay: 2 * time.Millisecond, fail: map[string]bool{"/t/0/7.xml": true}}

	err := PutConcurrent(context.Background(), w, entries(20), 4)

	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, []string{"/t/0/7.xml"}, be.Failed)
	assert.Len(t, w.names, 20)
	assert.LessOrEqual(t, w.peak.Load(), int32(4))
	assert.Greater(t, w.peak.Load(), int32(1))

	assert.NoError(t, PutConcurrent(context.Background(), w, nil, 4))
}

func TestRateLimited(t *testing.T) {
	s := NewMemoryStore()
	rl := RateLimited(s, 1000, 1)

	start := time.Now()
	require.NoError(t, rl.PutBatch(context.Background(), entries(20)))
	for i := range 5 {
		require.NoError(t, rl.Put(context.Background(), fmt.Sprintf("/p/%d", i), nil))
	}
	// 25 tokens at 1000/s with burst 1 need at least ~24ms.
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 25, s.Len())

	names, err := rl.List(context.Background(), "/p/")
	require.NoError(t, err)
	assert.Len(t, names, 5)
}

func TestRateLimited_Canceled(t *testing.T) {
	rl := RateLimited(NewMemoryStore(), 0.001, 1)
	require.NoError(t, rl.Put(context.Background(), "first", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Put(ctx, "second", nil))
}

func TestLatency(t *testing.T) {
	s := NewMemoryStore()
	l := Latency(s, 5*time.Millisecond)

	start := time.Now()
	require.NoError(t, l.Put(context.Background(), "a", nil))
	require.NoError(t, l.PutBatch(context.Background(), entries(3)))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Equal(t, int64(1), s.Batches())

	_, err := Latency(&putOnlyWriter{}, 0).List(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotLister)
}

func TestPool(t *testing.T) {
	_, err := NewPool()
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = NewPool(NewMemoryStore(), nil)
	assert.Error(t, err)

	a, b := NewMemoryStore(), NewMemoryStore()
	p, err := NewPool(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())

	seen := map[Writer]int{}
	for range 1000 {
		seen[p.Pick()]++
	}
	assert.Len(t, seen, 2)
	assert.Greater(t, seen[a], 350)
	assert.Greater(t, seen[b], 350)

	single := Single(a)
	assert.Same(t, a, single.Pick())

	require.NoError(t, a.Put(context.Background(), "/x/1", nil))
	names, err := p.List(context.Background(), "/x/")
	require.NoError(t, err)
	assert.Equal(t, []string{"/x/1"}, names)

	assert.True(t, strings.HasPrefix(names[0], "/x/"))
}
