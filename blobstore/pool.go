package blobstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrNotLister is returned when listing is requested from a write-only handle.
var ErrNotLister = errors.New("store does not support listing")

// ErrEmptyPool is returned when a pool is created without handles.
var ErrEmptyPool = errors.New("pool needs at least one handle")

// Pool is a fixed set of backend handles. Membership never changes after
// NewPool returns, so Pick needs no locking.
type Pool struct {
	handles []Writer
}

// NewPool creates a pool of the given handles.
func NewPool(handles ...Writer) (*Pool, error) {
	if len(handles) == 0 {
		return nil, ErrEmptyPool
	}
	for i, h := range handles {
		if h == nil {
			return nil, fmt.Errorf("pool handle %d is nil", i)
		}
	}
	p := &Pool{handles: make([]Writer, len(handles))}
	copy(p.handles, handles)
	return p, nil
}

// Single is a shorthand for a pool of one handle.
func Single(w Writer) *Pool {
	return &Pool{handles: []Writer{w}}
}

// Pick returns a handle chosen uniformly at random.
func (p *Pool) Pick() Writer {
	if len(p.handles) == 1 {
		return p.handles[0]
	}
	return p.handles[rand.IntN(len(p.handles))]
}

// Len returns the number of handles.
func (p *Pool) Len() int { return len(p.handles) }

// At returns the i-th handle.
func (p *Pool) At(i int) Writer { return p.handles[i] }

// List lists through the first handle of the pool.
func (p *Pool) List(ctx context.Context, prefix string) ([]string, error) {
	return list(ctx, p.handles[0], prefix)
}

func list(ctx context.Context, w Writer, prefix string) ([]string, error) {
	l, ok := w.(Lister)
	if !ok {
		return nil, ErrNotLister
	}
	return l.List(ctx, prefix)
}
