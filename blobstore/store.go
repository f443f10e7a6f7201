package blobstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a document does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Entry is one document of a batch.
type Entry struct {
	Name string
	Data []byte
}

// Writer writes single documents.
type Writer interface {
	// Put writes a document atomically, replacing any previous version.
	Put(ctx context.Context, name string, data []byte) error
}

// BatchWriter writes many documents in a single call.
type BatchWriter interface {
	// PutBatch writes all entries. A nil error means every entry was stored.
	PutBatch(ctx context.Context, entries []Entry) error
}

// Lister enumerates stored documents.
type Lister interface {
	// List returns the names of all documents with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Store is the full capability set of the built-in backends.
type Store interface {
	Writer
	Lister
}

// BatchError reports the entries of a batch that were not stored.
//
// The first underlying error can be accessed via errors.Unwrap.
type BatchError struct {
	Failed []string
	Total  int
	cause  error
}

// NewBatchError creates a BatchError for failed names out of total entries.
func NewBatchError(failed []string, total int, cause error) *BatchError {
	return &BatchError{Failed: failed, Total: total, cause: cause}
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch write: %d of %d entries failed: %v", len(e.Failed), e.Total, e.cause)
}

func (e *BatchError) Unwrap() error { return e.cause }

// FailedCount returns the number of entries reported as failed by err:
// the size of a BatchError, otherwise all of total.
func FailedCount(err error, total int) int {
	if err == nil {
		return 0
	}
	var be *BatchError
	if errors.As(err, &be) {
		return len(be.Failed)
	}
	return total
}

// PutBatch writes entries with a single BatchWriter call when w supports it,
// otherwise with one Put per entry in order.
//
// The sequential fallback attempts every entry; it does not stop at the first failure.
func PutBatch(ctx context.Context, w Writer, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if bw, ok := w.(BatchWriter); ok {
		return bw.PutBatch(ctx, entries)
	}

	var (
		failed []string
		first  error
	)
	for _, e := range entries {
		if err := w.Put(ctx, e.Name, e.Data); err != nil {
			failed = append(failed, e.Name)
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return NewBatchError(failed, len(entries), first)
	}
	return nil
}

func hasPrefix(name, prefix string) bool {
	return prefix == "" || strings.HasPrefix(name, prefix)
}
