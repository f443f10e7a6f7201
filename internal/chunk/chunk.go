// Package chunk splits an ordered sequence into fixed-size contiguous splits.
package chunk

import (
	"errors"
	"iter"
)

// ErrInvalidSize is returned when a split size is smaller than one.
var ErrInvalidSize = errors.New("split size must be at least 1")

// Split is a contiguous view into the input. Items aliases the input slice.
type Split[T any] struct {
	// Start is the offset of Items[0] in the input.
	Start int
	Items []T
}

// End returns the offset one past the last item.
func (s Split[T]) End() int { return s.Start + len(s.Items) }

// Chunks yields the splits of items in order.
//
// A split closes when i%size == size-1 or when i is the last index, so every
// split but the last holds exactly size items. Sizes below one yield nothing;
// use Validate to reject them up front.
func Chunks[T any](items []T, size int) iter.Seq[Split[T]] {
	return func(yield func(Split[T]) bool) {
		if size < 1 {
			return
		}

		start := 0
		for i := range items {
			if i%size == size-1 || i == len(items)-1 {
				if !yield(Split[T]{Start: start, Items: items[start : i+1 : i+1]}) {
					return
				}
				start = i + 1
			}
		}
	}
}

// Count returns the number of splits Chunks yields for n items: ceil(n/size).
func Count(n, size int) int {
	if n <= 0 || size < 1 {
		return 0
	}
	return (n + size - 1) / size
}

// Validate checks a split size.
func Validate(size int) error {
	if size < 1 {
		return ErrInvalidSize
	}
	return nil
}
