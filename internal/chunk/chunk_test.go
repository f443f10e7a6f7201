package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func collect[T any](items []T, size int) []Split[T] {
	var out []Split[T]
	for s := range Chunks(items, size) {
		out = append(out, s)
	}
	return out
}

func TestChunks_Sizes(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"Empty", 0, 100, nil},
		{"Single", 1, 100, []int{1}},
		{"SmallerThanSplit", 3, 100, []int{3}},
		{"Exact", 200, 100, []int{100, 100}},
		{"Remainder", 250, 100, []int{100, 100, 50}},
		{"SizeOne", 3, 1, []int{1, 1, 1}},
		{"OneShort", 99, 100, []int{99}},
		{"OneOver", 101, 100, []int{100, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := collect(seq(tt.n), tt.size)

			var sizes []int
			for _, s := range splits {
				sizes = append(sizes, len(s.Items))
			}
			assert.Equal(t, tt.sizes, sizes)
			assert.Equal(t, Count(tt.n, tt.size), len(splits))
		})
	}
}

func TestChunks_RoundTrip(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for size := 1; size <= 12; size++ {
			items := seq(n)

			var joined []int
			next := 0
			for s := range Chunks(items, size) {
				require.Equal(t, next, s.Start, "n=%d size=%d", n, size)
				require.LessOrEqual(t, len(s.Items), size)
				require.NotEmpty(t, s.Items)
				joined = append(joined, s.Items...)
				next = s.End()
			}

			if n == 0 {
				assert.Empty(t, joined)
				continue
			}
			assert.Equal(t, items, joined, "n=%d size=%d", n, size)
		}
	}
}

func TestChunks_EarlyBreak(t *testing.T) {
	count := 0
	for range Chunks(seq(1000), 10) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestChunks_ViewIsCapped(t *testing.T) {
	items := seq(6)
	splits := collect(items, 4)
	require.Len(t, splits, 2)

	// Appending to a split must not overwrite the next split's items.
	_ = append(splits[0].Items, 99)
	assert.Equal(t, 4, items[4])
}

func TestChunks_InvalidSize(t *testing.T) {
	assert.Empty(t, collect(seq(10), 0))
	assert.Empty(t, collect(seq(10), -1))
	assert.ErrorIs(t, Validate(0), ErrInvalidSize)
	assert.NoError(t, Validate(1))
	assert.Equal(t, 0, Count(10, 0))
}
