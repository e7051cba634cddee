// Package sequence reserves contiguous blocks of label numbers.
//
// Reservation is pure arithmetic: [Reserve] neither reads nor writes the
// persisted counter. The caller decides when the returned next value
// becomes durable, which is what keeps a failed run from consuming numbers.
package sequence

import (
	"github.com/matzehuels/labelsheet/pkg/errors"
)

// Range is a contiguous, ascending block of label numbers.
type Range struct {
	First int
	Count int
}

// Last returns the highest number in the range.
func (r Range) Last() int {
	return r.First + r.Count - 1
}

// Next returns the first number after the range.
func (r Range) Next() int {
	return r.First + r.Count
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	return n >= r.First && n < r.Next()
}

// Numbers returns the numbers of the range in ascending order.
func (r Range) Numbers() []int {
	out := make([]int, r.Count)
	for i := range out {
		out[i] = r.First + i
	}
	return out
}

// Reserve returns the block [start, start+count-1] together with the value
// the counter advances to once the block has been used.
func Reserve(start, count int) (Range, int, error) {
	if count <= 0 {
		return Range{}, 0, errors.New(errors.ErrCodeConfiguration, "label count must be positive, got %d", count)
	}
	if start < 0 {
		return Range{}, 0, errors.New(errors.ErrCodeConfiguration, "start number must not be negative, got %d", start)
	}
	r := Range{First: start, Count: count}
	return r, r.Next(), nil
}
