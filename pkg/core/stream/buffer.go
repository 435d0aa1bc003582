// Package stream fills fixed-capacity buffers from ordered counters.
//
// A fill writes a seed tuple to slot 0 and advances the counter into the
// following slots until the buffer is full or the counting order wraps. It
// returns the tuple that resumes the enumeration, so a caller can walk a
// space of any size while holding at most one buffer of tuples. [Fill] does
// this on one goroutine; [ParallelFill] splits the slots round-robin across
// workers and produces an identical buffer.
package stream

import (
	"math/bits"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// intBytes is the size of an int slot.
const intBytes = bits.UintSize / 8

const (
	// MaxBufferBytes bounds the memory of a single buffer.
	MaxBufferBytes = 1 << 30

	// MaxCapacity is the most tuples of width 1 that fit in MaxBufferBytes.
	MaxCapacity = MaxBufferBytes / intBytes
)

// Buffer is a reusable staging area of Cap tuples of Width ints each.
type Buffer struct {
	data  []int
	width int
	cap   int
}

// NewBuffer allocates a buffer of capacity tuples of the given width. The
// buffer must fit in MaxBufferBytes.
func NewBuffer(capacity, width int) (*Buffer, error) {
	if capacity < 1 {
		return nil, cerrors.Range("buffer capacity must be at least 1, got %d", capacity)
	}
	if width < 1 {
		return nil, cerrors.Shape("buffer width must be at least 1, got %d", width)
	}
	if capacity > MaxCapacity/width {
		return nil, cerrors.Range("buffer of %d tuples of width %d exceeds %d bytes", capacity, width, MaxBufferBytes)
	}
	return &Buffer{data: make([]int, capacity*width), width: width, cap: capacity}, nil
}

// NewBufferBytes allocates the largest buffer of the given width that fits
// in maxBytes, and at least one slot.
func NewBufferBytes(maxBytes, width int) (*Buffer, error) {
	return NewBuffer(CapacityFor(maxBytes, width), width)
}

// CapacityFor returns how many tuples of width ints fit in maxBytes, never
// less than 1. maxBytes above MaxBufferBytes counts as MaxBufferBytes.
func CapacityFor(maxBytes, width int) int {
	if width < 1 {
		return 1
	}
	return max(1, min(maxBytes, MaxBufferBytes)/(width*intBytes))
}

// Cap returns the number of slots.
func (b *Buffer) Cap() int { return b.cap }

// Width returns the tuple width.
func (b *Buffer) Width() int { return b.width }

// Slot returns a view of slot i.
func (b *Buffer) Slot(i int) []int {
	lo := i * b.width
	return b.data[lo : lo+b.width : lo+b.width]
}

// Data returns the backing array, slot after slot.
func (b *Buffer) Data() []int { return b.data }

// Result describes a completed fill.
type Result struct {
	// Filled is the number of slots written, starting at slot 0.
	Filled int
	// Next is the seed for the following fill: the successor of the last
	// written tuple, or the counter's minimum after a wrap.
	Next []int
	// Done reports that the enumeration wrapped.
	Done bool
}

func checkShape(buf *Buffer, seed []int, c counter.Counter) error {
	if c.Width() != buf.width {
		return cerrors.Shape("counter width %d does not match buffer width %d", c.Width(), buf.width)
	}
	if len(seed) != buf.width {
		return cerrors.Shape("seed width %d does not match buffer width %d", len(seed), buf.width)
	}
	return nil
}
