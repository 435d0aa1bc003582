package stream

import (
	"context"
	"slices"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
)

// Fill writes seed to slot 0 of buf and advances c into the following slots
// until the buffer is full or c wraps.
//
// When the buffer fills up, one more advance computes Result.Next and Done
// reports whether that advance wrapped. seed is not modified.
func Fill(buf *Buffer, seed []int, c counter.Counter) (Result, error) {
	if err := checkShape(buf, seed, c); err != nil {
		return Result{}, err
	}
	cur := slices.Clone(seed)
	copy(buf.Slot(0), cur)
	for i := 1; i < buf.cap; i++ {
		st, err := c.Next(cur)
		if err != nil {
			return Result{}, err
		}
		if st == counter.Wrapped {
			return Result{Filled: i, Next: cur, Done: true}, nil
		}
		copy(buf.Slot(i), cur)
	}
	st, err := c.Next(cur)
	if err != nil {
		return Result{}, err
	}
	return Result{Filled: buf.cap, Next: cur, Done: st == counter.Wrapped}, nil
}

// Generator drives a counter through successive fills, sequentially or
// with Workers goroutines.
type Generator struct {
	Counter counter.Counter
	Workers int
}

// Fill fills buf from seed with g.Counter. ctx only interrupts parallel
// fills.
func (g Generator) Fill(ctx context.Context, buf *Buffer, seed []int) (Result, error) {
	if g.Workers > 1 {
		return ParallelFill(ctx, buf, seed, g.Counter, g.Workers)
	}
	return Fill(buf, seed, g.Counter)
}
