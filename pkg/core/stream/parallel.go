package stream

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Part is one worker's share of a parallel fill.
type Part struct {
	// Count is the number of slots the worker wrote.
	Count int
	// Overflow reports that the worker's cursor wrapped before reaching its
	// next slot.
	Overflow bool
}

// Merged is the global outcome reconstructed from the parts.
type Merged struct {
	Filled int
	Last   int // index of the last written slot
	Done   bool
}

// ParallelFill is Fill with the slots dealt round-robin to workers
// goroutines. Worker w starts at the w-th successor of seed and writes
// slots w, w+W, w+2W, ... advancing its cursor W times between writes.
//
// The buffer and result are identical to Fill for every worker count. If a
// worker fails or ctx is cancelled the whole fill fails and the buffer
// contents are undefined. Workers check ctx between slots.
func ParallelFill(ctx context.Context, buf *Buffer, seed []int, c counter.Counter, workers int) (Result, error) {
	if err := checkShape(buf, seed, c); err != nil {
		return Result{}, err
	}
	w := min(workers, buf.cap)
	if w <= 1 {
		return Fill(buf, seed, c)
	}

	cursors := make([][]int, w)
	cursors[0] = slices.Clone(seed)
	for i := 1; i < w; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		cursors[i] = slices.Clone(cursors[i-1])
		st, err := c.Next(cursors[i])
		if err != nil {
			return Result{}, err
		}
		if st == counter.Wrapped {
			// fewer tuples left than workers
			return Fill(buf, seed, c)
		}
	}

	parts := make([]Part, w)
	g, gctx := errgroup.WithContext(ctx)
	for i := range w {
		g.Go(func() error {
			return fillStride(gctx, buf, cursors[i], c, i, w, &parts[i])
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	m, err := Merge(parts, buf.cap)
	if err != nil {
		return Result{}, err
	}
	next := slices.Clone(buf.Slot(m.Last))
	st, err := c.Next(next)
	if err != nil {
		return Result{}, err
	}
	done := st == counter.Wrapped
	if m.Done && !done {
		return Result{}, cerrors.Internal("worker overflowed but slot %d has a successor", m.Last)
	}
	return Result{Filled: m.Filled, Next: next, Done: done}, nil
}

// fillStride is the body of worker i of w.
func fillStride(ctx context.Context, buf *Buffer, cur []int, c counter.Counter, i, w int, part *Part) error {
	for slot := i; ; slot += w {
		copy(buf.Slot(slot), cur)
		part.Count++
		if slot+w >= buf.cap {
			return nil
		}
		for range w {
			st, err := c.Next(cur)
			if err != nil {
				return err
			}
			if st == counter.Wrapped {
				part.Overflow = true
				return nil
			}
		}
		// cancelled, or a sibling failed
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Merge reconstructs the global fill outcome from per-worker parts of a
// round-robin fill of capacity slots.
//
// The parts must describe a contiguous prefix of M slots: worker w wrote
// every slot w+kW below M, and it overflowed exactly when its next slot was
// below capacity. Anything else is an INTERNAL_INCONSISTENCY.
func Merge(parts []Part, capacity int) (Merged, error) {
	w := len(parts)
	if w == 0 {
		return Merged{}, cerrors.Internal("merge of zero parts")
	}
	total := 0
	overflow := false
	for _, p := range parts {
		total += p.Count
		overflow = overflow || p.Overflow
	}
	if total < w || total > capacity {
		return Merged{}, cerrors.Internal("%d workers wrote %d of %d slots", w, total, capacity)
	}
	for i, p := range parts {
		if want := (total - i + w - 1) / w; p.Count != want {
			return Merged{}, cerrors.Internal("worker %d wrote %d slots, want %d of %d", i, p.Count, want, total)
		}
		next := i + p.Count*w
		if p.Overflow != (next < capacity) {
			return Merged{}, cerrors.Internal("worker %d overflow=%v with next slot %d of %d", i, p.Overflow, next, capacity)
		}
	}
	if overflow && total == capacity {
		return Merged{}, cerrors.Internal("overflow reported with a full buffer")
	}
	return Merged{Filled: total, Last: total - 1, Done: overflow}, nil
}
