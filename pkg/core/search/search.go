// Package search finds phase cycles that select a set of coherence transfer
// pathways.
//
// # Overview
//
// A search walks the scan counts from Options.MinScans to Options.MaxScans
// in increasing order. For every scan count it enumerates the candidate
// cycles of one family with a counter from package counter, fills bounded
// candidate buffers with package stream and checks every candidate against
// the pathway table with package oracle. The search stops at the first scan
// count that yields a valid cycle, so every returned cycle is minimal.
//
// Three families are supported:
//
//   - [Cogwheel]: one winding number per block.
//   - [Nested]: a product of sub-cycles, each stepping a subset of blocks.
//   - [Nestcog]: a product of cogwheel sub-cycles, one winding row each.
//
// # Cancellation
//
// The context is checked between buffer fills, and between slots of a
// parallel fill. A cancelled search returns the context error and no result.
//
// # Determinism
//
// Results do not depend on Options.Workers or Options.Capacity. Candidates
// are visited in counter order and cycles are collected in that order.
package search

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	"github.com/matzehuels/cyclesearch/pkg/core/oracle"
	"github.com/matzehuels/cyclesearch/pkg/core/stream"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Run dispatches to the search for family f.
func Run(ctx context.Context, f Family, d *ctp.Descriptor, opts Options) (*Result, error) {
	switch f {
	case FamilyCogwheel:
		return Cogwheel(ctx, d, opts)
	case FamilyNested:
		return Nested(ctx, d, opts)
	case FamilyNestcog:
		return Nestcog(ctx, d, opts)
	}
	return nil, cerrors.New(cerrors.ErrCodeInvalidFamily, "unknown cycle family %q", f)
}

// source is one enumeration to scan at a given scan count.
type source struct {
	c       counter.Counter
	factors []int
	eval    func(v []int) oracle.Verdict
	// accept re-checks a valid candidate and converts it to a cycle.
	accept func(v []int) (Cycle, error)
}

// sourcesFunc returns the enumerations that make up scan count n.
type sourcesFunc func(n int) ([]source, error)

type scanner struct {
	family  Family
	opts    Options
	res     *Result
	buf     *stream.Buffer
	verdict []oracle.Verdict
}

func newScanner(f Family, opts Options, lastZero bool) *scanner {
	return &scanner{
		family: f,
		opts:   opts,
		res: &Result{
			Family:   f,
			Cycles:   []Cycle{},
			LastZero: lastZero,
			Stats: Stats{
				MinScans: opts.MinScans,
				Workers:  opts.Workers,
			},
		},
	}
}

// run scans n from MinScans to MaxScans and stops at the first n with a
// valid cycle.
func (s *scanner) run(ctx context.Context, sources sourcesFunc) (*Result, error) {
	start := time.Now()
	defer func() { s.res.Stats.Duration = time.Since(start) }()

	for n := s.opts.MinScans; n <= s.opts.MaxScans; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.res.Stats.LastScans = n
		s.report(Progress{Event: EventScan, NScans: n})

		srcs, err := sources(n)
		if err != nil {
			return nil, err
		}
		for _, src := range srcs {
			if err := s.scan(ctx, n, src); err != nil {
				return nil, err
			}
			if len(s.res.Cycles) >= s.opts.NFind {
				break
			}
		}
		if len(s.res.Cycles) > 0 {
			s.res.NScans = n
			s.report(Progress{Event: EventFound, NScans: n})
			return s.res, nil
		}
		s.report(Progress{Event: EventDone, NScans: n})
	}
	s.res.Exhausted = true
	return s.res, nil
}

// scan drains one source through the candidate buffer.
func (s *scanner) scan(ctx context.Context, n int, src source) error {
	if err := s.ensureBuffer(src.c.Width()); err != nil {
		return err
	}
	gen := stream.Generator{Counter: src.c, Workers: s.opts.Workers}
	seed, err := counter.Start(src.c)
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fill, err := gen.Fill(ctx, s.buf, seed)
		if err != nil {
			return err
		}
		s.res.Stats.Fills++
		s.res.Stats.Candidates += int64(fill.Filled)

		out := s.verdict[:fill.Filled]
		oracle.Check(out, s.opts.Workers, func(i int) oracle.Verdict {
			return src.eval(s.buf.Slot(i))
		})
		for i, v := range out {
			if v != oracle.Valid {
				continue
			}
			c, err := src.accept(slices.Clone(s.buf.Slot(i)))
			if err != nil {
				return err
			}
			c.NScans = n
			s.res.Cycles = append(s.res.Cycles, c)
			if len(s.res.Cycles) >= s.opts.NFind {
				break
			}
		}
		if s.opts.Verbosity >= 2 {
			s.report(Progress{Event: EventFill, NScans: n, Factors: src.factors, Filled: fill.Filled})
		}
		if len(s.res.Cycles) >= s.opts.NFind || fill.Done {
			return nil
		}
		seed = fill.Next
	}
}

// ensureBuffer reuses the current buffer when the tuple width is unchanged.
func (s *scanner) ensureBuffer(width int) error {
	if s.buf != nil && s.buf.Width() == width {
		return nil
	}
	capacity := stream.CapacityFor(s.opts.BufferBytes, width)
	if s.opts.Capacity > 0 {
		capacity = min(s.opts.Capacity, capacity)
	}
	buf, err := stream.NewBuffer(capacity, width)
	if err != nil {
		return err
	}
	if len(s.verdict) < capacity {
		s.verdict = make([]oracle.Verdict, capacity)
	}
	s.buf = buf
	s.res.Stats.Capacity = capacity
	return nil
}

func (s *scanner) report(p Progress) {
	if s.opts.Progress == nil {
		return
	}
	p.Family = s.family
	p.MaxScans = s.opts.MaxScans
	p.Candidates = s.res.Stats.Candidates
	p.Found = len(s.res.Cycles)
	s.opts.Progress(p)
}

// prepare validates the descriptor and options shared by every family.
func prepare(d *ctp.Descriptor, opts *Options) (*oracle.Table, error) {
	if d == nil {
		return nil, cerrors.Shape("nil descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return d.Table()
}

// resolveLastZero picks the explicit option, then the descriptor setting,
// then auto-detection. A single block never pins its winding.
func resolveLastZero(d *ctp.Descriptor, opts Options) bool {
	lz := d.ResolveLastZero()
	if opts.LastZero != nil {
		lz = *opts.LastZero
	}
	return lz && d.Blocks() > 1
}

// LastZero reports whether a search of family f over d pins the last
// block, as recorded in Result.LastZero.
func LastZero(f Family, d *ctp.Descriptor, opts Options) bool {
	if f == FamilyNested {
		return false
	}
	return resolveLastZero(d, opts)
}
