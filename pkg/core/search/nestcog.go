package search

import (
	"context"
	"slices"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	"github.com/matzehuels/cyclesearch/pkg/core/oracle"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Nestcog searches for nested cogwheel cycles: a factorization of N into
// sub-cycle lengths with a cogwheel winding row for each sub-cycle.
// A pathway passes when it passes every sub-cycle.
func Nestcog(ctx context.Context, d *ctp.Descriptor, opts Options) (*Result, error) {
	tab, err := prepare(d, &opts)
	if err != nil {
		return nil, err
	}
	lastZero := resolveLastZero(d, opts)
	policy := opts.Policy
	policy.LastZero = lastZero

	s := newScanner(FamilyNestcog, opts, lastZero)
	return s.run(ctx, func(n int) ([]source, error) {
		c, err := counter.NewNestcog(n, tab.Blocks(), policy, opts.MaxFactors)
		if err != nil {
			return nil, err
		}
		k := c.Factors()
		return []source{{
			c: c,
			eval: func(v []int) oracle.Verdict {
				return oracle.NestcogTuple(tab, k, v)
			},
			accept: func(v []int) (Cycle, error) {
				return acceptNestcog(tab, c, v)
			},
		}}, nil
	})
}

func acceptNestcog(tab *oracle.Table, c *counter.Nestcog, v []int) (Cycle, error) {
	lengths, rows := c.Split(v)
	prod := 1
	for _, l := range lengths {
		prod *= l
	}
	if prod != c.Scans() {
		return Cycle{}, cerrors.Internal("sub-cycle lengths %v do not multiply to %d", lengths, c.Scans())
	}
	active := counter.ActiveFactors(lengths)
	if len(active) == 1 && active[0] == 1 {
		return Cycle{}, cerrors.Internal("nested cycle %v has no active sub-cycle", v)
	}
	out := Cycle{Lengths: slices.Clone(active), Rows: make([][]int, len(active))}
	for i, l := range active {
		for _, w := range rows[i] {
			if w < 0 || w >= l {
				return Cycle{}, cerrors.Internal("winding %d outside [0,%d) in row %v", w, l, rows[i])
			}
		}
		out.Rows[i] = slices.Clone(rows[i])
	}
	if got := oracle.Nestcog(tab, out.Lengths, out.Rows); got != oracle.Valid {
		return Cycle{}, cerrors.Internal("flattened check accepted %v, direct check says %s", v, got)
	}
	return out, nil
}
