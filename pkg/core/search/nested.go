package search

import (
	"context"
	"slices"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	"github.com/matzehuels/cyclesearch/pkg/core/oracle"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Nested searches for nested cycles. A nested cycle of N scans factors N
// into sub-cycle lengths L0·L1·…; sub-cycle k steps the phase of every block
// in its subset by 2π/Lk, and the sub-cycles nest like the digits of a
// mixed-radix counter.
//
// Each factorization is enumerated as its distinct orderings times the
// combinations of distinct block subsets, so two sub-cycles never cycle the
// same subset.
func Nested(ctx context.Context, d *ctp.Descriptor, opts Options) (*Result, error) {
	tab, err := prepare(d, &opts)
	if err != nil {
		return nil, err
	}
	subsets, err := counter.Subsets(tab.Blocks())
	if err != nil {
		return nil, err
	}
	pre, err := oracle.NewPresum(tab, subsets)
	if err != nil {
		return nil, err
	}

	s := newScanner(FamilyNested, opts, false)
	return s.run(ctx, func(n int) ([]source, error) {
		var srcs []source
		for _, row := range counter.Factorizations(n, len(subsets)) {
			src, err := nestedSource(tab, pre, subsets, row)
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, src)
		}
		return srcs, nil
	})
}

func nestedSource(tab *oracle.Table, pre *oracle.Presum, subsets [][]int, row []int) (source, error) {
	perm, err := counter.NewFactorPermutation(row)
	if err != nil {
		return source{}, err
	}
	k := perm.Width() - perm.Sentinels()
	comb, err := counter.NewCombination(len(subsets), k)
	if err != nil {
		return source{}, err
	}
	p := counter.Product{Outer: perm, Inner: comb}
	width := perm.Width()

	return source{
		c:       p,
		factors: counter.ActiveFactors(row),
		eval: func(v []int) oracle.Verdict {
			return pre.Nested(v[:k], v[width:])
		},
		accept: func(v []int) (Cycle, error) {
			lengths := v[:k]
			blocks := make([][]int, k)
			for j, idx := range v[width:] {
				if idx < 0 || idx >= len(subsets) {
					return Cycle{}, cerrors.Internal("subset index %d outside [0,%d)", idx, len(subsets))
				}
				blocks[j] = slices.Clone(subsets[idx])
			}
			if got := oracle.Nested(tab, lengths, blocks); got != oracle.Valid {
				return Cycle{}, cerrors.Internal("presummed check accepted %v %v, direct check says %s", lengths, blocks, got)
			}
			return Cycle{Lengths: slices.Clone(lengths), Blocks: blocks}, nil
		},
	}, nil
}
