package search

import (
	"context"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	"github.com/matzehuels/cyclesearch/pkg/core/oracle"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Cogwheel searches for cogwheel cycles. A cogwheel cycle of N scans
// assigns block b the phase 2π·w[b]·s/N in scan s.
func Cogwheel(ctx context.Context, d *ctp.Descriptor, opts Options) (*Result, error) {
	tab, err := prepare(d, &opts)
	if err != nil {
		return nil, err
	}
	lastZero := resolveLastZero(d, opts)
	policy := opts.Policy
	policy.LastZero = lastZero

	s := newScanner(FamilyCogwheel, opts, lastZero)
	return s.run(ctx, func(n int) ([]source, error) {
		c, err := counter.NewWinding(n, tab.Blocks(), policy)
		if err != nil {
			return nil, err
		}
		return []source{{
			c: c,
			eval: func(v []int) oracle.Verdict {
				return oracle.Cogwheel(tab, n, v, lastZero)
			},
			accept: func(v []int) (Cycle, error) {
				if err := c.Check(v); err != nil {
					return Cycle{}, cerrors.Internal("accepted winding tuple %v: %v", v, err)
				}
				return Cycle{Windings: v}, nil
			},
		}}, nil
	})
}
