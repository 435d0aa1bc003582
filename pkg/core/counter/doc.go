// Package counter implements ordered enumerators over fixed-width integer
// tuples.
//
// Every enumerator in this package follows the same protocol: a tuple is an
// explicit []int owned by the caller, [Counter.Init] writes the minimum of
// the counting order into it, and [Counter.Next] advances it in place to its
// successor. When the maximum is passed, Next rewrites the minimum and
// returns [Wrapped]. Counters hold configuration only, never iteration
// state, so one counter value can drive many independent cursors from
// different goroutines.
//
// # Enumerators
//
//   - [Winding]: mixed-radix winding numbers for cogwheel cycles, shaped by a
//     [Policy] (phase-inversion symmetry, pinned last block, common-factor
//     pruning)
//   - [Permutation]: lexicographic next-permutation over a multiset, with
//     optional trailing sentinels excluded from the scan
//   - [Combination]: ascending k-subsets of {0..M-1}
//   - [Subset]: every non-empty subset of {0..n-1}, smallest first
//   - [Nestcog]: a factorization of N together with one winding row per
//     active sub-cycle
//   - [Product]: the odometer product of two counters
//
// [Factorizations] and [PrimeFactors] enumerate the multiplicative
// factorizations of a scan count that feed nested cycle searches.
//
// # Usage
//
//	c, err := counter.NewWinding(8, 3, counter.DefaultPolicy())
//	if err != nil {
//	    return err
//	}
//	w := make([]int, c.Width())
//	_ = c.Init(w)
//	for {
//	    visit(w)
//	    st, err := c.Next(w)
//	    if err != nil {
//	        return err
//	    }
//	    if st == counter.Wrapped {
//	        break
//	    }
//	}
package counter
