package counter

import "strings"

// Policy selects the symmetry-breaking rules applied while counting
// winding numbers.
type Policy struct {
	// LastZero pins the final block to winding 0 and excludes it from
	// counting. It fixes the reference phase when every pathway has the same
	// total coherence change.
	LastZero bool `json:"last_zero"`

	// NoInverse skips tuples that are phase inversions (w -> -w mod N) of an
	// earlier tuple.
	NoInverse bool `json:"no_inverse"`

	// NoCommonFactorWithScans rejects tuples that share a prime factor with
	// the scan count.
	NoCommonFactorWithScans bool `json:"no_common_factor_with_scans"`

	// NoCommonFactorAmongWindings rejects tuples whose components share a
	// prime factor. It takes precedence over NoCommonFactorWithScans.
	NoCommonFactorAmongWindings bool `json:"no_common_factor_among_windings"`
}

// DefaultPolicy returns the policy used when none is given: inversion
// symmetry is broken, nothing else.
func DefaultPolicy() Policy {
	return Policy{NoInverse: true}
}

// Reject returns the predicate implied by the common-factor flags, or nil
// when neither is set.
func (p Policy) Reject() RejectFunc {
	switch {
	case p.NoCommonFactorAmongWindings:
		return RejectCommonFactorAmongWindings
	case p.NoCommonFactorWithScans:
		return RejectCommonFactorWithScans
	}
	return nil
}

// String lists the enabled flags, e.g. "no_inverse,last_zero".
func (p Policy) String() string {
	var parts []string
	if p.NoInverse {
		parts = append(parts, "no_inverse")
	}
	if p.LastZero {
		parts = append(parts, "last_zero")
	}
	if p.NoCommonFactorAmongWindings {
		parts = append(parts, "no_cf_windings")
	}
	if p.NoCommonFactorWithScans {
		parts = append(parts, "no_cf_scans")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// RejectFunc reports whether the tuple w at scan count n must be skipped.
type RejectFunc func(n int, w []int) bool

// RejectCommonFactorAmongWindings rejects w when its components share a
// prime factor.
func RejectCommonFactorAmongWindings(_ int, w []int) bool {
	return SmallestCommonDivisor(w...) != 1
}

// RejectCommonFactorWithScans rejects w when n and the components of w
// share a prime factor.
func RejectCommonFactorWithScans(n int, w []int) bool {
	return SmallestCommonDivisorWith(n, w) != 1
}
