package counter

import (
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Combination enumerates the k-subsets of {0, ..., m-1} as ascending index
// tuples in lexicographic order.
type Combination struct {
	m, k int
}

var _ Counter = (*Combination)(nil)

// NewCombination returns a counter over k-subsets of m elements.
func NewCombination(m, k int) (*Combination, error) {
	if k < 0 || k > m {
		return nil, cerrors.Range("cannot pick %d of %d elements", k, m)
	}
	return &Combination{m: m, k: k}, nil
}

// Width returns k.
func (c *Combination) Width() int { return c.k }

// Init writes [0, 1, ..., k-1].
func (c *Combination) Init(v []int) error {
	if err := checkWidth(v, c.k); err != nil {
		return err
	}
	pack(v, 0)
	return nil
}

// Next advances v to the next k-subset.
func (c *Combination) Next(v []int) (Status, error) {
	if err := checkWidth(v, c.k); err != nil {
		return Continue, err
	}
	st, err := nextCombination(v, c.m)
	if err != nil {
		return st, err
	}
	if st == Wrapped {
		pack(v, 0)
	}
	return st, nil
}

// nextCombination advances v in place over subsets of {0..m-1}. On wrap v
// is left as is.
func nextCombination(v []int, m int) (Status, error) {
	k := len(v)
	for i := k - 1; i >= 0; i-- {
		limit := m - k + i
		switch {
		case v[i] < limit:
			v[i]++
			pack(v[i+1:], v[i]+1)
			return Continue, nil
		case v[i] > limit:
			return Continue, cerrors.Internal("index %d at position %d exceeds %d", v[i], i, limit)
		}
	}
	return Wrapped, nil
}

// pack writes consecutive values starting at from.
func pack(v []int, from int) {
	for i := range v {
		v[i] = from + i
	}
}

// Binomial returns n choose k, or 0 when k is outside [0,n].
func Binomial(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	r := 1
	for i := 1; i <= k; i++ {
		r = r * (n - k + i) / i
	}
	return r
}
