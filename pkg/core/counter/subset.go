package counter

import (
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Subset enumerates every non-empty subset of {0, ..., n-1}: all subsets of
// size 1 first, then size 2, and so on. Each subset is an ascending index
// list padded with -1 to width n.
type Subset struct {
	n int
}

var _ Counter = (*Subset)(nil)

// NewSubset returns a subset counter over n elements.
func NewSubset(n int) (*Subset, error) {
	if n < 1 {
		return nil, cerrors.Range("subset counter needs at least 1 element, got %d", n)
	}
	return &Subset{n: n}, nil
}

// Width returns n.
func (s *Subset) Width() int { return s.n }

// Init writes [0, -1, ..., -1].
func (s *Subset) Init(v []int) error {
	if err := checkWidth(v, s.n); err != nil {
		return err
	}
	s.grow(v, 1)
	return nil
}

// Next advances v to the next subset.
func (s *Subset) Next(v []int) (Status, error) {
	if err := checkWidth(v, s.n); err != nil {
		return Continue, err
	}
	k := SubsetSize(v)
	if k == 0 {
		return Continue, cerrors.Internal("empty subset")
	}
	st, err := nextCombination(v[:k], s.n)
	if err != nil || st == Continue {
		return st, err
	}
	if k < s.n {
		s.grow(v, k+1)
		return Continue, nil
	}
	s.grow(v, 1)
	return Wrapped, nil
}

func (s *Subset) grow(v []int, k int) {
	pack(v[:k], 0)
	for i := k; i < len(v); i++ {
		v[i] = -1
	}
}

// SubsetSize returns the number of indices in a padded subset tuple.
func SubsetSize(v []int) int {
	for i, x := range v {
		if x < 0 {
			return i
		}
	}
	return len(v)
}

// Subsets returns all 2^n-1 non-empty subsets of {0..n-1} in counting
// order, each trimmed of its padding.
func Subsets(n int) ([][]int, error) {
	s, err := NewSubset(n)
	if err != nil {
		return nil, err
	}
	all, err := Collect(s)
	if err != nil {
		return nil, err
	}
	for i, v := range all {
		all[i] = v[:SubsetSize(v)]
	}
	return all, nil
}
