package counter

import (
	"slices"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Permutation enumerates the distinct permutations of a multiset in
// lexicographic order.
//
// The last Sentinels entries are excluded from both the scan and the
// reversal. They hold unused factor slots (value 1) that must stay at the
// end of the tuple.
type Permutation struct {
	values    []int
	sentinels int
}

var _ Counter = (*Permutation)(nil)

// NewPermutation returns a counter over the multiset values. The trailing
// sentinels entries keep their given positions and values.
func NewPermutation(values []int, sentinels int) (*Permutation, error) {
	if sentinels < 0 || sentinels > len(values) {
		return nil, cerrors.Range("sentinel count %d outside [0,%d]", sentinels, len(values))
	}
	v := slices.Clone(values)
	slices.Sort(v[:len(v)-sentinels])
	return &Permutation{values: v, sentinels: sentinels}, nil
}

// NewFactorPermutation returns a permutation counter for a factorization row
// padded with trailing 1s. The padding is treated as sentinels.
func NewFactorPermutation(row []int) (*Permutation, error) {
	s := 0
	for i := len(row) - 1; i > 0 && row[i] == 1; i-- {
		s++
	}
	return NewPermutation(row, s)
}

// Width returns the multiset size including sentinels.
func (p *Permutation) Width() int { return len(p.values) }

// Sentinels returns the number of trailing entries that are not permuted.
func (p *Permutation) Sentinels() int { return p.sentinels }

// Init writes the ascending arrangement followed by the sentinels.
func (p *Permutation) Init(v []int) error {
	if err := checkWidth(v, len(p.values)); err != nil {
		return err
	}
	copy(v, p.values)
	return nil
}

// Next advances v to its lexicographic successor.
func (p *Permutation) Next(v []int) (Status, error) {
	if err := checkWidth(v, len(p.values)); err != nil {
		return Continue, err
	}
	if NextPermutation(v[:len(v)-p.sentinels]) {
		return Continue, nil
	}
	return Wrapped, nil
}

// NextPermutation rearranges a into its lexicographic successor and reports
// true. If a is the last permutation it is reversed back to ascending order
// and NextPermutation reports false.
func NextPermutation(a []int) bool {
	i := len(a) - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		slices.Reverse(a)
		return false
	}
	j := len(a) - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	slices.Reverse(a[i+1:])
	return true
}

// Multinomial returns the number of distinct permutations of values.
func Multinomial(values []int) int {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result, total := 1, 0
	for _, k := range keys {
		total += counts[k]
		result *= Binomial(total, counts[k])
	}
	return result
}
