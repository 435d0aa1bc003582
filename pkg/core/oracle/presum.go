package oracle

import (
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Presum holds, for every pathway, the coherence change summed over each
// of a fixed list of block subsets. Checking a nested cycle then costs one
// modulo per pathway and sub-cycle instead of a pass over the blocks.
type Presum struct {
	sums    []int
	subsets int
	rows    int
	wanted  int
}

// NewPresum sums the pathways of t over subsets. Indices outside
// [0, t.Blocks()) are skipped, so padded subset tuples can be passed as is.
func NewPresum(t *Table, subsets [][]int) (*Presum, error) {
	if len(subsets) == 0 {
		return nil, cerrors.Shape("presum needs at least one subset")
	}
	p := &Presum{
		sums:    make([]int, t.rows*len(subsets)),
		subsets: len(subsets),
		rows:    t.rows,
		wanted:  t.wanted,
	}
	for i := range t.rows {
		row := t.Row(i)
		for j, sub := range subsets {
			s := 0
			for _, b := range sub {
				if b >= 0 && b < t.blocks {
					s += row[b]
				}
			}
			p.sums[i*p.subsets+j] = s
		}
	}
	return p, nil
}

// Subsets returns the number of presummed subsets.
func (p *Presum) Subsets() int { return p.subsets }

// Sum returns the presummed change of pathway i over subset j.
func (p *Presum) Sum(i, j int) int { return p.sums[i*p.subsets+j] }

func (p *Presum) blocked(i int, lengths, idx []int) bool {
	base := i * p.subsets
	for k, l := range lengths {
		if l > 1 && p.sums[base+idx[k]]%l != 0 {
			return true
		}
	}
	return false
}

// Nested checks a nested cycle whose sub-cycle k has length lengths[k] and
// cycles the blocks of subset idx[k].
func (p *Presum) Nested(lengths, idx []int) Verdict {
	for i := range p.wanted {
		if p.blocked(i, lengths, idx) {
			return BlocksWanted
		}
	}
	for i := p.wanted; i < p.rows; i++ {
		if !p.blocked(i, lengths, idx) {
			return PassesUnwanted
		}
	}
	return Valid
}
