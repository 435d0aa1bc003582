package counter

import (
	"slices"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Nestcog counts nested cogwheel cycles of N scans: a factorization of N
// into sub-cycle lengths together with one winding row per active
// sub-cycle.
//
// A tuple is flattened as K lengths followed by K rows of Blocks windings,
// where K is the factorization width. Rows of inactive sub-cycles (length 1)
// are zero. Rows for equal lengths are kept strictly increasing in winding
// order so that reordering identical sub-cycles never yields a duplicate.
type Nestcog struct {
	n      int
	blocks int
	k      int
	rows   [][]int
	winds  map[int]*Winding
	policy Policy
}

var _ Counter = (*Nestcog)(nil)

// NewNestcog returns a nested cogwheel counter for n scans. maxFactors caps
// the number of sub-cycles; zero or less means no cap.
func NewNestcog(n, blocks int, policy Policy, maxFactors int) (*Nestcog, error) {
	if n < 2 {
		return nil, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	if blocks < 1 {
		return nil, cerrors.Range("number of blocks must be at least 1, got %d", blocks)
	}
	c := &Nestcog{
		n:      n,
		blocks: blocks,
		rows:   Factorizations(n, maxFactors),
		winds:  make(map[int]*Winding),
		policy: policy,
	}
	c.k = len(c.rows[0])
	for _, row := range c.rows {
		for _, l := range ActiveFactors(row) {
			if _, ok := c.winds[l]; ok {
				continue
			}
			w, err := NewWinding(l, blocks, policy)
			if err != nil {
				return nil, err
			}
			c.winds[l] = w
		}
	}
	return c, nil
}

// Scans returns N.
func (c *Nestcog) Scans() int { return c.n }

// Factors returns the factorization width K.
func (c *Nestcog) Factors() int { return c.k }

// Blocks returns the number of blocks per winding row.
func (c *Nestcog) Blocks() int { return c.blocks }

// Factorizations returns the factorization rows in counting order.
func (c *Nestcog) Factorizations() [][]int { return c.rows }

// Width returns K + K*Blocks.
func (c *Nestcog) Width() int { return c.k * (1 + c.blocks) }

// Split returns views of the lengths and the winding rows of v.
func (c *Nestcog) Split(v []int) (lengths []int, rows [][]int) {
	lengths = v[:c.k]
	rows = make([][]int, c.k)
	for i := range rows {
		off := c.k + i*c.blocks
		rows[i] = v[off : off+c.blocks]
	}
	return lengths, rows
}

func (c *Nestcog) row(v []int, i int) []int {
	off := c.k + i*c.blocks
	return v[off : off+c.blocks]
}

// Init writes the first tuple of the first factorization that admits one.
func (c *Nestcog) Init(v []int) error {
	if err := checkWidth(v, c.Width()); err != nil {
		return err
	}
	ok, err := c.initFrom(v, 0)
	if err != nil {
		return err
	}
	if !ok {
		return cerrors.Internal("no factorization of %d admits a nested cycle", c.n)
	}
	return nil
}

// Next advances the winding rows from the last active one backwards. When
// every row is exhausted it moves to the next factorization.
func (c *Nestcog) Next(v []int) (Status, error) {
	if err := checkWidth(v, c.Width()); err != nil {
		return Continue, err
	}
	lengths := v[:c.k]
	fi := slices.IndexFunc(c.rows, func(r []int) bool { return slices.Equal(r, lengths) })
	if fi < 0 {
		return Continue, cerrors.Internal("lengths %v are not a factorization of %d", lengths, c.n)
	}
	active := activeCount(lengths)

	for i := active - 1; i >= 0; i-- {
		st, err := c.winds[lengths[i]].Next(c.row(v, i))
		if err != nil {
			return Continue, err
		}
		if st == Wrapped {
			continue
		}
		ok, err := c.fillAfter(v, i, active)
		if err != nil {
			return Continue, err
		}
		if ok {
			return Continue, nil
		}
	}

	ok, err := c.initFrom(v, fi+1)
	if err != nil || ok {
		return Continue, err
	}
	if err := c.Init(v); err != nil {
		return Continue, err
	}
	return Wrapped, nil
}

// initFrom initializes v with the first factorization at or after index
// from that admits a tuple.
func (c *Nestcog) initFrom(v []int, from int) (bool, error) {
	for _, lengths := range c.rows[from:] {
		copy(v[:c.k], lengths)
		active := activeCount(lengths)
		for i := active; i < c.k; i++ {
			clear(c.row(v, i))
		}
		c.winds[lengths[0]].reset(c.row(v, 0))
		ok, err := c.fillAfter(v, 0, active)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// fillAfter resets the rows after i to their smallest admissible values. A
// row following an equal length starts just above its predecessor; it
// returns false if no such row exists.
func (c *Nestcog) fillAfter(v []int, i, active int) (bool, error) {
	lengths := v[:c.k]
	for j := i + 1; j < active; j++ {
		row := c.row(v, j)
		w := c.winds[lengths[j]]
		if lengths[j] != lengths[j-1] {
			w.reset(row)
			continue
		}
		copy(row, c.row(v, j-1))
		st, err := w.Next(row)
		if err != nil {
			return false, err
		}
		if st == Wrapped {
			return false, nil
		}
	}
	return true, nil
}

func activeCount(lengths []int) int {
	n := 0
	for _, l := range lengths {
		if l > 1 {
			n++
		}
	}
	return n
}
