// Package oracle decides whether a candidate phase cycle passes every
// desired coherence transfer pathway and blocks every undesired one.
//
// A pathway is a row of coherence order changes, one per pulse block. A
// cogwheel cycle with N scans and winding numbers w passes a pathway p
// exactly when the sum of w[b]*p[b] over the blocks is divisible by N. A
// nested cycle is a set of sub-cycles; it blocks a pathway if any active
// sub-cycle blocks it, so a desired pathway must pass every sub-cycle while
// an undesired one only needs to be stopped by one of them.
//
// All predicates only look at residues, so replacing a winding by any
// congruent value does not change the verdict.
package oracle

import (
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Verdict is the outcome of checking one candidate.
type Verdict uint8

const (
	// Valid passes every desired pathway and blocks every undesired one.
	Valid Verdict = iota
	// BlocksWanted blocks at least one desired pathway.
	BlocksWanted
	// PassesUnwanted passes every desired pathway and at least one
	// undesired one.
	PassesUnwanted
)

var verdictNames = [...]string{"valid", "blocks_wanted", "passes_unwanted"}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// Table is a read-only, flattened pathway matrix. The first Wanted rows are
// the desired pathways.
type Table struct {
	data   []int
	rows   int
	blocks int
	wanted int
}

// NewTable validates and copies a pathway matrix.
func NewTable(rows [][]int, nWanted int) (*Table, error) {
	if err := cerrors.ValidateMatrix(rows, nWanted); err != nil {
		return nil, err
	}
	t := &Table{
		rows:   len(rows),
		blocks: len(rows[0]),
		wanted: nWanted,
	}
	t.data = make([]int, 0, t.rows*t.blocks)
	for _, r := range rows {
		t.data = append(t.data, r...)
	}
	return t, nil
}

// Rows returns the number of pathways.
func (t *Table) Rows() int { return t.rows }

// Blocks returns the number of pulse blocks.
func (t *Table) Blocks() int { return t.blocks }

// Wanted returns the number of desired pathways.
func (t *Table) Wanted() int { return t.wanted }

// Row returns a view of pathway i.
func (t *Table) Row(i int) []int {
	lo := i * t.blocks
	return t.data[lo : lo+t.blocks : lo+t.blocks]
}

// dot is the winding-weighted coherence change of pathway i over the first
// m blocks.
func (t *Table) dot(i int, w []int, m int) int {
	row := t.Row(i)
	s := 0
	for b := range m {
		s += w[b] * row[b]
	}
	return s
}

// verdict applies the wanted/unwanted rule given a per-pathway blocking
// test.
func (t *Table) verdict(blocked func(i int) bool) Verdict {
	for i := range t.wanted {
		if blocked(i) {
			return BlocksWanted
		}
	}
	for i := t.wanted; i < t.rows; i++ {
		if !blocked(i) {
			return PassesUnwanted
		}
	}
	return Valid
}

// Cogwheel checks a single cogwheel cycle of n scans. Under lastZero the
// final block, whose winding is pinned to 0, is skipped.
func Cogwheel(t *Table, n int, w []int, lastZero bool) Verdict {
	m := t.blocks
	if lastZero {
		m--
	}
	return t.verdict(func(i int) bool {
		return t.dot(i, w, m)%n != 0
	})
}

// CogwheelPasses reports for every pathway whether the cycle passes it.
func CogwheelPasses(t *Table, n int, w []int) []bool {
	out := make([]bool, t.rows)
	for i := range out {
		out[i] = t.dot(i, w, t.blocks)%n == 0
	}
	return out
}

// Nestcog checks a nested cogwheel cycle given its sub-cycle lengths and one
// winding row per sub-cycle. Sub-cycles of length 1 are ignored.
func Nestcog(t *Table, lengths []int, rows [][]int) Verdict {
	return t.verdict(func(i int) bool {
		return nestcogBlocks(t, i, lengths, rows)
	})
}

// NestcogPasses reports for every pathway whether the nested cycle passes
// it.
func NestcogPasses(t *Table, lengths []int, rows [][]int) []bool {
	out := make([]bool, t.rows)
	for i := range out {
		out[i] = !nestcogBlocks(t, i, lengths, rows)
	}
	return out
}

func nestcogBlocks(t *Table, i int, lengths []int, rows [][]int) bool {
	for k, l := range lengths {
		if l > 1 && t.dot(i, rows[k], t.blocks)%l != 0 {
			return true
		}
	}
	return false
}

// NestcogTuple is Nestcog on a flattened tuple of k lengths followed by k
// winding rows, as produced by counter.Nestcog.
func NestcogTuple(t *Table, k int, v []int) Verdict {
	return t.verdict(func(i int) bool {
		for j := range k {
			l := v[j]
			if l <= 1 {
				continue
			}
			off := k + j*t.blocks
			if t.dot(i, v[off:off+t.blocks], t.blocks)%l != 0 {
				return true
			}
		}
		return false
	})
}

// Nested checks a nested cycle in which sub-cycle k of length lengths[k]
// advances the phase of every block in subsets[k] by one step per scan.
func Nested(t *Table, lengths []int, subsets [][]int) Verdict {
	return t.verdict(func(i int) bool {
		row := t.Row(i)
		for k, l := range lengths {
			if l <= 1 {
				continue
			}
			s := 0
			for _, b := range subsets[k] {
				s += row[b]
			}
			if s%l != 0 {
				return true
			}
		}
		return false
	})
}
