// Package ctp describes the coherence transfer pathways a phase cycle must
// select.
//
// # Overview
//
// A [Descriptor] is an integer matrix with one row per pathway and one
// column per pulse block. Each entry is the coherence order change of that
// pathway in that block, relative to the reference pathway. The first
// Wanted rows are the desired pathways; all others must be suppressed.
//
// Descriptors are produced by an external pathway-derivation step and are
// read from JSON or TOML files:
//
//	{
//	  "name": "double quantum filter",
//	  "n_wanted": 2,
//	  "pathways": [
//	    [1, -2, 1],
//	    [-1, 2, -1],
//	    [1, 0, -1]
//	  ]
//	}
//
// The same descriptor in TOML:
//
//	name = "double quantum filter"
//	n_wanted = 2
//	pathways = [[1, -2, 1], [-1, 2, -1], [1, 0, -1]]
//
// # Last Zero
//
// When every pathway has the same total coherence change, only winding
// differences matter and the last block can be pinned to winding 0.
// [Descriptor.ResolveLastZero] returns the explicit LastZero setting when
// one is given and otherwise detects this case with
// [Descriptor.AutoLastZero].
package ctp

import (
	"github.com/matzehuels/cyclesearch/pkg/core/oracle"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Descriptor is a pathway matrix and the number of desired pathways.
type Descriptor struct {
	Name     string  `json:"name,omitempty" toml:"name,omitempty"`
	Wanted   int     `json:"n_wanted" toml:"n_wanted"`
	Pathways [][]int `json:"pathways" toml:"pathways"`
	LastZero *bool   `json:"last_zero,omitempty" toml:"last_zero,omitempty"`
}

// New returns a validated descriptor.
func New(pathways [][]int, wanted int) (*Descriptor, error) {
	d := &Descriptor{Pathways: pathways, Wanted: wanted}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the name and the matrix shape.
func (d *Descriptor) Validate() error {
	if err := cerrors.ValidateName(d.Name); err != nil {
		return err
	}
	return cerrors.ValidateMatrix(d.Pathways, d.Wanted)
}

// Len returns the number of pathways.
func (d *Descriptor) Len() int { return len(d.Pathways) }

// Blocks returns the number of pulse blocks, or 0 for an empty matrix.
func (d *Descriptor) Blocks() int {
	if len(d.Pathways) == 0 {
		return 0
	}
	return len(d.Pathways[0])
}

// Unwanted returns the number of pathways to suppress.
func (d *Descriptor) Unwanted() int { return len(d.Pathways) - d.Wanted }

// AutoLastZero reports whether all pathways share the same total coherence
// change and the matrix has more than one block.
func (d *Descriptor) AutoLastZero() bool {
	if d.Blocks() < 2 {
		return false
	}
	first := sum(d.Pathways[0])
	for _, row := range d.Pathways[1:] {
		if sum(row) != first {
			return false
		}
	}
	return true
}

// ResolveLastZero returns the explicit LastZero setting, or AutoLastZero
// when none is set.
func (d *Descriptor) ResolveLastZero() bool {
	if d.LastZero != nil {
		return *d.LastZero
	}
	return d.AutoLastZero()
}

// Table validates d and returns its oracle table.
func (d *Descriptor) Table() (*oracle.Table, error) {
	return oracle.NewTable(d.Pathways, d.Wanted)
}

func sum(row []int) int {
	s := 0
	for _, v := range row {
		s += v
	}
	return s
}
