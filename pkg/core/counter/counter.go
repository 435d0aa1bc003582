package counter

import (
	"slices"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Status reports the outcome of a successful advance.
type Status int

const (
	// Continue means the tuple was advanced to its successor.
	Continue Status = iota
	// Wrapped means the maximum was passed and the tuple now holds the minimum.
	Wrapped
)

// String returns "continue" or "wrapped".
func (s Status) String() string {
	if s == Wrapped {
		return "wrapped"
	}
	return "continue"
}

// Counter enumerates fixed-width integer tuples in a strict total order.
//
// Implementations must not keep iteration state: Next reads and writes only
// the tuple it is given, so concurrent calls on distinct tuples are safe.
type Counter interface {
	// Width is the length of every tuple.
	Width() int
	// Init writes the minimum of the counting order to v.
	Init(v []int) error
	// Next advances v in place. It returns Wrapped after rewriting the
	// minimum when v held the maximum.
	Next(v []int) (Status, error)
}

// Start allocates a tuple for c and initializes it.
func Start(c Counter) ([]int, error) {
	v := make([]int, c.Width())
	if err := c.Init(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Collect enumerates the whole space of c starting from its minimum and
// returns copies of every tuple. It is meant for tests and small spaces.
func Collect(c Counter) ([][]int, error) {
	v, err := Start(c)
	if err != nil {
		return nil, err
	}
	var out [][]int
	for {
		out = append(out, slices.Clone(v))
		st, err := c.Next(v)
		if err != nil {
			return nil, err
		}
		if st == Wrapped {
			return out, nil
		}
	}
}

func checkWidth(v []int, want int) error {
	if len(v) != want {
		return cerrors.Shape("tuple has width %d, want %d", len(v), want)
	}
	return nil
}
