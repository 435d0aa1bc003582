// Package phases converts phase cycles into per-scan phase tables.
//
// A phase table has one row per scan and one column per pulse block.
// Internally phases are integers in units of one N-th of a full turn,
// where N is the number of scans, and [Steps.Convert] scales them to the
// requested [Unit].
//
//	tab, _ := phases.Cogwheel([]int{2, 1}, 3, phases.Degrees)
//	// [[0 0] [240 120] [120 240]]
package phases

import (
	"math"
	"math/cmplx"
	"strings"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Unit is the unit of a converted phase.
type Unit string

const (
	Scans   Unit = "n_scans" // a full turn is N
	Radians Unit = "rad"     // a full turn is 2π
	Degrees Unit = "deg"     // a full turn is 360
	Turns   Unit = "turn"    // a full turn is 1
)

var unitAliases = map[string]Unit{
	"n_scans": Scans, "scans": Scans,
	"rad": Radians, "radian": Radians, "radians": Radians,
	"deg": Degrees, "degree": Degrees, "degrees": Degrees, "°": Degrees,
	"turn": Turns, "turns": Turns, "tr": Turns,
}

// ParseUnit accepts a unit name or one of its aliases, ignoring case.
func ParseUnit(s string) (Unit, error) {
	if u, ok := unitAliases[strings.ToLower(s)]; ok {
		return u, nil
	}
	return "", cerrors.New(cerrors.ErrCodeInvalidUnit, "unknown phase unit %q (want n_scans, rad, deg or turn)", s)
}

// fullTurn returns the size of a full turn in u for n scans.
func (u Unit) fullTurn(n int) float64 {
	switch u {
	case Radians:
		return 2 * math.Pi
	case Degrees:
		return 360
	case Turns:
		return 1
	}
	return float64(n)
}

// Steps is a phase table in units of 2π/N.
type Steps struct {
	N      int     `json:"n_scans"`
	Phases [][]int `json:"phases"` // [scan][block], each in [0, N)
}

// Convert scales the table to unit.
func (s Steps) Convert(unit Unit) [][]float64 {
	scale := unit.fullTurn(s.N) / float64(s.N)
	out := make([][]float64, len(s.Phases))
	for i, row := range s.Phases {
		out[i] = make([]float64, len(row))
		for b, p := range row {
			out[i][b] = float64(p) * scale
		}
	}
	return out
}

// Receiver returns the receiver phase per scan that follows pathway:
// minus the phase of the pathway, in units of 2π/N.
func (s Steps) Receiver(pathway []int) ([]int, error) {
	out := make([]int, len(s.Phases))
	for i, row := range s.Phases {
		if len(pathway) != len(row) {
			return nil, cerrors.Shape("pathway has %d blocks, phase table has %d", len(pathway), len(row))
		}
		out[i] = mod(-dot(pathway, row), s.N)
	}
	return out, nil
}

// Signal returns the mean over all scans of exp(-i·φ), where φ is the
// phase the cycle imparts on pathway. Its magnitude is 1 when every scan
// adds coherently and 0 when the pathway is cancelled.
func (s Steps) Signal(pathway []int) (complex128, error) {
	var sum complex128
	for _, row := range s.Phases {
		if len(pathway) != len(row) {
			return 0, cerrors.Shape("pathway has %d blocks, phase table has %d", len(pathway), len(row))
		}
		phi := 2 * math.Pi * float64(mod(dot(pathway, row), s.N)) / float64(s.N)
		sum += cmplx.Exp(complex(0, -phi))
	}
	return sum / complex(float64(len(s.Phases)), 0), nil
}

// CogwheelSteps builds the table of a cogwheel cycle: scan s gives block
// b the phase s·w[b] mod n.
func CogwheelSteps(w []int, n int) (Steps, error) {
	if n < 2 {
		return Steps{}, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	if len(w) == 0 {
		return Steps{}, cerrors.Shape("cogwheel cycle has no blocks")
	}
	out := Steps{N: n, Phases: make([][]int, n)}
	for s := range n {
		row := make([]int, len(w))
		for b, wb := range w {
			row[b] = mod(s*wb, n)
		}
		out.Phases[s] = row
	}
	return out, nil
}

// NestcogSteps builds the table of a nested cogwheel cycle. The scan index
// is read as a mixed-radix number over lengths with the first sub-cycle
// varying fastest; sub-cycle k with digit s_k adds s_k·rows[k][b]·N/L_k.
func NestcogSteps(rows [][]int, lengths []int) (Steps, error) {
	if len(rows) != len(lengths) {
		return Steps{}, cerrors.Shape("%d winding rows for %d sub-cycles", len(rows), len(lengths))
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Steps{}, cerrors.Shape("nested cycle has no blocks")
	}
	blocks := len(rows[0])
	n := 1
	for k, l := range lengths {
		if l < 1 {
			return Steps{}, cerrors.Range("sub-cycle lengths must be at least 1, got %d", l)
		}
		if len(rows[k]) != blocks {
			return Steps{}, cerrors.Shape("winding row %d has %d blocks, want %d", k, len(rows[k]), blocks)
		}
		n *= l
	}
	if n < 2 {
		return Steps{}, cerrors.Range("number of scans must be at least 2, got %d", n)
	}

	out := Steps{N: n, Phases: make([][]int, n)}
	for s := range n {
		row := make([]int, blocks)
		rest := s
		for k, l := range lengths {
			digit := rest % l
			rest /= l
			inc := digit * (n / l)
			for b := range row {
				row[b] += inc * rows[k][b]
			}
		}
		for b := range row {
			row[b] = mod(row[b], n)
		}
		out.Phases[s] = row
	}
	return out, nil
}

// NestedSteps builds the table of a nested cycle in which sub-cycle k
// steps every block in blocks[k] by one 2π/L_k increment per digit.
func NestedSteps(lengths []int, blocks [][]int, nBlocks int) (Steps, error) {
	if len(blocks) != len(lengths) {
		return Steps{}, cerrors.Shape("%d block subsets for %d sub-cycles", len(blocks), len(lengths))
	}
	if nBlocks < 1 {
		return Steps{}, cerrors.Range("number of blocks must be at least 1, got %d", nBlocks)
	}
	rows := make([][]int, len(blocks))
	for k, sub := range blocks {
		rows[k] = make([]int, nBlocks)
		for _, b := range sub {
			if b < 0 || b >= nBlocks {
				return Steps{}, cerrors.Range("block index %d outside [0,%d)", b, nBlocks)
			}
			rows[k][b] = 1
		}
	}
	return NestcogSteps(rows, lengths)
}

// Cogwheel returns the phase table of a cogwheel cycle in unit.
func Cogwheel(w []int, n int, unit Unit) ([][]float64, error) {
	s, err := CogwheelSteps(w, n)
	if err != nil {
		return nil, err
	}
	return s.Convert(unit), nil
}

// Nestcog returns the phase table of a nested cogwheel cycle in unit.
func Nestcog(rows [][]int, lengths []int, unit Unit) ([][]float64, error) {
	s, err := NestcogSteps(rows, lengths)
	if err != nil {
		return nil, err
	}
	return s.Convert(unit), nil
}

// Nested returns the phase table of a nested cycle in unit.
func Nested(lengths []int, blocks [][]int, nBlocks int, unit Unit) ([][]float64, error) {
	s, err := NestedSteps(lengths, blocks, nBlocks)
	if err != nil {
		return nil, err
	}
	return s.Convert(unit), nil
}

func dot(a, b []int) int {
	s := 0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
