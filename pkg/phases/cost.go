package phases

import (
	"math/cmplx"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Objective scores a phase table by how far the signal of every pathway is
// from its target: 1 for wanted pathways and 0 for the others. A cycle that
// passes every wanted pathway and cancels every other one scores 0.
//
// Pathways are taken relative to the first one, which is the reference the
// receiver follows.
type Objective struct {
	rel    [][]int
	target []float64
}

// NewObjective builds the objective for pathways whose first wanted rows
// must pass.
func NewObjective(pathways [][]int, wanted int) (*Objective, error) {
	if len(pathways) == 0 {
		return nil, cerrors.Shape("no pathways")
	}
	if wanted < 1 || wanted > len(pathways) {
		return nil, cerrors.Range("wanted pathways must be in [1,%d], got %d", len(pathways), wanted)
	}
	ref := pathways[0]
	o := &Objective{rel: make([][]int, len(pathways)), target: make([]float64, len(pathways))}
	for p, row := range pathways {
		if len(row) != len(ref) {
			return nil, cerrors.Shape("pathway %d has %d blocks, want %d", p, len(row), len(ref))
		}
		o.rel[p] = make([]int, len(row))
		for b := range row {
			o.rel[p][b] = row[b] - ref[b]
		}
		if p < wanted {
			o.target[p] = 1
		}
	}
	return o, nil
}

// factors returns exp(-i·Σ_b rel[p][b]·φ[s][b]) indexed [pathway][scan].
func (o *Objective) factors(phases [][]float64) ([][]complex128, error) {
	if len(phases) == 0 {
		return nil, cerrors.Shape("empty phase table")
	}
	out := make([][]complex128, len(o.rel))
	for p, d := range o.rel {
		out[p] = make([]complex128, len(phases))
		for s, row := range phases {
			if len(row) != len(d) {
				return nil, cerrors.Shape("scan %d has %d blocks, want %d", s, len(row), len(d))
			}
			x := 0.0
			for b, v := range d {
				x += float64(v) * row[b]
			}
			out[p][s] = cmplx.Exp(complex(0, -x))
		}
	}
	return out, nil
}

// deviation returns S_p - target_p for every pathway.
func (o *Objective) deviation(e [][]complex128) []complex128 {
	out := make([]complex128, len(e))
	for p, row := range e {
		var sum complex128
		for _, v := range row {
			sum += v
		}
		out[p] = sum/complex(float64(len(row)), 0) - complex(o.target[p], 0)
	}
	return out
}

// Free returns the mean over pathways of |S - target|² for a table of
// arbitrary phases in radians, indexed [scan][block].
func (o *Objective) Free(phases [][]float64) (float64, error) {
	e, err := o.factors(phases)
	if err != nil {
		return 0, err
	}
	return meanSquare(o.deviation(e)), nil
}

// FreeGradient returns Free and its gradient with respect to every phase,
// indexed like phases.
func (o *Objective) FreeGradient(phases [][]float64) (float64, [][]float64, error) {
	e, err := o.factors(phases)
	if err != nil {
		return 0, nil, err
	}
	ds := o.deviation(e)
	scale := 2 / float64(len(o.rel)*len(phases))

	grad := make([][]float64, len(phases))
	for s, row := range phases {
		grad[s] = make([]float64, len(row))
		for p, d := range o.rel {
			im := imag(e[p][s] * cmplx.Conj(ds[p]))
			for b, v := range d {
				grad[s][b] += scale * im * float64(v)
			}
		}
	}
	return meanSquare(ds), grad, nil
}

// Cogwheel returns the sum over pathways of |S - target|² for cogwheel
// cycle w of n scans.
func (o *Objective) Cogwheel(w []int, n int) (float64, error) {
	steps, err := CogwheelSteps(w, n)
	if err != nil {
		return 0, err
	}
	e, err := o.factors(steps.Convert(Radians))
	if err != nil {
		return 0, err
	}
	return meanSquare(o.deviation(e)) * float64(len(o.rel)), nil
}

func meanSquare(v []complex128) float64 {
	sum := 0.0
	for _, x := range v {
		a := cmplx.Abs(x)
		sum += a * a
	}
	return sum / float64(len(v))
}

