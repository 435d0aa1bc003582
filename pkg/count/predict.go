package count

import (
	"math/big"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Prediction is the conjectured minimal cogwheel cycle for one pathway.
type Prediction struct {
	// NScans is the predicted minimal number of scans. It is exact when
	// Exact is set.
	NScans int `json:"n_scans"`

	// Exact reports that the winding differences share no common divisor,
	// in which case Differences is a valid cycle of NScans scans.
	Exact bool `json:"exact"`

	// Differences holds the winding number differences between adjacent
	// blocks, reduced mod NScans. Nil unless Exact.
	Differences []int `json:"differences,omitempty"`
}

// PredictCogwheel predicts the minimal cogwheel cycle that selects the
// pathway with coherence orders p0 between the blocks, out of all
// pathways with |p| ≤ pmax at every position. A single pmax value applies
// to every position. With symmetrical, the mirrored pathway (all
// coherences negated except the last) is selected as well.
//
// The prediction follows the cogwheel conjectures of Hughes, Carravetta
// and Levitt (J. Magn. Reson. 167, 2004). With q_i = pmax_i + 1 - |p0_i|
// and Q = Πq_i:
//
//	N = Q·(1 + 2·Σ|p0_i|/q_i)   or   N = 2Q·Σ|p0_i|/q_i when symmetrical
//	ζ_i = sign(p0_i)·Q/q_i      (sign(0) = +1)
func PredictCogwheel(p0, pmax []int, symmetrical bool) (Prediction, error) {
	if len(p0) == 0 {
		return Prediction{}, cerrors.Shape("pathway has no coherence orders")
	}
	switch len(pmax) {
	case len(p0):
	case 1:
		all := make([]int, len(p0))
		for i := range all {
			all[i] = pmax[0]
		}
		pmax = all
	default:
		return Prediction{}, cerrors.Shape("pmax has %d entries, want 1 or %d", len(pmax), len(p0))
	}

	q := make([]int64, len(p0))
	Q := big.NewInt(1)
	for i, p := range p0 {
		q[i] = int64(pmax[i] + 1 - abs(p))
		if q[i] < 1 {
			return Prediction{}, cerrors.Range("|p0[%d]| = %d exceeds pmax %d", i, abs(p), pmax[i])
		}
		Q.Mul(Q, big.NewInt(q[i]))
	}

	// Q/q_i is exact, so N is an integer.
	zeta := make([]*big.Int, len(p0))
	sum := new(big.Int)
	for i, p := range p0 {
		z := new(big.Int).Quo(Q, big.NewInt(q[i]))
		sum.Add(sum, new(big.Int).Mul(z, big.NewInt(int64(abs(p)))))
		if p < 0 {
			z.Neg(z)
		}
		zeta[i] = z
	}
	n := new(big.Int).Lsh(sum, 1)
	if !symmetrical {
		n.Add(n, Q)
	}
	if !n.IsInt64() || n.Int64() > int64(maxInt) {
		return Prediction{}, cerrors.Range("predicted scan count %s overflows", n)
	}
	if n.Sign() == 0 {
		return Prediction{}, cerrors.Range("pathway %v predicts an empty cycle", p0)
	}
	pred := Prediction{NScans: int(n.Int64())}

	// No common divisor: lcm(|ζ|) equals Π|ζ|.
	lcm := big.NewInt(1)
	prod := big.NewInt(1)
	for _, z := range zeta {
		a := new(big.Int).Abs(z)
		g := new(big.Int).GCD(nil, nil, lcm, a)
		lcm.Mul(lcm, a).Quo(lcm, g)
		prod.Mul(prod, a)
	}
	if lcm.Cmp(prod) != 0 {
		return pred, nil
	}
	pred.Exact = true
	pred.Differences = make([]int, len(zeta))
	for i, z := range zeta {
		pred.Differences[i] = int(new(big.Int).Mod(z, n).Int64())
	}
	return pred, nil
}

const maxInt = int(^uint(0) >> 1)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
