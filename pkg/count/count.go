// Package count gives closed-form sizes of the phase cycle search spaces.
//
// The counts match the number of tuples the counters in package counter
// visit under the no-inverse and last-zero policies. Common-factor
// filtering has no closed form and is not counted.
//
// Counts grow as N^blocks and quickly leave the int64 range, so every
// function returns a *big.Int.
package count

import (
	"math/big"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Cogwheels returns the number of cogwheel cycles of n scans over blocks
// blocks:
//
//	no inverse:  (n^b + (2 - n%2)^b)/2 - 1
//	otherwise:   n^b - 1
//
// where b is blocks, reduced by one under lastZero.
func Cogwheels(n, blocks int, lastZero, noInverse bool) (*big.Int, error) {
	if n < 2 {
		return nil, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	if blocks < 1 {
		return nil, cerrors.Range("number of blocks must be at least 1, got %d", blocks)
	}
	return cogwheels(n, blocks, lastZero, noInverse), nil
}

func cogwheels(n, blocks int, lastZero, noInverse bool) *big.Int {
	b := int64(blocks)
	if lastZero {
		b--
	}
	total := pow(int64(n), b)
	if noInverse {
		total.Add(total, pow(int64(2-n%2), b))
		total.Rsh(total, 1)
	}
	return total.Sub(total, big.NewInt(1))
}

// Nested returns the number of nested cycles of n scans over blocks
// blocks. Every factorization of n into k ≤ 2^blocks-1 factors contributes
// its distinct orderings times the k-combinations of the non-empty block
// subsets.
func Nested(n, blocks int) (*big.Int, error) {
	if n < 2 {
		return nil, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	if blocks < 1 || blocks >= 63 {
		return nil, cerrors.Range("number of blocks must be in [1,62], got %d", blocks)
	}
	picks := int64(1)<<blocks - 1
	maxFactors := int(min(picks, int64(64)))

	total := new(big.Int)
	for _, row := range counter.Factorizations(n, maxFactors) {
		active := counter.ActiveFactors(row)
		perms := multinomial(active)
		total.Add(total, perms.Mul(perms, new(big.Int).Binomial(picks, int64(len(active)))))
	}
	return total, nil
}

// Nestcogs returns the number of nested cogwheel cycles with the given
// sub-cycle lengths. Lengths of 1 are ignored. Equal lengths pick distinct
// windings, so each distinct length L used m times contributes
// C(Cogwheels(L), m). A factorization without any length above 1 has no
// cycles.
func Nestcogs(lengths []int, blocks int, lastZero, noInverse bool) (*big.Int, error) {
	if blocks < 1 {
		return nil, cerrors.Range("number of blocks must be at least 1, got %d", blocks)
	}
	mult := make(map[int]int64)
	for _, l := range lengths {
		if l < 1 {
			return nil, cerrors.Range("sub-cycle lengths must be at least 1, got %d", l)
		}
		if l > 1 {
			mult[l]++
		}
	}
	if len(mult) == 0 {
		return new(big.Int), nil
	}
	total := big.NewInt(1)
	for l, m := range mult {
		total.Mul(total, binomial(cogwheels(l, blocks, lastZero, noInverse), m))
	}
	return total, nil
}

// NestcogsTotal sums Nestcogs over every factorization of n with at most
// maxFactors factors. Zero maxFactors means no cap.
func NestcogsTotal(n, blocks int, lastZero, noInverse bool, maxFactors int) (*big.Int, error) {
	if n < 2 {
		return nil, cerrors.Range("number of scans must be at least 2, got %d", n)
	}
	total := new(big.Int)
	for _, row := range counter.Factorizations(n, maxFactors) {
		c, err := Nestcogs(row, blocks, lastZero, noInverse)
		if err != nil {
			return nil, err
		}
		total.Add(total, c)
	}
	return total, nil
}

func pow(x, e int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(x), big.NewInt(e), nil)
}

// binomial returns C(n, k) for a big n and small k, or 0 when k > n.
func binomial(n *big.Int, k int64) *big.Int {
	if n.Cmp(big.NewInt(k)) < 0 {
		return new(big.Int)
	}
	acc := big.NewInt(1)
	term := new(big.Int)
	for j := int64(0); j < k; j++ {
		term.Sub(n, big.NewInt(j))
		acc.Mul(acc, term)
		acc.Quo(acc, big.NewInt(j+1))
	}
	return acc
}

// multinomial returns the number of distinct orderings of values.
func multinomial(values []int) *big.Int {
	mult := make(map[int]int64)
	for _, v := range values {
		mult[v]++
	}
	acc := big.NewInt(1)
	seen := int64(0)
	for _, m := range mult {
		seen += m
		acc.Mul(acc, new(big.Int).Binomial(seen, m))
	}
	return acc
}
