package counter

import (
	"slices"
)

// PrimeFactors returns the prime factors of n in ascending order, with
// multiplicity. It returns nil for n < 2.
func PrimeFactors(n int) []int {
	var out []int
	if n < 2 {
		return nil
	}
	for _, p := range [2]int{2, 3} {
		for n%p == 0 {
			out = append(out, p)
			n /= p
		}
	}
	for d := 5; d*d <= n; d += 6 {
		for _, p := range [2]int{d, d + 2} {
			for n%p == 0 {
				out = append(out, p)
				n /= p
			}
		}
	}
	if n > 1 {
		out = append(out, n)
	}
	return out
}

// Factorizations returns every multiset factorization of n into factors
// greater than 1, each sorted ascending and padded with trailing 1s.
//
// Rows are ordered by decreasing factor count. Within a factor count they
// appear in the order the pair merges first produce them, so the last row
// is always [n, 1, ..., 1]. The row width is the number of
// prime factors of n, capped at maxFactors when maxFactors > 0;
// factorizations with more factors than that are dropped.
//
//	Factorizations(12, 0) // [2 2 3] [3 4 1] [2 6 1] [12 1 1]
func Factorizations(n, maxFactors int) [][]int {
	if n < 1 {
		return nil
	}
	primes := PrimeFactors(n)
	if len(primes) == 0 {
		return [][]int{{1}}
	}
	width := len(primes)
	if maxFactors > 0 && maxFactors < width {
		width = maxFactors
	}

	var out [][]int
	layer := [][]int{primes}
	for len(layer) > 0 {
		for _, f := range layer {
			if len(f) > width {
				continue
			}
			row := make([]int, width)
			copy(row, f)
			for i := len(f); i < width; i++ {
				row[i] = 1
			}
			out = append(out, row)
		}
		layer = mergeLayer(layer)
	}
	return out
}

// mergeLayer multiplies every pair of factors in every factorization of the
// layer, giving the distinct factorizations with one factor fewer. Rows of
// the layer are merged in order, pairs (i, j) in increasing i then j, and
// each result is kept at its first occurrence.
func mergeLayer(layer [][]int) [][]int {
	if len(layer) == 0 || len(layer[0]) < 2 {
		return nil
	}
	var next [][]int
	for _, f := range layer {
		for i := 0; i < len(f); i++ {
			for j := i + 1; j < len(f); j++ {
				m := make([]int, 0, len(f)-1)
				for k, v := range f {
					if k != i && k != j {
						m = append(m, v)
					}
				}
				m = append(m, f[i]*f[j])
				slices.Sort(m)
				if !slices.ContainsFunc(next, func(r []int) bool { return slices.Equal(r, m) }) {
					next = append(next, m)
				}
			}
		}
	}
	return next
}

// ActiveFactors returns the prefix of a padded factorization row that holds
// factors greater than 1. A row of all 1s yields its first entry.
func ActiveFactors(row []int) []int {
	k := len(row)
	for k > 1 && row[k-1] == 1 {
		k--
	}
	return row[:k]
}
