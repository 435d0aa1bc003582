package count

import (
	"fmt"
	"math/big"
	"slices"
	"testing"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

func TestCogwheels(t *testing.T) {
	tests := []struct {
		n, blocks           int
		lastZero, noInverse bool
		want                int64
	}{
		{4, 2, false, true, 9},
		{3, 2, false, true, 4},
		{2, 2, false, true, 3},
		{3, 2, false, false, 8},
		{3, 3, true, true, 4},
		{5, 1, false, true, 2},
		{2, 1, true, false, 0},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("n=%d/b=%d/lz=%v/ni=%v", tt.n, tt.blocks, tt.lastZero, tt.noInverse)
		t.Run(name, func(t *testing.T) {
			got, err := Cogwheels(tt.n, tt.blocks, tt.lastZero, tt.noInverse)
			if err != nil {
				t.Fatal(err)
			}
			if got.Int64() != tt.want {
				t.Errorf("Cogwheels() = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestCogwheelsMatchesCounter(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for blocks := 1; blocks <= 3; blocks++ {
			for _, p := range []counter.Policy{{}, {NoInverse: true}, {LastZero: true}, {LastZero: true, NoInverse: true}} {
				if p.LastZero && blocks < 2 {
					continue
				}
				c, err := counter.NewWinding(n, blocks, p)
				if err != nil {
					t.Fatal(err)
				}
				all, err := counter.Collect(c)
				if err != nil {
					t.Fatal(err)
				}
				got, _ := Cogwheels(n, blocks, p.LastZero, p.NoInverse)
				if got.Int64() != int64(len(all)) {
					t.Errorf("n=%d blocks=%d %s: Cogwheels() = %s, counter visits %d", n, blocks, p, got, len(all))
				}
			}
		}
	}
}

func TestCogwheelsLarge(t *testing.T) {
	got, err := Cogwheels(1000, 10, false, false)
	if err != nil {
		t.Fatal(err)
	}
	want := new(big.Int).Exp(big.NewInt(1000), big.NewInt(10), nil)
	want.Sub(want, big.NewInt(1))
	if got.Cmp(want) != 0 {
		t.Errorf("Cogwheels(1000, 10) = %s, want %s", got, want)
	}
}

func TestNested(t *testing.T) {
	tests := []struct {
		n, blocks int
		want      int64
	}{
		{2, 2, 3},
		{4, 2, 6},
		{12, 2, 18},
		{5, 1, 1},
		{4, 1, 1}, // only [4]: one subset cannot feed two sub-cycles
	}
	for _, tt := range tests {
		got, err := Nested(tt.n, tt.blocks)
		if err != nil {
			t.Fatal(err)
		}
		if got.Int64() != tt.want {
			t.Errorf("Nested(%d, %d) = %s, want %d", tt.n, tt.blocks, got, tt.want)
		}
	}
}

// nestedVisits counts the tuples the nested search enumerates for n.
func nestedVisits(t *testing.T, n, blocks int) int {
	t.Helper()
	picks := 1<<blocks - 1
	total := 0
	for _, row := range counter.Factorizations(n, picks) {
		perm, err := counter.NewFactorPermutation(row)
		if err != nil {
			t.Fatal(err)
		}
		comb, err := counter.NewCombination(picks, perm.Width()-perm.Sentinels())
		if err != nil {
			t.Fatal(err)
		}
		all, err := counter.Collect(counter.Product{Outer: perm, Inner: comb})
		if err != nil {
			t.Fatal(err)
		}
		total += len(all)
	}
	return total
}

func TestNestedMatchesCounter(t *testing.T) {
	for n := 2; n <= 24; n++ {
		for blocks := 1; blocks <= 3; blocks++ {
			got, _ := Nested(n, blocks)
			if want := nestedVisits(t, n, blocks); got.Int64() != int64(want) {
				t.Errorf("Nested(%d, %d) = %s, enumeration visits %d", n, blocks, got, want)
			}
		}
	}
}

func TestNestcogs(t *testing.T) {
	tests := []struct {
		lengths []int
		blocks  int
		want    int64
	}{
		{[]int{2, 2}, 2, 3},
		{[]int{4, 1}, 2, 9},
		{[]int{2, 2}, 1, 0},
		{[]int{1, 1}, 2, 0},
		{[]int{2, 3}, 2, 12},
	}
	for _, tt := range tests {
		got, err := Nestcogs(tt.lengths, tt.blocks, false, true)
		if err != nil {
			t.Fatal(err)
		}
		if got.Int64() != tt.want {
			t.Errorf("Nestcogs(%v, %d) = %s, want %d", tt.lengths, tt.blocks, got, tt.want)
		}
	}
}

func TestNestcogsTotalMatchesCounter(t *testing.T) {
	policies := []counter.Policy{{NoInverse: true}, {}, {LastZero: true, NoInverse: true}}
	for n := 2; n <= 16; n++ {
		for blocks := 2; blocks <= 3; blocks++ {
			for _, p := range policies {
				for _, maxFactors := range []int{0, 2} {
					c, err := counter.NewNestcog(n, blocks, p, maxFactors)
					if err != nil {
						t.Fatal(err)
					}
					all, err := counter.Collect(c)
					if err != nil {
						t.Fatal(err)
					}
					got, _ := NestcogsTotal(n, blocks, p.LastZero, p.NoInverse, maxFactors)
					if got.Int64() != int64(len(all)) {
						t.Errorf("n=%d blocks=%d %s max=%d: NestcogsTotal() = %s, counter visits %d",
							n, blocks, p, maxFactors, got, len(all))
					}
				}
			}
		}
	}
}

func TestCountErrors(t *testing.T) {
	if _, err := Cogwheels(1, 2, false, false); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("Cogwheels(1) error = %v", err)
	}
	if _, err := Cogwheels(4, 0, false, false); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("Cogwheels(blocks=0) error = %v", err)
	}
	if _, err := Nested(0, 2); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("Nested(0) error = %v", err)
	}
	if _, err := Nestcogs([]int{0, 2}, 2, false, false); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("Nestcogs(0) error = %v", err)
	}
}

func TestPredictCogwheel(t *testing.T) {
	tests := []struct {
		name        string
		p0, pmax    []int
		symmetrical bool
		want        Prediction
	}{
		{"single", []int{-1}, []int{1}, false, Prediction{NScans: 3, Exact: true, Differences: []int{2}}},
		{"double quantum", []int{2}, []int{2}, false, Prediction{NScans: 5, Exact: true, Differences: []int{1}}},
		{"two orders", []int{1, 2}, []int{2}, false, Prediction{NScans: 12, Exact: true, Differences: []int{1, 2}}},
		{"common divisor", []int{0, 0}, []int{1}, false, Prediction{NScans: 4}},
		{"symmetrical", []int{1}, []int{1}, true, Prediction{NScans: 2, Exact: true, Differences: []int{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PredictCogwheel(tt.p0, tt.pmax, tt.symmetrical)
			if err != nil {
				t.Fatal(err)
			}
			if got.NScans != tt.want.NScans || got.Exact != tt.want.Exact || !slices.Equal(got.Differences, tt.want.Differences) {
				t.Errorf("PredictCogwheel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPredictCogwheelErrors(t *testing.T) {
	if _, err := PredictCogwheel(nil, []int{1}, false); !cerrors.Is(err, cerrors.ErrCodeShape) {
		t.Errorf("empty p0 error = %v", err)
	}
	if _, err := PredictCogwheel([]int{1, 1}, []int{1, 1, 1}, false); !cerrors.Is(err, cerrors.ErrCodeShape) {
		t.Errorf("pmax size error = %v", err)
	}
	if _, err := PredictCogwheel([]int{3}, []int{2}, false); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("|p0| > pmax error = %v", err)
	}
	if _, err := PredictCogwheel([]int{0}, []int{1}, true); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("empty symmetrical cycle error = %v", err)
	}
}

func ExampleCogwheels() {
	n, _ := Cogwheels(8, 3, false, true)
	fmt.Println(n)
	// Output: 259
}
