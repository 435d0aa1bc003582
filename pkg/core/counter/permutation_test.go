package counter

import (
	"fmt"
	"slices"
	"testing"
)

func TestPermutationSequence(t *testing.T) {
	p, err := NewPermutation([]int{2, 1, 1}, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Collect(p)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{1, 1, 2}, {1, 2, 1}, {2, 1, 1}}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestPermutationCounts(t *testing.T) {
	tests := []struct {
		values []int
		want   int
	}{
		{[]int{5}, 1},
		{[]int{1, 2, 3}, 6},
		{[]int{2, 2, 3}, 3},
		{[]int{2, 2, 2}, 1},
		{[]int{2, 2, 3, 3}, 6},
		{[]int{2, 3, 5, 7}, 24},
		{[]int{2, 2, 3, 3, 3, 5}, 60},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.values), func(t *testing.T) {
			if got := Multinomial(tt.values); got != tt.want {
				t.Errorf("Multinomial() = %d, want %d", got, tt.want)
			}
			p, err := NewPermutation(tt.values, 0)
			if err != nil {
				t.Fatal(err)
			}
			all, err := Collect(p)
			if err != nil {
				t.Fatal(err)
			}
			if len(all) != tt.want {
				t.Errorf("visited %d permutations, want %d", len(all), tt.want)
			}
			for i := 1; i < len(all); i++ {
				if slices.Compare(all[i-1], all[i]) >= 0 {
					t.Fatalf("not strictly increasing: %v then %v", all[i-1], all[i])
				}
			}
		})
	}
}

func TestPermutationSentinels(t *testing.T) {
	p, err := NewFactorPermutation([]int{3, 2, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if p.Sentinels() != 2 {
		t.Errorf("Sentinels() = %d, want 2", p.Sentinels())
	}
	got, err := Collect(p)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]int{{2, 3, 1, 1}, {3, 2, 1, 1}}
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestNewPermutationErrors(t *testing.T) {
	if _, err := NewPermutation([]int{1, 2}, 3); err == nil {
		t.Error("NewPermutation() with too many sentinels succeeded")
	}
	if _, err := NewPermutation([]int{1, 2}, -1); err == nil {
		t.Error("NewPermutation() with negative sentinels succeeded")
	}
}

func TestNextPermutation(t *testing.T) {
	a := []int{3, 2, 1}
	if NextPermutation(a) {
		t.Error("NextPermutation(last) = true, want false")
	}
	if !slices.Equal(a, []int{1, 2, 3}) {
		t.Errorf("after wrap = %v, want [1 2 3]", a)
	}
	if !NextPermutation(a) || !slices.Equal(a, []int{1, 3, 2}) {
		t.Errorf("successor = %v, want [1 3 2]", a)
	}
}
