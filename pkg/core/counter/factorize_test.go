package counter

import (
	"fmt"
	"slices"
	"testing"
)

func TestPrimeFactors(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{1, nil},
		{2, []int{2}},
		{12, []int{2, 2, 3}},
		{49, []int{7, 7}},
		{360, []int{2, 2, 2, 3, 3, 5}},
		{97, []int{97}},
		{143, []int{11, 13}},
	}
	for _, tt := range tests {
		if got := PrimeFactors(tt.n); !slices.Equal(got, tt.want) {
			t.Errorf("PrimeFactors(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestFactorizations(t *testing.T) {
	tests := []struct {
		n, max int
		want   [][]int
	}{
		{1, 0, [][]int{{1}}},
		{7, 0, [][]int{{7}}},
		{12, 0, [][]int{{2, 2, 3}, {3, 4, 1}, {2, 6, 1}, {12, 1, 1}}},
		{12, 2, [][]int{{3, 4}, {2, 6}, {12, 1}}},
		{16, 0, [][]int{
			{2, 2, 2, 2},
			{2, 2, 4, 1},
			{4, 4, 1, 1}, {2, 8, 1, 1},
			{16, 1, 1, 1},
		}},
		{30, 0, [][]int{
			{2, 3, 5},
			{5, 6, 1}, {3, 10, 1}, {2, 15, 1},
			{30, 1, 1},
		}},
		// later rows repeat earlier merges and keep the first position
		{36, 0, [][]int{
			{2, 2, 3, 3},
			{3, 3, 4, 1}, {2, 3, 6, 1}, {2, 2, 9, 1},
			{4, 9, 1, 1}, {3, 12, 1, 1}, {6, 6, 1, 1}, {2, 18, 1, 1},
			{36, 1, 1, 1},
		}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/max=%d", tt.n, tt.max), func(t *testing.T) {
			got := Factorizations(tt.n, tt.max)
			if !slices.EqualFunc(got, tt.want, slices.Equal) {
				t.Errorf("Factorizations(%d, %d) = %v, want %v", tt.n, tt.max, got, tt.want)
			}
		})
	}
}

func TestFactorizationsProducts(t *testing.T) {
	for n := 2; n <= 128; n++ {
		rows := Factorizations(n, 0)
		seen := make(map[string]bool)
		for _, row := range rows {
			p := 1
			for i, f := range row {
				p *= f
				if i > 0 && f != 1 && f < row[i-1] {
					t.Errorf("n=%d: row %v not ascending", n, row)
				}
			}
			if p != n {
				t.Errorf("n=%d: row %v has product %d", n, row, p)
			}
			key := fmt.Sprint(row)
			if seen[key] {
				t.Errorf("n=%d: row %v repeated", n, row)
			}
			seen[key] = true
		}
		if last := rows[len(rows)-1]; last[0] != n {
			t.Errorf("n=%d: last row %v, want [%d 1 ...]", n, last, n)
		}
	}
}

func TestActiveFactors(t *testing.T) {
	tests := []struct {
		row, want []int
	}{
		{[]int{2, 6, 1}, []int{2, 6}},
		{[]int{2, 2, 3}, []int{2, 2, 3}},
		{[]int{1}, []int{1}},
	}
	for _, tt := range tests {
		if got := ActiveFactors(tt.row); !slices.Equal(got, tt.want) {
			t.Errorf("ActiveFactors(%v) = %v, want %v", tt.row, got, tt.want)
		}
	}
}
