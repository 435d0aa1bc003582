package oracle

import (
	"slices"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

func mustTable(t *testing.T, rows [][]int, wanted int) *Table {
	t.Helper()
	tab, err := NewTable(rows, wanted)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return tab
}

// threePulse is a double-quantum filter style table with two desired and
// four undesired pathways over three blocks.
var threePulse = [][]int{
	{1, -2, 1},
	{-1, 2, -1},
	{1, 0, -1},
	{-1, 0, 1},
	{1, -1, 0},
	{0, 1, -1},
}

func TestCogwheel(t *testing.T) {
	tab := mustTable(t, [][]int{{1, 1}, {1, -1}}, 1)

	tests := []struct {
		name string
		n    int
		w    []int
		want Verdict
	}{
		{"valid", 3, []int{2, 1}, Valid},
		{"blocks wanted", 3, []int{1, 0}, BlocksWanted},
		{"passes unwanted", 2, []int{1, 1}, PassesUnwanted},
		{"valid larger", 4, []int{3, 1}, Valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cogwheel(tab, tt.n, tt.w, false); got != tt.want {
				t.Errorf("Cogwheel(%d, %v) = %v, want %v", tt.n, tt.w, got, tt.want)
			}
		})
	}
}

func TestCogwheelLastZero(t *testing.T) {
	tab := mustTable(t, [][]int{{1, -1, 0}, {1, 1, 5}}, 1)
	// The pinned block is ignored even if the tuple carries junk there.
	if got := Cogwheel(tab, 3, []int{1, 1, 7}, true); got != Valid {
		t.Errorf("Cogwheel(lastZero) = %v, want %v", got, Valid)
	}
	if got := Cogwheel(tab, 3, []int{1, 1, 0}, false); got != Valid {
		t.Errorf("Cogwheel() = %v, want %v", got, Valid)
	}
}

func TestCogwheelResidueInvariance(t *testing.T) {
	tab := mustTable(t, threePulse, 2)
	for n := 2; n <= 9; n++ {
		c, err := counter.NewWinding(n, 3, counter.Policy{})
		if err != nil {
			t.Fatal(err)
		}
		all, err := counter.Collect(c)
		if err != nil {
			t.Fatal(err)
		}
		for _, w := range all {
			want := Cogwheel(tab, n, w, false)
			for _, k := range []int{-2, 1, 3} {
				shifted := make([]int, len(w))
				for i, v := range w {
					shifted[i] = v + k*n*(i+1)
				}
				if got := Cogwheel(tab, n, shifted, false); got != want {
					t.Fatalf("N=%d: Cogwheel(%v) = %v, Cogwheel(%v) = %v", n, w, want, shifted, got)
				}
			}
		}
	}
}

func TestCogwheelPasses(t *testing.T) {
	tab := mustTable(t, [][]int{{1, 1}, {1, -1}, {2, 0}}, 1)
	got := CogwheelPasses(tab, 3, []int{2, 1})
	if want := []bool{true, false, false}; !slices.Equal(got, want) {
		t.Errorf("CogwheelPasses() = %v, want %v", got, want)
	}
}

func TestNestcog(t *testing.T) {
	tab := mustTable(t, [][]int{{1, 1}, {1, -1}, {2, 0}}, 1)

	tests := []struct {
		name    string
		lengths []int
		rows    [][]int
		want    Verdict
	}{
		// both undesired pathways are stopped by the 3-scan sub-cycle
		{"valid", []int{2, 3}, [][]int{{1, 1}, {1, 2}}, Valid},
		{"wanted blocked by one", []int{2, 3}, [][]int{{1, 1}, {1, 0}}, BlocksWanted},
		{"unwanted passes all", []int{2, 2}, [][]int{{1, 1}, {1, 1}}, PassesUnwanted},
		{"inactive ignored", []int{6, 1}, [][]int{{5, 1}, {1, 0}}, Valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nestcog(tab, tt.lengths, tt.rows); got != tt.want {
				t.Errorf("Nestcog() = %v, want %v", got, tt.want)
			}

			flat := slices.Clone(tt.lengths)
			for _, r := range tt.rows {
				flat = append(flat, r...)
			}
			if got := NestcogTuple(tab, len(tt.lengths), flat); got != tt.want {
				t.Errorf("NestcogTuple() = %v, want %v", got, tt.want)
			}
		})
	}

	passes := NestcogPasses(tab, []int{2, 3}, [][]int{{1, 1}, {1, 2}})
	if want := []bool{true, false, false}; !slices.Equal(passes, want) {
		t.Errorf("NestcogPasses() = %v, want %v", passes, want)
	}
}

func TestNestcogTupleMatchesCounter(t *testing.T) {
	tab := mustTable(t, threePulse, 2)
	c, err := counter.NewNestcog(12, 3, counter.DefaultPolicy(), 0)
	if err != nil {
		t.Fatal(err)
	}
	all, err := counter.Collect(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range all {
		lengths, rows := c.Split(v)
		if a, b := NestcogTuple(tab, c.Factors(), v), Nestcog(tab, lengths, rows); a != b {
			t.Fatalf("NestcogTuple(%v) = %v, Nestcog() = %v", v, a, b)
		}
	}
}

func TestPresumMatchesNested(t *testing.T) {
	tab := mustTable(t, threePulse, 2)
	subsets, err := counter.Subsets(3)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPresum(tab, subsets)
	if err != nil {
		t.Fatal(err)
	}
	if p.Subsets() != 7 {
		t.Fatalf("Subsets() = %d, want 7", p.Subsets())
	}
	if got := p.Sum(0, 6); got != 0 {
		t.Errorf("Sum(0, all blocks) = %d, want 0", got)
	}

	for _, lengths := range [][]int{{2}, {4}, {2, 2}, {2, 3}, {3, 4}, {2, 2, 2}} {
		comb, err := counter.NewCombination(len(subsets), len(lengths))
		if err != nil {
			t.Fatal(err)
		}
		idxs, err := counter.Collect(comb)
		if err != nil {
			t.Fatal(err)
		}
		for _, idx := range idxs {
			subs := make([][]int, len(idx))
			for k, j := range idx {
				subs[k] = subsets[j]
			}
			want := Nested(tab, lengths, subs)
			if got := p.Nested(lengths, idx); got != want {
				t.Fatalf("Presum.Nested(%v, %v) = %v, Nested() = %v", lengths, idx, got, want)
			}
		}
	}
}

func TestPresumSkipsPadding(t *testing.T) {
	tab := mustTable(t, [][]int{{1, 2, 3}}, 1)
	p, err := NewPresum(tab, [][]int{{0, 2, -1}, {1, -1, -1}})
	if err != nil {
		t.Fatal(err)
	}
	if p.Sum(0, 0) != 4 || p.Sum(0, 1) != 2 {
		t.Errorf("sums = %d %d, want 4 2", p.Sum(0, 0), p.Sum(0, 1))
	}
	if _, err := NewPresum(tab, nil); !cerrors.Is(err, cerrors.ErrCodeShape) {
		t.Errorf("NewPresum(nil) error = %v, want SHAPE", err)
	}
}

func TestCheck(t *testing.T) {
	tab := mustTable(t, threePulse, 2)
	c, err := counter.NewWinding(16, 3, counter.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	all, err := counter.Collect(c)
	if err != nil {
		t.Fatal(err)
	}
	eval := func(i int) Verdict { return Cogwheel(tab, 16, all[i], false) }

	want := make([]Verdict, len(all))
	Check(want, 1, eval)
	for _, w := range []int{2, 3, 8} {
		got := make([]Verdict, len(all))
		Check(got, w, eval)
		if !slices.Equal(got, want) {
			t.Errorf("Check(W=%d) differs from sequential", w)
		}
	}
	if Count(want) == 0 {
		t.Error("no valid 16-scan cycle for the three-pulse table")
	}
}

func TestCheckBoundsConcurrency(t *testing.T) {
	for _, w := range []int{2, 3, 8} {
		var running, peak atomic.Int32
		seen := make([]atomic.Int32, 10*minChunk+7)
		out := make([]Verdict, len(seen))
		Check(out, w, func(i int) Verdict {
			n := running.Add(1)
			defer running.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			seen[i].Add(1)
			return Valid
		})
		if p := peak.Load(); p > int32(w) {
			t.Errorf("Check(W=%d) ran %d evaluations at once", w, p)
		}
		for i := range seen {
			if n := seen[i].Load(); n != 1 {
				t.Fatalf("Check(W=%d) evaluated candidate %d %d times", w, i, n)
			}
		}
		if Count(out) != len(out) {
			t.Errorf("Check(W=%d) left verdicts unset", w)
		}
	}
}

func TestNewTableErrors(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]int
		wanted int
		code   cerrors.Code
	}{
		{"empty", nil, 0, cerrors.ErrCodeShape},
		{"ragged", [][]int{{1, 2}, {1}}, 1, cerrors.ErrCodeShape},
		{"wanted too large", [][]int{{1, 2}}, 2, cerrors.ErrCodeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.rows, tt.wanted); !cerrors.Is(err, tt.code) {
				t.Errorf("NewTable() error = %v, want %v", err, tt.code)
			}
		})
	}
}

func TestVerdictString(t *testing.T) {
	for v, want := range map[Verdict]string{
		Valid:          "valid",
		BlocksWanted:   "blocks_wanted",
		PassesUnwanted: "passes_unwanted",
		Verdict(9):     "unknown",
	} {
		if got := v.String(); got != want {
			t.Errorf("Verdict(%d).String() = %q, want %q", v, got, want)
		}
	}
}
