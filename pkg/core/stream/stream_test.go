package stream

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

func testCounters(t *testing.T) map[string]counter.Counter {
	t.Helper()
	wind, err := counter.NewWinding(5, 3, counter.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	cf, err := counter.NewWinding(6, 3, counter.Policy{NoInverse: true, NoCommonFactorWithScans: true})
	if err != nil {
		t.Fatal(err)
	}
	nest, err := counter.NewNestcog(12, 2, counter.DefaultPolicy(), 0)
	if err != nil {
		t.Fatal(err)
	}
	perm, err := counter.NewPermutation([]int{2, 2, 3, 5}, 0)
	if err != nil {
		t.Fatal(err)
	}
	comb, err := counter.NewCombination(7, 3)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]counter.Counter{
		"winding":    wind,
		"winding cf": cf,
		"nestcog":    nest,
		"product":    counter.Product{Outer: perm, Inner: comb},
	}
}

// drain collects the whole space by chaining fills.
func drain(t *testing.T, c counter.Counter, capacity int, fill func(*Buffer, []int) (Result, error)) ([][]int, int) {
	t.Helper()
	buf, err := NewBuffer(capacity, c.Width())
	if err != nil {
		t.Fatal(err)
	}
	seed, err := counter.Start(c)
	if err != nil {
		t.Fatal(err)
	}
	var out [][]int
	calls := 0
	for {
		res, err := fill(buf, seed)
		if err != nil {
			t.Fatalf("fill error = %v", err)
		}
		calls++
		for i := range res.Filled {
			out = append(out, slices.Clone(buf.Slot(i)))
		}
		seed = res.Next
		if res.Done {
			return out, calls
		}
	}
}

func TestFillChunkingEquivalence(t *testing.T) {
	for name, c := range testCounters(t) {
		all, err := counter.Collect(c)
		if err != nil {
			t.Fatal(err)
		}
		m := len(all)
		for capacity := 1; capacity <= m+1; capacity++ {
			t.Run(fmt.Sprintf("%s/cap=%d", name, capacity), func(t *testing.T) {
				got, calls := drain(t, c, capacity, func(b *Buffer, s []int) (Result, error) {
					return Fill(b, s, c)
				})
				if !slices.EqualFunc(got, all, slices.Equal) {
					t.Fatalf("chunked sequence differs from single steps")
				}
				if want := (m + capacity - 1) / capacity; calls != want {
					t.Errorf("fills = %d, want %d", calls, want)
				}
			})
		}
	}
}

func TestFillWrapSeed(t *testing.T) {
	c, err := counter.NewWinding(4, 2, counter.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	buf, err := NewBuffer(20, 2)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Fill(buf, []int{1, 2}, c)
	if err != nil {
		t.Fatal(err)
	}
	if res.Filled != 2 || !res.Done || !slices.Equal(res.Next, []int{1, 0}) {
		t.Errorf("Fill() = %+v, want 2 filled, done, next [1 0]", res)
	}

	full, err := NewBuffer(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	res, err = Fill(full, []int{1, 2}, c)
	if err != nil {
		t.Fatal(err)
	}
	if res.Filled != 2 || !res.Done || !slices.Equal(res.Next, []int{1, 0}) {
		t.Errorf("Fill(exact) = %+v, want 2 filled, done, next [1 0]", res)
	}
}

func TestParallelFillDeterminism(t *testing.T) {
	for name, c := range testCounters(t) {
		all, err := counter.Collect(c)
		if err != nil {
			t.Fatal(err)
		}
		m := len(all)
		for _, capacity := range []int{1, 2, 3, 5, 7, 16, m - 1, m, m + 1} {
			if capacity < 1 {
				continue
			}
			for workers := 1; workers <= 8; workers++ {
				t.Run(fmt.Sprintf("%s/cap=%d/W=%d", name, capacity, workers), func(t *testing.T) {
					seq, err := NewBuffer(capacity, c.Width())
					if err != nil {
						t.Fatal(err)
					}
					par, err := NewBuffer(capacity, c.Width())
					if err != nil {
						t.Fatal(err)
					}
					seed, err := counter.Start(c)
					if err != nil {
						t.Fatal(err)
					}
					for {
						want, err := Fill(seq, seed, c)
						if err != nil {
							t.Fatal(err)
						}
						got, err := ParallelFill(context.Background(), par, seed, c, workers)
						if err != nil {
							t.Fatalf("ParallelFill() error = %v", err)
						}
						if got.Filled != want.Filled || got.Done != want.Done || !slices.Equal(got.Next, want.Next) {
							t.Fatalf("ParallelFill() = %+v, want %+v", got, want)
						}
						if !slices.Equal(par.Data(), seq.Data()) {
							t.Fatalf("buffers differ from seed %v", seed)
						}
						if want.Done {
							return
						}
						seed = want.Next
					}
				})
			}
		}
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		parts    []Part
		capacity int
		want     Merged
		wantErr  bool
	}{
		{
			name:     "full buffer",
			parts:    []Part{{Count: 3}, {Count: 2}, {Count: 2}},
			capacity: 7,
			want:     Merged{Filled: 7, Last: 6},
		},
		{
			name:     "wrapped mid fill",
			parts:    []Part{{2, true}, {2, true}, {2, false}, {2, false}},
			capacity: 10,
			want:     Merged{Filled: 8, Last: 7, Done: true},
		},
		{
			name:     "wrapped after one round",
			parts:    []Part{{1, true}, {1, true}},
			capacity: 5,
			want:     Merged{Filled: 2, Last: 1, Done: true},
		},
		{
			name:     "one worker",
			parts:    []Part{{Count: 4}},
			capacity: 4,
			want:     Merged{Filled: 4, Last: 3},
		},
		{
			name:     "gap in counts",
			parts:    []Part{{3, false}, {3, false}, {1, false}},
			capacity: 7,
			wantErr:  true,
		},
		{
			name:     "overflow with full buffer",
			parts:    []Part{{Count: 3, Overflow: true}, {Count: 2}, {Count: 2}},
			capacity: 7,
			wantErr:  true,
		},
		{
			name:     "missing overflow",
			parts:    []Part{{2, false}, {2, false}},
			capacity: 10,
			wantErr:  true,
		},
		{
			name:     "fewer slots than workers",
			parts:    []Part{{1, true}, {0, false}},
			capacity: 4,
			wantErr:  true,
		},
		{
			name:     "no parts",
			capacity: 4,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.parts, tt.capacity)
			if tt.wantErr {
				if !cerrors.Is(err, cerrors.ErrCodeInternal) {
					t.Errorf("Merge() error = %v, want INTERNAL", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFillShapeErrors(t *testing.T) {
	c, err := counter.NewWinding(4, 2, counter.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	buf, err := NewBuffer(4, 2)
	if err != nil {
		t.Fatal(err)
	}
	wide, err := NewBuffer(4, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		buf  *Buffer
		seed []int
	}{
		{"seed too short", buf, []int{1}},
		{"buffer too wide", wide, []int{1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fill(tt.buf, tt.seed, c); !cerrors.Is(err, cerrors.ErrCodeShape) {
				t.Errorf("Fill() error = %v, want SHAPE", err)
			}
			if _, err := ParallelFill(context.Background(), tt.buf, tt.seed, c, 3); !cerrors.Is(err, cerrors.ErrCodeShape) {
				t.Errorf("ParallelFill() error = %v, want SHAPE", err)
			}
		})
	}
}

var errBoom = errors.New("boom")

// failingCounter fails when it would produce the value failAt.
type failingCounter struct {
	counter.Counter
	failAt int
}

func (f failingCounter) Next(v []int) (counter.Status, error) {
	st, err := f.Counter.Next(v)
	if err == nil && v[0] == f.failAt {
		return st, errBoom
	}
	return st, err
}

func TestParallelFillWorkerError(t *testing.T) {
	base, err := counter.NewWinding(50, 1, counter.Policy{})
	if err != nil {
		t.Fatal(err)
	}
	c := failingCounter{Counter: base, failAt: 30}
	buf, err := NewBuffer(40, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []int{1, 2, 4, 7} {
		if _, err := ParallelFill(context.Background(), buf, []int{1}, c, w); !errors.Is(err, errBoom) {
			t.Errorf("ParallelFill(W=%d) error = %v, want %v", w, err, errBoom)
		}
	}
}

func TestBufferBytes(t *testing.T) {
	buf, err := NewBufferBytes(1024, 4)
	if err != nil {
		t.Fatal(err)
	}
	if want := 1024 / (4 * intBytes); buf.Cap() != want {
		t.Errorf("Cap() = %d, want %d", buf.Cap(), want)
	}
	if CapacityFor(1, 100) != 1 {
		t.Error("CapacityFor() below one slot")
	}
	if got := CapacityFor(1<<62, 1); got != MaxCapacity {
		t.Errorf("CapacityFor(1<<62, 1) = %d, want %d", got, MaxCapacity)
	}
}

func TestNewBufferLimits(t *testing.T) {
	tests := []struct {
		name            string
		capacity, width int
		code            cerrors.Code
	}{
		{"zero capacity", 0, 2, cerrors.ErrCodeRange},
		{"zero width", 4, 0, cerrors.ErrCodeShape},
		{"over limit", MaxCapacity + 1, 1, cerrors.ErrCodeRange},
		{"over limit when wide", MaxCapacity/4 + 1, 4, cerrors.ErrCodeRange},
		{"product overflows", 1 << 62, 8, cerrors.ErrCodeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBuffer(tt.capacity, tt.width); !cerrors.Is(err, tt.code) {
				t.Errorf("NewBuffer(%d, %d) error = %v, want %s", tt.capacity, tt.width, err, tt.code)
			}
		})
	}
}

func TestParallelFillCancelled(t *testing.T) {
	c, err := counter.NewWinding(50, 2, counter.Policy{})
	if err != nil {
		t.Fatal(err)
	}
	buf, err := NewBuffer(100, 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParallelFill(ctx, buf, []int{1, 0}, c, 4); !errors.Is(err, context.Canceled) {
		t.Errorf("ParallelFill() error = %v, want %v", err, context.Canceled)
	}
}

func TestGenerator(t *testing.T) {
	c, err := counter.NewWinding(7, 2, counter.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	all, err := counter.Collect(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []int{0, 1, 3} {
		g := Generator{Counter: c, Workers: w}
		got, _ := drain(t, c, 5, func(b *Buffer, s []int) (Result, error) {
			return g.Fill(context.Background(), b, s)
		})
		if !slices.EqualFunc(got, all, slices.Equal) {
			t.Errorf("Generator(W=%d) sequence differs", w)
		}
	}
}
