package pipeline

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/cache"
	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
	"github.com/matzehuels/cyclesearch/pkg/observability"
)

func twoBlock() *ctp.Descriptor {
	return &ctp.Descriptor{Name: "two block", Wanted: 1, Pathways: [][]int{{1, 1}, {1, -1}}}
}

// memCache is an in-memory cache.Cache that counts operations.
type memCache struct {
	mu         sync.Mutex
	data       map[string][]byte
	gets, sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Descriptor: twoBlock()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Family != DefaultFamily {
		t.Errorf("Family = %s, want %s", opts.Family, DefaultFamily)
	}
	if opts.Search.MaxScans != DefaultMaxScans || opts.Search.MinScans != 2 || opts.Search.NFind != 1 {
		t.Errorf("search defaults = %+v", opts.Search)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Second call should be idempotent
	opts.Search.MaxScans = 1
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v", err)
	}
}

func TestOptionsValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code cerrors.Code
	}{
		{"no descriptor", Options{Family: search.FamilyCogwheel}, cerrors.ErrCodeInvalidInput},
		{"bad family", Options{Family: "spiral", Descriptor: twoBlock()}, cerrors.ErrCodeInvalidFamily},
		{"ragged", Options{Descriptor: &ctp.Descriptor{Wanted: 1, Pathways: [][]int{{1, 1}, {1}}}}, cerrors.ErrCodeShape},
		{"bad range", Options{Descriptor: twoBlock(), Search: search.Options{MinScans: 9, MaxScans: 4}}, cerrors.ErrCodeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !cerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestNewOptions(t *testing.T) {
	opts := NewOptions(search.FamilyNestcog, twoBlock())
	if opts.Search.MaxScans != DefaultMaxScans || !opts.Search.Policy.NoCommonFactorAmongWindings {
		t.Errorf("NewOptions = %+v", opts.Search)
	}
}

func TestKeyOpts(t *testing.T) {
	a := NewOptions(search.FamilyCogwheel, twoBlock())
	b := a
	b.Search.Policy.LastZero = true
	if a.KeyOpts() != b.KeyOpts() {
		t.Error("Policy.LastZero should not change the key")
	}

	dq := &ctp.Descriptor{Wanted: 1, Pathways: [][]int{{1, -1}, {-1, 1}}}
	c := NewOptions(search.FamilyCogwheel, dq)
	if !c.KeyOpts().LastZero {
		t.Error("auto last_zero should be part of the key")
	}
	c.Family = search.FamilyNested
	if c.KeyOpts().LastZero {
		t.Error("nested keys never pin the last block")
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	opts := NewOptions(search.FamilyCogwheel, twoBlock())
	opts.Search.MaxScans = 8

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.SearchHit {
		t.Error("first run should miss the cache")
	}
	if first.Search.NScans != 3 || !reflect.DeepEqual(first.Search.Windings(), [][]int{{2, 1}}) {
		t.Errorf("result = %+v", first.Search)
	}
	if len(first.RunID) != 36 || len(first.DescriptorHash) != 64 {
		t.Errorf("RunID %q, DescriptorHash %q", first.RunID, first.DescriptorHash)
	}
	if mc.sets != 1 {
		t.Errorf("cache sets = %d, want 1", mc.sets)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SearchHit {
		t.Error("second run should hit the cache")
	}
	if !reflect.DeepEqual(second.Search.Cycles, first.Search.Cycles) {
		t.Errorf("cached cycles = %v, want %v", second.Search.Cycles, first.Search.Cycles)
	}
	if second.RunID == first.RunID {
		t.Error("every run gets its own ID")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SearchHit || mc.sets != 2 {
		t.Errorf("refresh: hit %v, sets %d", third.CacheInfo.SearchHit, mc.sets)
	}
}

func TestRunnerDistinctKeys(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, nil)

	opts := NewOptions(search.FamilyCogwheel, twoBlock())
	opts.Search.MaxScans = 8
	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Search.NFind = 3
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.SearchHit {
		t.Error("a different n_find must not share a cache entry")
	}
	if len(mc.data) != 2 {
		t.Errorf("cache entries = %d, want 2", len(mc.data))
	}
}

func TestRunnerArchive(t *testing.T) {
	ctx := context.Background()
	store, err := archive.NewFileStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, nil)
	r.Archive = store
	defer r.Close()

	opts := NewOptions(search.FamilyNested, twoBlock())
	opts.Search.MaxScans = 4
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.Archived {
		t.Fatal("run was not archived")
	}
	rec, err := store.Get(ctx, res.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Family != "nested" || rec.DescriptorHash != res.DescriptorHash || rec.Name != "two block" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Exhausted != res.Search.Exhausted || rec.NScans != res.Search.NScans {
		t.Errorf("record outcome = %+v, result = %+v", rec, res.Search)
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Family: "spiral", Descriptor: twoBlock()})
	if !cerrors.Is(err, cerrors.ErrCodeInvalidFamily) {
		t.Errorf("error = %v, want INVALID_FAMILY", err)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(ctx, NewOptions(search.FamilyCogwheel, twoBlock()))
	if err == nil {
		t.Fatal("cancelled run should fail")
	}
}

type recordingHooks struct {
	observability.NoopSearchHooks
	observability.NoopCacheHooks
	starts, scans, completes int
	filled                   int
	hits, misses             int
}

func (h *recordingHooks) OnSearchStart(context.Context, string, int) { h.starts++ }
func (h *recordingHooks) OnScanCount(context.Context, string, int)   { h.scans++ }
func (h *recordingHooks) OnFill(_ context.Context, _ string, n int)  { h.filled += n }
func (h *recordingHooks) OnSearchComplete(context.Context, string, int, int, time.Duration, error) {
	h.completes++
}
func (h *recordingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *recordingHooks) OnCacheMiss(context.Context, string) { h.misses++ }

func TestRunnerHooksAndProgress(t *testing.T) {
	h := &recordingHooks{}
	observability.SetSearchHooks(h)
	observability.SetCacheHooks(h)
	defer observability.Reset()

	var events []search.Event
	opts := NewOptions(search.FamilyCogwheel, twoBlock())
	opts.Search.MaxScans = 8
	opts.Search.Progress = func(p search.Progress) { events = append(events, p.Event) }

	r := NewRunner(newMemCache(), nil, nil)
	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	want := []search.Event{search.EventScan, search.EventDone, search.EventScan, search.EventFound}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if h.starts != 1 || h.completes != 1 || h.scans != 2 || h.misses != 1 {
		t.Errorf("hooks = %+v", h)
	}
	if int64(h.filled) != res.Search.Stats.Candidates {
		t.Errorf("filled = %d, want %d", h.filled, res.Search.Stats.Candidates)
	}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if h.hits != 1 || h.starts != 1 {
		t.Errorf("cached run: hits %d, starts %d", h.hits, h.starts)
	}
}

var _ cache.Cache = (*memCache)(nil)
