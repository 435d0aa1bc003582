package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cyclesearch/pkg/archive"
	"github.com/matzehuels/cyclesearch/pkg/cache"
	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/observability"
)

// keyType labels cache hooks for search results.
const keyType = "search"

// Runner encapsulates search execution with caching and archiving.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends. It doesn't store
// results, so multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Archive archive.Store // nil disables archiving
	Logger  *log.Logger

	// TTL is how long results stay cached. Zero means cache.TTLSearch.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs one search with caching. Cache and archive failures are
// logged and never fail the run.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	descHash, err := cache.HashJSON(opts.Descriptor)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.SearchKey(string(opts.Family), descHash, opts.KeyOpts())

	result := &Result{
		RunID:          uuid.NewString(),
		DescriptorHash: descHash,
	}

	start := time.Now()
	res, hit := r.cached(ctx, key, opts.Refresh)
	if hit {
		result.CacheInfo.SearchHit = true
		logger.Info("cache hit", "family", opts.Family, "key", key)
	} else {
		res, err = r.search(ctx, opts)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				logger.Warn("cache write failed", "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, keyType, len(data))
			}
		}
	}
	result.Search = res
	result.Stats.SearchTime = time.Since(start)

	logger.Info("searched",
		"family", opts.Family,
		"n_scans", res.NScans,
		"cycles", len(res.Cycles),
		"exhausted", res.Exhausted,
		"candidates", res.Stats.Candidates,
		"duration", result.Stats.SearchTime)

	if r.Archive != nil {
		archiveStart := time.Now()
		rec := archive.NewRecord(result.RunID, opts.Descriptor, descHash, opts.Search, res)
		if err := r.Archive.Put(ctx, rec); err != nil {
			logger.Warn("archive write failed", "run", result.RunID, "err", err)
		} else {
			result.CacheInfo.Archived = true
			logger.Debug("archived run", "run", result.RunID)
		}
		result.Stats.ArchiveTime = time.Since(archiveStart)
	}

	return result, nil
}

// cached looks key up unless refresh is set. Undecodable entries are
// treated as misses.
func (r *Runner) cached(ctx context.Context, key string, refresh bool) (*search.Result, bool) {
	if refresh {
		return nil, false
	}
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var res search.Result
		if err := json.Unmarshal(data, &res); err == nil {
			observability.Cache().OnCacheHit(ctx, keyType)
			return &res, true
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

// search runs the engine with metric and log reporting chained in front of
// any caller progress callback.
func (r *Runner) search(ctx context.Context, opts Options) (*search.Result, error) {
	hooks := observability.Search()
	family := string(opts.Family)
	logger := opts.Logger

	sopts := opts.Search
	next := sopts.Progress
	var reported int64
	sopts.Progress = func(p search.Progress) {
		if delta := p.Candidates - reported; delta > 0 {
			hooks.OnFill(ctx, family, int(delta))
			reported = p.Candidates
		}
		switch p.Event {
		case search.EventScan:
			hooks.OnScanCount(ctx, family, p.NScans)
		case search.EventFill:
			logger.Debug("filled", "n_scans", p.NScans, "factors", p.Factors, "filled", p.Filled, "candidates", p.Candidates)
		case search.EventDone:
			logger.Info("no cycle", "n_scans", p.NScans, "candidates", p.Candidates)
		case search.EventFound:
			logger.Info("found", "n_scans", p.NScans, "cycles", p.Found)
		}
		if next != nil {
			next(p)
		}
	}

	start := time.Now()
	hooks.OnSearchStart(ctx, family, opts.Descriptor.Blocks())
	res, err := search.Run(ctx, opts.Family, opts.Descriptor, sopts)
	if err != nil {
		hooks.OnSearchComplete(ctx, family, 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("search: %w", err)
	}
	hooks.OnSearchComplete(ctx, family, res.NScans, len(res.Cycles), time.Since(start), nil)
	return res, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Archive != nil {
		if aerr := r.Archive.Close(); err == nil {
			err = aerr
		}
	}
	return err
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLSearch
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
