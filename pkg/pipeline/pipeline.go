// Package pipeline runs phase cycle searches with caching, metrics and an
// optional run archive.
//
// The CLI and the HTTP server both go through a [Runner] so that cache
// keys, logging and archiving behave the same for every entry point.
//
// # Stages
//
//  1. Validate the descriptor and apply option defaults.
//  2. Look the search up in the cache, keyed by descriptor hash and the
//     options that change the result.
//  3. On a miss, run the search from package search and cache the result.
//  4. Write a record to the archive, when one is configured.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Family:     search.FamilyCogwheel,
//	    Descriptor: d,
//	    Search:     search.DefaultOptions(search.FamilyCogwheel, 64),
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Search.NScans, result.Search.Windings())
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cyclesearch/pkg/cache"
	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxScans is the upper scan bound when none is given.
	DefaultMaxScans = 64

	// DefaultFamily is the cycle family when none is given.
	DefaultFamily = search.FamilyCogwheel
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one search run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Family     search.Family   `json:"family"`
	Descriptor *ctp.Descriptor `json:"ctp"`
	Search     search.Options  `json:"options"`

	// Refresh skips the cache lookup. The new result is still cached.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// NewOptions returns options with the family defaults applied.
func NewOptions(f search.Family, d *ctp.Descriptor) Options {
	return Options{
		Family:     f,
		Descriptor: d,
		Search:     search.DefaultOptions(f, DefaultMaxScans),
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in the archive.
	RunID string `json:"run_id"`

	// Search is the search result, fresh or from the cache.
	Search *search.Result `json:"result"`

	// DescriptorHash is the content hash of the descriptor.
	DescriptorHash string `json:"descriptor_hash"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SearchTime  time.Duration `json:"search_time"`
	ArchiveTime time.Duration `json:"archive_time,omitempty"`
}

// CacheInfo tracks where the result came from and where it went.
type CacheInfo struct {
	SearchHit bool `json:"search_hit"` // result came from cache
	Archived  bool `json:"archived"`   // record written to the archive
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Family == "" {
		o.Family = DefaultFamily
	}
	f, err := search.ParseFamily(string(o.Family))
	if err != nil {
		return err
	}
	o.Family = f

	if o.Descriptor == nil {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "ctp descriptor is required")
	}
	if err := o.Descriptor.Validate(); err != nil {
		return err
	}

	o.SetSearchDefaults()
	if err := o.Search.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetSearchDefaults sets the pipeline-level search defaults.
func (o *Options) SetSearchDefaults() {
	if o.Search.MaxScans == 0 {
		o.Search.MaxScans = DefaultMaxScans
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// KeyOpts returns cache key options for the search.
// The policy's own LastZero flag is ignored by the search and left out.
func (o *Options) KeyOpts() cache.SearchKeyOpts {
	policy := o.Search.Policy
	policy.LastZero = false
	return cache.SearchKeyOpts{
		MinScans:   o.Search.MinScans,
		MaxScans:   o.Search.MaxScans,
		NFind:      o.Search.NFind,
		MaxFactors: o.Search.MaxFactors,
		LastZero:   search.LastZero(o.Family, o.Descriptor, o.Search),
		Policy:     policy.String(),
	}
}
