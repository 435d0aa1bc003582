package search

import (
	"runtime"
	"strings"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
	"github.com/matzehuels/cyclesearch/pkg/core/stream"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Family names a kind of phase cycle.
type Family string

const (
	FamilyCogwheel Family = "cogwheel"
	FamilyNested   Family = "nested"
	FamilyNestcog  Family = "nestcog"
)

// Families lists every supported family.
var Families = []Family{FamilyCogwheel, FamilyNested, FamilyNestcog}

// ParseFamily converts a case-insensitive name to a Family.
func ParseFamily(s string) (Family, error) {
	if err := cerrors.ValidateFamily(s); err != nil {
		return "", err
	}
	return Family(strings.ToLower(s)), nil
}

const (
	// DefaultBufferBytes bounds the candidate buffer of a search.
	DefaultBufferBytes = 32 << 20

	// MaxWorkers caps Options.Workers. A parallel fill steps every worker
	// cursor once per worker, so fill cost grows with the worker count.
	MaxWorkers = 1024
)

// Options configures a search. The zero value is usable after
// SetDefaults, but [DefaultOptions] should be preferred because some
// policy defaults are true.
type Options struct {
	// MinScans and MaxScans bound the scan counts tried, in increasing
	// order. MinScans below 2 is raised to 2.
	MinScans int `json:"n_scans_min"`
	MaxScans int `json:"n_scans_max"`

	// LastZero pins the last block to winding 0. Nil detects it from the
	// pathways. Ignored for nested cycles.
	LastZero *bool `json:"last_zero,omitempty"`

	// Policy holds the remaining symmetry-breaking flags. Its LastZero
	// field is overwritten from LastZero.
	Policy counter.Policy `json:"policy"`

	// NFind is the maximum number of cycles to return. All returned cycles
	// have the smallest scan count for which any was found.
	NFind int `json:"n_find"`

	// MaxFactors caps the number of nestcog sub-cycles. Zero means no cap.
	MaxFactors int `json:"max_factors,omitempty"`

	// Workers is the parallelism for buffer fills and checks. Zero uses
	// GOMAXPROCS.
	Workers int `json:"workers,omitempty"`

	// Capacity is the number of candidates per fill. Zero derives it from
	// BufferBytes. It is lowered to what fits in BufferBytes.
	Capacity int `json:"capacity,omitempty"`

	// BufferBytes bounds the candidate buffer, at most
	// stream.MaxBufferBytes.
	BufferBytes int `json:"buffer_bytes,omitempty"`

	// Verbosity 0 reports progress once per scan count; 2 and above
	// also once per fill.
	Verbosity int `json:"verbosity,omitempty"`

	// Progress, if set, receives progress events on the calling goroutine.
	Progress func(Progress) `json:"-"`
}

// DefaultOptions returns the defaults for a family with the given upper
// scan bound. Nested cogwheel searches also exclude cycles with common
// factors, which removes repeated sub-cycles.
func DefaultOptions(f Family, maxScans int) Options {
	o := Options{
		MinScans: 2,
		MaxScans: maxScans,
		Policy:   counter.DefaultPolicy(),
		NFind:    1,
	}
	if f == FamilyNestcog {
		o.Policy.NoCommonFactorWithScans = true
		o.Policy.NoCommonFactorAmongWindings = true
	}
	return o
}

// SetDefaults fills zero values.
func (o *Options) SetDefaults() {
	if o.MinScans < 2 {
		o.MinScans = 2
	}
	if o.NFind == 0 {
		o.NFind = 1
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.BufferBytes == 0 {
		o.BufferBytes = DefaultBufferBytes
	}
}

// Validate checks the option ranges.
func (o *Options) Validate() error {
	if err := cerrors.ValidateScanRange(o.MinScans, o.MaxScans); err != nil {
		return err
	}
	if o.NFind < 1 {
		return cerrors.Range("n_find must be positive, got %d", o.NFind)
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return cerrors.Range("workers must be in [0,%d], got %d", MaxWorkers, o.Workers)
	}
	if o.Capacity < 0 || o.Capacity > stream.MaxCapacity {
		return cerrors.Range("capacity must be in [0,%d], got %d", stream.MaxCapacity, o.Capacity)
	}
	if o.BufferBytes < 0 || o.BufferBytes > stream.MaxBufferBytes {
		return cerrors.Range("buffer_bytes must be in [0,%d], got %d", stream.MaxBufferBytes, o.BufferBytes)
	}
	if o.MaxFactors < 0 {
		return cerrors.Range("max_factors must not be negative, got %d", o.MaxFactors)
	}
	return nil
}

// ValidateAndSetDefaults applies SetDefaults and then Validate.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}
