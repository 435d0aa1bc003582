package search

import (
	"context"
	"runtime"
	"testing"

	"github.com/matzehuels/cyclesearch/pkg/core/stream"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

func TestValidateResourceLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		ok     bool
	}{
		{"defaults", func(o *Options) {}, true},
		{"max workers", func(o *Options) { o.Workers = MaxWorkers }, true},
		{"too many workers", func(o *Options) { o.Workers = MaxWorkers + 1 }, false},
		{"max capacity", func(o *Options) { o.Capacity = stream.MaxCapacity }, true},
		{"capacity over limit", func(o *Options) { o.Capacity = stream.MaxCapacity + 1 }, false},
		{"huge capacity", func(o *Options) { o.Capacity = 1 << 62 }, false},
		{"max buffer", func(o *Options) { o.BufferBytes = stream.MaxBufferBytes }, true},
		{"buffer over limit", func(o *Options) { o.BufferBytes = stream.MaxBufferBytes + 1 }, false},
		{"negative buffer", func(o *Options) { o.BufferBytes = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(FamilyCogwheel, 8)
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if tt.ok && err != nil {
				t.Errorf("ValidateAndSetDefaults() error = %v", err)
			}
			if !tt.ok && !cerrors.Is(err, cerrors.ErrCodeRange) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want RANGE", err)
			}
		})
	}
}

func TestHugeCapacityIsRejected(t *testing.T) {
	d := mustDescriptor(t, twoBlock, 1)
	opts := DefaultOptions(FamilyCogwheel, 8)
	opts.Capacity = 1 << 62
	if _, err := Cogwheel(context.Background(), d, opts); !cerrors.Is(err, cerrors.ErrCodeRange) {
		t.Errorf("Cogwheel() error = %v, want RANGE", err)
	}
}

func TestCapacityFitsBufferBytes(t *testing.T) {
	d := mustDescriptor(t, doubleQuantum, 2)
	opts := DefaultOptions(FamilyCogwheel, 8)
	opts.Capacity = stream.MaxCapacity
	opts.BufferBytes = 1 << 10
	res, err := Cogwheel(context.Background(), d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if want := stream.CapacityFor(1<<10, 3); res.Stats.Capacity != want {
		t.Errorf("Stats.Capacity = %d, want %d", res.Stats.Capacity, want)
	}
}

func TestSetDefaultsWorkers(t *testing.T) {
	var opts Options
	opts.SetDefaults()
	if opts.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers = %d, want GOMAXPROCS", opts.Workers)
	}
	if opts.BufferBytes != DefaultBufferBytes {
		t.Errorf("BufferBytes = %d, want %d", opts.BufferBytes, DefaultBufferBytes)
	}
}
