// Package archive keeps a history of completed searches.
//
// Every pipeline run can be written to a [Store] as a [Record]. Records
// hold the descriptor, the result-affecting options and the cycles found,
// so a past search can be shown again without re-running it.
//
// # Backends
//
//   - [FileStore]: one JSON record per line in a local file, for the CLI.
//   - [MongoStore]: a MongoDB collection, for a shared server deployment.
//
// [Open] picks the backend from a URI: mongodb:// and mongodb+srv:// URIs
// open a MongoStore, anything else is a file path.
package archive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cyclesearch/pkg/core/search"
	"github.com/matzehuels/cyclesearch/pkg/ctp"
	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Record is one archived search.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Family         string          `json:"family" bson:"family"`
	Name           string          `json:"name,omitempty" bson:"name,omitempty"`
	DescriptorHash string          `json:"descriptor_hash" bson:"descriptor_hash"`
	Descriptor     *ctp.Descriptor `json:"ctp" bson:"ctp"`

	MinScans int    `json:"n_scans_min" bson:"n_scans_min"`
	MaxScans int    `json:"n_scans_max" bson:"n_scans_max"`
	NFind    int    `json:"n_find" bson:"n_find"`
	Policy   string `json:"policy" bson:"policy"`

	NScans     int            `json:"n_scans" bson:"n_scans"`
	LastZero   bool           `json:"last_zero" bson:"last_zero"`
	Exhausted  bool           `json:"exhausted" bson:"exhausted"`
	Cycles     []search.Cycle `json:"cycles" bson:"cycles"`
	Candidates int64          `json:"candidates" bson:"candidates"`
	Duration   time.Duration  `json:"duration" bson:"duration"`
}

// NewRecord builds a record from a finished search. The ID is a fresh
// UUID unless id is non-empty.
func NewRecord(id string, d *ctp.Descriptor, descHash string, opts search.Options, res *search.Result) *Record {
	if id == "" {
		id = uuid.NewString()
	}
	return &Record{
		ID:             id,
		CreatedAt:      time.Now().UTC(),
		Family:         string(res.Family),
		Name:           d.Name,
		DescriptorHash: descHash,
		Descriptor:     d,
		MinScans:       opts.MinScans,
		MaxScans:       opts.MaxScans,
		NFind:          opts.NFind,
		Policy:         opts.Policy.String(),
		NScans:         res.NScans,
		LastZero:       res.LastZero,
		Exhausted:      res.Exhausted,
		Cycles:         res.Cycles,
		Candidates:     res.Stats.Candidates,
		Duration:       res.Stats.Duration,
	}
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Family         string
	DescriptorHash string
	// Limit caps the number of records. Zero means no cap.
	Limit int
}

func (f Filter) match(r *Record) bool {
	if f.Family != "" && r.Family != f.Family {
		return false
	}
	if f.DescriptorHash != "" && r.DescriptorHash != f.DescriptorHash {
		return false
	}
	return true
}

// Store persists records.
type Store interface {
	// Put writes a record. Records are never updated.
	Put(ctx context.Context, r *Record) error

	// Get returns the record with the given ID, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns matching records, newest first.
	List(ctx context.Context, f Filter) ([]*Record, error)

	Close() error
}

// DefaultDatabase is the MongoDB database used by Open.
const DefaultDatabase = "cyclesearch"

// Open returns the store for uri.
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case uri == "":
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "archive URI is empty")
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return NewMongoStore(ctx, uri, DefaultDatabase)
	}
	return NewFileStore(strings.TrimPrefix(uri, "file://"))
}

func notFound(id string) error {
	return cerrors.New(cerrors.ErrCodeNotFound, "run %s not found", id)
}
