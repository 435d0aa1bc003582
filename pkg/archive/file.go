package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// maxLine bounds a single JSONL record. Nestcog records with many cycles
// can be long.
const maxLine = 16 << 20

// FileStore appends records to a JSON Lines file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens the archive at path, creating its directory.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

// Path returns the archive file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Put(_ context.Context, r *Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	var found *Record
	err := s.scan(func(r *Record) bool {
		if r.ID == id {
			found = r
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound(id)
	}
	return found, nil
}

func (s *FileStore) List(ctx context.Context, f Filter) ([]*Record, error) {
	var out []*Record
	err := s.scan(func(r *Record) bool {
		if f.match(r) {
			out = append(out, r)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// scan calls fn for every record in file order until fn returns false.
// A missing file holds no records.
func (s *FileStore) scan(fn func(*Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64<<10), maxLine)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "%s:%d: corrupt record", s.path, line)
		}
		if !fn(&r) {
			return nil
		}
	}
	return sc.Err()
}

var _ Store = (*FileStore)(nil)
