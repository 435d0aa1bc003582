package ctp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	cerrors "github.com/matzehuels/cyclesearch/pkg/errors"
)

// Format is a descriptor file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension. Anything other than
// .toml is treated as JSON.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Read decodes a descriptor from r and validates it. Read does not
// close r.
func Read(r io.Reader, format Format) (*Descriptor, error) {
	var d Descriptor
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "decode toml")
		}
	default:
		return nil, cerrors.New(cerrors.ErrCodeInvalidFormat, "unknown descriptor format %q", format)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads the descriptor file at path. The format follows the file
// extension, and the base name fills in a missing Name.
func Load(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := Read(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, nil
}

// Write encodes d to w.
func Write(d *Descriptor, w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
	return cerrors.New(cerrors.ErrCodeInvalidFormat, "unknown descriptor format %q", format)
}

// Save writes d to path in the format implied by its extension.
func Save(d *Descriptor, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(d, f, FormatFor(path))
}
