package errors

import (
	"strings"
	"unicode"
)

// Cycle families accepted by ValidateFamily.
var families = map[string]bool{
	"cogwheel": true,
	"nested":   true,
	"nestcog":  true,
}

// ValidateFamily checks that name is one of cogwheel, nested or nestcog.
func ValidateFamily(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFamily, "cycle family cannot be empty")
	}
	if !families[strings.ToLower(name)] {
		return New(ErrCodeInvalidFamily, "unknown cycle family %q (want cogwheel, nested or nestcog)", name)
	}
	return nil
}

// ValidateScanRange validates the scan count bounds of a search.
//
// The validation rules are:
//   - hi (n_scans_max) must be at least 2
//   - lo (n_scans_min) must be at least 2
//   - lo must not exceed hi
func ValidateScanRange(lo, hi int) error {
	if hi < 2 {
		return Range("n_scans_max must be at least 2, got %d", hi)
	}
	if lo < 2 {
		return Range("n_scans_min must be at least 2, got %d", lo)
	}
	if lo > hi {
		return Range("n_scans_min (%d) exceeds n_scans_max (%d)", lo, hi)
	}
	return nil
}

// ValidateMatrix checks that rows form a non-empty rectangular matrix
// and that nWanted lies in [0, len(rows)].
func ValidateMatrix(rows [][]int, nWanted int) error {
	if len(rows) == 0 {
		return Shape("CTP matrix has no pathways")
	}
	nBlocks := len(rows[0])
	if nBlocks == 0 {
		return Shape("CTP matrix has no blocks")
	}
	for i, row := range rows {
		if len(row) != nBlocks {
			return Shape("CTP row %d has %d blocks, want %d", i, len(row), nBlocks)
		}
	}
	if nWanted < 0 || nWanted > len(rows) {
		return Range("n_wanted must be in [0, %d], got %d", len(rows), nWanted)
	}
	return nil
}

// ValidateName validates a free-form descriptor name for safety.
//
// The name may be empty. Non-empty names are limited to 128 characters
// and may not contain control characters or path separators, since names
// end up in archive records and file names.
func ValidateName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "name contains invalid path characters")
	}
	return nil
}
