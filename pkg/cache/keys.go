package cache

import "time"

// TTLSearch is how long a search result stays cached. Results never go
// stale, so the TTL only bounds the cache size.
const TTLSearch = 30 * 24 * time.Hour

// SearchKeyOpts holds the options that change a search result.
type SearchKeyOpts struct {
	MinScans   int    `json:"n_scans_min"`
	MaxScans   int    `json:"n_scans_max"`
	NFind      int    `json:"n_find"`
	MaxFactors int    `json:"max_factors"`
	LastZero   bool   `json:"last_zero"`
	Policy     string `json:"policy"`
}

// Keyer generates cache keys.
type Keyer interface {
	// SearchKey returns the key for a search of family over the descriptor
	// with content hash descHash.
	SearchKey(family, descHash string, opts SearchKeyOpts) string
}

// DefaultKeyer formats keys as "search:<family>:<hash>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SearchKey hashes the descriptor hash together with opts.
func (DefaultKeyer) SearchKey(family, descHash string, opts SearchKeyOpts) string {
	return hashKey("search:"+family, descHash, opts)
}

var _ Keyer = DefaultKeyer{}
