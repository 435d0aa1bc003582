package cache

// ScopedKeyer wraps a Keyer with a prefix so that several users of one
// backend, such as a shared Redis, keep separate namespaces.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "cyclesearch:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SearchKey returns the prefixed key of the inner keyer.
func (k *ScopedKeyer) SearchKey(family, descHash string, opts SearchKeyOpts) string {
	return k.prefix + k.inner.SearchKey(family, descHash, opts)
}
