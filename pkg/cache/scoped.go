package cache

// ScopedKeyer wraps a Keyer with a prefix so that several binaries can
// share one backing store without reading each other's entries.
//
//	// Keys from different releases never collide.
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tracegraph:"+buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(traceHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(traceHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(graphHash, opts)
}
