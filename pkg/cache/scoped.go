package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
//
//	// keys for one uploaded dataset
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "upload:"+id+":")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(datasetHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}

// UploadKey generates a prefixed upload key.
func (k *ScopedKeyer) UploadKey(id string) string {
	return k.prefix + k.inner.UploadKey(id)
}
