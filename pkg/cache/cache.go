package cache

import (
	"context"
	"strings"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the cache.
	Close() error
}

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// GraphKey identifies a normalized graph built from a trace.
	GraphKey(traceHash string, opts GraphKeyOpts) string
	// ArtifactKey identifies a rendered graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts holds the import and transform settings that change the
// resulting graph.
type GraphKeyOpts struct {
	InputNames []string `json:"input_names,omitempty"`
	Indexed    bool     `json:"indexed,omitempty"`
	// Rules are the rule names in application order.
	Rules []string `json:"rules,omitempty"`
}

// ArtifactKeyOpts holds the render settings that change the output bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer produces keys of the form "<stage>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(traceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", traceHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, strings.ToLower(opts.Format), opts.Detailed)
}

// TTLs for pipeline stages. Entries are content-addressed, so they only
// expire to bound disk and memory use.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
