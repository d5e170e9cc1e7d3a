// Package cache stores rendered artifacts between CLI runs.
//
// Exports through Graphviz are the only expensive step of deptree, so the
// render command keys their output on a hash of the frame description and the
// output format. [FileCache] backs the CLI; [NullCache] disables caching.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactTTL is how long exported frames stay cached.
const ArtifactTTL = 7 * 24 * time.Hour

// artifactVersion is bumped whenever exported bytes for the same frame
// description change, so stale entries are never served.
const artifactVersion = "v1"

// ArtifactKey derives the cache key for an export of source in format.
// source is the renderer-specific frame description (e.g. a DOT document).
func ArtifactKey(format string, source []byte) string {
	return "artifact:" + artifactVersion + ":" + format + ":" + digest(source)
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
