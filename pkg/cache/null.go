package cache

import (
	"context"
	"time"

	"github.com/matzehuels/deptree/pkg/observability"
)

// NullCache stores nothing. The render command falls back to it for
// --no-cache and when the cache directory is unusable, so every lookup is
// reported as a miss in the "disabled" namespace.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	observability.Cache().OnCacheMiss(ctx, "disabled")
	return nil, false, nil
}

func (*NullCache) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	return ctx.Err()
}

func (*NullCache) Delete(ctx context.Context, _ string) error { return ctx.Err() }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
