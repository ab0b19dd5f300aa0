package cache

import (
	"context"
	"time"

	"github.com/vaidya-ai/clinicalmap/pkg/observability"
)

// NullCache stores nothing. It backs --no-cache and backend = "none", and
// still reports every lookup as a miss so hit-rate metrics stay honest when
// caching is off.
type NullCache struct{}

// NewNullCache returns a cache that never hits.
func NewNullCache() Cache { return &NullCache{} }

func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	observability.Cache().OnCacheMiss(ctx, keyType(key))
	return nil, false, nil
}

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
