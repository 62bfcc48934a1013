package aicache

import (
	"context"
	"time"
)

// Cache is the process-wide, bounded-lifetime cache for generated content.
// Keys are caller-derived (prompt + options hash); values are raw JSON. The
// block model never depends on the cache existing — misses just regenerate.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string) error
}
