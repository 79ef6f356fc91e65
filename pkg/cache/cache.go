// Package cache provides the key-value cache used for the product catalog.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. Get reports a miss with ok=false
// and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*RistrettoCache)(nil)
)
