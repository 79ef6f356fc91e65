package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache is an in-process Cache backed by dgraph-io/ristretto.
type RistrettoCache struct {
	c *ristretto.Cache[string, []byte]
}

// NewRistrettoCache creates a ristretto-backed cache. maxCostBytes bounds the total
// size of cached values.
func NewRistrettoCache(maxCostBytes int64) (*RistrettoCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / 100 * 10, // ~10x expected items
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoCache{c: c}, nil
}

func (r *RistrettoCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := r.c.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores value and waits for ristretto's write buffer to drain, so a Get that
// follows sees it. A value the admission policy drops is not an error; it is a miss.
func (r *RistrettoCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	r.c.SetWithTTL(key, value, int64(len(value)), expiration)
	r.c.Wait()
	return nil
}

func (r *RistrettoCache) Delete(_ context.Context, key string) error {
	r.c.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func (r *RistrettoCache) Wait() {
	r.c.Wait()
}

// Close shuts down the cache and releases resources.
func (r *RistrettoCache) Close() {
	r.c.Close()
}
