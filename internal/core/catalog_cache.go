package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/pkg/cache"
)

// DefaultCatalogTTL is the catalog freshness window.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogSnapshot is one store's full product list plus its stats.
type CatalogSnapshot struct {
	StoreID   string              `json:"storeId"`
	Products  []*models.Product   `json:"products"`
	Stats     models.ProductStats `json:"stats"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

// CatalogCache keeps one snapshot per store for a fixed window. Freshness is a
// timestamp comparison against FetchedAt. Concurrent misses for the same store share
// one repository read.
//
// Each store has a generation that Invalidate bumps. A refresh that started in an
// older generation never leaves its snapshot in the cache, and callers arriving after
// an invalidation never join a flight from before it.
type CatalogCache struct {
	cache    cache.Cache
	products db.ProductRepository
	ttl      time.Duration
	logger   *zap.Logger
	group    singleflight.Group
	now      func() time.Time

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCatalogCache creates a CatalogCache. A non-positive ttl selects DefaultCatalogTTL.
func NewCatalogCache(c cache.Cache, products db.ProductRepository, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		cache:    c,
		products: products,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		gens:     make(map[string]uint64),
	}
}

func catalogKey(storeID string) string {
	return "catalog:" + storeID
}

// Get returns the store's snapshot, refetching when the cached one is older than the
// window or force is set.
func (c *CatalogCache) Get(ctx context.Context, storeID string, force bool) (*CatalogSnapshot, error) {
	if !force {
		if snap, ok := c.lookup(ctx, storeID); ok {
			return snap, nil
		}
	}

	gen := c.generation(storeID)
	// The shared refresh outlives any single caller's cancellation.
	refreshCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(storeID+"@"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return c.refresh(refreshCtx, storeID, gen)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*CatalogSnapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the store's snapshot so the next Get refetches.
func (c *CatalogCache) Invalidate(ctx context.Context, storeID string) {
	c.mu.Lock()
	c.gens[storeID]++
	c.mu.Unlock()

	if err := c.cache.Delete(ctx, catalogKey(storeID)); err != nil {
		c.logger.Warn("Failed to invalidate catalog cache", zap.String("store_id", storeID), zap.Error(err))
	}
}

func (c *CatalogCache) generation(storeID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[storeID]
}

func (c *CatalogCache) lookup(ctx context.Context, storeID string) (*CatalogSnapshot, bool) {
	raw, ok, err := c.cache.Get(ctx, catalogKey(storeID))
	if err != nil {
		c.logger.Warn("Catalog cache read failed", zap.String("store_id", storeID), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var snap CatalogSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.logger.Warn("Discarding undecodable catalog snapshot", zap.String("store_id", storeID), zap.Error(err))
		return nil, false
	}
	if c.now().Sub(snap.FetchedAt) >= c.ttl {
		return nil, false
	}
	return &snap, true
}

func (c *CatalogCache) refresh(ctx context.Context, storeID string, gen uint64) (*CatalogSnapshot, error) {
	products, err := c.products.ListAll(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog for store '%s': %w", storeID, err)
	}

	snap := &CatalogSnapshot{
		StoreID:   storeID,
		Products:  products,
		Stats:     models.ComputeProductStats(products),
		FetchedAt: c.now().UTC(),
	}

	if c.generation(storeID) != gen {
		return snap, nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("Failed to encode catalog snapshot", zap.String("store_id", storeID), zap.Error(err))
		return snap, nil
	}
	if err := c.cache.Set(ctx, catalogKey(storeID), raw, c.ttl); err != nil {
		c.logger.Warn("Catalog cache write failed", zap.String("store_id", storeID), zap.Error(err))
		return snap, nil
	}
	// An invalidation that landed between the check and the write must still win.
	if c.generation(storeID) != gen {
		if err := c.cache.Delete(ctx, catalogKey(storeID)); err != nil {
			c.logger.Warn("Failed to drop superseded catalog snapshot", zap.String("store_id", storeID), zap.Error(err))
		}
	}
	return snap, nil
}
