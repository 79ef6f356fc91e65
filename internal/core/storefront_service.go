package core

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/models"
)

// StorefrontPage is everything the public store page renders.
type StorefrontPage struct {
	Store      models.PublicStore `json:"store"`
	Products   []*models.Product  `json:"products"`
	Featured   []*models.Product  `json:"featured"`
	Categories []*models.Category `json:"categories"`
}

type storefrontService struct {
	storeRepo    db.StoreRepository
	productRepo  db.ProductRepository
	categoryRepo db.CategoryRepository
	catalog      *CatalogCache
}

// NewStorefrontService creates a new StorefrontService instance. Product reads go
// through the catalog cache; only active products are visible.
func NewStorefrontService(sr db.StoreRepository, pr db.ProductRepository, cr db.CategoryRepository, catalog *CatalogCache) StorefrontService {
	return &storefrontService{
		storeRepo:    sr,
		productRepo:  pr,
		categoryRepo: cr,
		catalog:      catalog,
	}
}

func (s *storefrontService) GetStorefront(ctx context.Context, slug string) (*StorefrontPage, error) {
	store, err := s.storeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	var (
		snap       *CatalogSnapshot
		categories []*models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap, err = s.catalog.Get(gctx, store.ID, false)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categoryRepo.List(gctx, store.ID)
		if err != nil {
			return fmt.Errorf("failed to list categories of store '%s': %w", store.ID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	products := activeProducts(snap.Products, "")
	featured := make([]*models.Product, 0)
	for _, p := range products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return &StorefrontPage{
		Store:      store.Public(),
		Products:   products,
		Featured:   featured,
		Categories: categories,
	}, nil
}

func (s *storefrontService) ListProducts(ctx context.Context, slug, categoryID string) ([]*models.Product, error) {
	store, err := s.storeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	snap, err := s.catalog.Get(ctx, store.ID, false)
	if err != nil {
		return nil, err
	}
	return activeProducts(snap.Products, categoryID), nil
}

// GetProduct reads the product directly so a freshly deactivated product is not served
// from a stale snapshot.
func (s *storefrontService) GetProduct(ctx context.Context, slug, productID string) (*models.Product, error) {
	store, err := s.storeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, store.ID, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", productID, err)
	}
	if product.Status != models.ProductStatusActive {
		return nil, fmt.Errorf("%w: '%s'", ErrProductNotFound, productID)
	}
	return product, nil
}

func (s *storefrontService) ListCategories(ctx context.Context, slug string) ([]*models.Category, error) {
	store, err := s.storeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.List(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories of store '%s': %w", store.ID, err)
	}
	return categories, nil
}

func (s *storefrontService) storeBySlug(ctx context.Context, slug string) (*models.Store, error) {
	store, err := s.storeRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrStoreNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get store '%s': %w", slug, err)
	}
	return store, nil
}

func activeProducts(all []*models.Product, categoryID string) []*models.Product {
	out := make([]*models.Product, 0, len(all))
	for _, p := range all {
		if p.Status != models.ProductStatusActive {
			continue
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		out = append(out, p)
	}
	return out
}
