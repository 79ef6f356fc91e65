package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/pkg/messagequeue"
)

const maxProductPageSize = 100

type productService struct {
	productRepo  db.ProductRepository
	categoryRepo db.CategoryRepository
	tagRepo      db.TagRepository
	catalog      *CatalogCache
	auditService AuditService
	events       messagequeue.Publisher
	logger       *zap.Logger
}

// NewProductService creates a new ProductService instance.
func NewProductService(
	pr db.ProductRepository,
	cr db.CategoryRepository,
	tr db.TagRepository,
	catalog *CatalogCache,
	as AuditService,
	events messagequeue.Publisher,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo:  pr,
		categoryRepo: cr,
		tagRepo:      tr,
		catalog:      catalog,
		auditService: as,
		events:       events,
		logger:       logger,
	}
}

// CreateProduct validates the input, checks references and the live-name rule, and
// stores the product. New products default to active.
func (s *productService) CreateProduct(ctx context.Context, storeID, userID string, input models.ProductInput) (*models.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = models.ProductStatusActive
	}

	if err := s.checkReferences(ctx, storeID, input.CategoryID, input.TagIDs); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:        storeID,
		Name:           input.Name,
		NameNormalized: models.NormalizeName(input.Name),
		Description:    input.Description,
		Price:          input.Price,
		CostPrice:      input.CostPrice,
		CategoryID:     input.CategoryID,
		TagIDs:         input.TagIDs,
		ImageURLs:      input.ImageURLs,
		Status:         input.Status,
		Featured:       input.Featured,
		Variants:       input.Variants,
	}

	if err := s.checkName(ctx, storeID, product); err != nil {
		return nil, err
	}

	productID, err := s.productRepo.Create(ctx, storeID, product)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateProductName, product.Name)
		}
		return nil, fmt.Errorf("failed to create product in repository: %w", err)
	}
	product.ID = productID
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now

	s.afterWrite(ctx, storeID, userID, ActionProductCreate, EventProductCreated, product)
	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, storeID, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, storeID, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", productID, err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, storeID string, params models.ProductListParams) ([]*models.Product, error) {
	if params.Status != "" && !params.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrValidation, params.Status)
	}
	if params.Limit < 0 || params.Limit > maxProductPageSize {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, maxProductPageSize)
	}
	products, err := s.productRepo.List(ctx, storeID, params)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: pagination cursor '%s'", ErrProductNotFound, params.StartAfter)
		}
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update. The name rule and references are re-checked
// against the merged product.
func (s *productService) UpdateProduct(ctx context.Context, storeID, userID, productID string, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	input := models.ProductInput{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		CostPrice:   product.CostPrice,
		CategoryID:  product.CategoryID,
		TagIDs:      product.TagIDs,
		ImageURLs:   product.ImageURLs,
		Status:      product.Status,
		Featured:    product.Featured,
		Variants:    product.Variants,
	}
	if req.Name != nil {
		input.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Price != nil {
		input.Price = *req.Price
	}
	if req.CostPrice != nil {
		input.CostPrice = *req.CostPrice
	}
	if req.CategoryID != nil {
		input.CategoryID = *req.CategoryID
	}
	if req.TagIDs != nil {
		input.TagIDs = *req.TagIDs
	}
	if req.ImageURLs != nil {
		input.ImageURLs = *req.ImageURLs
	}
	if req.Status != nil {
		input.Status = *req.Status
	}
	if req.Featured != nil {
		input.Featured = *req.Featured
	}
	if req.Variants != nil {
		input.Variants = *req.Variants
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	categoryChanged := req.CategoryID != nil && *req.CategoryID != product.CategoryID
	newTags := []string(nil)
	if req.TagIDs != nil {
		newTags = addedIDs(product.TagIDs, input.TagIDs)
	}
	if categoryChanged || len(newTags) > 0 {
		categoryID := ""
		if categoryChanged {
			categoryID = input.CategoryID
		}
		if err := s.checkReferences(ctx, storeID, categoryID, newTags); err != nil {
			return nil, err
		}
	}

	product.Name = input.Name
	product.NameNormalized = models.NormalizeName(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.CostPrice = input.CostPrice
	product.CategoryID = input.CategoryID
	product.TagIDs = input.TagIDs
	product.ImageURLs = input.ImageURLs
	product.Status = input.Status
	product.Featured = input.Featured
	product.Variants = input.Variants
	product.UpdatedAt = time.Now().UTC()

	if err := s.checkName(ctx, storeID, product); err != nil {
		return nil, err
	}
	if err := s.save(ctx, storeID, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, storeID, userID, ActionProductUpdate, EventProductUpdated, product)
	return product, nil
}

// SetProductStatus moves a product between active, inactive and archived. Leaving
// archived re-enters the name rule.
func (s *productService) SetProductStatus(ctx context.Context, storeID, userID, productID string, status models.ProductStatus) (*models.Product, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrValidation, status)
	}
	product, err := s.GetProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if product.Status == status {
		return product, nil
	}

	product.Status = status
	product.UpdatedAt = time.Now().UTC()
	if err := s.checkName(ctx, storeID, product); err != nil {
		return nil, err
	}
	if err := s.save(ctx, storeID, product); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, storeID, userID, ActionProductUpdate, EventProductUpdated, product)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, storeID, userID, productID string) error {
	if err := s.productRepo.Delete(ctx, storeID, productID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrProductNotFound, productID)
		}
		return fmt.Errorf("failed to delete product '%s': %w", productID, err)
	}
	s.afterWrite(ctx, storeID, userID, ActionProductDelete, EventProductDeleted, &models.Product{ID: productID})
	return nil
}

func (s *productService) GetStats(ctx context.Context, storeID string, force bool) (*models.ProductStats, error) {
	snap, err := s.catalog.Get(ctx, storeID, force)
	if err != nil {
		return nil, err
	}
	stats := snap.Stats
	return &stats, nil
}

// checkName rejects a live product whose normalized name is held by another live
// product. The repository repeats the check inside its write transaction.
func (s *productService) checkName(ctx context.Context, storeID string, product *models.Product) error {
	if product.Status == models.ProductStatusArchived {
		return nil
	}
	taken, err := s.productRepo.ExistsByName(ctx, storeID, product.NameNormalized, product.ID)
	if err != nil {
		return fmt.Errorf("failed to check product name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: '%s'", ErrDuplicateProductName, product.Name)
	}
	return nil
}

func (s *productService) checkReferences(ctx context.Context, storeID, categoryID string, tagIDs []string) error {
	if categoryID != "" {
		if _, err := s.categoryRepo.GetByID(ctx, storeID, categoryID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: '%s'", ErrCategoryNotFound, categoryID)
			}
			return fmt.Errorf("failed to check category '%s': %w", categoryID, err)
		}
	}
	for _, tagID := range tagIDs {
		if _, err := s.tagRepo.GetByID(ctx, storeID, tagID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("%w: '%s'", ErrTagNotFound, tagID)
			}
			return fmt.Errorf("failed to check tag '%s': %w", tagID, err)
		}
	}
	return nil
}

func (s *productService) save(ctx context.Context, storeID string, product *models.Product) error {
	err := s.productRepo.Update(ctx, storeID, product)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrAlreadyExists):
		return fmt.Errorf("%w: '%s'", ErrDuplicateProductName, product.Name)
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: '%s'", ErrProductNotFound, product.ID)
	default:
		return fmt.Errorf("failed to update product '%s': %w", product.ID, err)
	}
}

func (s *productService) afterWrite(ctx context.Context, storeID, userID, action, eventType string, product *models.Product) {
	s.catalog.Invalidate(ctx, storeID)

	details := map[string]interface{}{"productId": product.ID}
	if product.Name != "" {
		details["name"] = product.Name
		details["status"] = string(product.Status)
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		StoreID:    storeID,
		Action:     action,
		TargetType: "PRODUCT",
		TargetID:   product.ID,
		Details:    details,
	})
	publishEvent(ctx, s.events, s.logger, eventType, storeID, details)
}

// addedIDs returns the ids in next that are not in prev.
func addedIDs(prev, next []string) []string {
	seen := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		seen[id] = struct{}{}
	}
	var added []string
	for _, id := range next {
		if _, ok := seen[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
