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
)

type categoryService struct {
	categoryRepo db.CategoryRepository
	productRepo  db.ProductRepository
	catalog      *CatalogCache
	auditService AuditService
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService instance.
func NewCategoryService(cr db.CategoryRepository, pr db.ProductRepository, catalog *CatalogCache, as AuditService, logger *zap.Logger) CategoryService {
	return &categoryService{
		categoryRepo: cr,
		productRepo:  pr,
		catalog:      catalog,
		auditService: as,
		logger:       logger,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, storeID, userID string, input models.CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}

	category := &models.Category{
		StoreID:        storeID,
		Name:           name,
		NameNormalized: models.NormalizeName(name),
		Description:    input.Description,
		Order:          input.Order,
	}
	if err := s.checkName(ctx, storeID, category); err != nil {
		return nil, err
	}

	categoryID, err := s.categoryRepo.Create(ctx, storeID, category)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateCategoryName, name)
		}
		return nil, fmt.Errorf("failed to create category in repository: %w", err)
	}
	category.ID = categoryID
	now := time.Now().UTC()
	category.CreatedAt, category.UpdatedAt = now, now

	s.afterWrite(ctx, storeID, userID, ActionCategoryCreate, category)
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, storeID, categoryID string) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, storeID, categoryID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to get category '%s': %w", categoryID, err)
	}
	return category, nil
}

// ListCategories returns the store's categories ordered by their display order.
func (s *categoryService) ListCategories(ctx context.Context, storeID string) ([]*models.Category, error) {
	categories, err := s.categoryRepo.List(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, storeID, userID, categoryID string, req models.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.GetCategory(ctx, storeID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", ErrValidation)
		}
		category.Name = name
		category.NameNormalized = models.NormalizeName(name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Order != nil {
		category.Order = *req.Order
	}
	category.UpdatedAt = time.Now().UTC()

	if req.Name != nil {
		if err := s.checkName(ctx, storeID, category); err != nil {
			return nil, err
		}
	}
	if err := s.categoryRepo.Update(ctx, storeID, category); err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyExists):
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateCategoryName, category.Name)
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("%w: '%s'", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to update category '%s': %w", categoryID, err)
	}

	s.afterWrite(ctx, storeID, userID, ActionCategoryUpdate, category)
	return category, nil
}

// DeleteCategory is rejected while any active product references the category.
func (s *categoryService) DeleteCategory(ctx context.Context, storeID, userID, categoryID string) error {
	inUse, err := s.productRepo.ExistsWithCategory(ctx, storeID, categoryID, models.ProductStatusActive)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: '%s'", ErrCategoryInUse, categoryID)
	}

	if err := s.categoryRepo.Delete(ctx, storeID, categoryID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrCategoryNotFound, categoryID)
		}
		return fmt.Errorf("failed to delete category '%s': %w", categoryID, err)
	}

	s.afterWrite(ctx, storeID, userID, ActionCategoryDelete, &models.Category{ID: categoryID})
	return nil
}

func (s *categoryService) checkName(ctx context.Context, storeID string, category *models.Category) error {
	taken, err := s.categoryRepo.ExistsByName(ctx, storeID, category.NameNormalized, category.ID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: '%s'", ErrDuplicateCategoryName, category.Name)
	}
	return nil
}

func (s *categoryService) afterWrite(ctx context.Context, storeID, userID, action string, category *models.Category) {
	s.catalog.Invalidate(ctx, storeID)
	details := map[string]interface{}{"categoryId": category.ID}
	if category.Name != "" {
		details["name"] = category.Name
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		StoreID:    storeID,
		Action:     action,
		TargetType: "CATEGORY",
		TargetID:   category.ID,
		Details:    details,
	})
}
