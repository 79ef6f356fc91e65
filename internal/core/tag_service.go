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

type tagService struct {
	tagRepo      db.TagRepository
	productRepo  db.ProductRepository
	catalog      *CatalogCache
	auditService AuditService
	logger       *zap.Logger
}

// NewTagService creates a new TagService instance.
func NewTagService(tr db.TagRepository, pr db.ProductRepository, catalog *CatalogCache, as AuditService, logger *zap.Logger) TagService {
	return &tagService{
		tagRepo:      tr,
		productRepo:  pr,
		catalog:      catalog,
		auditService: as,
		logger:       logger,
	}
}

func (s *tagService) CreateTag(ctx context.Context, storeID, userID string, input models.TagInput) (*models.Tag, error) {
	tag := &models.Tag{StoreID: storeID, Color: input.Color}
	if err := s.setName(tag, input.Name); err != nil {
		return nil, err
	}
	if err := validateValue("color", tag.Color, "omitempty,hexcolor"); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, storeID, tag); err != nil {
		return nil, err
	}

	tagID, err := s.tagRepo.Create(ctx, storeID, tag)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateTagName, tag.Name)
		}
		return nil, fmt.Errorf("failed to create tag in repository: %w", err)
	}
	tag.ID = tagID
	now := time.Now().UTC()
	tag.CreatedAt, tag.UpdatedAt = now, now

	s.afterWrite(ctx, storeID, userID, ActionTagCreate, tag)
	return tag, nil
}

func (s *tagService) GetTag(ctx context.Context, storeID, tagID string) (*models.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, storeID, tagID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrTagNotFound, tagID)
		}
		return nil, fmt.Errorf("failed to get tag '%s': %w", tagID, err)
	}
	return tag, nil
}

func (s *tagService) ListTags(ctx context.Context, storeID string) ([]*models.Tag, error) {
	tags, err := s.tagRepo.List(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *tagService) UpdateTag(ctx context.Context, storeID, userID, tagID string, req models.UpdateTagRequest) (*models.Tag, error) {
	tag, err := s.GetTag(ctx, storeID, tagID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.setName(tag, *req.Name); err != nil {
			return nil, err
		}
		if err := s.checkName(ctx, storeID, tag); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		if err := validateValue("color", *req.Color, "omitempty,hexcolor"); err != nil {
			return nil, err
		}
		tag.Color = *req.Color
	}
	tag.UpdatedAt = time.Now().UTC()

	if err := s.tagRepo.Update(ctx, storeID, tag); err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyExists):
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateTagName, tag.Name)
		case errors.Is(err, db.ErrNotFound):
			return nil, fmt.Errorf("%w: '%s'", ErrTagNotFound, tagID)
		}
		return nil, fmt.Errorf("failed to update tag '%s': %w", tagID, err)
	}

	s.afterWrite(ctx, storeID, userID, ActionTagUpdate, tag)
	return tag, nil
}

// DeleteTag is rejected while any active product carries the tag.
func (s *tagService) DeleteTag(ctx context.Context, storeID, userID, tagID string) error {
	inUse, err := s.productRepo.ExistsWithTag(ctx, storeID, tagID, models.ProductStatusActive)
	if err != nil {
		return fmt.Errorf("failed to check tag usage: %w", err)
	}
	if inUse {
		return fmt.Errorf("%w: '%s'", ErrTagInUse, tagID)
	}

	if err := s.tagRepo.Delete(ctx, storeID, tagID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrTagNotFound, tagID)
		}
		return fmt.Errorf("failed to delete tag '%s': %w", tagID, err)
	}

	s.afterWrite(ctx, storeID, userID, ActionTagDelete, &models.Tag{ID: tagID})
	return nil
}

func (s *tagService) setName(tag *models.Tag, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag name is required", ErrValidation)
	}
	tag.Name = name
	tag.NameNormalized = models.NormalizeName(name)
	return nil
}

func (s *tagService) checkName(ctx context.Context, storeID string, tag *models.Tag) error {
	taken, err := s.tagRepo.ExistsByName(ctx, storeID, tag.NameNormalized, tag.ID)
	if err != nil {
		return fmt.Errorf("failed to check tag name: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: '%s'", ErrDuplicateTagName, tag.Name)
	}
	return nil
}

func (s *tagService) afterWrite(ctx context.Context, storeID, userID, action string, tag *models.Tag) {
	s.catalog.Invalidate(ctx, storeID)
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		StoreID:    storeID,
		Action:     action,
		TargetType: "TAG",
		TargetID:   tag.ID,
		Details:    map[string]interface{}{"tagId": tag.ID, "name": tag.Name},
	})
}
