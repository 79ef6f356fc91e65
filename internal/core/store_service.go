package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/pkg/messagequeue"
)

type storeService struct {
	storeRepo    db.StoreRepository
	authService  AuthService
	auditService AuditService
	events       messagequeue.Publisher
	logger       *zap.Logger
}

// NewStoreService creates a new StoreService instance.
func NewStoreService(sr db.StoreRepository, auth AuthService, as AuditService, events messagequeue.Publisher, logger *zap.Logger) StoreService {
	return &storeService{
		storeRepo:    sr,
		authService:  auth,
		auditService: as,
		events:       events,
		logger:       logger,
	}
}

// CreateStore creates the store document and links it to the caller in one
// transaction, then sets owner claims and revokes the caller's refresh tokens. When
// the claims step fails the store still exists; the claims migration command repairs
// such owners.
func (s *storeService) CreateStore(ctx context.Context, session *identity.Session, req models.CreateStoreRequest) (*models.Store, error) {
	if session == nil || session.UID == "" {
		return nil, ErrForbidden
	}
	if session.HasStore() {
		return nil, fmt.Errorf("%w: '%s'", ErrUserAlreadyHasStore, session.StoreID)
	}

	name := strings.TrimSpace(req.Name)
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if err := validateValue("name", name, "required,max=80"); err != nil {
		return nil, err
	}
	if err := validateValue("slug", slug, "required,max=60,slug"); err != nil {
		return nil, err
	}

	taken, err := s.storeRepo.SlugExists(ctx, slug, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check slug '%s': %w", slug, err)
	}
	if taken {
		return nil, fmt.Errorf("%w: '%s'", ErrSlugTaken, slug)
	}

	store := &models.Store{
		BasicInfo: models.BasicInfo{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			Slug:        slug,
			Type:        req.Type,
		},
		Settings: models.StoreSettings{
			Payment:  models.PaymentSettings{Cash: true},
			Delivery: models.DeliverySettings{Pickup: true},
		},
	}
	owner := &models.User{ID: session.UID, Email: session.Email, DisplayName: session.DisplayName}

	storeID, err := s.storeRepo.CreateWithOwner(ctx, store, owner)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: '%s'", ErrSlugTaken, slug)
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	store.ID = storeID
	now := time.Now().UTC()
	store.CreatedAt, store.UpdatedAt = now, now

	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     session.UID,
		StoreID:    storeID,
		Action:     ActionStoreCreate,
		TargetType: "STORE",
		TargetID:   storeID,
		Details:    map[string]interface{}{"name": name, "slug": slug},
	})
	publishEvent(ctx, s.events, s.logger, EventStoreCreated, storeID, map[string]interface{}{
		"ownerId": session.UID,
		"slug":    slug,
	})

	if err := s.authService.AssignStoreOwner(ctx, session.UID, storeID); err != nil {
		s.logger.Error("Store created but owner claims were not set",
			zap.String("store_id", storeID),
			zap.String("user_id", session.UID),
			zap.Error(err))
		return store, fmt.Errorf("store '%s' created but owner claims were not set: %w", storeID, err)
	}
	return store, nil
}

func (s *storeService) GetStore(ctx context.Context, storeID string) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrStoreNotFound, storeID)
		}
		return nil, fmt.Errorf("failed to get store '%s': %w", storeID, err)
	}
	return store, nil
}

// UpdateSection writes one profile section as dot-path updates on the store document.
// A slug change must stay unique across stores.
func (s *storeService) UpdateSection(ctx context.Context, storeID, userID, section string, fields map[string]interface{}) (*models.Store, error) {
	if slug, ok := fields["slug"].(string); ok && section == "basic" {
		normalized := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			normalized[k] = v
		}
		normalized["slug"] = strings.ToLower(strings.TrimSpace(slug))
		fields = normalized
	}
	paths, err := sectionPaths(section, fields)
	if err != nil {
		return nil, err
	}

	if slug, ok := paths["basicInfo.slug"].(string); ok {
		taken, err := s.storeRepo.SlugExists(ctx, slug, storeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug '%s': %w", slug, err)
		}
		if taken {
			return nil, fmt.Errorf("%w: '%s'", ErrSlugTaken, slug)
		}
	}

	if err := s.storeRepo.UpdateFields(ctx, storeID, paths); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrStoreNotFound, storeID)
		}
		return nil, fmt.Errorf("failed to update section '%s' of store '%s': %w", section, storeID, err)
	}

	fieldNames := make([]string, 0, len(fields))
	for name := range fields {
		fieldNames = append(fieldNames, name)
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     userID,
		StoreID:    storeID,
		Action:     ActionSectionUpdate,
		TargetType: "STORE",
		TargetID:   storeID,
		Details:    map[string]interface{}{"section": section, "fields": fieldNames},
	})

	return s.GetStore(ctx, storeID)
}
