package db

import (
	"context"

	"github.com/example/storefront/internal/models"
)

// StoreRepository defines storage operations on store documents.
type StoreRepository interface {
	// CreateWithOwner atomically creates the store document and appends its ID
	// to the owner's user document. Returns the new store ID.
	CreateWithOwner(ctx context.Context, store *models.Store, owner *models.User) (string, error)
	GetByID(ctx context.Context, storeID string) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)
	SlugExists(ctx context.Context, slug, excludeStoreID string) (bool, error)
	// UpdateFields applies dot-path field updates to one store document.
	UpdateFields(ctx context.Context, storeID string, fields map[string]interface{}) error
	ListAll(ctx context.Context) ([]*models.Store, error)
}

// UserRepository defines storage operations on app-level user documents.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
}

// ProductRepository defines storage operations on a store's products.
// Create and Update enforce the normalized-name rule inside a transaction and
// return ErrAlreadyExists when another live product holds the name.
type ProductRepository interface {
	Create(ctx context.Context, storeID string, product *models.Product) (string, error)
	GetByID(ctx context.Context, storeID, productID string) (*models.Product, error)
	List(ctx context.Context, storeID string, params models.ProductListParams) ([]*models.Product, error)
	ListAll(ctx context.Context, storeID string) ([]*models.Product, error)
	Update(ctx context.Context, storeID string, product *models.Product) error
	Delete(ctx context.Context, storeID, productID string) error
	ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error)
	ExistsWithCategory(ctx context.Context, storeID, categoryID string, status models.ProductStatus) (bool, error)
	ExistsWithTag(ctx context.Context, storeID, tagID string, status models.ProductStatus) (bool, error)
}

// CategoryRepository defines storage operations on a store's categories.
type CategoryRepository interface {
	Create(ctx context.Context, storeID string, category *models.Category) (string, error)
	GetByID(ctx context.Context, storeID, categoryID string) (*models.Category, error)
	List(ctx context.Context, storeID string) ([]*models.Category, error)
	Update(ctx context.Context, storeID string, category *models.Category) error
	Delete(ctx context.Context, storeID, categoryID string) error
	ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error)
}

// TagRepository defines storage operations on a store's tags.
type TagRepository interface {
	Create(ctx context.Context, storeID string, tag *models.Tag) (string, error)
	GetByID(ctx context.Context, storeID, tagID string) (*models.Tag, error)
	List(ctx context.Context, storeID string) ([]*models.Tag, error)
	Update(ctx context.Context, storeID string, tag *models.Tag) error
	Delete(ctx context.Context, storeID, tagID string) error
	ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error)
}

// SubscriptionRepository defines storage operations on subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) (string, error)
	GetByID(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	GetByProcessorID(ctx context.Context, processorID string) (*models.Subscription, error)
	// GetCurrentByStore returns the most recent subscription of a store that is not cancelled.
	GetCurrentByStore(ctx context.Context, storeID string) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) error
}

// PlanRepository defines storage operations on subscription plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) (string, error)
	GetByID(ctx context.Context, planID string) (*models.Plan, error)
	ListActive(ctx context.Context) ([]*models.Plan, error)
}

// AuditRepository defines storage for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, logEntry models.AuditLog) error
}
