package core

import (
	"context"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
)

// AuditService records dashboard mutations.
type AuditService interface {
	CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error
}

// ProductService manages a store's products.
type ProductService interface {
	CreateProduct(ctx context.Context, storeID, userID string, input models.ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, storeID, productID string) (*models.Product, error)
	ListProducts(ctx context.Context, storeID string, params models.ProductListParams) ([]*models.Product, error)
	UpdateProduct(ctx context.Context, storeID, userID, productID string, req models.UpdateProductRequest) (*models.Product, error)
	SetProductStatus(ctx context.Context, storeID, userID, productID string, status models.ProductStatus) (*models.Product, error)
	DeleteProduct(ctx context.Context, storeID, userID, productID string) error
	// GetStats returns the cached catalog stats; force bypasses the cache window.
	GetStats(ctx context.Context, storeID string, force bool) (*models.ProductStats, error)
}

// CategoryService manages a store's categories.
type CategoryService interface {
	CreateCategory(ctx context.Context, storeID, userID string, input models.CategoryInput) (*models.Category, error)
	GetCategory(ctx context.Context, storeID, categoryID string) (*models.Category, error)
	ListCategories(ctx context.Context, storeID string) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, storeID, userID, categoryID string, req models.UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, storeID, userID, categoryID string) error
}

// TagService manages a store's tags.
type TagService interface {
	CreateTag(ctx context.Context, storeID, userID string, input models.TagInput) (*models.Tag, error)
	GetTag(ctx context.Context, storeID, tagID string) (*models.Tag, error)
	ListTags(ctx context.Context, storeID string) ([]*models.Tag, error)
	UpdateTag(ctx context.Context, storeID, userID, tagID string, req models.UpdateTagRequest) (*models.Tag, error)
	DeleteTag(ctx context.Context, storeID, userID, tagID string) error
}

// StoreService manages store creation and the store profile.
type StoreService interface {
	// CreateStore creates the store and its owner link atomically, then grants the
	// caller owner claims.
	CreateStore(ctx context.Context, session *identity.Session, req models.CreateStoreRequest) (*models.Store, error)
	GetStore(ctx context.Context, storeID string) (*models.Store, error)
	UpdateSection(ctx context.Context, storeID, userID, section string, fields map[string]interface{}) (*models.Store, error)
}

// AuthService wraps the identity provider for sessions and claims.
type AuthService interface {
	VerifySession(ctx context.Context, idToken string) (*identity.Session, error)
	// SetStoreClaims merges storeId and role into uid's claims and revokes its refresh
	// tokens so the next issued token carries them. Unless actor is a platform admin,
	// storeID must be the actor's store and uid must be unclaimed or in that store.
	SetStoreClaims(ctx context.Context, actor *identity.Session, uid, storeID, role string) error
	// AssignStoreOwner grants owner claims on a freshly created store.
	AssignStoreOwner(ctx context.Context, uid, storeID string) error
	GetClaims(ctx context.Context, actor *identity.Session, uid string) (map[string]interface{}, error)
	SetUserDisabled(ctx context.Context, actor *identity.Session, uid string, disabled bool) error
	DeleteUser(ctx context.Context, actor *identity.Session, uid string) error
}

// SubscriptionService manages plans and store subscriptions.
type SubscriptionService interface {
	CreatePlan(ctx context.Context, actorID string, req models.CreatePlanRequest) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetCurrent(ctx context.Context, storeID string) (*models.Subscription, error)
	Subscribe(ctx context.Context, storeID, userID string, req models.SubscribeRequest) (*models.Subscription, error)
	Cancel(ctx context.Context, storeID, userID string) (*models.Subscription, error)
	Pause(ctx context.Context, storeID, userID string) (*models.Subscription, error)
	Resume(ctx context.Context, storeID, userID string) (*models.Subscription, error)
	// Sync pulls the processor's status for the store's current subscription.
	Sync(ctx context.Context, storeID string) (*models.Subscription, error)
	HandleNotification(ctx context.Context, n *mercadopago.Notification) error
}

// StorefrontService serves the public, read-only view of a store.
type StorefrontService interface {
	GetStorefront(ctx context.Context, slug string) (*StorefrontPage, error)
	ListProducts(ctx context.Context, slug, categoryID string) ([]*models.Product, error)
	GetProduct(ctx context.Context, slug, productID string) (*models.Product, error)
	ListCategories(ctx context.Context, slug string) ([]*models.Category, error)
}

// BillingGateway is the subset of the MercadoPago client the subscription service uses.
type BillingGateway interface {
	CreatePlan(ctx context.Context, req mercadopago.PlanRequest) (*mercadopago.Plan, error)
	CreatePreapproval(ctx context.Context, req mercadopago.PreapprovalRequest) (*mercadopago.Preapproval, error)
	GetPreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
	CancelPreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
	PausePreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
	ResumePreapproval(ctx context.Context, id string) (*mercadopago.Preapproval, error)
}

// Notifier sends a plain message to a recipient.
type Notifier interface {
	SendEmail(recipient, subject, body string) error
}

var _ BillingGateway = (*mercadopago.Client)(nil)
