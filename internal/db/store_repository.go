package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/storefront/internal/models"
)

type firestoreStoreRepository struct {
	client *firestore.Client
}

// NewFirestoreStoreRepository creates a StoreRepository backed by Firestore.
func NewFirestoreStoreRepository(client *firestore.Client) StoreRepository {
	if client == nil {
		panic("Firestore client is not initialized for StoreRepository")
	}
	return &firestoreStoreRepository{client: client}
}

// CreateWithOwner creates "stores/{id}" and unions the id into "users/{uid}.storeIds"
// in one transaction. The user document is created if missing.
func (r *firestoreStoreRepository) CreateWithOwner(ctx context.Context, store *models.Store, owner *models.User) (string, error) {
	if owner == nil || owner.ID == "" {
		return "", errors.New("owner ID cannot be empty for CreateWithOwner")
	}

	storeRef := r.client.Collection(storesCollection).NewDoc()
	userRef := r.client.Collection(usersCollection).Doc(owner.ID)
	store.ID = storeRef.ID
	store.OwnerID = owner.ID

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := tx.Documents(r.client.Collection(storesCollection).
			Where("basicInfo.slug", "==", store.BasicInfo.Slug).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(taken) > 0 {
			return fmt.Errorf("slug '%s': %w", store.BasicInfo.Slug, ErrAlreadyExists)
		}

		if err := tx.Create(storeRef, store); err != nil {
			return err
		}

		userFields := map[string]interface{}{
			"email":     owner.Email,
			"storeIds":  firestore.ArrayUnion(storeRef.ID),
			"updatedAt": firestore.ServerTimestamp,
		}
		if owner.DisplayName != "" {
			userFields["displayName"] = owner.DisplayName
		}
		return tx.Set(userRef, userFields, firestore.MergeAll)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", err
		}
		return "", fmt.Errorf("failed to create store for owner '%s': %w", owner.ID, err)
	}
	return storeRef.ID, nil
}

func (r *firestoreStoreRepository) GetByID(ctx context.Context, storeID string) (*models.Store, error) {
	if storeID == "" {
		return nil, errors.New("storeID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(storesCollection).Doc(storeID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("store with ID '%s' not found: %w", storeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store with ID '%s': %w", storeID, err)
	}

	var store models.Store
	if err := snap.DataTo(&store); err != nil {
		return nil, fmt.Errorf("failed to decode store data for ID '%s': %w", storeID, err)
	}
	store.ID = snap.Ref.ID
	return &store, nil
}

func (r *firestoreStoreRepository) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	iter := r.client.Collection(storesCollection).Where("basicInfo.slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("store with slug '%s' not found: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query store by slug '%s': %w", slug, err)
	}

	var store models.Store
	if err := snap.DataTo(&store); err != nil {
		return nil, fmt.Errorf("failed to decode store with slug '%s': %w", slug, err)
	}
	store.ID = snap.Ref.ID
	return &store, nil
}

func (r *firestoreStoreRepository) SlugExists(ctx context.Context, slug, excludeStoreID string) (bool, error) {
	iter := r.client.Collection(storesCollection).Where("basicInfo.slug", "==", slug).Limit(2).Documents(ctx)
	stores, err := decodeAll(iter, func(s *models.Store, id string) { s.ID = id })
	if err != nil {
		return false, fmt.Errorf("failed to check slug '%s': %w", slug, err)
	}
	for _, s := range stores {
		if s.ID != excludeStoreID {
			return true, nil
		}
	}
	return false, nil
}

// UpdateFields writes dot-path updates ("basicInfo.name", "settings.payment.cash").
// It fails with ErrNotFound when the store document does not exist.
func (r *firestoreStoreRepository) UpdateFields(ctx context.Context, storeID string, fields map[string]interface{}) error {
	if storeID == "" {
		return errors.New("storeID cannot be empty for UpdateFields operation")
	}
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	_, err := r.client.Collection(storesCollection).Doc(storeID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("store with ID '%s' not found for update: %w", storeID, ErrNotFound)
		}
		return fmt.Errorf("failed to update store '%s': %w", storeID, err)
	}
	return nil
}

func (r *firestoreStoreRepository) ListAll(ctx context.Context) ([]*models.Store, error) {
	iter := r.client.Collection(storesCollection).Documents(ctx)
	stores, err := decodeAll(iter, func(s *models.Store, id string) { s.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a UserRepository backed by Firestore.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}

func (r *firestoreUserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)
	users, err := decodeAll(iter, func(u *models.User, id string) { u.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
