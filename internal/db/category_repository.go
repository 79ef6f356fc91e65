package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/storefront/internal/models"
)

type firestoreCategoryRepository struct {
	client *firestore.Client
}

// NewFirestoreCategoryRepository creates a CategoryRepository backed by Firestore.
func NewFirestoreCategoryRepository(client *firestore.Client) CategoryRepository {
	if client == nil {
		panic("Firestore client is not initialized for CategoryRepository")
	}
	return &firestoreCategoryRepository{client: client}
}

func (r *firestoreCategoryRepository) categories(storeID string) *firestore.CollectionRef {
	return storeCollection(r.client, storeID, categoriesCollection)
}

func (r *firestoreCategoryRepository) Create(ctx context.Context, storeID string, category *models.Category) (string, error) {
	ref := r.categories(storeID).NewDoc()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := nameTaken(tx, r.categories(storeID).Where("nameNormalized", "==", category.NameNormalized), "")
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}
		return tx.Create(ref, category)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", fmt.Errorf("category name '%s': %w", category.Name, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create category in store '%s': %w", storeID, err)
	}
	category.ID = ref.ID
	category.StoreID = storeID
	return ref.ID, nil
}

func (r *firestoreCategoryRepository) GetByID(ctx context.Context, storeID, categoryID string) (*models.Category, error) {
	if categoryID == "" {
		return nil, errors.New("categoryID cannot be empty for GetByID operation")
	}
	snap, err := r.categories(storeID).Doc(categoryID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("category '%s' not found: %w", categoryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category '%s': %w", categoryID, err)
	}
	var category models.Category
	if err := snap.DataTo(&category); err != nil {
		return nil, fmt.Errorf("failed to decode category '%s': %w", categoryID, err)
	}
	category.ID = snap.Ref.ID
	category.StoreID = storeID
	return &category, nil
}

func (r *firestoreCategoryRepository) List(ctx context.Context, storeID string) ([]*models.Category, error) {
	iter := r.categories(storeID).OrderBy("order", firestore.Asc).Documents(ctx)
	categories, err := decodeAll(iter, func(c *models.Category, id string) {
		c.ID = id
		c.StoreID = storeID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories for store '%s': %w", storeID, err)
	}
	return categories, nil
}

func (r *firestoreCategoryRepository) Update(ctx context.Context, storeID string, category *models.Category) error {
	ref := r.categories(storeID).Doc(category.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := nameTaken(tx, r.categories(storeID).Where("nameNormalized", "==", category.NameNormalized), category.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(ref, category)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrNotFound):
		return fmt.Errorf("category '%s': %w", category.ID, err)
	default:
		return fmt.Errorf("failed to update category '%s': %w", category.ID, err)
	}
}

func (r *firestoreCategoryRepository) Delete(ctx context.Context, storeID, categoryID string) error {
	_, err := r.categories(storeID).Doc(categoryID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("category '%s' not found for deletion: %w", categoryID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete category '%s': %w", categoryID, err)
	}
	return nil
}

func (r *firestoreCategoryRepository) ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	iter := r.categories(storeID).Where("nameNormalized", "==", normalizedName).Limit(2).Documents(ctx)
	matches, err := decodeAll(iter, func(c *models.Category, id string) { c.ID = id })
	if err != nil {
		return false, fmt.Errorf("failed to check category name in store '%s': %w", storeID, err)
	}
	for _, c := range matches {
		if c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
