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

const defaultProductPageSize = 50

type firestoreProductRepository struct {
	client *firestore.Client
}

// NewFirestoreProductRepository creates a ProductRepository backed by Firestore.
func NewFirestoreProductRepository(client *firestore.Client) ProductRepository {
	if client == nil {
		panic("Firestore client is not initialized for ProductRepository")
	}
	return &firestoreProductRepository{client: client}
}

func (r *firestoreProductRepository) products(storeID string) *firestore.CollectionRef {
	return storeCollection(r.client, storeID, productsCollection)
}

// liveNameQuery selects active or inactive products holding a normalized name.
func (r *firestoreProductRepository) liveNameQuery(storeID, normalizedName string) firestore.Query {
	statuses := make([]string, 0, len(models.LiveProductStatuses))
	for _, s := range models.LiveProductStatuses {
		statuses = append(statuses, string(s))
	}
	return r.products(storeID).
		Where("nameNormalized", "==", normalizedName).
		Where("status", "in", statuses)
}

// Create inserts the product after checking, in the same transaction, that no live
// product already uses the normalized name. Archived products skip the check.
func (r *firestoreProductRepository) Create(ctx context.Context, storeID string, product *models.Product) (string, error) {
	ref := r.products(storeID).NewDoc()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if product.Status != models.ProductStatusArchived {
			taken, err := nameTaken(tx, r.liveNameQuery(storeID, product.NameNormalized), "")
			if err != nil {
				return err
			}
			if taken {
				return ErrAlreadyExists
			}
		}
		return tx.Create(ref, product)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", fmt.Errorf("product name '%s' in store '%s': %w", product.Name, storeID, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create product in store '%s': %w", storeID, err)
	}
	product.ID = ref.ID
	product.StoreID = storeID
	return ref.ID, nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, storeID, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, errors.New("productID cannot be empty for GetByID operation")
	}
	snap, err := r.products(storeID).Doc(productID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("product '%s' not found: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", productID, err)
	}

	var product models.Product
	if err := snap.DataTo(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product '%s': %w", productID, err)
	}
	product.ID = snap.Ref.ID
	product.StoreID = storeID
	return &product, nil
}

// List returns one page of products, newest first. StartAfter is the ID of the last
// product of the previous page.
func (r *firestoreProductRepository) List(ctx context.Context, storeID string, params models.ProductListParams) ([]*models.Product, error) {
	query := r.products(storeID).Query
	if params.Status != "" {
		query = query.Where("status", "==", string(params.Status))
	}
	if params.CategoryID != "" {
		query = query.Where("categoryId", "==", params.CategoryID)
	}
	query = query.OrderBy("createdAt", firestore.Desc)

	limit := params.Limit
	if limit <= 0 {
		limit = defaultProductPageSize
	}
	query = query.Limit(limit)

	if params.StartAfter != "" {
		cursor, err := r.products(storeID).Doc(params.StartAfter).Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load pagination cursor '%s': %w", params.StartAfter, err)
		}
		query = query.StartAfter(cursor)
	}

	products, err := decodeAll(query.Documents(ctx), func(p *models.Product, id string) {
		p.ID = id
		p.StoreID = storeID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products for store '%s': %w", storeID, err)
	}
	return products, nil
}

func (r *firestoreProductRepository) ListAll(ctx context.Context, storeID string) ([]*models.Product, error) {
	iter := r.products(storeID).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	products, err := decodeAll(iter, func(p *models.Product, id string) {
		p.ID = id
		p.StoreID = storeID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list all products for store '%s': %w", storeID, err)
	}
	return products, nil
}

// Update overwrites the product document. When the product is live, the name rule is
// re-checked in the same transaction, ignoring the product itself.
func (r *firestoreProductRepository) Update(ctx context.Context, storeID string, product *models.Product) error {
	if product.ID == "" {
		return errors.New("product ID cannot be empty for Update operation")
	}
	ref := r.products(storeID).Doc(product.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if product.Status != models.ProductStatusArchived {
			taken, err := nameTaken(tx, r.liveNameQuery(storeID, product.NameNormalized), product.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrAlreadyExists
			}
		}
		if _, err := tx.Get(ref); err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(ref, product)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrNotFound):
		return fmt.Errorf("product '%s': %w", product.ID, err)
	default:
		return fmt.Errorf("failed to update product '%s': %w", product.ID, err)
	}
}

func (r *firestoreProductRepository) Delete(ctx context.Context, storeID, productID string) error {
	if productID == "" {
		return errors.New("productID cannot be empty for Delete operation")
	}
	_, err := r.products(storeID).Doc(productID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("product '%s' not found for deletion: %w", productID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete product '%s': %w", productID, err)
	}
	return nil
}

func (r *firestoreProductRepository) ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	iter := r.liveNameQuery(storeID, normalizedName).Limit(2).Documents(ctx)
	matches, err := decodeAll(iter, func(p *models.Product, id string) { p.ID = id })
	if err != nil {
		return false, fmt.Errorf("failed to check product name in store '%s': %w", storeID, err)
	}
	for _, p := range matches {
		if p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *firestoreProductRepository) ExistsWithCategory(ctx context.Context, storeID, categoryID string, productStatus models.ProductStatus) (bool, error) {
	q := r.products(storeID).Where("categoryId", "==", categoryID).Where("status", "==", string(productStatus))
	found, err := exists(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check products of category '%s': %w", categoryID, err)
	}
	return found, nil
}

func (r *firestoreProductRepository) ExistsWithTag(ctx context.Context, storeID, tagID string, productStatus models.ProductStatus) (bool, error) {
	q := r.products(storeID).Where("tagIds", "array-contains", tagID).Where("status", "==", string(productStatus))
	found, err := exists(ctx, q)
	if err != nil {
		return false, fmt.Errorf("failed to check products of tag '%s': %w", tagID, err)
	}
	return found, nil
}
