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

type firestoreTagRepository struct {
	client *firestore.Client
}

// NewFirestoreTagRepository creates a TagRepository backed by Firestore.
func NewFirestoreTagRepository(client *firestore.Client) TagRepository {
	if client == nil {
		panic("Firestore client is not initialized for TagRepository")
	}
	return &firestoreTagRepository{client: client}
}

func (r *firestoreTagRepository) tags(storeID string) *firestore.CollectionRef {
	return storeCollection(r.client, storeID, tagsCollection)
}

func (r *firestoreTagRepository) Create(ctx context.Context, storeID string, tag *models.Tag) (string, error) {
	ref := r.tags(storeID).NewDoc()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := nameTaken(tx, r.tags(storeID).Where("nameNormalized", "==", tag.NameNormalized), "")
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}
		return tx.Create(ref, tag)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", fmt.Errorf("tag name '%s': %w", tag.Name, ErrAlreadyExists)
		}
		return "", fmt.Errorf("failed to create tag in store '%s': %w", storeID, err)
	}
	tag.ID = ref.ID
	tag.StoreID = storeID
	return ref.ID, nil
}

func (r *firestoreTagRepository) GetByID(ctx context.Context, storeID, tagID string) (*models.Tag, error) {
	if tagID == "" {
		return nil, errors.New("tagID cannot be empty for GetByID operation")
	}
	snap, err := r.tags(storeID).Doc(tagID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("tag '%s' not found: %w", tagID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag '%s': %w", tagID, err)
	}
	var tag models.Tag
	if err := snap.DataTo(&tag); err != nil {
		return nil, fmt.Errorf("failed to decode tag '%s': %w", tagID, err)
	}
	tag.ID = snap.Ref.ID
	tag.StoreID = storeID
	return &tag, nil
}

func (r *firestoreTagRepository) List(ctx context.Context, storeID string) ([]*models.Tag, error) {
	iter := r.tags(storeID).OrderBy("nameNormalized", firestore.Asc).Documents(ctx)
	tags, err := decodeAll(iter, func(t *models.Tag, id string) {
		t.ID = id
		t.StoreID = storeID
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for store '%s': %w", storeID, err)
	}
	return tags, nil
}

func (r *firestoreTagRepository) Update(ctx context.Context, storeID string, tag *models.Tag) error {
	ref := r.tags(storeID).Doc(tag.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		taken, err := nameTaken(tx, r.tags(storeID).Where("nameNormalized", "==", tag.NameNormalized), tag.ID)
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
		return tx.Set(ref, tag)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrNotFound):
		return fmt.Errorf("tag '%s': %w", tag.ID, err)
	default:
		return fmt.Errorf("failed to update tag '%s': %w", tag.ID, err)
	}
}

func (r *firestoreTagRepository) Delete(ctx context.Context, storeID, tagID string) error {
	_, err := r.tags(storeID).Doc(tagID).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("tag '%s' not found for deletion: %w", tagID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete tag '%s': %w", tagID, err)
	}
	return nil
}

func (r *firestoreTagRepository) ExistsByName(ctx context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	iter := r.tags(storeID).Where("nameNormalized", "==", normalizedName).Limit(2).Documents(ctx)
	matches, err := decodeAll(iter, func(t *models.Tag, id string) { t.ID = id })
	if err != nil {
		return false, fmt.Errorf("failed to check tag name in store '%s': %w", storeID, err)
	}
	for _, t := range matches {
		if t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
