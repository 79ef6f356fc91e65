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

type firestoreSubscriptionRepository struct {
	client *firestore.Client
}

// NewFirestoreSubscriptionRepository creates a SubscriptionRepository backed by Firestore.
func NewFirestoreSubscriptionRepository(client *firestore.Client) SubscriptionRepository {
	if client == nil {
		panic("Firestore client is not initialized for SubscriptionRepository")
	}
	return &firestoreSubscriptionRepository{client: client}
}

func (r *firestoreSubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) (string, error) {
	ref := r.client.Collection(subscriptionsCollection).NewDoc()
	if _, err := ref.Create(ctx, sub); err != nil {
		return "", fmt.Errorf("failed to create subscription for store '%s': %w", sub.StoreID, err)
	}
	sub.ID = ref.ID
	return ref.ID, nil
}

func (r *firestoreSubscriptionRepository) GetByID(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscriptionID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(subscriptionsCollection).Doc(subscriptionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("subscription '%s' not found: %w", subscriptionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription '%s': %w", subscriptionID, err)
	}
	var sub models.Subscription
	if err := snap.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription '%s': %w", subscriptionID, err)
	}
	sub.ID = snap.Ref.ID
	return &sub, nil
}

func (r *firestoreSubscriptionRepository) first(ctx context.Context, q firestore.Query, what string) (*models.Subscription, error) {
	iter := q.Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("subscription for %s not found: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription for %s: %w", what, err)
	}
	var sub models.Subscription
	if err := snap.DataTo(&sub); err != nil {
		return nil, fmt.Errorf("failed to decode subscription '%s': %w", snap.Ref.ID, err)
	}
	sub.ID = snap.Ref.ID
	return &sub, nil
}

func (r *firestoreSubscriptionRepository) GetByProcessorID(ctx context.Context, processorID string) (*models.Subscription, error) {
	q := r.client.Collection(subscriptionsCollection).Where("processorId", "==", processorID)
	return r.first(ctx, q, "processor id '"+processorID+"'")
}

func (r *firestoreSubscriptionRepository) GetCurrentByStore(ctx context.Context, storeID string) (*models.Subscription, error) {
	q := r.client.Collection(subscriptionsCollection).
		Where("storeId", "==", storeID).
		Where("status", "!=", string(models.SubscriptionStatusCancelled)).
		OrderBy("status", firestore.Asc).
		OrderBy("createdAt", firestore.Desc)
	return r.first(ctx, q, "store '"+storeID+"'")
}

func (r *firestoreSubscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		return errors.New("subscription ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(subscriptionsCollection).Doc(sub.ID).Set(ctx, sub)
	if err != nil {
		return fmt.Errorf("failed to update subscription '%s': %w", sub.ID, err)
	}
	return nil
}

type firestorePlanRepository struct {
	client *firestore.Client
}

// NewFirestorePlanRepository creates a PlanRepository backed by Firestore.
func NewFirestorePlanRepository(client *firestore.Client) PlanRepository {
	if client == nil {
		panic("Firestore client is not initialized for PlanRepository")
	}
	return &firestorePlanRepository{client: client}
}

func (r *firestorePlanRepository) Create(ctx context.Context, plan *models.Plan) (string, error) {
	ref := r.client.Collection(plansCollection).NewDoc()
	if _, err := ref.Create(ctx, plan); err != nil {
		return "", fmt.Errorf("failed to create plan '%s': %w", plan.Name, err)
	}
	plan.ID = ref.ID
	return ref.ID, nil
}

func (r *firestorePlanRepository) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	if planID == "" {
		return nil, errors.New("planID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(plansCollection).Doc(planID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("plan '%s' not found: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan '%s': %w", planID, err)
	}
	var plan models.Plan
	if err := snap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan '%s': %w", planID, err)
	}
	plan.ID = snap.Ref.ID
	return &plan, nil
}

func (r *firestorePlanRepository) ListActive(ctx context.Context) ([]*models.Plan, error) {
	iter := r.client.Collection(plansCollection).Where("active", "==", true).OrderBy("price", firestore.Asc).Documents(ctx)
	plans, err := decodeAll(iter, func(p *models.Plan, id string) { p.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}
