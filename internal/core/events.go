package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/messagequeue"
)

// Domain event types.
const (
	EventStoreCreated              = "store.created"
	EventProductCreated            = "product.created"
	EventProductUpdated            = "product.updated"
	EventProductDeleted            = "product.deleted"
	EventSubscriptionStatusChanged = "subscription.status_changed"
)

// publishEvent is fire-and-report: a publish failure is logged only.
func publishEvent(ctx context.Context, pub messagequeue.Publisher, logger *zap.Logger, eventType, storeID string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	event := messagequeue.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		StoreID:    storeID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", eventType),
			zap.String("store_id", storeID),
			zap.Error(err))
	}
}
