// Package messagequeue publishes domain events to a message broker.
package messagequeue

import (
	"context"
	"time"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"` // e.g. "store.created", "product.deleted"
	StoreID    string                 `json:"storeId,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Publisher defines the interface for event publishing.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
