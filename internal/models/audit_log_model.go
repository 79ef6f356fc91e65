package models

import "time"

// AuditLog represents a dashboard mutation.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp,serverTimestamp"`
	UserID     string                 `json:"userId" firestore:"userId"`
	StoreID    string                 `json:"storeId,omitempty" firestore:"storeId,omitempty"`
	Action     string                 `json:"action" firestore:"action"` // e.g. "PRODUCT_CREATE", "CLAIMS_UPDATE"
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"`
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}
