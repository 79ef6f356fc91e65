package models

import "time"

// User is the app-level profile kept next to the Firebase Auth record.
// The document ID is the Firebase UID.
type User struct {
	ID          string    `json:"id" firestore:"-"`
	Email       string    `json:"email" firestore:"email"`
	DisplayName string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	StoreIDs    []string  `json:"storeIds,omitempty" firestore:"storeIds,omitempty"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
