package models

import "time"

// Category lives under "stores/{storeId}/categories/{categoryId}".
type Category struct {
	ID             string    `json:"id" firestore:"-"`
	StoreID        string    `json:"storeId" firestore:"-"`
	Name           string    `json:"name" firestore:"name"`
	NameNormalized string    `json:"-" firestore:"nameNormalized"`
	Description    string    `json:"description,omitempty" firestore:"description,omitempty"`
	Order          int       `json:"order" firestore:"order"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// Tag lives under "stores/{storeId}/tags/{tagId}".
type Tag struct {
	ID             string    `json:"id" firestore:"-"`
	StoreID        string    `json:"storeId" firestore:"-"`
	Name           string    `json:"name" firestore:"name"`
	NameNormalized string    `json:"-" firestore:"nameNormalized"`
	Color          string    `json:"color,omitempty" firestore:"color,omitempty"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
