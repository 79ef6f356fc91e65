package models

import (
	"strings"
	"time"
)

// ProductStatus is the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusArchived ProductStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusArchived:
		return true
	}
	return false
}

// LiveProductStatuses are the statuses that take part in name uniqueness.
var LiveProductStatuses = []ProductStatus{ProductStatusActive, ProductStatusInactive}

// Variant is a purchasable option of a product (size, flavour, ...).
type Variant struct {
	Name      string  `json:"name" firestore:"name" validate:"required,max=80"`
	Price     float64 `json:"price" firestore:"price" validate:"gte=0"`
	Available bool    `json:"available" firestore:"available"`
}

// Product lives under "stores/{storeId}/products/{productId}".
type Product struct {
	ID             string        `json:"id" firestore:"-"`
	StoreID        string        `json:"storeId" firestore:"-"`
	Name           string        `json:"name" firestore:"name"`
	NameNormalized string        `json:"-" firestore:"nameNormalized"`
	Description    string        `json:"description,omitempty" firestore:"description,omitempty"`
	Price          float64       `json:"price" firestore:"price"`
	CostPrice      float64       `json:"costPrice" firestore:"costPrice"`
	CategoryID     string        `json:"categoryId,omitempty" firestore:"categoryId,omitempty"`
	TagIDs         []string      `json:"tagIds,omitempty" firestore:"tagIds,omitempty"`
	ImageURLs      []string      `json:"imageUrls,omitempty" firestore:"imageUrls,omitempty"`
	Status         ProductStatus `json:"status" firestore:"status"`
	Featured       bool          `json:"featured" firestore:"featured"`
	Variants       []Variant     `json:"variants,omitempty" firestore:"variants,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time     `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// ProductStats summarizes a store's catalog for the dashboard.
type ProductStats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Inactive     int `json:"inactive"`
	Archived     int `json:"archived"`
	Featured     int `json:"featured"`
	WithVariants int `json:"withVariants"`
}

// ComputeProductStats counts products by status and flags.
func ComputeProductStats(products []*Product) ProductStats {
	var stats ProductStats
	for _, p := range products {
		stats.Total++
		switch p.Status {
		case ProductStatusActive:
			stats.Active++
		case ProductStatusInactive:
			stats.Inactive++
		case ProductStatusArchived:
			stats.Archived++
		}
		if p.Featured {
			stats.Featured++
		}
		if len(p.Variants) > 0 {
			stats.WithVariants++
		}
	}
	return stats
}

// NormalizeName is the comparison key used for product, category and tag names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
