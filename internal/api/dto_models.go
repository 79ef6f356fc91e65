package api

import (
	"github.com/example/storefront/internal/models"
)

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProductListResponse is one page of products. NextCursor is passed back as
// startAfter to fetch the following page; it is empty on the last page.
type ProductListResponse struct {
	Products   []*models.Product `json:"products"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

// SubscriptionOverview is the dashboard billing page: the store's live subscription,
// if any, and the plans on offer.
type SubscriptionOverview struct {
	Subscription *models.Subscription `json:"subscription"`
	Plans        []*models.Plan       `json:"plans"`
}

// ClaimsResponse is the body of GET /admin/users/:uid/claims.
type ClaimsResponse struct {
	UID    string                 `json:"uid"`
	Claims map[string]interface{} `json:"claims"`
}

// SectionsResponse lists the editable profile sections and their fields.
type SectionsResponse struct {
	Sections map[string][]string `json:"sections"`
}
