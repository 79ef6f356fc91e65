package models

// CreateStoreRequest is the body of POST /stores.
type CreateStoreRequest struct {
	Name        string `json:"name" binding:"required,max=80"`
	Slug        string `json:"slug" binding:"required,max=60"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name        string        `json:"name" validate:"required,max=120"`
	Description string        `json:"description,omitempty" validate:"max=2000"`
	Price       float64       `json:"price" validate:"gte=0"`
	CostPrice   float64       `json:"costPrice" validate:"gte=0"`
	CategoryID  string        `json:"categoryId,omitempty"`
	TagIDs      []string      `json:"tagIds,omitempty" validate:"max=20,dive,required"`
	ImageURLs   []string      `json:"imageUrls,omitempty" validate:"max=10,dive,url"`
	Status      ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=active inactive archived"`
	Featured    bool          `json:"featured"`
	Variants    []Variant     `json:"variants,omitempty" validate:"max=50,dive"`
}

// UpdateProductRequest is a partial update. Nil pointers leave fields untouched.
type UpdateProductRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	CostPrice   *float64       `json:"costPrice,omitempty"`
	CategoryID  *string        `json:"categoryId,omitempty"`
	TagIDs      *[]string      `json:"tagIds,omitempty"`
	ImageURLs   *[]string      `json:"imageUrls,omitempty"`
	Status      *ProductStatus `json:"status,omitempty"`
	Featured    *bool          `json:"featured,omitempty"`
	Variants    *[]Variant     `json:"variants,omitempty"`
}

// SetProductStatusRequest is the body of PATCH /products/:productId/status.
type SetProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required,oneof=active inactive archived"`
}

// ProductListParams filters and pages a product listing.
type ProductListParams struct {
	Status     ProductStatus
	CategoryID string
	Limit      int
	StartAfter string
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=80"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

type TagInput struct {
	Name  string `json:"name" binding:"required,max=40"`
	Color string `json:"color,omitempty"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// SectionUpdateRequest is the body of PATCH /store/sections/:section.
type SectionUpdateRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}

// SetClaimsRequest is the body of PUT /admin/users/:uid/claims.
type SetClaimsRequest struct {
	StoreID string `json:"storeId" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=owner admin staff"`
}

// SetMemberRoleRequest is the body of PUT /store/members/:uid.
type SetMemberRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=owner admin staff"`
}

// CreatePlanRequest is the body of POST /admin/plans.
type CreatePlanRequest struct {
	Name      string           `json:"name" binding:"required" validate:"required,max=120"`
	Price     float64          `json:"price" binding:"required" validate:"gt=0"`
	Currency  string           `json:"currency" binding:"required" validate:"required,len=3"`
	Frequency BillingFrequency `json:"frequency" binding:"required" validate:"oneof=monthly yearly"`
}

// SubscribeRequest is the body of POST /subscription.
type SubscribeRequest struct {
	PlanID     string `json:"planId" binding:"required"`
	PayerEmail string `json:"payerEmail" binding:"required,email"`
}
