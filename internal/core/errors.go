package core

import (
	"context"
	"errors"
	"net"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
)

// Errors shared by all services.
var (
	ErrValidation  = errors.New("validation failed")
	ErrForbidden   = errors.New("operation not permitted")
	ErrInvalidRole = errors.New("invalid role")
)

// Product, category and tag errors.
var (
	ErrProductNotFound       = errors.New("product not found")
	ErrDuplicateProductName  = errors.New("a product with this name already exists")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrDuplicateCategoryName = errors.New("a category with this name already exists")
	ErrCategoryInUse         = errors.New("category is used by active products")
	ErrTagNotFound           = errors.New("tag not found")
	ErrDuplicateTagName      = errors.New("a tag with this name already exists")
	ErrTagInUse              = errors.New("tag is used by active products")
)

// Store and profile errors.
var (
	ErrStoreNotFound       = errors.New("store not found")
	ErrSlugTaken           = errors.New("store slug is already taken")
	ErrUserAlreadyHasStore = errors.New("user already owns a store")
	ErrUnknownSection      = errors.New("unknown profile section")
	ErrInvalidSectionField = errors.New("field is not part of the section")
)

// Billing errors.
var (
	ErrPlanNotFound             = errors.New("plan not found")
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrSubscriptionExists       = errors.New("store already has a live subscription")
	ErrInvalidSubscriptionState = errors.New("subscription cannot change to the requested state")
)

// ErrorCategory buckets errors for user-facing messages.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNetwork    ErrorCategory = "network"
	CategoryPermission ErrorCategory = "permission"
	CategoryBusiness   ErrorCategory = "business"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryUnknown    ErrorCategory = "unknown"
)

var categoryMessages = map[ErrorCategory]string{
	CategoryValidation: "The submitted data is invalid.",
	CategoryNetwork:    "A remote service could not be reached. Please try again.",
	CategoryPermission: "You do not have permission to perform this action.",
	CategoryBusiness:   "The operation conflicts with the current state.",
	CategoryNotFound:   "The requested resource was not found.",
	CategoryUnknown:    "An unexpected error occurred.",
}

// ClassifiedError is the result of ClassifyError.
type ClassifiedError struct {
	Category ErrorCategory
	// Message is safe to show to end users.
	Message string
}

var (
	validationErrors = []error{ErrValidation, ErrInvalidRole, ErrUnknownSection, ErrInvalidSectionField, mercadopago.ErrInvalidNotification}
	permissionErrors = []error{ErrForbidden, identity.ErrInvalidToken, mercadopago.ErrInvalidSignature}
	notFoundErrors   = []error{
		ErrProductNotFound, ErrCategoryNotFound, ErrTagNotFound, ErrStoreNotFound,
		ErrPlanNotFound, ErrSubscriptionNotFound, db.ErrNotFound, identity.ErrUserNotFound, mercadopago.ErrNotFound,
	}
	businessErrors = []error{
		ErrDuplicateProductName, ErrDuplicateCategoryName, ErrCategoryInUse, ErrDuplicateTagName, ErrTagInUse,
		ErrSlugTaken, ErrUserAlreadyHasStore, ErrSubscriptionExists, ErrInvalidSubscriptionState, db.ErrAlreadyExists,
	}
)

// ClassifyError maps any error returned by a service to one category and a stable
// user-facing message. Sentinels from this package describe themselves; everything
// else gets the category's generic message.
func ClassifyError(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{}
	}
	category := classify(err)
	msg := categoryMessages[category]
	if s := ownSentinel(err); s != nil {
		msg = s.Error()
	}
	return ClassifiedError{Category: category, Message: msg}
}

func classify(err error) ErrorCategory {
	switch {
	case isAny(err, validationErrors):
		return CategoryValidation
	case isAny(err, permissionErrors):
		return CategoryPermission
	case isAny(err, notFoundErrors):
		return CategoryNotFound
	case isAny(err, businessErrors):
		return CategoryBusiness
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return CategoryValidation
	}

	var apiErr *mercadopago.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return CategoryPermission
		case apiErr.StatusCode >= 500:
			return CategoryNetwork
		case apiErr.StatusCode >= 400:
			return CategoryValidation
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryNetwork
	}

	if st, ok := status.FromError(unwrapStatus(err)); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return CategoryNetwork
		case codes.PermissionDenied, codes.Unauthenticated:
			return CategoryPermission
		case codes.NotFound:
			return CategoryNotFound
		case codes.AlreadyExists, codes.FailedPrecondition, codes.Aborted:
			return CategoryBusiness
		case codes.InvalidArgument:
			return CategoryValidation
		}
	}
	return CategoryUnknown
}

// unwrapStatus finds the first error in the chain that carries a gRPC status.
func unwrapStatus(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if _, ok := e.(interface{ GRPCStatus() *status.Status }); ok {
			return e
		}
	}
	return nil
}

// describedErrors carry messages that are safe to return to the caller verbatim.
var describedErrors = []error{
	ErrInvalidRole, ErrForbidden, ErrUnknownSection, ErrInvalidSectionField,
	ErrProductNotFound, ErrDuplicateProductName, ErrCategoryNotFound, ErrDuplicateCategoryName, ErrCategoryInUse,
	ErrTagNotFound, ErrDuplicateTagName, ErrTagInUse, ErrStoreNotFound, ErrSlugTaken, ErrUserAlreadyHasStore,
	ErrPlanNotFound, ErrSubscriptionNotFound, ErrSubscriptionExists, ErrInvalidSubscriptionState,
}

func ownSentinel(err error) error {
	for _, s := range describedErrors {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
