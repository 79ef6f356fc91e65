package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"validation", fmt.Errorf("%w: price", ErrValidation), CategoryValidation},
		{"section field", fmt.Errorf("wrap: %w", ErrInvalidSectionField), CategoryValidation},
		{"bad webhook", mercadopago.ErrInvalidNotification, CategoryValidation},
		{"duplicate", fmt.Errorf("%w: 'x'", ErrDuplicateProductName), CategoryBusiness},
		{"in use", ErrCategoryInUse, CategoryBusiness},
		{"not found", fmt.Errorf("%w: 'p1'", ErrProductNotFound), CategoryNotFound},
		{"db not found", fmt.Errorf("get: %w", db.ErrNotFound), CategoryNotFound},
		{"revoked", identity.ErrInvalidToken, CategoryPermission},
		{"forbidden", ErrForbidden, CategoryPermission},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), CategoryNetwork},
		{"processor down", &mercadopago.APIError{StatusCode: 502}, CategoryNetwork},
		{"processor rejects", &mercadopago.APIError{StatusCode: 400}, CategoryValidation},
		{"grpc unavailable", fmt.Errorf("query: %w", status.Error(codes.Unavailable, "down")), CategoryNetwork},
		{"grpc denied", status.Error(codes.PermissionDenied, "rules"), CategoryPermission},
		{"anything else", errors.New("boom"), CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, ClassifyError(tt.err).Category)
			assert.NotEmpty(t, ClassifyError(tt.err).Message)
		})
	}
}

func TestClassifyErrorMessages(t *testing.T) {
	got := ClassifyError(fmt.Errorf("%w: 'Pizza'", ErrDuplicateProductName))
	assert.Equal(t, ErrDuplicateProductName.Error(), got.Message)

	got = ClassifyError(errors.New("firestore: internal detail"))
	assert.Equal(t, categoryMessages[CategoryUnknown], got.Message, "internal details are not exposed")

	assert.Equal(t, ClassifiedError{}, ClassifyError(nil))
}
