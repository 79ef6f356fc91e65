package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/models"
)

func TestDeleteCategoryBlockedByActiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	cat, err := f.categorySvc.CreateCategory(ctx, testStore, "u1", models.CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	p, err := f.productSvc.CreateProduct(ctx, testStore, "u1", models.ProductInput{Name: "Soda", CategoryID: cat.ID})
	require.NoError(t, err)

	err = f.categorySvc.DeleteCategory(ctx, testStore, "u1", cat.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	_, err = f.productSvc.SetProductStatus(ctx, testStore, "u1", p.ID, models.ProductStatusInactive)
	require.NoError(t, err)

	require.NoError(t, f.categorySvc.DeleteCategory(ctx, testStore, "u1", cat.ID))
	_, err = f.categorySvc.GetCategory(ctx, testStore, cat.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestDeleteCategoryWithoutProducts(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	cat, err := f.categorySvc.CreateCategory(ctx, testStore, "u1", models.CategoryInput{Name: "Empty"})
	require.NoError(t, err)
	assert.NoError(t, f.categorySvc.DeleteCategory(ctx, testStore, "u1", cat.ID))
	assert.ErrorIs(t, f.categorySvc.DeleteCategory(ctx, testStore, "u1", cat.ID), ErrCategoryNotFound)
}

func TestCategoryNamesAreUniquePerStore(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	_, err := f.categorySvc.CreateCategory(ctx, testStore, "u1", models.CategoryInput{Name: "Pizzas", Order: 2})
	require.NoError(t, err)
	other, err := f.categorySvc.CreateCategory(ctx, testStore, "u1", models.CategoryInput{Name: "Pastas", Order: 1})
	require.NoError(t, err)

	_, err = f.categorySvc.CreateCategory(ctx, testStore, "u1", models.CategoryInput{Name: " PIZZAS"})
	assert.ErrorIs(t, err, ErrDuplicateCategoryName)

	_, err = f.categorySvc.UpdateCategory(ctx, testStore, "u1", other.ID, models.UpdateCategoryRequest{Name: strPtr("pizzas")})
	assert.ErrorIs(t, err, ErrDuplicateCategoryName)

	list, err := f.categorySvc.ListCategories(ctx, testStore)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Pastas", list[0].Name)
}

func TestDeleteTagBlockedByActiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	tag, err := f.tagSvc.CreateTag(ctx, testStore, "u1", models.TagInput{Name: "spicy", Color: "#ff0000"})
	require.NoError(t, err)
	_, err = f.productSvc.CreateProduct(ctx, testStore, "u1", models.ProductInput{Name: "Chili", TagIDs: []string{tag.ID}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.tagSvc.DeleteTag(ctx, testStore, "u1", tag.ID), ErrTagInUse)

	unused, err := f.tagSvc.CreateTag(ctx, testStore, "u1", models.TagInput{Name: "sweet"})
	require.NoError(t, err)
	assert.NoError(t, f.tagSvc.DeleteTag(ctx, testStore, "u1", unused.ID))
}

func TestTagValidation(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()

	_, err := f.tagSvc.CreateTag(ctx, testStore, "u1", models.TagInput{Name: "x", Color: "red"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.tagSvc.CreateTag(ctx, testStore, "u1", models.TagInput{Name: "Promo"})
	require.NoError(t, err)
	_, err = f.tagSvc.CreateTag(ctx, testStore, "u1", models.TagInput{Name: "promo"})
	assert.ErrorIs(t, err, ErrDuplicateTagName)
}
