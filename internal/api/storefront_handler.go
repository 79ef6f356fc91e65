package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/models"
)

// StorefrontHandler serves the public store pages. No authentication is required.
type StorefrontHandler struct {
	storefrontService core.StorefrontService
	logger            *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(ss core.StorefrontService, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{storefrontService: ss, logger: logger}
}

// GetStorefront handles GET /storefront/:slug.
func (h *StorefrontHandler) GetStorefront(c *gin.Context) {
	page, err := h.storefrontService.GetStorefront(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, page)
}

// ListProducts handles GET /storefront/:slug/products?categoryId=.
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	products, err := h.storefrontService.ListProducts(c.Request.Context(), c.Param("slug"), c.Query("categoryId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /storefront/:slug/products/:productId.
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	product, err := h.storefrontService.GetProduct(c.Request.Context(), c.Param("slug"), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListCategories handles GET /storefront/:slug/categories.
func (h *StorefrontHandler) ListCategories(c *gin.Context) {
	categories, err := h.storefrontService.ListCategories(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	c.JSON(http.StatusOK, categories)
}
