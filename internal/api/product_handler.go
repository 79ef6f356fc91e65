package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
)

const defaultPageSize = 20

// ProductHandler handles the dashboard product endpoints. The store comes from the
// caller's storeId claim.
type ProductHandler struct {
	productService core.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps core.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{productService: ps, logger: logger}
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.CreateProduct(c.Request.Context(), storeID(c), userID(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// ListProducts handles GET /products?limit=&startAfter=&status=&categoryId=.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = n
	}
	params := models.ProductListParams{
		Status:     models.ProductStatus(c.Query("status")),
		CategoryID: c.Query("categoryId"),
		Limit:      limit,
		StartAfter: c.Query("startAfter"),
	}

	products, err := h.productService.ListProducts(c.Request.Context(), storeID(c), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := ProductListResponse{Products: products}
	if len(products) == limit {
		resp.NextCursor = products[len(products)-1].ID
	}
	if resp.Products == nil {
		resp.Products = []*models.Product{}
	}
	c.JSON(http.StatusOK, resp)
}

// GetProduct handles GET /products/:productId.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), storeID(c), c.Param("productId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PATCH /products/:productId.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.UpdateProduct(c.Request.Context(), storeID(c), userID(c), c.Param("productId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// SetProductStatus handles PATCH /products/:productId/status.
func (h *ProductHandler) SetProductStatus(c *gin.Context) {
	var req models.SetProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.productService.SetProductStatus(c.Request.Context(), storeID(c), userID(c), c.Param("productId"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:productId.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), storeID(c), userID(c), c.Param("productId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStats handles GET /products/stats?refresh=true.
func (h *ProductHandler) GetStats(c *gin.Context) {
	force, _ := strconv.ParseBool(c.Query("refresh"))
	stats, err := h.productService.GetStats(c.Request.Context(), storeID(c), force)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func storeID(c *gin.Context) string { return c.GetString(middleware.ContextStoreID) }
func userID(c *gin.Context) string  { return c.GetString(middleware.ContextUserID) }
