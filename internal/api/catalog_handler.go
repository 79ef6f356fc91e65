package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/models"
)

// CatalogHandler handles the dashboard category and tag endpoints.
type CatalogHandler struct {
	categoryService core.CategoryService
	tagService      core.TagService
	logger          *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cs core.CategoryService, ts core.TagService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{categoryService: cs, tagService: ts, logger: logger}
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), storeID(c), userID(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), storeID(c), c.Param("categoryId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := h.categoryService.UpdateCategory(c.Request.Context(), storeID(c), userID(c), c.Param("categoryId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory answers 409 while active products still reference the category.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), storeID(c), userID(c), c.Param("categoryId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) CreateTag(c *gin.Context) {
	var input models.TagInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := h.tagService.CreateTag(c.Request.Context(), storeID(c), userID(c), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *CatalogHandler) ListTags(c *gin.Context) {
	tags, err := h.tagService.ListTags(c.Request.Context(), storeID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c *gin.Context) {
	tag, err := h.tagService.GetTag(c.Request.Context(), storeID(c), c.Param("tagId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) UpdateTag(c *gin.Context) {
	var req models.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := h.tagService.UpdateTag(c.Request.Context(), storeID(c), userID(c), c.Param("tagId"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *CatalogHandler) DeleteTag(c *gin.Context) {
	if err := h.tagService.DeleteTag(c.Request.Context(), storeID(c), userID(c), c.Param("tagId")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
