package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
)

// StoreHandler handles store creation and the dashboard profile.
type StoreHandler struct {
	storeService core.StoreService
	logger       *zap.Logger
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(ss core.StoreService, logger *zap.Logger) *StoreHandler {
	return &StoreHandler{storeService: ss, logger: logger}
}

// CreateStore handles POST /stores. The caller must sign in again (or refresh the ID
// token) to receive the new storeId claim.
func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req models.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := h.storeService.CreateStore(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

// GetStore handles GET /store.
func (h *StoreHandler) GetStore(c *gin.Context) {
	store, err := h.storeService.GetStore(c.Request.Context(), c.GetString(middleware.ContextStoreID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// ListSections handles GET /store/sections.
func (h *StoreHandler) ListSections(c *gin.Context) {
	sections := make(map[string][]string)
	for _, name := range core.SectionNames() {
		sections[name] = core.SectionFields(name)
	}
	c.JSON(http.StatusOK, SectionsResponse{Sections: sections})
}

// UpdateSection handles PATCH /store/sections/:section.
func (h *StoreHandler) UpdateSection(c *gin.Context) {
	var req models.SectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	store, err := h.storeService.UpdateSection(
		c.Request.Context(),
		c.GetString(middleware.ContextStoreID),
		c.GetString(middleware.ContextUserID),
		c.Param("section"),
		req.Fields,
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, store)
}
