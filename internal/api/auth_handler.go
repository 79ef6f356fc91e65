package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/core"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
)

// AuthHandler exposes the caller's session and the admin user-management endpoints.
type AuthHandler struct {
	authService core.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as core.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: as, logger: logger}
}

// GetSession handles GET /auth/session. The dashboard uses it to decide between the
// onboarding flow (no storeId claim) and the store dashboard.
func (h *AuthHandler) GetSession(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":  session,
		"hasStore": session.HasStore(),
	})
}

// GetClaims handles GET /admin/users/:uid/claims.
func (h *AuthHandler) GetClaims(c *gin.Context) {
	uid := c.Param("uid")
	claims, err := h.authService.GetClaims(c.Request.Context(), middleware.SessionFrom(c), uid)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if claims == nil {
		claims = map[string]interface{}{}
	}
	c.JSON(http.StatusOK, ClaimsResponse{UID: uid, Claims: claims})
}

// SetClaims handles PUT /admin/users/:uid/claims. The user's refresh tokens are
// revoked, so the change applies from their next sign-in.
func (h *AuthHandler) SetClaims(c *gin.Context) {
	var req models.SetClaimsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	uid := c.Param("uid")
	if err := h.authService.SetStoreClaims(c.Request.Context(), middleware.SessionFrom(c), uid, req.StoreID, req.Role); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Claims updated", Data: req})
}

// SetMemberRole handles PUT /store/members/:uid. The store is always the caller's own.
func (h *AuthHandler) SetMemberRole(c *gin.Context) {
	var req models.SetMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	uid := c.Param("uid")
	if err := h.authService.SetStoreClaims(c.Request.Context(), middleware.SessionFrom(c), uid, storeID(c), req.Role); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Member role updated", Data: gin.H{"uid": uid, "role": req.Role}})
}

// EnableUser handles POST /admin/users/:uid/enable.
func (h *AuthHandler) EnableUser(c *gin.Context) {
	h.setDisabled(c, false)
}

// DisableUser handles POST /admin/users/:uid/disable.
func (h *AuthHandler) DisableUser(c *gin.Context) {
	h.setDisabled(c, true)
}

func (h *AuthHandler) setDisabled(c *gin.Context, disabled bool) {
	if err := h.authService.SetUserDisabled(c.Request.Context(), middleware.SessionFrom(c), c.Param("uid"), disabled); err != nil {
		respondError(c, h.logger, err)
		return
	}
	msg := "User enabled"
	if disabled {
		msg = "User disabled"
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: msg})
}

// DeleteUser handles DELETE /admin/users/:uid.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	if err := h.authService.DeleteUser(c.Request.Context(), middleware.SessionFrom(c), c.Param("uid")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
