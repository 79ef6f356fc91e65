package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
)

// Gin context keys set by VerifyToken.
const (
	ContextUserID  = "userID"
	ContextStoreID = "storeID"
	ContextRole    = "role"
	ContextSession = "session"
)

// SessionVerifier verifies an ID token. Implemented by core.AuthService.
type SessionVerifier interface {
	VerifySession(ctx context.Context, idToken string) (*identity.Session, error)
}

// AuthMiddleware authenticates requests with identity-provider ID tokens and gates
// routes on the storeId and role custom claims.
type AuthMiddleware struct {
	verifier SessionVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier SessionVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("session verifier is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken requires a valid "Bearer {token}" Authorization header. Revoked tokens
// are rejected. On success the session and its claims are stored in the context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		session, err := m.verifier.VerifySession(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Warn("Rejected ID token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid, expired or revoked authentication token"})
			return
		}

		c.Set(ContextSession, session)
		c.Set(ContextUserID, session.UID)
		c.Set(ContextStoreID, session.StoreID)
		c.Set(ContextRole, session.Role)
		c.Next()
	}
}

// RequireStore rejects sessions without a storeId claim. Must run after VerifyToken.
func (m *AuthMiddleware) RequireStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextStoreID) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error:   "No store is associated with this account",
				Details: "Create a store or ask an administrator for access, then sign in again.",
			})
			return
		}
		c.Next()
	}
}

// RequireRole rejects sessions whose role claim is not one of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Insufficient permissions"})
	}
}

// RequirePlatformAdmin rejects sessions without the project-wide platformAdmin claim.
// Store roles, including admin, do not pass.
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if session := SessionFrom(c); session == nil || !session.PlatformAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Platform administrator access required"})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session stored by VerifyToken, or nil.
func SessionFrom(c *gin.Context) *identity.Session {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil
	}
	session, _ := v.(*identity.Session)
	return session
}
