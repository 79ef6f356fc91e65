// Package identity adapts the Firebase Authentication admin SDK to the small surface
// the application uses: token verification, custom claims and account state.
package identity

import (
	"context"
	"errors"
)

// Roles carried in the "role" custom claim.
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Custom claim keys.
const (
	ClaimStoreID = "storeId"
	ClaimRole    = "role"
	// ClaimPlatformAdmin marks operators of the whole project. It is granted out of
	// band (console or admin SDK), never through the API.
	ClaimPlatformAdmin = "platformAdmin"
)

var (
	// ErrUserNotFound is returned when the identity provider has no such user.
	ErrUserNotFound = errors.New("identity: user not found")
	// ErrInvalidToken is returned for malformed, expired or revoked ID tokens.
	ErrInvalidToken = errors.New("identity: invalid or revoked token")
)

// Session is the verified identity behind a request.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	StoreID     string `json:"storeId,omitempty"`
	Role        string `json:"role,omitempty"`
	// PlatformAdmin is project-wide; Role only applies inside StoreID.
	PlatformAdmin bool  `json:"platformAdmin,omitempty"`
	IssuedAt      int64 `json:"issuedAt"`
}

// HasStore reports whether the session carries a store claim.
func (s *Session) HasStore() bool {
	return s != nil && s.StoreID != ""
}

// UserRecord is the subset of an identity-provider account the application reads.
type UserRecord struct {
	UID          string                 `json:"uid"`
	Email        string                 `json:"email,omitempty"`
	DisplayName  string                 `json:"displayName,omitempty"`
	Disabled     bool                   `json:"disabled"`
	CustomClaims map[string]interface{} `json:"customClaims,omitempty"`
}

// Provider is implemented by FirebaseProvider and by test fakes.
type Provider interface {
	// VerifyIDToken verifies the token and rejects it if refresh tokens were revoked after issuance.
	VerifyIDToken(ctx context.Context, idToken string) (*Session, error)
	GetUser(ctx context.Context, uid string) (*UserRecord, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	DeleteUser(ctx context.Context, uid string) error
}

// SessionFromClaims builds a Session from decoded token claims.
func SessionFromClaims(uid string, issuedAt int64, claims map[string]interface{}) *Session {
	s := &Session{UID: uid, IssuedAt: issuedAt}
	s.Email, _ = claims["email"].(string)
	s.DisplayName, _ = claims["name"].(string)
	s.StoreID, _ = claims[ClaimStoreID].(string)
	s.Role, _ = claims[ClaimRole].(string)
	s.PlatformAdmin, _ = claims[ClaimPlatformAdmin].(bool)
	return s
}

// MergeClaims returns a copy of existing with storeId and role overwritten.
// Other custom claims are preserved.
func MergeClaims(existing map[string]interface{}, storeID, role string) map[string]interface{} {
	merged := make(map[string]interface{}, len(existing)+2)
	for k, v := range existing {
		merged[k] = v
	}
	merged[ClaimStoreID] = storeID
	merged[ClaimRole] = role
	return merged
}

// StoreIDOf returns the storeId claim of a user record, or "".
func StoreIDOf(u *UserRecord) string {
	if u == nil {
		return ""
	}
	id, _ := u.CustomClaims[ClaimStoreID].(string)
	return id
}

// ValidRole reports whether role is one the application understands.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}
