package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
)

type authService struct {
	provider     identity.Provider
	storeRepo    db.StoreRepository
	auditService AuditService
	logger       *zap.Logger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(provider identity.Provider, sr db.StoreRepository, as AuditService, logger *zap.Logger) AuthService {
	return &authService{
		provider:     provider,
		storeRepo:    sr,
		auditService: as,
		logger:       logger,
	}
}

func (s *authService) VerifySession(ctx context.Context, idToken string) (*identity.Session, error) {
	if idToken == "" {
		return nil, identity.ErrInvalidToken
	}
	return s.provider.VerifyIDToken(ctx, idToken)
}

// authorize checks that actor may manage uid. Platform admins may manage anyone.
// Store owners and admins may only manage users of their own store; allowUnclaimed
// also admits users that belong to no store yet.
func (s *authService) authorize(ctx context.Context, actor *identity.Session, uid string, allowUnclaimed bool) (*identity.UserRecord, error) {
	if actor == nil {
		return nil, fmt.Errorf("%w: no session", ErrForbidden)
	}
	user, err := s.provider.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load user '%s': %w", uid, err)
	}
	if actor.PlatformAdmin {
		return user, nil
	}
	if !actor.HasStore() || (actor.Role != identity.RoleOwner && actor.Role != identity.RoleAdmin) {
		return nil, fmt.Errorf("%w: store owner or admin role required", ErrForbidden)
	}
	switch target := identity.StoreIDOf(user); {
	case target == actor.StoreID:
	case target == "" && allowUnclaimed:
	default:
		return nil, fmt.Errorf("%w: user '%s' belongs to another store", ErrForbidden, uid)
	}
	return user, nil
}

func (s *authService) SetStoreClaims(ctx context.Context, actor *identity.Session, uid, storeID, role string) error {
	if !identity.ValidRole(role) {
		return fmt.Errorf("%w: '%s'", ErrInvalidRole, role)
	}
	if storeID == "" {
		return fmt.Errorf("%w: storeId is required", ErrValidation)
	}
	if actor != nil && !actor.PlatformAdmin {
		if storeID != actor.StoreID {
			return fmt.Errorf("%w: cannot grant access to another store", ErrForbidden)
		}
		if role == identity.RoleOwner && actor.Role != identity.RoleOwner {
			return fmt.Errorf("%w: only owners can grant the owner role", ErrForbidden)
		}
	}
	user, err := s.authorize(ctx, actor, uid, true)
	if err != nil {
		return err
	}
	if err := s.ensureStore(ctx, storeID); err != nil {
		return err
	}
	if err := s.writeClaims(ctx, user, storeID, role); err != nil {
		return err
	}

	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     actor.UID,
		StoreID:    storeID,
		Action:     ActionClaimsUpdate,
		TargetType: "USER",
		TargetID:   uid,
		Details:    map[string]interface{}{"role": role},
	})
	return nil
}

// AssignStoreOwner grants uid owner claims on a store it just created. Callers must
// have established ownership; no actor check is made.
func (s *authService) AssignStoreOwner(ctx context.Context, uid, storeID string) error {
	user, err := s.provider.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load user '%s': %w", uid, err)
	}
	if err := s.writeClaims(ctx, user, storeID, identity.RoleOwner); err != nil {
		return err
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     uid,
		StoreID:    storeID,
		Action:     ActionClaimsUpdate,
		TargetType: "USER",
		TargetID:   uid,
		Details:    map[string]interface{}{"role": identity.RoleOwner},
	})
	return nil
}

func (s *authService) ensureStore(ctx context.Context, storeID string) error {
	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrStoreNotFound, storeID)
		}
		return fmt.Errorf("failed to load store '%s': %w", storeID, err)
	}
	return nil
}

func (s *authService) writeClaims(ctx context.Context, user *identity.UserRecord, storeID, role string) error {
	claims := identity.MergeClaims(user.CustomClaims, storeID, role)
	if err := s.provider.SetCustomClaims(ctx, user.UID, claims); err != nil {
		return fmt.Errorf("failed to set claims for user '%s': %w", user.UID, err)
	}
	// Existing ID tokens keep the old claims until they expire; revoking forces a refresh.
	if err := s.provider.RevokeRefreshTokens(ctx, user.UID); err != nil {
		return fmt.Errorf("failed to revoke tokens for user '%s': %w", user.UID, err)
	}
	s.logger.Info("Custom claims updated",
		zap.String("user_id", user.UID),
		zap.String("store_id", storeID),
		zap.String("role", role))
	return nil
}

func (s *authService) GetClaims(ctx context.Context, actor *identity.Session, uid string) (map[string]interface{}, error) {
	user, err := s.authorize(ctx, actor, uid, false)
	if err != nil {
		return nil, err
	}
	if user.CustomClaims == nil {
		return map[string]interface{}{}, nil
	}
	return user.CustomClaims, nil
}

func (s *authService) SetUserDisabled(ctx context.Context, actor *identity.Session, uid string, disabled bool) error {
	if actor != nil && actor.UID == uid && disabled {
		return fmt.Errorf("%w: cannot disable your own account", ErrForbidden)
	}
	if _, err := s.authorize(ctx, actor, uid, false); err != nil {
		return err
	}
	if err := s.provider.SetDisabled(ctx, uid, disabled); err != nil {
		return fmt.Errorf("failed to update user '%s': %w", uid, err)
	}
	action := ActionUserEnable
	if disabled {
		action = ActionUserDisable
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     actor.UID,
		StoreID:    actor.StoreID,
		Action:     action,
		TargetType: "USER",
		TargetID:   uid,
	})
	return nil
}

func (s *authService) DeleteUser(ctx context.Context, actor *identity.Session, uid string) error {
	if actor != nil && actor.UID == uid {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}
	if _, err := s.authorize(ctx, actor, uid, false); err != nil {
		return err
	}
	if err := s.provider.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user '%s': %w", uid, err)
	}
	recordAudit(ctx, s.auditService, s.logger, models.AuditLog{
		UserID:     actor.UID,
		StoreID:    actor.StoreID,
		Action:     ActionUserDelete,
		TargetType: "USER",
		TargetID:   uid,
	})
	return nil
}
