package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider implements Provider on top of the Firebase Auth admin client.
type FirebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider wraps client. It panics on nil because the server cannot
// authenticate anything without it.
func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	if client == nil {
		panic("Firebase Auth client is not initialized for identity provider")
	}
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*Session, error) {
	token, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return SessionFromClaims(token.UID, token.IssuedAt, token.Claims), nil
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	u, err := p.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", uid, err)
	}
	return &UserRecord{
		UID:          u.UID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Disabled:     u.Disabled,
		CustomClaims: u.CustomClaims,
	}, nil
}

func (p *FirebaseProvider) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if err := p.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to set custom claims for '%s': %w", uid, err)
	}
	return nil
}

func (p *FirebaseProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := p.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("failed to revoke tokens for '%s': %w", uid, err)
	}
	return nil
}

func (p *FirebaseProvider) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	_, err := p.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Disabled(disabled))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to update disabled flag for '%s': %w", uid, err)
	}
	return nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	if err := p.client.DeleteUser(ctx, uid); err != nil {
		if auth.IsUserNotFound(err) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to delete user '%s': %w", uid, err)
	}
	return nil
}
