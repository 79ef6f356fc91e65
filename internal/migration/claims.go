// Package migration backfills storeId and role custom claims for store owners whose
// accounts predate claim-based tenancy.
package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/resilience"
)

// Per-user outcomes recorded in the report.
const (
	OutcomeMigrated         = "migrated"
	OutcomeWouldMigrate     = "would_migrate"
	OutcomeAlreadyHasClaims = "already_has_claims"
	OutcomeNoStore          = "no_store"
	OutcomeError            = "error"
)

// Directory is the identity-provider surface the migration needs.
type Directory interface {
	GetUser(ctx context.Context, uid string) (*identity.UserRecord, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// StoreLister lists every store.
type StoreLister interface {
	ListAll(ctx context.Context) ([]*models.Store, error)
}

// Stats counts users by outcome. Total counts every app user document visited.
type Stats struct {
	Total            int `json:"total"`
	Migrated         int `json:"migrated"`
	AlreadyHasClaims int `json:"alreadyHasClaims"`
	NoStore          int `json:"noStore"`
	Errors           int `json:"errors"`
}

// Result is the outcome for one user.
type Result struct {
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	StoreID string `json:"storeId,omitempty"`
	Role    string `json:"role,omitempty"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
	// Warning notes a non-fatal failure, such as a revoke that did not go through
	// after the claims were written.
	Warning string `json:"warning,omitempty"`
}

// Report is written as JSON when the run finishes.
type Report struct {
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	DryRun     bool      `json:"dryRun"`
	Stats      Stats     `json:"stats"`
	Results    []Result  `json:"results"`
}

// WriteJSON writes the report indented.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReportFileName is the report name for a run started at t.
func ReportFileName(t time.Time) string {
	return fmt.Sprintf("migration_claims_%s.json", t.Format("20060102_150405"))
}

// UserLister lists app-level user documents.
type UserLister interface {
	ListAll(ctx context.Context) ([]*models.User, error)
}

// ClaimsMigrator grants owner claims to every app user who owns a store and has no
// storeId claim yet. Users come from the app's user documents, not from the identity
// provider, so accounts that never opened the app are not counted.
type ClaimsMigrator struct {
	directory Directory
	stores    StoreLister
	users     UserLister
	logger    *zap.Logger

	// Attempts and Backoff control retries of each identity-provider write.
	Attempts uint64
	Backoff  time.Duration
	now      func() time.Time
}

// NewClaimsMigrator creates a ClaimsMigrator with three attempts per write.
func NewClaimsMigrator(directory Directory, stores StoreLister, users UserLister, logger *zap.Logger) *ClaimsMigrator {
	return &ClaimsMigrator{
		directory: directory,
		stores:    stores,
		users:     users,
		logger:    logger,
		Attempts:  3,
		Backoff:   500 * time.Millisecond,
		now:       time.Now,
	}
}

// Run visits every user. Individual failures are recorded in the report and do not
// stop the run; only listing failures are returned as errors.
func (m *ClaimsMigrator) Run(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{StartedAt: m.now().UTC(), DryRun: dryRun}

	stores, err := m.stores.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	byOwner := make(map[string]string, len(stores))
	for _, s := range stores {
		if s.OwnerID == "" {
			continue
		}
		if prev, ok := byOwner[s.OwnerID]; ok {
			m.logger.Warn("Owner has more than one store; keeping the first",
				zap.String("owner_id", s.OwnerID), zap.String("kept", prev), zap.String("skipped", s.ID))
			continue
		}
		byOwner[s.OwnerID] = s.ID
	}
	m.logger.Info("Indexed stores by owner", zap.Int("stores", len(stores)), zap.Int("owners", len(byOwner)))

	users, err := m.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list user documents: %w", err)
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = m.now().UTC()
			return report, err
		}
		report.Stats.Total++
		res := m.migrateUser(ctx, u, byOwner, dryRun)
		switch res.Outcome {
		case OutcomeMigrated, OutcomeWouldMigrate:
			report.Stats.Migrated++
		case OutcomeAlreadyHasClaims:
			report.Stats.AlreadyHasClaims++
		case OutcomeNoStore:
			report.Stats.NoStore++
		case OutcomeError:
			report.Stats.Errors++
		}
		report.Results = append(report.Results, res)
	}
	report.FinishedAt = m.now().UTC()
	return report, nil
}

// currentClaims reads uid's custom claims. A failed read is logged and treated as no
// claims, so the user is still considered for migration.
func (m *ClaimsMigrator) currentClaims(ctx context.Context, uid string) map[string]interface{} {
	rec, err := m.directory.GetUser(ctx, uid)
	if err != nil {
		m.logger.Warn("Failed to read current claims", zap.String("uid", uid), zap.Error(err))
		return nil
	}
	return rec.CustomClaims
}

func (m *ClaimsMigrator) migrateUser(ctx context.Context, u *models.User, byOwner map[string]string, dryRun bool) Result {
	res := Result{UID: u.ID, Email: u.Email}
	claims := m.currentClaims(ctx, u.ID)

	if existing, _ := claims[identity.ClaimStoreID].(string); existing != "" {
		res.StoreID = existing
		res.Role, _ = claims[identity.ClaimRole].(string)
		res.Outcome = OutcomeAlreadyHasClaims
		return res
	}
	storeID, ok := byOwner[u.ID]
	if !ok {
		res.Outcome = OutcomeNoStore
		return res
	}
	res.StoreID = storeID
	res.Role = identity.RoleOwner
	if dryRun {
		res.Outcome = OutcomeWouldMigrate
		return res
	}

	merged := identity.MergeClaims(claims, storeID, identity.RoleOwner)
	err := resilience.Retry(ctx, m.Attempts, m.Backoff, func(ctx context.Context) error {
		return m.directory.SetCustomClaims(ctx, u.ID, merged)
	})
	if err != nil {
		m.logger.Error("Failed to set user claims", zap.String("uid", u.ID), zap.String("store_id", storeID), zap.Error(err))
		res.StoreID, res.Role = "", ""
		res.Outcome = OutcomeError
		res.Error = err.Error()
		return res
	}

	// The claims are written; a failed revoke only delays them until the token expires.
	err = resilience.Retry(ctx, m.Attempts, m.Backoff, func(ctx context.Context) error {
		return m.directory.RevokeRefreshTokens(ctx, u.ID)
	})
	if err != nil {
		m.logger.Warn("Claims set but token revocation failed", zap.String("uid", u.ID), zap.Error(err))
		res.Warning = "token revocation failed: " + err.Error()
	}

	m.logger.Info("Migrated user claims", zap.String("uid", u.ID), zap.String("store_id", storeID))
	res.Outcome = OutcomeMigrated
	return res
}
