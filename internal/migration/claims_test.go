package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
)

type fakeDirectory struct {
	accounts   map[string]*identity.UserRecord
	claims     map[string]map[string]interface{}
	revoked    map[string]int
	failClaims map[string]int // uid -> remaining failures
	failRevoke map[string]bool
	failGet    map[string]bool
}

func newFakeDirectory(accounts ...*identity.UserRecord) *fakeDirectory {
	d := &fakeDirectory{
		accounts:   map[string]*identity.UserRecord{},
		claims:     map[string]map[string]interface{}{},
		revoked:    map[string]int{},
		failClaims: map[string]int{},
		failRevoke: map[string]bool{},
		failGet:    map[string]bool{},
	}
	for _, a := range accounts {
		d.accounts[a.UID] = a
	}
	return d
}

func (d *fakeDirectory) GetUser(_ context.Context, uid string) (*identity.UserRecord, error) {
	if d.failGet[uid] {
		return nil, errors.New("backend unavailable")
	}
	if a, ok := d.accounts[uid]; ok {
		return a, nil
	}
	return nil, identity.ErrUserNotFound
}

func (d *fakeDirectory) SetCustomClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	if d.failClaims[uid] > 0 {
		d.failClaims[uid]--
		return errors.New("quota exceeded")
	}
	d.claims[uid] = claims
	return nil
}

func (d *fakeDirectory) RevokeRefreshTokens(_ context.Context, uid string) error {
	if d.failRevoke[uid] {
		return errors.New("revoke rejected")
	}
	d.revoked[uid]++
	return nil
}

type fakeStores []*models.Store

func (s fakeStores) ListAll(context.Context) ([]*models.Store, error) { return s, nil }

type fakeUsers []*models.User

func (u fakeUsers) ListAll(context.Context) ([]*models.User, error) { return u, nil }

// docsFor builds one app user document per account.
func docsFor(d *fakeDirectory, uids ...string) fakeUsers {
	users := make(fakeUsers, 0, len(uids))
	for _, uid := range uids {
		u := &models.User{ID: uid}
		if a, ok := d.accounts[uid]; ok {
			u.Email = a.Email
		}
		users = append(users, u)
	}
	return users
}

func newMigrator(d *fakeDirectory, stores fakeStores, users fakeUsers) *ClaimsMigrator {
	m := NewClaimsMigrator(d, stores, users, zap.NewNop())
	m.Backoff = time.Millisecond
	fixed := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	m.now = func() time.Time { return fixed }
	return m
}

func TestClaimsMigratorRun(t *testing.T) {
	dir := newFakeDirectory(
		&identity.UserRecord{UID: "owner-1", Email: "a@example.com", CustomClaims: map[string]interface{}{"beta": true}},
		&identity.UserRecord{UID: "owner-2", CustomClaims: map[string]interface{}{identity.ClaimStoreID: "store-2", identity.ClaimRole: "owner"}},
		&identity.UserRecord{UID: "visitor"},
		&identity.UserRecord{UID: "owner-3"},
		&identity.UserRecord{UID: "auth-only"},
	)
	dir.failClaims["owner-3"] = 5
	stores := fakeStores{
		{ID: "store-1", OwnerID: "owner-1"},
		{ID: "store-2", OwnerID: "owner-2"},
		{ID: "store-3", OwnerID: "owner-3"},
		{ID: "store-4", OwnerID: "auth-only"},
	}
	users := docsFor(dir, "owner-1", "owner-2", "visitor", "owner-3")

	report, err := newMigrator(dir, stores, users).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 4, Migrated: 1, AlreadyHasClaims: 1, NoStore: 1, Errors: 1}, report.Stats)
	assert.Equal(t, map[string]interface{}{"beta": true, "storeId": "store-1", "role": "owner"}, dir.claims["owner-1"])
	assert.Equal(t, 1, dir.revoked["owner-1"])
	assert.NotContains(t, dir.claims, "owner-2")
	assert.Zero(t, dir.revoked["owner-3"])
	assert.NotContains(t, dir.claims, "auth-only", "accounts without a user document are not visited")

	require.Len(t, report.Results, 4)
	assert.Equal(t, Result{UID: "owner-1", Email: "a@example.com", StoreID: "store-1", Role: "owner", Outcome: OutcomeMigrated}, report.Results[0])
	assert.Equal(t, "owner", report.Results[1].Role)
	assert.Equal(t, OutcomeError, report.Results[3].Outcome)
	assert.Empty(t, report.Results[3].StoreID)
	assert.Contains(t, report.Results[3].Error, "quota exceeded")
}

func TestClaimsMigratorRevokeFailureStillCountsAsMigrated(t *testing.T) {
	dir := newFakeDirectory(&identity.UserRecord{UID: "owner-1"})
	dir.failRevoke["owner-1"] = true

	report, err := newMigrator(dir, fakeStores{{ID: "store-1", OwnerID: "owner-1"}}, docsFor(dir, "owner-1")).
		Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 1, Migrated: 1}, report.Stats)
	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, OutcomeMigrated, res.Outcome)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.Warning, "revoke rejected")
	assert.Equal(t, "store-1", dir.claims["owner-1"][identity.ClaimStoreID])
}

func TestClaimsMigratorUnreadableClaimsAreTreatedAsEmpty(t *testing.T) {
	dir := newFakeDirectory(&identity.UserRecord{UID: "owner-1"})
	dir.failGet["owner-1"] = true
	dir.failGet["ghost"] = true

	stores := fakeStores{{ID: "store-1", OwnerID: "owner-1"}}
	report, err := newMigrator(dir, stores, fakeUsers{{ID: "owner-1"}, {ID: "ghost"}}).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 2, Migrated: 1, NoStore: 1}, report.Stats)
	assert.Equal(t, map[string]interface{}{"storeId": "store-1", "role": "owner"}, dir.claims["owner-1"])
}

func TestClaimsMigratorRetriesTransientFailures(t *testing.T) {
	dir := newFakeDirectory(&identity.UserRecord{UID: "owner-1"})
	dir.failClaims["owner-1"] = 2

	report, err := newMigrator(dir, fakeStores{{ID: "store-1", OwnerID: "owner-1"}}, docsFor(dir, "owner-1")).
		Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stats.Migrated)
	assert.Equal(t, "store-1", dir.claims["owner-1"][identity.ClaimStoreID])
}

func TestClaimsMigratorDryRunWritesNothing(t *testing.T) {
	dir := newFakeDirectory(&identity.UserRecord{UID: "owner-1"})

	report, err := newMigrator(dir, fakeStores{{ID: "store-1", OwnerID: "owner-1"}}, docsFor(dir, "owner-1")).
		Run(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Stats.Migrated)
	assert.Equal(t, OutcomeWouldMigrate, report.Results[0].Outcome)
	assert.Empty(t, dir.claims)
	assert.Empty(t, dir.revoked)
}

func TestReportOutput(t *testing.T) {
	assert.Equal(t, "migration_claims_20240309_140507.json",
		ReportFileName(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)))

	var buf bytes.Buffer
	r := &Report{Stats: Stats{Total: 2, NoStore: 2}}
	require.NoError(t, r.WriteJSON(&buf))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, map[string]interface{}{
		"total": 2.0, "migrated": 0.0, "alreadyHasClaims": 0.0, "noStore": 2.0, "errors": 0.0,
	}, decoded["stats"])
}
