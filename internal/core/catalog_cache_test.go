package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/models"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func seedProduct(r *fakeProductRepo, name string, status models.ProductStatus) {
	_, _ = r.Create(context.Background(), testStore, &models.Product{Name: name, NameNormalized: models.NormalizeName(name), Status: status})
}

func newTestCatalog(repo *fakeProductRepo, clock *manualClock) *CatalogCache {
	c := NewCatalogCache(newFakeCache(), repo, 0, zap.NewNop())
	c.now = clock.now
	return c
}

func TestCatalogCacheServesWithinWindow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	seedProduct(repo, "Pie", models.ProductStatusActive)
	clock := newManualClock()
	c := newTestCatalog(repo, clock)

	first, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Stats.Total)

	clock.advance(4*time.Minute + 59*time.Second)
	second, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls(), "second read inside the window must be cached")
	assert.True(t, first.FetchedAt.Equal(second.FetchedAt))
}

func TestCatalogCacheRefetchesAfterWindow(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	clock := newManualClock()
	c := newTestCatalog(repo, clock)

	_, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)

	seedProduct(repo, "Pie", models.ProductStatusActive)
	clock.advance(5 * time.Minute)

	snap, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
	assert.Equal(t, 1, snap.Stats.Total)
}

func TestCatalogCacheForceRefresh(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	clock := newManualClock()
	c := newTestCatalog(repo, clock)

	_, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	seedProduct(repo, "Pie", models.ProductStatusInactive)

	snap, err := c.Get(ctx, testStore, true)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
	assert.Equal(t, 1, snap.Stats.Inactive)

	// The forced result replaces the cached one.
	again, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
	assert.Equal(t, 1, again.Stats.Inactive)
}

func TestCatalogCacheIsKeyedByStore(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	c := newTestCatalog(repo, newManualClock())

	_, err := c.Get(ctx, "a", false)
	require.NoError(t, err)
	_, err = c.Get(ctx, "b", false)
	require.NoError(t, err)
	_, err = c.Get(ctx, "a", false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())

	c.Invalidate(ctx, "a")
	_, err = c.Get(ctx, "a", false)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.calls())
}

func TestCatalogCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	repo.listAllErr = errors.New("firestore unavailable")
	c := newTestCatalog(repo, newManualClock())

	_, err := c.Get(ctx, testStore, false)
	require.Error(t, err)

	repo.listAllErr = nil
	_, err = c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
}

// holdFirstListAll parks the first ListAll after it has read the products, until
// release is closed. started is closed once the read happened.
func holdFirstListAll(repo *fakeProductRepo) (started, release chan struct{}, seen *ctxErr) {
	started, release = make(chan struct{}), make(chan struct{})
	seen = &ctxErr{done: make(chan struct{})}
	repo.mu.Lock()
	repo.afterListAll = func(ctx context.Context) error {
		repo.mu.Lock()
		repo.afterListAll = nil
		repo.mu.Unlock()
		close(started)
		<-release
		seen.set(ctx.Err())
		return ctx.Err()
	}
	repo.mu.Unlock()
	return started, release, seen
}

type ctxErr struct {
	mu   sync.Mutex
	err  error
	done chan struct{}
}

func (e *ctxErr) set(err error) {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	close(e.done)
}

func (e *ctxErr) get() error {
	<-e.done
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

type catalogResult struct {
	snap *CatalogSnapshot
	err  error
}

func TestCatalogCacheWriteDuringRefreshIsNotLost(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProductRepo()
	seedProduct(repo, "Pie", models.ProductStatusActive)
	c := newTestCatalog(repo, newManualClock())
	started, release, _ := holdFirstListAll(repo)

	first := make(chan catalogResult, 1)
	go func() {
		snap, err := c.Get(ctx, testStore, false)
		first <- catalogResult{snap, err}
	}()
	<-started

	seedProduct(repo, "Cake", models.ProductStatusActive)
	c.Invalidate(ctx, testStore)
	close(release)

	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.snap.Stats.Total, "the in-flight read predates the write")

	next, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Stats.Total, "a snapshot read before the invalidation must not be cached")
	assert.Equal(t, 2, repo.calls())

	again, err := c.Get(ctx, testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Stats.Total)
	assert.Equal(t, 2, repo.calls(), "the post-write snapshot is cached")
}

func TestCatalogCacheRefreshSurvivesCallerCancellation(t *testing.T) {
	repo := newFakeProductRepo()
	seedProduct(repo, "Pie", models.ProductStatusActive)
	c := newTestCatalog(repo, newManualClock())
	started, release, seen := holdFirstListAll(repo)

	callerCtx, cancel := context.WithCancel(context.Background())
	first := make(chan catalogResult, 1)
	go func() {
		snap, err := c.Get(callerCtx, testStore, false)
		first <- catalogResult{snap, err}
	}()
	<-started

	cancel()
	res := <-first
	assert.ErrorIs(t, res.err, context.Canceled, "the cancelled caller stops waiting")

	close(release)
	require.NoError(t, seen.get(), "the shared refresh does not inherit the caller's cancellation")

	require.Eventually(t, func() bool {
		_, ok := c.lookup(context.Background(), testStore)
		return ok
	}, time.Second, 5*time.Millisecond)

	snap, err := c.Get(context.Background(), testStore, false)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Stats.Total)
	assert.Equal(t, 1, repo.calls())
}
