package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/billing/mercadopago"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/pkg/messagequeue"
)

// --- products ---

type fakeProductRepo struct {
	mu           sync.Mutex
	seq          int
	products     map[string]map[string]*models.Product
	listAllCalls int
	listAllErr   error
	// afterListAll, when set, runs after the products were read and before they are
	// returned. Tests use it to hold a refresh in flight.
	afterListAll func(ctx context.Context) error
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]map[string]*models.Product{}}
}

func (r *fakeProductRepo) store(storeID string) map[string]*models.Product {
	if r.products[storeID] == nil {
		r.products[storeID] = map[string]*models.Product{}
	}
	return r.products[storeID]
}

func (r *fakeProductRepo) liveNameTaken(storeID, normalized, excludeID string) bool {
	for id, p := range r.store(storeID) {
		if id != excludeID && p.NameNormalized == normalized && p.Status != models.ProductStatusArchived {
			return true
		}
	}
	return false
}

func (r *fakeProductRepo) Create(_ context.Context, storeID string, product *models.Product) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.Status != models.ProductStatusArchived && r.liveNameTaken(storeID, product.NameNormalized, "") {
		return "", db.ErrAlreadyExists
	}
	r.seq++
	id := fmt.Sprintf("prod-%d", r.seq)
	cp := *product
	cp.ID, cp.StoreID = id, storeID
	cp.CreatedAt = time.Unix(int64(r.seq), 0)
	r.store(storeID)[id] = &cp
	return id, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, storeID, productID string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.store(storeID)[productID]
	if !ok {
		return nil, fmt.Errorf("product '%s': %w", productID, db.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) List(ctx context.Context, storeID string, params models.ProductListParams) ([]*models.Product, error) {
	all, _ := r.sorted(storeID)
	var out []*models.Product
	started := params.StartAfter == ""
	for _, p := range all {
		if !started {
			started = p.ID == params.StartAfter
			continue
		}
		if params.Status != "" && p.Status != params.Status {
			continue
		}
		if params.CategoryID != "" && p.CategoryID != params.CategoryID {
			continue
		}
		out = append(out, p)
		if params.Limit > 0 && len(out) == params.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProductRepo) sorted(storeID string) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Product, 0, len(r.store(storeID)))
	for _, p := range r.store(storeID) {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProductRepo) ListAll(ctx context.Context, storeID string) ([]*models.Product, error) {
	r.mu.Lock()
	r.listAllCalls++
	err := r.listAllErr
	hook := r.afterListAll
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	products, err := r.sorted(storeID)
	if err != nil || hook == nil {
		return products, err
	}
	if err := hook(ctx); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *fakeProductRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listAllCalls
}

func (r *fakeProductRepo) Update(_ context.Context, storeID string, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[product.ID]; !ok {
		return db.ErrNotFound
	}
	if product.Status != models.ProductStatusArchived && r.liveNameTaken(storeID, product.NameNormalized, product.ID) {
		return db.ErrAlreadyExists
	}
	cp := *product
	r.store(storeID)[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, storeID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[productID]; !ok {
		return fmt.Errorf("product '%s': %w", productID, db.ErrNotFound)
	}
	delete(r.store(storeID), productID)
	return nil
}

func (r *fakeProductRepo) ExistsByName(_ context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveNameTaken(storeID, normalizedName, excludeID), nil
}

func (r *fakeProductRepo) ExistsWithCategory(_ context.Context, storeID, categoryID string, status models.ProductStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.store(storeID) {
		if p.CategoryID == categoryID && p.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) ExistsWithTag(_ context.Context, storeID, tagID string, status models.ProductStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.store(storeID) {
		if p.Status != status {
			continue
		}
		for _, t := range p.TagIDs {
			if t == tagID {
				return true, nil
			}
		}
	}
	return false, nil
}

// --- categories and tags ---

type fakeCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories map[string]map[string]*models.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]map[string]*models.Category{}}
}

func (r *fakeCategoryRepo) store(storeID string) map[string]*models.Category {
	if r.categories[storeID] == nil {
		r.categories[storeID] = map[string]*models.Category{}
	}
	return r.categories[storeID]
}

func (r *fakeCategoryRepo) taken(storeID, normalized, excludeID string) bool {
	for id, c := range r.store(storeID) {
		if id != excludeID && c.NameNormalized == normalized {
			return true
		}
	}
	return false
}

func (r *fakeCategoryRepo) Create(_ context.Context, storeID string, category *models.Category) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(storeID, category.NameNormalized, "") {
		return "", db.ErrAlreadyExists
	}
	r.seq++
	id := fmt.Sprintf("cat-%d", r.seq)
	cp := *category
	cp.ID, cp.StoreID = id, storeID
	r.store(storeID)[id] = &cp
	return id, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, storeID, categoryID string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store(storeID)[categoryID]
	if !ok {
		return nil, fmt.Errorf("category '%s': %w", categoryID, db.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, storeID string) ([]*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Category, 0)
	for _, c := range r.store(storeID) {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, storeID string, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[category.ID]; !ok {
		return db.ErrNotFound
	}
	if r.taken(storeID, category.NameNormalized, category.ID) {
		return db.ErrAlreadyExists
	}
	cp := *category
	r.store(storeID)[category.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, storeID, categoryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[categoryID]; !ok {
		return db.ErrNotFound
	}
	delete(r.store(storeID), categoryID)
	return nil
}

func (r *fakeCategoryRepo) ExistsByName(_ context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taken(storeID, normalizedName, excludeID), nil
}

type fakeTagRepo struct {
	mu   sync.Mutex
	seq  int
	tags map[string]map[string]*models.Tag
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[string]map[string]*models.Tag{}}
}

func (r *fakeTagRepo) store(storeID string) map[string]*models.Tag {
	if r.tags[storeID] == nil {
		r.tags[storeID] = map[string]*models.Tag{}
	}
	return r.tags[storeID]
}

func (r *fakeTagRepo) taken(storeID, normalized, excludeID string) bool {
	for id, t := range r.store(storeID) {
		if id != excludeID && t.NameNormalized == normalized {
			return true
		}
	}
	return false
}

func (r *fakeTagRepo) Create(_ context.Context, storeID string, tag *models.Tag) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(storeID, tag.NameNormalized, "") {
		return "", db.ErrAlreadyExists
	}
	r.seq++
	id := fmt.Sprintf("tag-%d", r.seq)
	cp := *tag
	cp.ID, cp.StoreID = id, storeID
	r.store(storeID)[id] = &cp
	return id, nil
}

func (r *fakeTagRepo) GetByID(_ context.Context, storeID, tagID string) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.store(storeID)[tagID]
	if !ok {
		return nil, fmt.Errorf("tag '%s': %w", tagID, db.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTagRepo) List(_ context.Context, storeID string) ([]*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tag, 0)
	for _, t := range r.store(storeID) {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NameNormalized < out[j].NameNormalized })
	return out, nil
}

func (r *fakeTagRepo) Update(_ context.Context, storeID string, tag *models.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[tag.ID]; !ok {
		return db.ErrNotFound
	}
	if r.taken(storeID, tag.NameNormalized, tag.ID) {
		return db.ErrAlreadyExists
	}
	cp := *tag
	r.store(storeID)[tag.ID] = &cp
	return nil
}

func (r *fakeTagRepo) Delete(_ context.Context, storeID, tagID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store(storeID)[tagID]; !ok {
		return db.ErrNotFound
	}
	delete(r.store(storeID), tagID)
	return nil
}

func (r *fakeTagRepo) ExistsByName(_ context.Context, storeID, normalizedName, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.taken(storeID, normalizedName, excludeID), nil
}

// --- stores and users ---

type fakeStoreRepo struct {
	mu      sync.Mutex
	seq     int
	stores  map[string]*models.Store
	users   map[string]*models.User
	updates []map[string]interface{}
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: map[string]*models.Store{}, users: map[string]*models.User{}}
}

func (r *fakeStoreRepo) put(store *models.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *store
	r.stores[store.ID] = &cp
}

func (r *fakeStoreRepo) CreateWithOwner(_ context.Context, store *models.Store, owner *models.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.BasicInfo.Slug == store.BasicInfo.Slug {
			return "", db.ErrAlreadyExists
		}
	}
	r.seq++
	id := fmt.Sprintf("store-%d", r.seq)
	cp := *store
	cp.ID, cp.OwnerID = id, owner.ID
	r.stores[id] = &cp

	u := r.users[owner.ID]
	if u == nil {
		u = &models.User{ID: owner.ID, Email: owner.Email}
		r.users[owner.ID] = u
	}
	u.StoreIDs = append(u.StoreIDs, id)
	return id, nil
}

func (r *fakeStoreRepo) GetByID(_ context.Context, storeID string) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[storeID]
	if !ok {
		return nil, fmt.Errorf("store '%s': %w", storeID, db.ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStoreRepo) GetBySlug(_ context.Context, slug string) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if s.BasicInfo.Slug == slug {
			cp := *s
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("store '%s': %w", slug, db.ErrNotFound)
}

func (r *fakeStoreRepo) SlugExists(_ context.Context, slug, excludeStoreID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.stores {
		if id != excludeStoreID && s.BasicInfo.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

// UpdateFields records the update and applies the paths the tests read back.
func (r *fakeStoreRepo) UpdateFields(_ context.Context, storeID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[storeID]
	if !ok {
		return db.ErrNotFound
	}
	r.updates = append(r.updates, fields)
	for path, v := range fields {
		switch path {
		case "basicInfo.name":
			s.BasicInfo.Name = v.(string)
		case "basicInfo.slug":
			s.BasicInfo.Slug = v.(string)
		case "settings.payment.cash":
			s.Settings.Payment.Cash = v.(bool)
		case "subscription.status":
			s.Subscription.Status = v.(string)
		case "subscription.planId":
			s.Subscription.PlanID = v.(string)
		case "subscription.subscriptionId":
			s.Subscription.SubscriptionID = v.(string)
		}
	}
	return nil
}

func (r *fakeStoreRepo) ListAll(_ context.Context) ([]*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Store, 0, len(r.stores))
	for _, s := range r.stores {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// --- subscriptions and plans ---

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	seq  int
	subs map[string]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[string]*models.Subscription{}}
}

func (r *fakeSubscriptionRepo) Create(_ context.Context, sub *models.Subscription) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("sub-%d", r.seq)
	cp := *sub
	cp.ID = id
	r.subs[id] = &cp
	return id, nil
}

func (r *fakeSubscriptionRepo) GetByID(_ context.Context, id string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) GetByProcessorID(_ context.Context, processorID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.ProcessorID == processorID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeSubscriptionRepo) GetCurrentByStore(_ context.Context, storeID string) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.StoreID == storeID && s.Status != models.SubscriptionStatusCancelled {
			cp := *s
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeSubscriptionRepo) Update(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *sub
	r.subs[sub.ID] = &cp
	return nil
}

type fakePlanRepo struct {
	mu    sync.Mutex
	seq   int
	plans map[string]*models.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[string]*models.Plan{}}
}

func (r *fakePlanRepo) Create(_ context.Context, plan *models.Plan) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	id := fmt.Sprintf("plan-%d", r.seq)
	cp := *plan
	cp.ID = id
	r.plans[id] = &cp
	return id, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id string) (*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]*models.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Plan
	for _, p := range r.plans {
		if p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- audit, events, mail ---

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
	err     error
}

func (r *fakeAuditRepo) Create(_ context.Context, entry models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []messagequeue.Event
}

func (p *fakePublisher) Publish(_ context.Context, e messagequeue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type sentMail struct{ to, subject, body string }

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (n *fakeNotifier) SendEmail(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{recipient, subject, body})
	return nil
}

// --- cache ---

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// --- identity ---

type issuedToken struct {
	uid    string
	seq    int
	claims map[string]interface{}
}

// fakeIdentity issues tokens that snapshot the user's claims at issue time. Revoking
// rejects every token issued before the revocation.
type fakeIdentity struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*identity.UserRecord
	tokens    map[string]issuedToken
	revokedAt map[string]int
	revokes   int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:     map[string]*identity.UserRecord{},
		tokens:    map[string]issuedToken{},
		revokedAt: map[string]int{},
	}
}

func (f *fakeIdentity) addUser(uid, email string, claims map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[uid] = &identity.UserRecord{UID: uid, Email: email, CustomClaims: claims}
}

func (f *fakeIdentity) issueToken(uid string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	claims := map[string]interface{}{"email": f.users[uid].Email}
	for k, v := range f.users[uid].CustomClaims {
		claims[k] = v
	}
	tok := fmt.Sprintf("token-%s-%d", uid, f.seq)
	f.tokens[tok] = issuedToken{uid: uid, seq: f.seq, claims: claims}
	return tok
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, idToken string) (*identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[idToken]
	if !ok || tok.seq <= f.revokedAt[tok.uid] {
		return nil, identity.ErrInvalidToken
	}
	return identity.SessionFromClaims(tok.uid, int64(tok.seq), tok.claims), nil
}

func (f *fakeIdentity) GetUser(_ context.Context, uid string) (*identity.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeIdentity) SetCustomClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.CustomClaims = claims
	return nil
}

func (f *fakeIdentity) RevokeRefreshTokens(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revokedAt[uid] = f.seq
	f.revokes++
	return nil
}

func (f *fakeIdentity) SetDisabled(_ context.Context, uid string, disabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	u.Disabled = disabled
	return nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[uid]; !ok {
		return identity.ErrUserNotFound
	}
	delete(f.users, uid)
	return nil
}

// --- billing ---

type fakeGateway struct {
	mu          sync.Mutex
	seq         int
	preapproval map[string]*mercadopago.Preapproval
	plans       []mercadopago.PlanRequest
	err         error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{preapproval: map[string]*mercadopago.Preapproval{}}
}

func (g *fakeGateway) CreatePlan(_ context.Context, req mercadopago.PlanRequest) (*mercadopago.Plan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.seq++
	g.plans = append(g.plans, req)
	return &mercadopago.Plan{ID: fmt.Sprintf("mp-plan-%d", g.seq), Reason: req.Reason, AutoRecurring: req.AutoRecurring}, nil
}

func (g *fakeGateway) CreatePreapproval(_ context.Context, req mercadopago.PreapprovalRequest) (*mercadopago.Preapproval, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.seq++
	p := &mercadopago.Preapproval{
		ID:                fmt.Sprintf("mp-pre-%d", g.seq),
		Status:            mercadopago.StatusPending,
		PayerEmail:        req.PayerEmail,
		ExternalReference: req.ExternalReference,
		PreapprovalPlanID: req.PreapprovalPlanID,
		InitPoint:         "https://mp.test/checkout/" + req.ExternalReference,
	}
	g.preapproval[p.ID] = p
	cp := *p
	return &cp, nil
}

// setRemoteStatus simulates a change made on the processor side.
func (g *fakeGateway) setRemoteStatus(id, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.preapproval[id].Status = status
}

func (g *fakeGateway) GetPreapproval(_ context.Context, id string) (*mercadopago.Preapproval, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.preapproval[id]
	if !ok {
		return nil, mercadopago.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) setStatus(id, status string) (*mercadopago.Preapproval, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	p, ok := g.preapproval[id]
	if !ok {
		return nil, mercadopago.ErrNotFound
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (g *fakeGateway) CancelPreapproval(_ context.Context, id string) (*mercadopago.Preapproval, error) {
	return g.setStatus(id, mercadopago.StatusCancelled)
}

func (g *fakeGateway) PausePreapproval(_ context.Context, id string) (*mercadopago.Preapproval, error) {
	return g.setStatus(id, mercadopago.StatusPaused)
}

func (g *fakeGateway) ResumePreapproval(_ context.Context, id string) (*mercadopago.Preapproval, error) {
	return g.setStatus(id, mercadopago.StatusAuthorized)
}

// --- wiring ---

type catalogFixture struct {
	products   *fakeProductRepo
	categories *fakeCategoryRepo
	tags       *fakeTagRepo
	audit      *fakeAuditRepo
	events     *fakePublisher
	cache      *fakeCache
	catalog    *CatalogCache

	productSvc  ProductService
	categorySvc CategoryService
	tagSvc      TagService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		products:   newFakeProductRepo(),
		categories: newFakeCategoryRepo(),
		tags:       newFakeTagRepo(),
		audit:      &fakeAuditRepo{},
		events:     &fakePublisher{},
		cache:      newFakeCache(),
	}
	logger := zap.NewNop()
	f.catalog = NewCatalogCache(f.cache, f.products, DefaultCatalogTTL, logger)
	audit := NewAuditService(f.audit)
	f.productSvc = NewProductService(f.products, f.categories, f.tags, f.catalog, audit, f.events, logger)
	f.categorySvc = NewCategoryService(f.categories, f.products, f.catalog, audit, logger)
	f.tagSvc = NewTagService(f.tags, f.products, f.catalog, audit, logger)
	return f
}
