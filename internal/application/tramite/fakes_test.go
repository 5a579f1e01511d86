package tramite

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/domain/tramite"
)

// memTramiteRepository keeps trámites in memory and applies the tenant
// scope from ctx like the GORM repository does.
type memTramiteRepository struct {
	mu        sync.Mutex
	items     map[uuid.UUID]tramite.Tramite
	byNumber  map[string]uuid.UUID
	lookups   int
	createErr error // returned once by the next Create
	// lookupGate, when set, holds FindByFilingNumber until closed
	lookupGate chan struct{}
}

func newMemTramiteRepository() *memTramiteRepository {
	return &memTramiteRepository{
		items:    make(map[uuid.UUID]tramite.Tramite),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *memTramiteRepository) Create(ctx context.Context, t *tramite.Tramite) error {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	if !scope.Allows(t.TenantID) {
		return shared.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.createErr; err != nil {
		r.createErr = nil
		return err
	}
	if _, ok := r.byNumber[t.FilingNumber]; ok {
		return shared.ErrAlreadyExists
	}
	stored := *t
	stored.ClearDomainEvents()
	r.items[t.ID] = stored
	r.byNumber[t.FilingNumber] = t.ID
	return nil
}

func (r *memTramiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*tramite.Tramite, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.items[id]
	if !ok || !scope.Allows(t.TenantID) {
		return nil, shared.ErrNotFound
	}
	return &t, nil
}

func (r *memTramiteRepository) FindAll(ctx context.Context, filter tramite.Filter) ([]tramite.Tramite, int64, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []tramite.Tramite
	for _, t := range r.items {
		if !scope.Allows(t.TenantID) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

func (r *memTramiteRepository) Update(ctx context.Context, id uuid.UUID, fn func(t *tramite.Tramite) error) (*tramite.Tramite, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || !scope.Allows(stored.TenantID) {
		return nil, shared.ErrNotFound
	}
	working := stored
	if err := fn(&working); err != nil {
		return nil, err
	}
	saved := working
	saved.ClearDomainEvents()
	r.items[id] = saved
	return &working, nil
}

func (r *memTramiteRepository) FindByFilingNumber(ctx context.Context, filingNumber string) (*tramite.Tramite, error) {
	r.mu.Lock()
	r.lookups++
	gate := r.lookupGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNumber[filingNumber]
	if !ok {
		return nil, shared.ErrNotFound
	}
	t := r.items[id]
	return &t, nil
}

func (r *memTramiteRepository) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

// memCounterStore hands out per-key sequences under a per-key lock, so
// allocations on different keys never wait on each other.
type memCounterStore struct {
	mu     sync.Mutex
	locks  map[radicacion.CounterKey]*sync.Mutex
	values map[radicacion.CounterKey]int64
	delay  time.Duration
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{
		locks:  make(map[radicacion.CounterKey]*sync.Mutex),
		values: make(map[radicacion.CounterKey]int64),
	}
}

func (s *memCounterStore) keyLock(key radicacion.CounterKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Next commits the increment only when issue succeeds
func (s *memCounterStore) Next(ctx context.Context, key radicacion.CounterKey, issue radicacion.IssueFunc) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	next := s.values[key] + 1
	s.mu.Unlock()
	if issue != nil {
		if err := issue(ctx, next); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = next
	return next, nil
}

func (s *memCounterStore) Snapshots(_ context.Context, tenantID uuid.UUID, year int) ([]radicacion.CounterSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []radicacion.CounterSnapshot
	for key, v := range s.values {
		if key.TenantID == tenantID && key.Year == year {
			out = append(out, radicacion.CounterSnapshot{Key: key, LastValue: v, IsActive: true})
		}
	}
	return out, nil
}

func (s *memCounterStore) DeactivateBefore(context.Context, int) (int64, error) {
	return 0, nil
}

// MockCounterStore is a mock implementation of radicacion.CounterStore
type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) Next(ctx context.Context, key radicacion.CounterKey, issue radicacion.IssueFunc) (int64, error) {
	args := m.Called(ctx, key)
	value, err := args.Get(0).(int64), args.Error(1)
	if err == nil && issue != nil {
		if err := issue(ctx, value); err != nil {
			return 0, err
		}
	}
	return value, err
}

func (m *MockCounterStore) Snapshots(ctx context.Context, tenantID uuid.UUID, year int) ([]radicacion.CounterSnapshot, error) {
	args := m.Called(ctx, tenantID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]radicacion.CounterSnapshot), args.Error(1)
}

func (m *MockCounterStore) DeactivateBefore(ctx context.Context, year int) (int64, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(int64), args.Error(1)
}

type memTenantRepository struct {
	items map[uuid.UUID]*identity.Tenant
}

func (r *memTenantRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.Tenant, error) {
	if t, ok := r.items[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memTenantRepository) FindByCode(_ context.Context, code string) (*identity.Tenant, error) {
	for _, t := range r.items {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memTenantRepository) Save(_ context.Context, t *identity.Tenant) error {
	r.items[t.ID] = t
	return nil
}

type memUserRepository struct {
	items map[uuid.UUID]*identity.User
}

func (r *memUserRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := r.items[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memUserRepository) Save(_ context.Context, u *identity.User) error {
	r.items[u.ID] = u
	return nil
}

type memCategoryRepository struct {
	items map[uuid.UUID]*tramite.Category
}

func (r *memCategoryRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*tramite.Category, error) {
	if c, ok := r.items[id]; ok && c.TenantID == tenantID {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepository) Save(_ context.Context, c *tramite.Category) error {
	r.items[c.ID] = c
	return nil
}

type memPublicViewCache struct {
	mu    sync.Mutex
	views map[string]tramite.PublicView
}

func newMemPublicViewCache() *memPublicViewCache {
	return &memPublicViewCache{views: make(map[string]tramite.PublicView)}
}

func (c *memPublicViewCache) Get(_ context.Context, filingNumber string) (*tramite.PublicView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.views[filingNumber]; ok {
		return &v, nil
	}
	return nil, nil
}

func (c *memPublicViewCache) Set(_ context.Context, view *tramite.PublicView, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[view.FilingNumber] = *view
	return nil
}

func (c *memPublicViewCache) Delete(_ context.Context, filingNumber string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.views, filingNumber)
	return nil
}

// recordingPublisher collects published event types
type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range events {
		p.types = append(p.types, e.EventType())
	}
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.types...)
}
