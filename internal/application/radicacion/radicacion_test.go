package radicacion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
	"go.uber.org/zap"
)

// MockCounterStore is a mock implementation of radicacion.CounterStore
type MockCounterStore struct {
	mock.Mock
}

func (m *MockCounterStore) Next(ctx context.Context, key radicacion.CounterKey, _ radicacion.IssueFunc) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
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

// MockTenantRepository is a mock implementation of identity.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByCode(ctx context.Context, code string) (*identity.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

func newTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("T1", "Curaduría Uno", "900123")
	require.NoError(t, err)
	return tenant
}

func TestStatsService_Stats(t *testing.T) {
	tenant := newTenant(t)
	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("scoped caller gets own counters", func(t *testing.T) {
		counters := new(MockCounterStore)
		tenants := new(MockTenantRepository)
		tenants.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
		counters.On("Snapshots", mock.Anything, tenant.ID, 2024).Return([]radicacion.CounterSnapshot{
			{Key: radicacion.CounterKey{TenantID: tenant.ID, CategoryCode: "CL", Year: 2024}, LastValue: 12, IsActive: true, UpdatedAt: updated},
			{Key: radicacion.CounterKey{TenantID: tenant.ID, CategoryCode: "DEM", Year: 2024}, LastValue: 3, IsActive: true, UpdatedAt: updated},
		}, nil)

		svc := NewStatsService(counters, tenants)
		ctx := tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenant.ID))

		resp, err := svc.Stats(ctx, nil, 2024)
		require.NoError(t, err)

		assert.Equal(t, "T1", resp.TenantCode)
		assert.Equal(t, int64(15), resp.TotalIssued)
		require.Len(t, resp.Counters, 2)
		assert.Equal(t, "T1-CL-2024-0012", resp.Counters[0].LastNumber)
		assert.Equal(t, "T1-DEM-2024-0003", resp.Counters[1].LastNumber)
		counters.AssertExpectations(t)
	})

	t.Run("zero year means current year", func(t *testing.T) {
		counters := new(MockCounterStore)
		tenants := new(MockTenantRepository)
		tenants.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
		counters.On("Snapshots", mock.Anything, tenant.ID, 2031).Return([]radicacion.CounterSnapshot{}, nil)

		svc := NewStatsService(counters, tenants)
		svc.now = func() time.Time { return time.Date(2031, 2, 1, 0, 0, 0, 0, time.UTC) }
		ctx := tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenant.ID))

		resp, err := svc.Stats(ctx, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, 2031, resp.Year)
		assert.Empty(t, resp.Counters)
	})

	t.Run("scoped caller asking for another tenant", func(t *testing.T) {
		svc := NewStatsService(new(MockCounterStore), new(MockTenantRepository))
		ctx := tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenant.ID))
		other := uuid.New()

		_, err := svc.Stats(ctx, &other, 2024)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("global caller must name a tenant", func(t *testing.T) {
		svc := NewStatsService(new(MockCounterStore), new(MockTenantRepository))
		ctx := tenancy.ContextWithScope(context.Background(), tenancy.Global())

		_, err := svc.Stats(ctx, nil, 2024)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("missing scope", func(t *testing.T) {
		svc := NewStatsService(new(MockCounterStore), new(MockTenantRepository))
		_, err := svc.Stats(context.Background(), nil, 2024)
		assert.ErrorIs(t, err, tenancy.ErrContextMissing)
	})
}

func TestCounterCleanupService_Run(t *testing.T) {
	t.Run("deactivates counters before the retention window", func(t *testing.T) {
		counters := new(MockCounterStore)
		counters.On("DeactivateBefore", mock.Anything, 2023).Return(int64(4), nil).Once()

		svc := NewCounterCleanupService(counters, 1, zap.NewNop())
		svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC) }

		n, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
		counters.AssertExpectations(t)
	})

	t.Run("store error is returned", func(t *testing.T) {
		counters := new(MockCounterStore)
		counters.On("DeactivateBefore", mock.Anything, 2024).Return(int64(0), errors.New("db down"))

		svc := NewCounterCleanupService(counters, -3, nil)
		svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC) }

		_, err := svc.Run(context.Background())
		assert.Error(t, err)
	})
}
