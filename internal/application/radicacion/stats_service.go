package radicacion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
)

// CounterStat describes one running counter
type CounterStat struct {
	CategoryCode string    `json:"category_code"`
	Year         int       `json:"year"`
	Issued       int64     `json:"issued"`
	LastNumber   string    `json:"last_number"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CounterStatsResponse lists the counters of a tenant for one year
type CounterStatsResponse struct {
	TenantID    uuid.UUID     `json:"tenant_id"`
	TenantCode  string        `json:"tenant_code"`
	Year        int           `json:"year"`
	TotalIssued int64         `json:"total_issued"`
	Counters    []CounterStat `json:"counters"`
}

// StatsService reports how many filing numbers each category issued
type StatsService struct {
	counters radicacion.CounterStore
	tenants  identity.TenantRepository
	now      func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(counters radicacion.CounterStore, tenants identity.TenantRepository) *StatsService {
	return &StatsService{counters: counters, tenants: tenants, now: time.Now}
}

// Stats returns the counters of a tenant for year. Scoped callers always get
// their own tenant; global callers must name one. A zero year means the
// current year.
func (s *StatsService) Stats(ctx context.Context, tenantID *uuid.UUID, year int) (*CounterStatsResponse, error) {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var target uuid.UUID
	switch {
	case !scope.IsGlobal():
		if tenantID != nil && *tenantID != scope.TenantID() {
			return nil, shared.ErrNotFound
		}
		target = scope.TenantID()
	case tenantID == nil || *tenantID == uuid.Nil:
		return nil, shared.NewDomainError("INVALID_INPUT", "Tenant is required")
	default:
		target = *tenantID
	}
	if year == 0 {
		year = s.now().Year()
	}

	tenant, err := s.tenants.FindByID(ctx, target)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.counters.Snapshots(ctx, target, year)
	if err != nil {
		return nil, err
	}

	resp := &CounterStatsResponse{
		TenantID:   tenant.ID,
		TenantCode: tenant.Code,
		Year:       year,
		Counters:   make([]CounterStat, 0, len(snapshots)),
	}
	for _, snap := range snapshots {
		stat := CounterStat{
			CategoryCode: snap.Key.CategoryCode,
			Year:         snap.Key.Year,
			Issued:       snap.LastValue,
			UpdatedAt:    snap.UpdatedAt,
		}
		if snap.LastValue > 0 {
			stat.LastNumber = radicacion.Number{
				TenantCode:   tenant.Code,
				CategoryCode: snap.Key.CategoryCode,
				Year:         snap.Key.Year,
				Counter:      snap.LastValue,
			}.String()
		}
		resp.TotalIssued += snap.LastValue
		resp.Counters = append(resp.Counters, stat)
	}
	return resp, nil
}
