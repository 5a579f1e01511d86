package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tramite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Allocation outcomes used as the outcome attribute.
const (
	OutcomeOK      = "ok"
	OutcomeTimeout = "timeout"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// TenantProvider lists the tenants whose counters are sampled.
// persistence.GormTenantRepository satisfies it.
type TenantProvider interface {
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CounterSnapshotProvider reads counter state for the gauge collection.
// persistence.GormCounterStore satisfies it.
type CounterSnapshotProvider interface {
	Snapshots(ctx context.Context, tenantID uuid.UUID, year int) ([]radicacion.CounterSnapshot, error)
}

// TramiteMetricsConfig holds configuration for TramiteMetrics.
type TramiteMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Counters CounterSnapshotProvider // optional, enables the last-value gauge
}

// TramiteMetrics records filing number allocation, filing, lifecycle and
// public lookup measurements.
type TramiteMetrics struct {
	logger   *zap.Logger
	counters CounterSnapshotProvider

	allocationDuration *Histogram
	allocationTotal    *Counter
	allocationAttempts *Histogram
	filedTotal         *Counter
	transitionTotal    *Counter
	publicLookupTotal  *Counter
	counterLastValue   *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
	wg          sync.WaitGroup
	now         func() time.Time
}

// ErrMeterNil is returned when no meter is configured.
var ErrMeterNil = &MetricsError{Op: "NewTramiteMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewTramiteMetrics creates the instruments on cfg.Meter.
func NewTramiteMetrics(cfg TramiteMetricsConfig) (*TramiteMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &TramiteMetrics{
		logger:   logger,
		counters: cfg.Counters,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}

	var err error
	if m.allocationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "tramites_allocation_duration_seconds",
		Description: "Time to allocate a filing number, retries included",
		Unit:        "s",
		Boundaries:  AllocationDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.allocationTotal, err = NewCounter(cfg.Meter,
		"tramites_allocation_total",
		"Filing number allocations by outcome",
		"{allocations}",
	); err != nil {
		return nil, err
	}
	if m.allocationAttempts, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "tramites_allocation_attempts",
		Description: "Attempts needed per allocation",
		Unit:        "{attempts}",
		Boundaries:  []float64{1, 2, 3, 4, 5, 8},
	}); err != nil {
		return nil, err
	}
	if m.filedTotal, err = NewCounter(cfg.Meter,
		"tramites_filed_total",
		"Trámites filed",
		"{tramites}",
	); err != nil {
		return nil, err
	}
	if m.transitionTotal, err = NewCounter(cfg.Meter,
		"tramites_transition_total",
		"Trámite status transitions",
		"{transitions}",
	); err != nil {
		return nil, err
	}
	if m.publicLookupTotal, err = NewCounter(cfg.Meter,
		"tramites_public_lookup_total",
		"Anonymous filing number lookups",
		"{lookups}",
	); err != nil {
		return nil, err
	}
	if m.counterLastValue, err = NewGauge(cfg.Meter,
		"tramites_counter_last_value",
		"Last issued sequence per tenant and category for the current year",
		"{numbers}",
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordAllocation records one allocation, successful or not.
func (m *TramiteMetrics) RecordAllocation(ctx context.Context, categoryCode string, attempts int, elapsed time.Duration, err error) {
	attrs := []attribute.KeyValue{
		AttrCategoryCode.String(categoryCode),
		AttrOutcome.String(AllocationOutcome(err)),
	}
	m.allocationTotal.Inc(ctx, attrs...)
	m.allocationDuration.RecordDuration(ctx, elapsed, attrs...)
	m.allocationAttempts.Record(ctx, float64(attempts), AttrCategoryCode.String(categoryCode))
}

// RecordFiled counts a newly filed trámite.
func (m *TramiteMetrics) RecordFiled(ctx context.Context, categoryCode string) {
	m.filedTotal.Inc(ctx, AttrCategoryCode.String(categoryCode))
}

// RecordTransition counts a status change.
func (m *TramiteMetrics) RecordTransition(ctx context.Context, from, to tramite.Status) {
	m.transitionTotal.Inc(ctx,
		AttrFromStatus.String(from.String()),
		AttrToStatus.String(to.String()),
	)
}

// RecordPublicLookup counts an anonymous lookup.
func (m *TramiteMetrics) RecordPublicLookup(ctx context.Context, cacheHit bool, err error) {
	outcome := OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, radicacion.ErrMalformedNumber):
		outcome = "malformed"
	case errors.Is(err, shared.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = OutcomeError
	}
	m.publicLookupTotal.Inc(ctx, AttrCacheHit.Bool(cacheHit), AttrOutcome.String(outcome))
}

// AllocationOutcome maps an allocation error onto the outcome attribute.
func AllocationOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, radicacion.ErrAllocationTimeout):
		return OutcomeTimeout
	case errors.Is(err, radicacion.ErrAllocationFailed):
		return OutcomeFailed
	default:
		return OutcomeError
	}
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection samples the current-year counters of every active
// tenant each interval (default 5 minutes). It is a no-op without a
// CounterSnapshotProvider. Use Stop to end it.
func (m *TramiteMetrics) StartPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	if m.counters == nil || tenants == nil {
		m.logger.Debug("No counter provider configured, skipping counter gauge collection")
		return
	}
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		m.wg.Add(1)
		go m.runPeriodicCollection(ctx, tenants, interval)
	})
}

func (m *TramiteMetrics) runPeriodicCollection(ctx context.Context, tenants TenantProvider, interval time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.collectCounters(ctx, tenants)

	for {
		select {
		case <-m.stopChan:
			m.logger.Info("Stopping periodic counter metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectCounters(ctx, tenants)
		}
	}
}

func (m *TramiteMetrics) collectCounters(ctx context.Context, tenants TenantProvider) {
	tenantIDs, err := tenants.ActiveIDs(ctx)
	if err != nil {
		m.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	year := m.now().Year()
	for _, tenantID := range tenantIDs {
		snapshots, err := m.counters.Snapshots(ctx, tenantID, year)
		if err != nil {
			m.logger.Warn("Failed to read counters for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		for _, s := range snapshots {
			m.counterLastValue.Record(ctx, s.LastValue,
				AttrTenantID.String(tenantID.String()),
				AttrCategoryCode.String(s.Key.CategoryCode),
				AttrYear.Int(s.Key.Year),
			)
		}
	}
}

// Stop ends periodic collection. Safe to call more than once.
func (m *TramiteMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}
