package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SQLSTATEs raised by lock_timeout and by statement_timeout.
const (
	pgLockNotAvailable = "55P03"
	pgQueryCanceled    = "57014"
)

type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
}

func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true, SlowQueryThreshold: defaultSlowQuery}
}

// DBMetrics counts statements per operation, slow statements and lock
// timeouts per table, and reports pool occupancy at collection time.
type DBMetrics struct {
	meter      metric.Meter
	slow       time.Duration
	log        *zap.Logger
	queries    *Counter
	duration   *Histogram
	slowTotal  *Counter
	lockTotal  *Counter
	poolGauge  metric.Int64ObservableGauge
	unregister sync.Once
	reg        metric.Registration
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, log *zap.Logger) (*DBMetrics, error) {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaultSlowQuery
	}
	m := &DBMetrics{meter: meter, slow: cfg.SlowQueryThreshold, log: orNop(log)}

	var err error
	if m.queries, err = NewCounter(meter, "db_query_total", "Statements by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Statement duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.slowTotal, err = NewCounter(meter, "db_slow_query_total", "Statements over the slow threshold by table", "{query}"); err != nil {
		return nil, err
	}
	if m.lockTotal, err = NewCounter(meter, "db_lock_timeout_total", "Statements that gave up on a row lock by table", "{query}"); err != nil {
		return nil, err
	}
	if m.poolGauge, err = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"),
		metric.WithUnit("{connection}")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuery accounts one finished statement. An empty operation is
// recorded as UNKNOWN.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, took time.Duration, err error) {
	op := AttrDBOperation.String(orDefault(strings.ToUpper(operation), "UNKNOWN"))
	tbl := AttrDBTable.String(orDefault(table, "unknown"))

	m.queries.Inc(ctx, op)
	m.duration.RecordDuration(ctx, took, op)
	if took > m.slow {
		m.slowTotal.Inc(ctx, tbl)
	}
	if IsLockTimeout(err) {
		m.lockTotal.Inc(ctx, tbl)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ObservePool reports sqlDB.Stats on every collection until Stop.
func (m *DBMetrics) ObservePool(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("observe pool: nil *sql.DB")
	}
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(m.poolGauge, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(m.poolGauge, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(m.poolGauge, int64(s.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		return nil
	}, m.poolGauge)
	if err != nil {
		return err
	}
	m.reg = reg
	return nil
}

// Stop detaches the pool callback. It may be called more than once.
func (m *DBMetrics) Stop() {
	m.unregister.Do(func() {
		if m.reg == nil {
			return
		}
		if err := m.reg.Unregister(); err != nil {
			m.log.Warn("Pool metrics callback not unregistered", zap.Error(err))
		}
	})
}

// DBMetricsPlugin feeds every GORM statement into DBMetrics.
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

func (p *DBMetricsPlugin) Name() string { return "db_metrics" }

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, "db_metrics", markQueryStart, func(db *gorm.DB) {
		stmt := db.Statement
		ctx := stmt.Context
		if ctx == nil {
			ctx = context.Background()
		}
		took, _ := queryElapsed(ctx)
		p.metrics.RecordQuery(ctx, detectOperationType(stmt.SQL.String()), stmt.Table, took, db.Error)
	})
}

// RegisterDBMetrics installs the plugin on db and observes its pool. It
// returns nil, nil while metric export is off.
func RegisterDBMetrics(db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, log *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || !mp.IsEnabled() {
		return nil, nil
	}

	m, err := NewDBMetrics(mp.Meter("db.client"), cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(m)); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := m.ObservePool(sqlDB); err != nil {
		return nil, err
	}
	return m, nil
}

// IsLockTimeout reports a PostgreSQL lock or statement timeout anywhere in
// err's chain.
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgLockNotAvailable || pgErr.Code == pgQueryCanceled
}

func detectOperationType(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch verb = strings.ToUpper(verb); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	}
	return "OTHER"
}

type queryStartKey struct{}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func queryElapsed(ctx context.Context) (time.Duration, bool) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// registerAround hooks before ahead of and after behind each gorm:<op>
// step, under the names prefix:before_<op> and prefix:after_<op>.
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	hook := func(op string, ahead, behind callbackRegistrar) error {
		if err := ahead.Register(prefix+":before_"+op, before); err != nil {
			return err
		}
		return behind.Register(prefix+":after_"+op, after)
	}
	return errors.Join(
		hook("create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")),
		hook("query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")),
		hook("update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")),
		hook("delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")),
		hook("row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")),
		hook("raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")),
	)
}
