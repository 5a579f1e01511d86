// Package integration exercises the backend against PostgreSQL in a
// testcontainer, where row locks, lock_timeout and unique constraints are
// real.
package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/infrastructure/migration"
	"github.com/tramites/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postgres is started by the first test that needs it and shared by the
// rest of the package. Tests isolate their data by creating their own
// tenants, so nothing is truncated between them.
var (
	postgres      *tcpostgres.PostgresContainer
	startPostgres = sync.OnceValues(func() (string, error) {
		ctx := context.Background()
		c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
			tcpostgres.WithDatabase("tramites_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute)),
		)
		if err != nil {
			return "", fmt.Errorf("start postgres: %w", err)
		}
		postgres = c

		dsn, err := c.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			return "", err
		}
		return dsn, migrateSchema(dsn)
	})
)

type TestDB struct {
	DB *gorm.DB
	t  *testing.T
}

// NewSharedTestDB connects to the package container. It skips under -short
// and when SKIP_INTEGRATION is set.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("integration tests disabled")
	}

	dsn, err := startPostgres()
	require.NoError(t, err)

	// the concurrency tests need enough connections to contend on row locks
	db, err := openDB(dsn, 60)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, t: t}
}

func openDB(dsn string, maxOpen int) (*gorm.DB, error) {
	level := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = logger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen / 2)
	return db, nil
}

func migrateSchema(dsn string) error {
	db, err := openDB(dsn, 2)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, "", zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

// terminatePostgres stops the container if a test started it.
func terminatePostgres() {
	if postgres == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgres.Terminate(ctx)
}

// Fixture is one tenant with a category and users of every role
type Fixture struct {
	Tenant     *identity.Tenant
	Category   *tramite.Category
	Admin      *identity.User
	Reviewer   *identity.User
	Requester  *identity.User
	GlobalUser *identity.User
}

// uniqueTenantCode returns a tenant code no other test uses. Filing
// numbers embed the tenant code and are globally unique, so tests sharing
// the container must never reuse one.
func uniqueTenantCode() string {
	return "T" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// CreateFixture stores a fresh tenant with a category of the given code
func (tdb *TestDB) CreateFixture(categoryCode string) *Fixture {
	tdb.t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	tenantCode := uniqueTenantCode()
	tenant, err := identity.NewTenant(tenantCode, "Curaduría "+tenantCode, "NIT-"+suffix)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormTenantRepository(tdb.DB).Save(ctx, tenant))

	category, err := tramite.NewCategory(tenant.ID, categoryCode, "Licencia "+categoryCode)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormCategoryRepository(tdb.DB).Save(ctx, category))

	users := persistence.NewGormUserRepository(tdb.DB)
	newUser := func(tenantID *uuid.UUID, name string, role identity.Role) *identity.User {
		u, err := identity.NewUser(tenantID, fmt.Sprintf("%s-%s", name, suffix), name, role)
		require.NoError(tdb.t, err)
		require.NoError(tdb.t, users.Save(ctx, u))
		return u
	}

	return &Fixture{
		Tenant:     tenant,
		Category:   category,
		Admin:      newUser(&tenant.ID, "admin", identity.RoleTenantAdmin),
		Reviewer:   newUser(&tenant.ID, "reviewer", identity.RoleReviewer),
		Requester:  newUser(&tenant.ID, "requester", identity.RoleRequester),
		GlobalUser: newUser(nil, "root", identity.RoleGlobalAdmin),
	}
}
