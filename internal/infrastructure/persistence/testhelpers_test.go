package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupSQLiteDB migrates every model into a private in-memory SQLite
// database. It holds one connection: goroutines share the database and
// their transactions run one at a time, as with a row lock on one key.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.TenantModel{},
		&models.UserModel{},
		&models.CategoryModel{},
		&models.SequenceCounterModel{},
		&models.TramiteModel{},
	))
	return db
}

// setupPostgresMock speaks the postgres dialect to sqlmock. Queries are
// matched as regular expressions.
func setupPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func scopedCtx(tenantID uuid.UUID) context.Context {
	return tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenantID))
}

func globalCtx() context.Context {
	return tenancy.ContextWithScope(context.Background(), tenancy.Global())
}
