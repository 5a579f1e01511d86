package tenant

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/tenancy"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type tramiteRow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"type:uuid"`
	FilingNumber string
}

func (tramiteRow) TableName() string { return "tramites" }

func mockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func emptyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "filing_number"})
}

func TestTenantDB_WithContext(t *testing.T) {
	tenantID := uuid.New()
	const filtered = `SELECT \* FROM "tramites" WHERE "tramites"."tenant_id" = \$1`

	tests := []struct {
		name   string
		ctx    context.Context
		expect func(sqlmock.Sqlmock)
		err    error
	}{
		{
			name: "scoped request sees its own tenant",
			ctx:  tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenantID)),
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(filtered).WithArgs(tenantID).WillReturnRows(emptyRows())
			},
		},
		{
			name: "global scope is unfiltered",
			ctx:  tenancy.ContextWithScope(context.Background(), tenancy.Global()),
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT \* FROM "tramites"$`).WillReturnRows(emptyRows())
			},
		},
		{
			name:   "no scope fails before any SQL",
			ctx:    context.Background(),
			expect: func(sqlmock.Sqlmock) {},
			err:    tenancy.ErrContextMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := mockPostgres(t)
			tt.expect(mock)

			var rows []tramiteRow
			err := NewTenantDB(db).WithContext(tt.ctx).Find(&rows).Error
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestForScope_InsideTransaction(t *testing.T) {
	tenantID := uuid.New()
	db, mock := mockPostgres(t)
	ctx := tenancy.ContextWithScope(context.Background(), tenancy.Scoped(tenantID))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "tramites" WHERE filing_number = \$1 AND "tramites"."tenant_id" = \$2`).
		WithArgs("T1-CL-2024-0001", tenantID).
		WillReturnRows(emptyRows())
	mock.ExpectCommit()

	err := NewTenantDB(db).Transaction(ctx, func(tx *gorm.DB, scope tenancy.Scope) error {
		assert.Equal(t, tenantID, scope.TenantID())
		var rows []tramiteRow
		return tx.Where("filing_number = ?", "T1-CL-2024-0001").Scopes(ForScope(scope)).Find(&rows).Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantDB_Transaction_NoScope(t *testing.T) {
	db, mock := mockPostgres(t)

	err := NewTenantDB(db).Transaction(context.Background(), func(*gorm.DB, tenancy.Scope) error {
		t.Fatal("callback must not run without a scope")
		return nil
	})
	assert.ErrorIs(t, err, tenancy.ErrContextMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantDB_Unscoped(t *testing.T) {
	db, _ := mockPostgres(t)
	assert.Same(t, db, NewTenantDB(db).Unscoped())
}
