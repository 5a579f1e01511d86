// Package tenant provides multi-tenant database scoping for GORM.
//
// Every tenant-owned query goes through a scope taken from the request
// context. A global scope leaves queries unfiltered; a scoped one adds
// WHERE tenant_id = ?. A context without a scope yields a DB that fails on
// first use, so a missing scope never widens access.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	db.WithContext(ctx).Find(&tramites) // WHERE tenant_id = 'xxx' is auto-added
package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/tenancy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantColumn is the column every tenant-owned table carries
const TenantColumn = "tenant_id"

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: TenantColumn},
			Value:  tenantID,
		})
	}
}

// ForScope applies the filter matching scope. Global scopes are unfiltered.
func ForScope(scope tenancy.Scope) func(db *gorm.DB) *gorm.DB {
	if scope.IsGlobal() {
		return func(db *gorm.DB) *gorm.DB { return db }
	}
	return TenantScope(scope.TenantID())
}

// TenantDB wraps GORM DB with scope-aware tenant filtering
type TenantDB struct {
	db *gorm.DB
}

// NewTenantDB creates a new TenantDB
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db}
}

// WithContext returns a GORM DB filtered by the scope carried in ctx.
// Without a scope the returned DB carries tenancy.ErrContextMissing and
// every operation on it fails.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(err)
		return db
	}
	return t.db.WithContext(ctx).Scopes(ForScope(scope))
}

// Transaction runs fn in a transaction and hands it the scope from ctx.
// Queries inside fn must apply ForScope themselves; a shared tx handle
// cannot carry a WHERE clause across statements.
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB, scope tenancy.Scope) error) error {
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx, scope)
	})
}

// Unscoped returns the underlying DB without any tenant scoping.
// Only the public lookup and system jobs may use it.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}
