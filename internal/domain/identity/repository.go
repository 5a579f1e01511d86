package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository looks tenants up by ID or by the code printed in
// filing numbers. Lookups of a missing tenant return shared.ErrNotFound.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByCode(ctx context.Context, code string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// UserRepository is not tenant scoped: reviewer assignment checks the
// user's tenant itself.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
}
