package tramite

import (
	"context"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/shared"
)

// Filter narrows a trámite listing
type Filter struct {
	shared.Filter
	Status     Status
	CategoryID *uuid.UUID
	ReviewerID *uuid.UUID
}

// Repository defines persistence for trámites. Every method except
// FindByFilingNumber reads the tenant scope from ctx; records outside the
// scope behave exactly like missing records.
type Repository interface {
	// Create inserts a new trámite
	Create(ctx context.Context, t *Tramite) error

	// FindByID finds a trámite visible in the current scope
	FindByID(ctx context.Context, id uuid.UUID) (*Tramite, error)

	// FindAll lists trámites visible in the current scope
	FindAll(ctx context.Context, filter Filter) ([]Tramite, int64, error)

	// Update loads the trámite under a row lock, applies fn and saves the
	// result in one transaction. If fn fails nothing is written.
	Update(ctx context.Context, id uuid.UUID, fn func(t *Tramite) error) (*Tramite, error)

	// FindByFilingNumber finds a trámite across all tenants. Only for the
	// public status lookup, which exposes non-sensitive fields.
	FindByFilingNumber(ctx context.Context, filingNumber string) (*Tramite, error)
}

// CategoryRepository defines read access to procedure categories
type CategoryRepository interface {
	// FindByID finds a category owned by tenantID
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, c *Category) error
}
