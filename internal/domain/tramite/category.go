package tramite

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
)

// Category is a procedure type offered by a tenant, e.g. a construction
// license. Its code is the second component of the filing number.
type Category struct {
	shared.BaseEntity
	TenantID    uuid.UUID
	Code        string
	Name        string
	Description string
	IsActive    bool
}

// NewCategory creates an active category
func NewCategory(tenantID uuid.UUID, code, name string) (*Category, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !radicacion.ValidCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Category code must be 1-16 characters of A-Z and 0-9")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       code,
		Name:       name,
		IsActive:   true,
	}, nil
}
