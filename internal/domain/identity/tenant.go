package identity

import (
	"strings"
	"time"

	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
)

// Tenant is an independent organization (curaduría, secretaría) whose
// trámites are isolated from every other tenant.
type Tenant struct {
	shared.BaseEntity
	Code     string // radicación prefix, immutable once created
	Name     string
	TaxID    string
	Address  string
	Phone    string
	Email    string
	IsActive bool
}

// NewTenant creates an active tenant
func NewTenant(code, name, taxID string) (*Tenant, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !radicacion.ValidCode(code) {
		return nil, shared.NewDomainError("INVALID_CODE", "Tenant code must be 1-16 characters of A-Z and 0-9")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	taxID = strings.TrimSpace(taxID)
	if taxID == "" {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tenant tax id cannot be empty")
	}

	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		TaxID:      taxID,
		IsActive:   true,
	}, nil
}

// SetContact sets the public contact data shown to citizens
func (t *Tenant) SetContact(address, phone, email string) {
	t.Address = strings.TrimSpace(address)
	t.Phone = strings.TrimSpace(phone)
	t.Email = strings.TrimSpace(email)
	t.Touch(time.Now())
}

// Deactivate flags the tenant inactive. Identity is kept; no new trámites
// can be filed against an inactive tenant.
func (t *Tenant) Deactivate() error {
	if !t.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Tenant is already inactive")
	}
	t.IsActive = false
	t.Touch(time.Now())
	return nil
}

// Activate flags the tenant active again
func (t *Tenant) Activate() error {
	if t.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}
	t.IsActive = true
	t.Touch(time.Now())
	return nil
}
