package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/shared"
)

// Role is the coarse role of a platform user
type Role string

const (
	RoleGlobalAdmin Role = "ADMIN_GLOBAL"
	RoleTenantAdmin Role = "ADMIN_ENTIDAD"
	RoleReviewer    Role = "REVISOR"
	RoleRequester   Role = "SOLICITANTE"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleGlobalAdmin, RoleTenantAdmin, RoleReviewer, RoleRequester:
		return true
	}
	return false
}

// IsAdmin reports whether the role may administer trámites
func (r Role) IsAdmin() bool {
	return r == RoleGlobalAdmin || r == RoleTenantAdmin
}

// CanReview reports whether a user with this role may be assigned as reviewer
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleTenantAdmin
}

// User is a person acting on the platform: requester, reviewer or admin.
// TenantID is nil only for global administrators.
type User struct {
	shared.BaseEntity
	TenantID *uuid.UUID
	Username string
	FullName string
	Email    string
	Role     Role
	IsActive bool
}

// NewUser creates an active user bound to a tenant
func NewUser(tenantID *uuid.UUID, username, fullName string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	if role != RoleGlobalAdmin && tenantID == nil {
		return nil, shared.NewDomainError("TENANT_REQUIRED", "Only global administrators may exist without a tenant")
	}

	return &User{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Username:   username,
		FullName:   strings.TrimSpace(fullName),
		Role:       role,
		IsActive:   true,
	}, nil
}

// BelongsTo reports whether the user is a member of tenantID
func (u *User) BelongsTo(tenantID uuid.UUID) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}
