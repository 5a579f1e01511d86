// Package tenancy carries the acting tenant through a request.
//
// The scope is bound to a context.Context and read back by every
// tenant-sensitive operation. Nothing is stored in package or goroutine
// state, so a scope cannot outlive the context it was bound to and cannot
// leak between concurrent requests.
package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/shared"
)

var (
	// ErrContextMissing is returned when a tenant-sensitive operation runs
	// without a bound scope. There is no unfiltered fallback.
	ErrContextMissing = shared.NewDomainError("CONTEXT_MISSING", "No tenant scope is bound to the request")
	// ErrTenantRequired is returned when an actor without global privilege
	// has no tenant.
	ErrTenantRequired = shared.NewDomainError("TENANT_REQUIRED", "A tenant is required for this actor")
)

// Actor is the authenticated principal behind a request
type Actor struct {
	UserID   uuid.UUID
	TenantID *uuid.UUID
	Role     identity.Role
}

// IsGlobal reports whether the actor is exempt from tenant filtering
func (a Actor) IsGlobal() bool {
	return a.Role == identity.RoleGlobalAdmin
}

// Scope is the effective tenant filter for a request: either Global or
// scoped to exactly one tenant. The zero value is invalid.
type Scope struct {
	global   bool
	tenantID uuid.UUID
}

// Global returns the unfiltered scope reserved for global administrators
func Global() Scope {
	return Scope{global: true}
}

// Scoped returns a scope restricted to tenantID
func Scoped(tenantID uuid.UUID) Scope {
	return Scope{tenantID: tenantID}
}

// IsGlobal reports whether the scope skips tenant filtering
func (s Scope) IsGlobal() bool {
	return s.global
}

// TenantID returns the scoped tenant. It is uuid.Nil for the global scope.
func (s Scope) TenantID() uuid.UUID {
	return s.tenantID
}

// Allows reports whether a record owned by tenantID is visible in the scope
func (s Scope) Allows(tenantID uuid.UUID) bool {
	return s.global || s.tenantID == tenantID
}

func (s Scope) valid() bool {
	return s.global || s.tenantID != uuid.Nil
}

// String returns "global" or "tenant:<id>"
func (s Scope) String() string {
	if s.global {
		return "global"
	}
	return fmt.Sprintf("tenant:%s", s.tenantID)
}

// Resolve derives the scope of an actor. Global administrators get the
// global scope; every other actor must carry a tenant.
func Resolve(actor Actor) (Scope, error) {
	if actor.IsGlobal() {
		return Global(), nil
	}
	if actor.TenantID == nil || *actor.TenantID == uuid.Nil {
		return Scope{}, ErrTenantRequired
	}
	return Scoped(*actor.TenantID), nil
}

type scopeKey struct{}
type actorKey struct{}

// ContextWithScope returns a child context carrying scope
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFromContext returns the bound scope or ErrContextMissing
func ScopeFromContext(ctx context.Context) (Scope, error) {
	scope, ok := ctx.Value(scopeKey{}).(Scope)
	if !ok || !scope.valid() {
		return Scope{}, ErrContextMissing
	}
	return scope, nil
}

// ContextWithActor returns a child context carrying the actor and its
// resolved scope
func ContextWithActor(ctx context.Context, actor Actor) (context.Context, error) {
	scope, err := Resolve(actor)
	if err != nil {
		return ctx, err
	}
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return ContextWithScope(ctx, scope), nil
}

// ActorFromContext returns the bound actor or ErrContextMissing
func ActorFromContext(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	if !ok {
		return Actor{}, ErrContextMissing
	}
	return actor, nil
}

// WithScope runs fn with scope bound to a derived context. The caller's
// context is never modified, so the scope is gone once fn returns, fails,
// panics, or ctx is cancelled.
func WithScope(ctx context.Context, scope Scope, fn func(ctx context.Context) error) error {
	if !scope.valid() {
		return ErrTenantRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ContextWithScope(ctx, scope))
}
