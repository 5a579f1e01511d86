package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) Touch(now time.Time) { e.UpdatedAt = now }

// TenantAggregateRoot is the root of an aggregate owned by one tenant. It
// keeps an optimistic-locking version and the events raised since it was
// loaded. Events are not persisted with it.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
	Version   int

	events []DomainEvent
}

// NewTenantAggregateRootAt starts a version 1 aggregate stamped with now
func NewTenantAggregateRootAt(tenantID uuid.UUID, now time.Time) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		TenantID:   tenantID,
		Version:    1,
	}
}

func (a *TenantAggregateRoot) SetCreatedBy(userID uuid.UUID) { a.CreatedBy = &userID }

func (a *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool { return a.TenantID == tenantID }

func (a *TenantAggregateRoot) IncrementVersion() { a.Version++ }

func (a *TenantAggregateRoot) AddDomainEvent(e DomainEvent) { a.events = append(a.events, e) }

// GetDomainEvents returns the events raised since the last clear
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent { return a.events }

func (a *TenantAggregateRoot) ClearDomainEvents() { a.events = nil }
