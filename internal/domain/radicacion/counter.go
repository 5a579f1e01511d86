package radicacion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/shared"
)

// Allocation errors
var (
	// ErrAllocationFailed means the counter store could not complete the
	// increment. The caller must not retry; no number was issued.
	ErrAllocationFailed = shared.NewDomainError("ALLOCATION_FAILED", "Filing number allocation failed")
	// ErrAllocationTimeout means the counter row lock could not be acquired
	// in time. Nothing was mutated and the caller may retry.
	ErrAllocationTimeout = shared.NewDomainError("ALLOCATION_TIMEOUT", "Timed out waiting for the filing number counter")
)

// CounterKey identifies one running counter
type CounterKey struct {
	TenantID     uuid.UUID
	CategoryCode string
	Year         int
}

// String returns a stable text form, used for logs and metric attributes
func (k CounterKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.TenantID, k.CategoryCode, k.Year)
}

// Validate checks the key before it reaches storage
func (k CounterKey) Validate() error {
	if k.TenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "counter key requires a tenant")
	}
	if !ValidCode(k.CategoryCode) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid category code %q", k.CategoryCode))
	}
	if k.Year < minYear || k.Year > maxYear {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("year %d out of range", k.Year))
	}
	return nil
}

// CounterSnapshot is a read-only view of a counter row
type CounterSnapshot struct {
	Key       CounterKey
	LastValue int64
	IsActive  bool
	UpdatedAt time.Time
}

// IssueFunc persists whatever consumes a freshly drawn counter value. It
// runs inside the increment's transaction; ctx carries that transaction.
type IssueFunc func(ctx context.Context, value int64) error

// CounterStore is the durable keyed counter behind filing numbers.
// It is the only writer of counter state.
type CounterStore interface {
	// Next atomically creates the counter for key if absent and returns its
	// incremented value. Values for one key are 1, 2, 3... with no gaps.
	// When issue is not nil it runs before the increment commits, and an
	// error from it rolls the increment back and is returned unchanged.
	// Returns ErrAllocationTimeout when the per-key lock could not be taken
	// in time and ErrAllocationFailed for any other storage failure.
	Next(ctx context.Context, key CounterKey, issue IssueFunc) (int64, error)

	// Snapshots returns the active counters of a tenant for a year
	Snapshots(ctx context.Context, tenantID uuid.UUID, year int) ([]CounterSnapshot, error)

	// DeactivateBefore marks every counter older than year inactive and
	// returns how many rows changed
	DeactivateBefore(ctx context.Context, year int) (int64, error)
}
