package tramite

import (
	"context"
	"time"
)

// PublicView is the projection of a trámite shown to unauthenticated
// callers. It carries no requester, reviewer, comment or address data.
type PublicView struct {
	FilingNumber      string     `json:"filing_number"`
	Status            Status     `json:"status"`
	StatusDescription string     `json:"status_description"`
	TenantName        string     `json:"tenant_name"`
	CategoryName      string     `json:"category_name"`
	FiledAt           time.Time  `json:"filed_at"`
	StatusChangedAt   time.Time  `json:"status_changed_at"`
	FinalizedAt       *time.Time `json:"finalized_at,omitempty"`
	DaysElapsed       int        `json:"days_elapsed"`
}

// NewPublicView projects t. DaysElapsed counts up to now, or up to
// finalization for a closed trámite.
func NewPublicView(t *Tramite, tenantName, categoryName string, now time.Time) *PublicView {
	until := now
	if t.FinalizedAt != nil {
		until = *t.FinalizedAt
	}
	return &PublicView{
		FilingNumber:      t.FilingNumber,
		Status:            t.Status,
		StatusDescription: t.Status.PublicDescription(),
		TenantName:        tenantName,
		CategoryName:      categoryName,
		FiledAt:           t.FiledAt,
		StatusChangedAt:   t.StatusChangedAt,
		FinalizedAt:       t.FinalizedAt,
		DaysElapsed:       t.DaysElapsed(until),
	}
}

// PublicViewCache caches public views by filing number.
// Get returns (nil, nil) on a miss.
type PublicViewCache interface {
	Get(ctx context.Context, filingNumber string) (*PublicView, error)
	Set(ctx context.Context, view *PublicView, ttl time.Duration) error
	Delete(ctx context.Context, filingNumber string) error
}
