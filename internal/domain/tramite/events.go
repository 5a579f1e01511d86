package tramite

import (
	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTramite = "Tramite"

// Event type constants
const (
	EventTypeTramiteFiled     = "tramite.filed"
	EventTypeStatusChanged    = "tramite.status_changed"
	EventTypeReviewerAssigned = "tramite.reviewer_assigned"
	EventTypeTramiteFinalized = "tramite.finalized"
)

// TramiteFiledEvent is raised when a trámite is filed and numbered
type TramiteFiledEvent struct {
	shared.BaseDomainEvent
	FilingNumber string    `json:"filing_number"`
	CategoryID   uuid.UUID `json:"category_id"`
	RequesterID  uuid.UUID `json:"requester_id"`
}

// NewTramiteFiledEvent creates a new TramiteFiledEvent
func NewTramiteFiledEvent(t *Tramite) *TramiteFiledEvent {
	return &TramiteFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTramiteFiled, AggregateTypeTramite, t.ID, t.TenantID, t.FiledAt),
		FilingNumber:    t.FilingNumber,
		CategoryID:      t.CategoryID,
		RequesterID:     t.RequesterID,
	}
}

// StatusChangedEvent is raised on every successful transition
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	FilingNumber string    `json:"filing_number"`
	From         Status    `json:"from"`
	To           Status    `json:"to"`
	Comment      string    `json:"comment,omitempty"`
	ChangedBy    uuid.UUID `json:"changed_by"`
	RequesterID  uuid.UUID `json:"requester_id"`
}

// NewStatusChangedEvent creates a new StatusChangedEvent
func NewStatusChangedEvent(t *Tramite, from Status, changedBy uuid.UUID) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStatusChanged, AggregateTypeTramite, t.ID, t.TenantID, t.StatusChangedAt),
		FilingNumber:    t.FilingNumber,
		From:            from,
		To:              t.Status,
		Comment:         t.ReviewerComments,
		ChangedBy:       changedBy,
		RequesterID:     t.RequesterID,
	}
}

// ReviewerAssignedEvent is raised when a reviewer takes a trámite
type ReviewerAssignedEvent struct {
	shared.BaseDomainEvent
	FilingNumber string    `json:"filing_number"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	AssignedBy   uuid.UUID `json:"assigned_by"`
}

// NewReviewerAssignedEvent creates a new ReviewerAssignedEvent
func NewReviewerAssignedEvent(t *Tramite, assignedBy uuid.UUID) *ReviewerAssignedEvent {
	var reviewerID uuid.UUID
	if t.ReviewerID != nil {
		reviewerID = *t.ReviewerID
	}
	return &ReviewerAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReviewerAssigned, AggregateTypeTramite, t.ID, t.TenantID, t.StatusChangedAt),
		FilingNumber:    t.FilingNumber,
		ReviewerID:      reviewerID,
		AssignedBy:      assignedBy,
	}
}

// TramiteFinalizedEvent is raised when a trámite enters a terminal status
type TramiteFinalizedEvent struct {
	shared.BaseDomainEvent
	FilingNumber string `json:"filing_number"`
	Outcome      Status `json:"outcome"`
	DaysElapsed  int    `json:"days_elapsed"`
}

// NewTramiteFinalizedEvent creates a new TramiteFinalizedEvent
func NewTramiteFinalizedEvent(t *Tramite) *TramiteFinalizedEvent {
	return &TramiteFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTramiteFinalized, AggregateTypeTramite, t.ID, t.TenantID, t.StatusChangedAt),
		FilingNumber:    t.FilingNumber,
		Outcome:         t.Status,
		DaysElapsed:     t.DaysElapsed(t.StatusChangedAt),
	}
}
