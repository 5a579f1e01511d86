package tramite

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
)

const (
	maxSubjectLength = 500
	maxTextLength    = 4000
)

// Details holds the free-text and scheduling fields supplied at filing
type Details struct {
	Subject            string
	ProjectDescription string
	PropertyAddress    string
	Observations       string
	NextDueAt          *time.Time
	CompleteBy         *time.Time
}

// Tramite is a permit application tracked through a fixed lifecycle.
// Status only changes through Transition and AssignReviewer.
type Tramite struct {
	shared.TenantAggregateRoot
	FilingNumber       string
	CategoryID         uuid.UUID
	RequesterID        uuid.UUID
	ReviewerID         *uuid.UUID
	Status             Status
	Subject            string
	ProjectDescription string
	PropertyAddress    string
	Observations       string
	ReviewerComments   string
	FiledAt            time.Time
	StatusChangedAt    time.Time
	NextDueAt          *time.Time
	CompleteBy         *time.Time
	FinalizedAt        *time.Time
}

// NewTramite creates a trámite in the initial status. The filing number is
// set here and never changes afterwards.
func NewTramite(tenantID uuid.UUID, filingNumber string, categoryID, requesterID uuid.UUID, d Details, now time.Time) (*Tramite, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if _, err := radicacion.Parse(filingNumber); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if requesterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REQUESTER", "Requester ID cannot be empty")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	t := &Tramite{
		TenantAggregateRoot: shared.NewTenantAggregateRootAt(tenantID, now),
		FilingNumber:        filingNumber,
		CategoryID:          categoryID,
		RequesterID:         requesterID,
		Status:              InitialStatus,
		Subject:             strings.TrimSpace(d.Subject),
		ProjectDescription:  strings.TrimSpace(d.ProjectDescription),
		PropertyAddress:     strings.TrimSpace(d.PropertyAddress),
		Observations:        strings.TrimSpace(d.Observations),
		FiledAt:             now,
		StatusChangedAt:     now,
		NextDueAt:           d.NextDueAt,
		CompleteBy:          d.CompleteBy,
	}
	t.SetCreatedBy(requesterID)
	t.AddDomainEvent(NewTramiteFiledEvent(t))

	return t, nil
}

// Validate checks the details on their own, before a filing number is drawn
func (d Details) Validate() error {
	subject := strings.TrimSpace(d.Subject)
	if subject == "" {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > maxSubjectLength {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 500 characters")
	}
	for _, s := range []string{d.ProjectDescription, d.PropertyAddress, d.Observations} {
		if len(s) > maxTextLength {
			return shared.NewDomainError("INVALID_INPUT", "Text fields cannot exceed 4000 characters")
		}
	}
	if d.NextDueAt != nil && d.CompleteBy != nil && d.CompleteBy.Before(*d.NextDueAt) {
		return shared.NewDomainError("INVALID_INPUT", "Completion deadline cannot precede the next due date")
	}
	return nil
}

// Transition moves the trámite to status to. The last-change time is set to
// now, a non-empty comment replaces the reviewer comments, and entering a
// terminal status sets FinalizedAt. Illegal transitions return
// *IllegalTransitionError and leave the trámite untouched.
func (t *Tramite) Transition(to Status, comment string, actorID uuid.UUID, now time.Time) error {
	if !t.Status.CanTransitionTo(to) {
		return &IllegalTransitionError{From: t.Status, To: to}
	}

	from := t.Status
	t.Status = to
	t.StatusChangedAt = now
	if c := strings.TrimSpace(comment); c != "" {
		t.ReviewerComments = c
	}
	if to.IsTerminal() {
		t.FinalizedAt = &now
	}
	t.Touch(now)
	t.IncrementVersion()

	t.AddDomainEvent(NewStatusChangedEvent(t, from, actorID))
	if to.IsTerminal() {
		t.AddDomainEvent(NewTramiteFinalizedEvent(t))
	}
	return nil
}

// AssignReviewer checks the reviewer, moves the trámite to ASSIGNED and
// records the reviewer. Either all of it happens or none of it does.
func (t *Tramite) AssignReviewer(reviewer *identity.User, scope tenancy.Scope, comment string, actorID uuid.UUID, now time.Time) error {
	if reviewer == nil || !reviewer.IsActive || !reviewer.Role.CanReview() {
		return ErrInvalidReviewer
	}
	if !scope.IsGlobal() && !reviewer.BelongsTo(t.TenantID) {
		return ErrReviewerTenantMismatch
	}
	if !t.Status.CanTransitionTo(StatusAssigned) {
		return &IllegalTransitionError{From: t.Status, To: StatusAssigned}
	}

	if err := t.Transition(StatusAssigned, comment, actorID, now); err != nil {
		return err
	}
	reviewerID := reviewer.ID
	t.ReviewerID = &reviewerID
	t.AddDomainEvent(NewReviewerAssignedEvent(t, actorID))
	return nil
}

// IsFinalized reports whether the trámite reached a terminal status
func (t *Tramite) IsFinalized() bool {
	return t.Status.IsTerminal()
}

// DaysElapsed returns whole days between filing and now
func (t *Tramite) DaysElapsed(now time.Time) int {
	if now.Before(t.FiledAt) {
		return 0
	}
	return int(now.Sub(t.FiledAt).Hours() / 24)
}
