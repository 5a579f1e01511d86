package tramite

import (
	"time"

	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/tramite"
)

// CreateTramiteRequest represents a request to file a new trámite.
// TenantID is required for global administrators and optional otherwise.
type CreateTramiteRequest struct {
	TenantID           *uuid.UUID `json:"tenant_id"`
	CategoryID         uuid.UUID  `json:"category_id" binding:"required"`
	RequesterID        uuid.UUID  `json:"requester_id"`
	Subject            string     `json:"subject" binding:"required,min=1,max=500"`
	ProjectDescription string     `json:"project_description" binding:"max=4000"`
	PropertyAddress    string     `json:"property_address" binding:"max=4000"`
	Observations       string     `json:"observations" binding:"max=4000"`
	NextDueAt          *time.Time `json:"next_due_at"`
	CompleteBy         *time.Time `json:"complete_by"`
}

// TransitionRequest represents a request to move a trámite to another status
type TransitionRequest struct {
	Status  string `json:"status" binding:"required,tramite_status"`
	Comment string `json:"comment" binding:"max=4000"`
}

// AssignReviewerRequest represents a request to assign a reviewer
type AssignReviewerRequest struct {
	ReviewerID uuid.UUID `json:"reviewer_id" binding:"required"`
	Comment    string    `json:"comment" binding:"max=4000"`
}

// TramiteListFilter represents the query parameters of a trámite listing
type TramiteListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,tramite_status"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	ReviewerID string `form:"reviewer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy     string `form:"sort_by"`
	SortDesc   bool   `form:"sort_desc"`
}

// TramiteResponse represents a trámite in API responses
type TramiteResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	FilingNumber       string     `json:"filing_number"`
	CategoryID         uuid.UUID  `json:"category_id"`
	RequesterID        uuid.UUID  `json:"requester_id"`
	ReviewerID         *uuid.UUID `json:"reviewer_id,omitempty"`
	Status             string     `json:"status"`
	Subject            string     `json:"subject"`
	ProjectDescription string     `json:"project_description"`
	PropertyAddress    string     `json:"property_address"`
	Observations       string     `json:"observations"`
	ReviewerComments   string     `json:"reviewer_comments"`
	AllowedTransitions []string   `json:"allowed_transitions"`
	FiledAt            time.Time  `json:"filed_at"`
	StatusChangedAt    time.Time  `json:"status_changed_at"`
	NextDueAt          *time.Time `json:"next_due_at,omitempty"`
	CompleteBy         *time.Time `json:"complete_by,omitempty"`
	FinalizedAt        *time.Time `json:"finalized_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Version            int        `json:"version"`
}

// PublicStatusResponse is the answer to an anonymous status lookup
type PublicStatusResponse struct {
	FilingNumber      string     `json:"filing_number"`
	Status            string     `json:"status"`
	StatusDescription string     `json:"status_description"`
	TenantName        string     `json:"tenant_name"`
	CategoryName      string     `json:"category_name"`
	FiledAt           time.Time  `json:"filed_at"`
	StatusChangedAt   time.Time  `json:"status_changed_at"`
	FinalizedAt       *time.Time `json:"finalized_at,omitempty"`
	DaysElapsed       int        `json:"days_elapsed"`
}

// ToTramiteResponse converts a domain Tramite to TramiteResponse
func ToTramiteResponse(t *tramite.Tramite) *TramiteResponse {
	allowed := t.Status.AllowedTransitions()
	transitions := make([]string, len(allowed))
	for i, s := range allowed {
		transitions[i] = s.String()
	}

	return &TramiteResponse{
		ID:                 t.ID,
		TenantID:           t.TenantID,
		FilingNumber:       t.FilingNumber,
		CategoryID:         t.CategoryID,
		RequesterID:        t.RequesterID,
		ReviewerID:         t.ReviewerID,
		Status:             t.Status.String(),
		Subject:            t.Subject,
		ProjectDescription: t.ProjectDescription,
		PropertyAddress:    t.PropertyAddress,
		Observations:       t.Observations,
		ReviewerComments:   t.ReviewerComments,
		AllowedTransitions: transitions,
		FiledAt:            t.FiledAt,
		StatusChangedAt:    t.StatusChangedAt,
		NextDueAt:          t.NextDueAt,
		CompleteBy:         t.CompleteBy,
		FinalizedAt:        t.FinalizedAt,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		Version:            t.Version,
	}
}

// ToPublicStatusResponse converts a public view to its response form
func ToPublicStatusResponse(v *tramite.PublicView) *PublicStatusResponse {
	return &PublicStatusResponse{
		FilingNumber:      v.FilingNumber,
		Status:            v.Status.String(),
		StatusDescription: v.StatusDescription,
		TenantName:        v.TenantName,
		CategoryName:      v.CategoryName,
		FiledAt:           v.FiledAt,
		StatusChangedAt:   v.StatusChangedAt,
		FinalizedAt:       v.FinalizedAt,
		DaysElapsed:       v.DaysElapsed,
	}
}
