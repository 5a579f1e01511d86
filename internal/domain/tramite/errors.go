package tramite

import (
	"fmt"

	"github.com/tramites/backend/internal/domain/shared"
)

// CodeIllegalTransition is the DomainError code of IllegalTransitionError
const CodeIllegalTransition = "ILLEGAL_TRANSITION"

var (
	// ErrIllegalTransition matches any IllegalTransitionError via errors.Is
	ErrIllegalTransition = shared.NewDomainError(CodeIllegalTransition, "State transition is not allowed")
	// ErrReviewerTenantMismatch is returned when the reviewer belongs to a
	// different tenant than the trámite
	ErrReviewerTenantMismatch = shared.NewDomainError("REVIEWER_TENANT_MISMATCH", "Reviewer does not belong to the trámite's tenant")
	// ErrInvalidReviewer is returned when the user cannot act as reviewer
	ErrInvalidReviewer = shared.NewDomainError("INVALID_REVIEWER", "User cannot be assigned as reviewer")
)

// IllegalTransitionError reports a transition missing from the table.
// The trámite is left unchanged.
type IllegalTransitionError struct {
	From Status
	To   Status
}

// Error implements the error interface
func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// Unwrap exposes the error as a DomainError carrying both states
func (e *IllegalTransitionError) Unwrap() error {
	return shared.NewDomainError(CodeIllegalTransition, e.Error())
}
