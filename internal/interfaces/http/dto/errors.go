package dto

import "net/http"

// Error codes that do not originate in the domain. Domain errors travel
// with their own shared.DomainError code.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeRequestTooLarge  = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid     = "INVALID_TOKEN"
	ErrCodeTokenRevoked     = "TOKEN_REVOKED"
	ErrCodeServiceUnhealthy = "SERVICE_UNAVAILABLE"
)

// Domain error codes that the HTTP layer maps explicitly
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeConcurrencyConflict    = "CONCURRENCY_CONFLICT"
	ErrCodeContextMissing         = "CONTEXT_MISSING"
	ErrCodeTenantRequired         = "TENANT_REQUIRED"
	ErrCodeMalformedFilingNumber  = "MALFORMED_FILING_NUMBER"
	ErrCodeIllegalTransition      = "ILLEGAL_TRANSITION"
	ErrCodeInvalidSubject         = "INVALID_SUBJECT"
	ErrCodeInvalidTenant          = "INVALID_TENANT"
	ErrCodeInvalidCategory        = "INVALID_CATEGORY"
	ErrCodeInvalidRequester       = "INVALID_REQUESTER"
	ErrCodeInvalidReviewer        = "INVALID_REVIEWER"
	ErrCodeReviewerRequired       = "REVIEWER_REQUIRED"
	ErrCodeReviewerTenantMismatch = "REVIEWER_TENANT_MISMATCH"
	ErrCodeTenantInactive         = "TENANT_INACTIVE"
	ErrCodeCategoryInactive       = "CATEGORY_INACTIVE"
	ErrCodeAllocationTimeout      = "ALLOCATION_TIMEOUT"
	ErrCodeAllocationFailed       = "ALLOCATION_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeServiceUnhealthy: http.StatusServiceUnavailable,

	// Authentication: a missing scope is treated like a missing credential
	ErrCodeUnauthorized:   http.StatusUnauthorized,
	ErrCodeTokenExpired:   http.StatusUnauthorized,
	ErrCodeTokenInvalid:   http.StatusUnauthorized,
	ErrCodeTokenRevoked:   http.StatusUnauthorized,
	ErrCodeContextMissing: http.StatusUnauthorized,
	ErrCodeTenantRequired: http.StatusUnauthorized,
	ErrCodeForbidden:      http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeIllegalTransition:   http.StatusConflict,

	ErrCodeInvalidInput:          http.StatusBadRequest,
	ErrCodeMalformedFilingNumber: http.StatusBadRequest,
	ErrCodeInvalidSubject:        http.StatusBadRequest,
	ErrCodeInvalidTenant:         http.StatusBadRequest,
	ErrCodeInvalidCategory:       http.StatusBadRequest,
	ErrCodeInvalidRequester:      http.StatusBadRequest,

	// Well-formed requests the current state of the tenant or reviewer rejects
	ErrCodeInvalidState:           http.StatusUnprocessableEntity,
	ErrCodeInvalidReviewer:        http.StatusUnprocessableEntity,
	ErrCodeReviewerRequired:       http.StatusUnprocessableEntity,
	ErrCodeReviewerTenantMismatch: http.StatusUnprocessableEntity,
	ErrCodeTenantInactive:         http.StatusUnprocessableEntity,
	ErrCodeCategoryInactive:       http.StatusUnprocessableEntity,

	ErrCodeAllocationTimeout: http.StatusServiceUnavailable,
	ErrCodeAllocationFailed:  http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RetryAfterSeconds returns the Retry-After hint for codes a client may
// retry, or zero
func RetryAfterSeconds(code string) int {
	switch code {
	case ErrCodeAllocationTimeout:
		return 1
	case ErrCodeRateLimited:
		return 1
	default:
		return 0
	}
}
