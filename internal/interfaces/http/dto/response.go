package dto

import (
	"errors"

	"github.com/tramites/backend/internal/domain/shared"
)

// Response is the envelope every endpoint answers with. Exactly one of Data
// and Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta accompanies list responses
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPageResponse puts the page items in data and the paging counters in
// meta. TotalPages is recomputed so callers may leave it zero.
func NewPageResponse[T any](p shared.Paginated[T]) Response {
	norm := shared.NewPaginated(p.Items, p.Total, p.Page, p.PageSize)
	return Response{
		Success: true,
		Data:    norm.Items,
		Meta: &Meta{
			Total:      norm.Total,
			Page:       norm.Page,
			PageSize:   norm.PageSize,
			TotalPages: norm.TotalPages,
		},
	}
}

// NewErrorResponse builds a failure envelope; requestID may be empty.
func NewErrorResponse(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponse(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// ErrorResponseFor maps err onto a status and envelope. A *shared.DomainError
// anywhere in the chain keeps its code and message. Anything else becomes
// INTERNAL_ERROR with a fixed message.
func ErrorResponseFor(err error, requestID string) (int, Response) {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return GetHTTPStatus(de.Code), NewErrorResponse(de.Code, de.Message, requestID)
	}
	return GetHTTPStatus(ErrCodeInternal),
		NewErrorResponse(ErrCodeInternal, "An unexpected error occurred", requestID)
}
