package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/infrastructure/logger"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler writes the response envelope for the handlers embedding it.
type BaseHandler struct{}

func requestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// respondPage answers 200 with the items as data and paging in meta.
func respondPage[T any](c *gin.Context, page shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, requestID(c)))
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError writes err as an envelope. Only INTERNAL_ERROR is logged here;
// domain errors are expected outcomes and the access log already has them.
// Retryable codes get a Retry-After header.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	status, resp := dto.ErrorResponseFor(err, requestID(c))
	if resp.Error.Code == dto.ErrCodeInternal {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.Error(err),
			zap.String("route", c.FullPath()))
	}
	if secs := dto.RetryAfterSeconds(resp.Error.Code); secs > 0 {
		c.Header("Retry-After", strconv.Itoa(secs))
	}
	c.JSON(status, resp)
}

// parseUUIDParam answers 404 for an ID that is not a UUID: no resource can
// have it.
func (h *BaseHandler) parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found")
		return uuid.Nil, false
	}
	return id, true
}
