package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at limit bytes. A declared Content-Length
// over the cap is refused up front with 413; a body of unknown length fails
// with *http.MaxBytesError once the handler reads past the cap.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			resp := dto.NewErrorResponse(dto.ErrCodeRequestTooLarge, "Request body too large", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
