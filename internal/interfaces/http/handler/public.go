package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	apptramite "github.com/tramites/backend/internal/application/tramite"
)

// PublicLookup answers anonymous status lookups
type PublicLookup interface {
	LookupPublic(ctx context.Context, raw string) (*apptramite.PublicStatusResponse, error)
}

// PublicHandler serves the unauthenticated status endpoint
type PublicHandler struct {
	BaseHandler
	lookup PublicLookup
}

// NewPublicHandler creates a new PublicHandler
func NewPublicHandler(lookup PublicLookup) *PublicHandler {
	return &PublicHandler{lookup: lookup}
}

// LookupStatus godoc
// @Summary      Public status lookup
// @Description  Returns the citizen-facing status of a trámite by filing number. No authentication.
// @Tags         public
// @Produce      json
// @Param        filingNumber path string true "Filing number, e.g. T1-CL-2024-0001"
// @Success      200 {object} dto.Response{data=apptramite.PublicStatusResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/tramites/{filingNumber} [get]
func (h *PublicHandler) LookupStatus(c *gin.Context) {
	resp, err := h.lookup.LookupPublic(c.Request.Context(), c.Param("filingNumber"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
