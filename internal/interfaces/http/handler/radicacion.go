package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appradicacion "github.com/tramites/backend/internal/application/radicacion"
)

// CounterStatsProvider reports filing counters per tenant and year
type CounterStatsProvider interface {
	Stats(ctx context.Context, tenantID *uuid.UUID, year int) (*appradicacion.CounterStatsResponse, error)
}

// CounterStatsQuery represents the query of the counter statistics endpoint
type CounterStatsQuery struct {
	TenantID string `form:"tenant_id" binding:"omitempty,uuid"`
	Year     int    `form:"year" binding:"omitempty,min=2000,max=9999"`
}

// RadicacionHandler exposes filing counter statistics
type RadicacionHandler struct {
	BaseHandler
	stats CounterStatsProvider
}

// NewRadicacionHandler creates a new RadicacionHandler
func NewRadicacionHandler(stats CounterStatsProvider) *RadicacionHandler {
	return &RadicacionHandler{stats: stats}
}

// Stats godoc
// @Summary      Filing counter statistics
// @Description  Numbers issued per category for a tenant and year. Global administrators must pass tenant_id.
// @Tags         radicacion
// @Produce      json
// @Param        tenant_id query string false "Tenant ID (global administrators)"
// @Param        year      query int    false "Year, defaults to the current one"
// @Success      200 {object} dto.Response{data=appradicacion.CounterStatsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /radicacion/stats [get]
func (h *RadicacionHandler) Stats(c *gin.Context) {
	var q CounterStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.ValidationError(c, err)
		return
	}

	var tenantID *uuid.UUID
	if q.TenantID != "" {
		id, err := uuid.Parse(q.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id")
			return
		}
		tenantID = &id
	}

	resp, err := h.stats.Stats(c.Request.Context(), tenantID, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
