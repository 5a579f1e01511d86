package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/domain/shared"
)

// TramiteService is the part of the trámite orchestrator the HTTP layer uses
type TramiteService interface {
	Create(ctx context.Context, req apptramite.CreateTramiteRequest) (*apptramite.TramiteResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*apptramite.TramiteResponse, error)
	List(ctx context.Context, filter apptramite.TramiteListFilter) (shared.Paginated[apptramite.TramiteResponse], error)
	Transition(ctx context.Context, id uuid.UUID, req apptramite.TransitionRequest) (*apptramite.TramiteResponse, error)
	AssignReviewer(ctx context.Context, id uuid.UUID, req apptramite.AssignReviewerRequest) (*apptramite.TramiteResponse, error)
	LookupPublic(ctx context.Context, raw string) (*apptramite.PublicStatusResponse, error)
}

// TramiteHandler handles the authenticated trámite endpoints
type TramiteHandler struct {
	BaseHandler
	service TramiteService
}

// NewTramiteHandler creates a new TramiteHandler
func NewTramiteHandler(service TramiteService) *TramiteHandler {
	return &TramiteHandler{service: service}
}

// Create godoc
// @Summary      File a trámite
// @Description  Allocates the next filing number of the category and stores the trámite as FILED
// @Tags         tramites
// @Accept       json
// @Produce      json
// @Param        request body apptramite.CreateTramiteRequest true "Trámite"
// @Success      201 {object} dto.Response{data=apptramite.TramiteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tramites [post]
func (h *TramiteHandler) Create(c *gin.Context) {
	var req apptramite.CreateTramiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      List trámites
// @Description  Lists the trámites visible to the caller's tenant scope
// @Tags         tramites
// @Produce      json
// @Param        search      query string false "Filing number or subject"
// @Param        status      query string false "Status"
// @Param        category_id query string false "Category ID"
// @Param        reviewer_id query string false "Reviewer ID"
// @Param        page        query int    false "Page" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]apptramite.TramiteResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tramites [get]
func (h *TramiteHandler) List(c *gin.Context) {
	var filter apptramite.TramiteListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Get godoc
// @Summary      Get a trámite
// @Tags         tramites
// @Produce      json
// @Param        id path string true "Trámite ID"
// @Success      200 {object} dto.Response{data=apptramite.TramiteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tramites/{id} [get]
func (h *TramiteHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transition godoc
// @Summary      Change the status of a trámite
// @Tags         tramites
// @Accept       json
// @Produce      json
// @Param        id      path string true "Trámite ID"
// @Param        request body apptramite.TransitionRequest true "Target status"
// @Success      200 {object} dto.Response{data=apptramite.TramiteResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tramites/{id}/transitions [post]
func (h *TramiteHandler) Transition(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req apptramite.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Transition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignReviewer godoc
// @Summary      Assign a reviewer
// @Description  Administrators only. The reviewer must belong to the trámite's tenant.
// @Tags         tramites
// @Accept       json
// @Produce      json
// @Param        id      path string true "Trámite ID"
// @Param        request body apptramite.AssignReviewerRequest true "Reviewer"
// @Success      200 {object} dto.Response{data=apptramite.TramiteResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tramites/{id}/reviewer [post]
func (h *TramiteHandler) AssignReviewer(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req apptramite.AssignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.AssignReviewer(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
