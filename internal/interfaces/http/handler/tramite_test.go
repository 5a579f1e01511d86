package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tramite"
	"github.com/tramites/backend/internal/interfaces/http/dto"
)

func newTramiteRouter(svc *fakeTramiteService) *gin.Engine {
	h := NewTramiteHandler(svc)
	return newTestEngine(func(r *gin.Engine) {
		r.POST("/tramites", h.Create)
		r.GET("/tramites", h.List)
		r.GET("/tramites/:id", h.Get)
		r.POST("/tramites/:id/transitions", h.Transition)
		r.POST("/tramites/:id/reviewer", h.AssignReviewer)
	})
}

func TestTramiteHandler_Create(t *testing.T) {
	id := uuid.New()
	svc := &fakeTramiteService{resp: &apptramite.TramiteResponse{ID: id, FilingNumber: "T1-CL-2024-0001", Status: "FILED"}}
	r := newTramiteRouter(svc)
	categoryID := uuid.New()

	w := perform(r, http.MethodPost, "/tramites", map[string]any{
		"category_id": categoryID,
		"subject":     "Licencia de construcción",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "T1-CL-2024-0001", data["filing_number"])
	assert.Equal(t, categoryID, svc.created.CategoryID)
	assert.Equal(t, "Licencia de construcción", svc.created.Subject)
}

func TestTramiteHandler_CreateValidation(t *testing.T) {
	svc := &fakeTramiteService{}
	r := newTramiteRouter(svc)

	w := perform(r, http.MethodPost, "/tramites", map[string]any{"subject": "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, uuid.Nil, svc.created.CategoryID, "service not called")
}

func TestTramiteHandler_CreateAllocationTimeout(t *testing.T) {
	svc := &fakeTramiteService{err: fmt.Errorf("allocate: %w", radicacion.ErrAllocationTimeout)}
	r := newTramiteRouter(svc)

	w := perform(r, http.MethodPost, "/tramites", map[string]any{
		"category_id": uuid.New(),
		"subject":     "s",
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeAllocationTimeout, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestTramiteHandler_CreateUnexpectedError(t *testing.T) {
	svc := &fakeTramiteService{err: assert.AnError}
	r := newTramiteRouter(svc)

	w := perform(r, http.MethodPost, "/tramites", map[string]any{
		"category_id": uuid.New(),
		"subject":     "s",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Retry-After"))
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestTramiteHandler_List(t *testing.T) {
	categoryID := uuid.New()
	svc := &fakeTramiteService{page: shared.Paginated[apptramite.TramiteResponse]{
		Items:    []apptramite.TramiteResponse{{FilingNumber: "T1-CL-2024-0001"}},
		Total:    41,
		Page:     2,
		PageSize: 20,
	}}
	r := newTramiteRouter(svc)

	w := perform(r, http.MethodGet, "/tramites?status=FILED&page=2&page_size=20&category_id="+categoryID.String(), nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, "FILED", svc.filter.Status)
	assert.Equal(t, categoryID.String(), svc.filter.CategoryID)
}

func TestTramiteHandler_ListRejectsMalformedCategory(t *testing.T) {
	svc := &fakeTramiteService{}
	w := perform(newTramiteRouter(svc), http.MethodGet, "/tramites?category_id=nope", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.filter.CategoryID, "service not called")
}

func TestTramiteHandler_ListRejectsOversizedPage(t *testing.T) {
	r := newTramiteRouter(&fakeTramiteService{})

	w := perform(r, http.MethodGet, "/tramites?page_size=1000", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTramiteHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		svc := &fakeTramiteService{resp: &apptramite.TramiteResponse{ID: id}}
		w := perform(newTramiteRouter(svc), http.MethodGet, "/tramites/"+id.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, svc.lastID)
	})

	t.Run("other tenant looks missing", func(t *testing.T) {
		svc := &fakeTramiteService{err: shared.ErrNotFound}
		w := perform(newTramiteRouter(svc), http.MethodGet, "/tramites/"+uuid.NewString(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc := &fakeTramiteService{}
		w := perform(newTramiteRouter(svc), http.MethodGet, "/tramites/not-a-uuid", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, uuid.Nil, svc.lastID, "service not called")
	})
}

func TestTramiteHandler_Transition(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		id := uuid.New()
		svc := &fakeTramiteService{resp: &apptramite.TramiteResponse{ID: id, Status: "UNDER_REVIEW"}}
		w := perform(newTramiteRouter(svc), http.MethodPost, "/tramites/"+id.String()+"/transitions",
			map[string]string{"status": "UNDER_REVIEW", "comment": "starting"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "UNDER_REVIEW", svc.transition.Status)
		assert.Equal(t, "starting", svc.transition.Comment)
	})

	t.Run("illegal transition", func(t *testing.T) {
		svc := &fakeTramiteService{err: &tramite.IllegalTransitionError{
			From: tramite.StatusFiled,
			To:   tramite.StatusApproved,
		}}
		w := perform(newTramiteRouter(svc), http.MethodPost, "/tramites/"+uuid.NewString()+"/transitions",
			map[string]string{"status": "APPROVED"})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeIllegalTransition, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "FILED")
		assert.Contains(t, resp.Error.Message, "APPROVED")
	})

	t.Run("missing status", func(t *testing.T) {
		w := perform(newTramiteRouter(&fakeTramiteService{}), http.MethodPost,
			"/tramites/"+uuid.NewString()+"/transitions", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := perform(newTramiteRouter(&fakeTramiteService{}), http.MethodPost,
			"/tramites/"+uuid.NewString()+"/transitions", "{")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTramiteHandler_AssignReviewer(t *testing.T) {
	reviewerID := uuid.New()

	t.Run("ok", func(t *testing.T) {
		id := uuid.New()
		svc := &fakeTramiteService{resp: &apptramite.TramiteResponse{ID: id, ReviewerID: &reviewerID}}
		w := perform(newTramiteRouter(svc), http.MethodPost, "/tramites/"+id.String()+"/reviewer",
			map[string]any{"reviewer_id": reviewerID})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, id, svc.lastID)
		assert.Equal(t, reviewerID, svc.assign.ReviewerID)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, dto.ErrCodeForbidden},
		{"other tenant reviewer", tramite.ErrReviewerTenantMismatch, http.StatusUnprocessableEntity, dto.ErrCodeReviewerTenantMismatch},
		{"not a reviewer", tramite.ErrInvalidReviewer, http.StatusUnprocessableEntity, dto.ErrCodeInvalidReviewer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeTramiteService{err: tt.err}
			w := perform(newTramiteRouter(svc), http.MethodPost, "/tramites/"+uuid.NewString()+"/reviewer",
				map[string]any{"reviewer_id": reviewerID})

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}
}
