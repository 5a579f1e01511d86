package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// fakeTramiteService records the last call and answers with canned values
type fakeTramiteService struct {
	created    apptramite.CreateTramiteRequest
	filter     apptramite.TramiteListFilter
	transition apptramite.TransitionRequest
	assign     apptramite.AssignReviewerRequest
	lastID     uuid.UUID
	lookedUp   string

	resp   *apptramite.TramiteResponse
	page   shared.Paginated[apptramite.TramiteResponse]
	public *apptramite.PublicStatusResponse
	err    error
}

func (f *fakeTramiteService) Create(_ context.Context, req apptramite.CreateTramiteRequest) (*apptramite.TramiteResponse, error) {
	f.created = req
	return f.resp, f.err
}

func (f *fakeTramiteService) Get(_ context.Context, id uuid.UUID) (*apptramite.TramiteResponse, error) {
	f.lastID = id
	return f.resp, f.err
}

func (f *fakeTramiteService) List(_ context.Context, filter apptramite.TramiteListFilter) (shared.Paginated[apptramite.TramiteResponse], error) {
	f.filter = filter
	return f.page, f.err
}

func (f *fakeTramiteService) Transition(_ context.Context, id uuid.UUID, req apptramite.TransitionRequest) (*apptramite.TramiteResponse, error) {
	f.lastID = id
	f.transition = req
	return f.resp, f.err
}

func (f *fakeTramiteService) AssignReviewer(_ context.Context, id uuid.UUID, req apptramite.AssignReviewerRequest) (*apptramite.TramiteResponse, error) {
	f.lastID = id
	f.assign = req
	return f.resp, f.err
}

func (f *fakeTramiteService) LookupPublic(_ context.Context, raw string) (*apptramite.PublicStatusResponse, error) {
	f.lookedUp = raw
	return f.public, f.err
}

func newTestEngine(register func(r *gin.Engine)) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	register(r)
	return r
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
