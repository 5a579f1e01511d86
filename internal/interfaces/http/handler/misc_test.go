package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appradicacion "github.com/tramites/backend/internal/application/radicacion"
	apptramite "github.com/tramites/backend/internal/application/tramite"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/radicacion"
	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/auth"
	"github.com/tramites/backend/internal/infrastructure/config"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
)

func TestPublicHandler_LookupStatus(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &fakeTramiteService{public: &apptramite.PublicStatusResponse{
			FilingNumber: "T1-CL-2024-0001",
			Status:       "UNDER_REVIEW",
			TenantName:   "Curaduría 1",
		}}
		h := NewPublicHandler(svc)
		r := newTestEngine(func(r *gin.Engine) { r.GET("/public/tramites/:filingNumber", h.LookupStatus) })

		w := perform(r, http.MethodGet, "/public/tramites/t1-cl-2024-0001", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "t1-cl-2024-0001", svc.lookedUp)
		data := decode(t, w).Data.(map[string]any)
		assert.Equal(t, "T1-CL-2024-0001", data["filing_number"])
		assert.NotContains(t, data, "requester_id")
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"malformed", radicacion.ErrMalformedNumber, http.StatusBadRequest, dto.ErrCodeMalformedFilingNumber},
		{"unknown", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPublicHandler(&fakeTramiteService{err: tt.err})
			r := newTestEngine(func(r *gin.Engine) { r.GET("/public/tramites/:filingNumber", h.LookupStatus) })

			w := perform(r, http.MethodGet, "/public/tramites/whatever", nil)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
		})
	}
}

type fakeStats struct {
	tenantID *uuid.UUID
	year     int
	err      error
}

func (f *fakeStats) Stats(_ context.Context, tenantID *uuid.UUID, year int) (*appradicacion.CounterStatsResponse, error) {
	f.tenantID = tenantID
	f.year = year
	if f.err != nil {
		return nil, f.err
	}
	return &appradicacion.CounterStatsResponse{Year: year, TotalIssued: 7}, nil
}

func TestRadicacionHandler_Stats(t *testing.T) {
	newRouter := func(stats *fakeStats) *gin.Engine {
		h := NewRadicacionHandler(stats)
		return newTestEngine(func(r *gin.Engine) { r.GET("/radicacion/stats", h.Stats) })
	}

	t.Run("tenant and year", func(t *testing.T) {
		stats := &fakeStats{}
		tenantID := uuid.New()

		w := perform(newRouter(stats), http.MethodGet, "/radicacion/stats?year=2024&tenant_id="+tenantID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.NotNil(t, stats.tenantID)
		assert.Equal(t, tenantID, *stats.tenantID)
		assert.Equal(t, 2024, stats.year)
	})

	t.Run("defaults", func(t *testing.T) {
		stats := &fakeStats{}

		w := perform(newRouter(stats), http.MethodGet, "/radicacion/stats", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, stats.tenantID)
		assert.Zero(t, stats.year)
	})

	t.Run("bad query", func(t *testing.T) {
		stats := &fakeStats{}
		for _, q := range []string{"?year=12", "?tenant_id=abc", "?year=x"} {
			w := perform(newRouter(stats), http.MethodGet, "/radicacion/stats"+q, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, q)
		}
	})

	t.Run("global admin without tenant", func(t *testing.T) {
		stats := &fakeStats{err: shared.NewDomainError("INVALID_INPUT", "Tenant is required")}

		w := perform(newRouter(stats), http.MethodGet, "/radicacion/stats", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidInput, decode(t, w).Error.Code)
	})
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{}, "1.0.0")
		r := newTestEngine(func(r *gin.Engine) { r.GET("/health", h.Health) })

		w := perform(r, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "1.0.0", data["version"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(fakePinger{err: assert.AnError}, "1.0.0")
		r := newTestEngine(func(r *gin.Engine) { r.GET("/health", h.Health) })

		w := perform(r, http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := decode(t, w)
		assert.False(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "unreachable", data["checks"].(map[string]any)["database"])
	})
}

func newAuthTestRouter(t *testing.T, revocations auth.RevocationList) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "handler-test-secret-of-32-chars!",
		Issuer:                "tramites-backend",
		AccessTokenExpiration: time.Hour,
	})
	h := NewAuthHandler(revocations)
	r := newTestEngine(func(r *gin.Engine) {
		g := r.Group("/auth",
			middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{JWTService: jwtService, Revocations: revocations}),
			middleware.TenantScope(nil),
		)
		g.POST("/logout", h.Logout)
		g.GET("/me", h.Me)
	})
	return r, jwtService
}

func performWithToken(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_LogoutRevokesToken(t *testing.T) {
	revocations := auth.NewInMemoryRevocationList()
	r, jwtService := newAuthTestRouter(t, revocations)
	tenantID := uuid.New()
	token, err := jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID: &tenantID,
		UserID:   uuid.New(),
		Username: "admin1",
		Role:     identity.RoleTenantAdmin,
	})
	require.NoError(t, err)

	w := performWithToken(r, http.MethodPost, "/auth/logout", token.AccessToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	revoked, err := revocations.IsRevoked(context.Background(), token.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	w = performWithToken(r, http.MethodGet, "/auth/me", token.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decode(t, w).Error.Code)
}

func TestAuthHandler_LogoutRevocationFailure(t *testing.T) {
	r, jwtService := newAuthTestRouter(t, brokenRevocations{})
	tenantID := uuid.New()
	token, err := jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID: &tenantID,
		UserID:   uuid.New(),
		Role:     identity.RoleReviewer,
	})
	require.NoError(t, err)

	w := performWithToken(r, http.MethodPost, "/auth/logout", token.AccessToken)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, dto.ErrCodeServiceUnhealthy, decode(t, w).Error.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	r, jwtService := newAuthTestRouter(t, auth.NewInMemoryRevocationList())
	token, err := jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "root",
		Role:     identity.RoleGlobalAdmin,
	})
	require.NoError(t, err)

	w := performWithToken(r, http.MethodGet, "/auth/me", token.AccessToken)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "global", data["scope"])
	assert.Equal(t, "root", data["username"])
	assert.Equal(t, string(identity.RoleGlobalAdmin), data["role"])
}

func TestAuthHandler_MeWithoutScope(t *testing.T) {
	h := NewAuthHandler(auth.NewInMemoryRevocationList())
	r := newTestEngine(func(r *gin.Engine) { r.GET("/me", h.Me) })

	w := perform(r, http.MethodGet, "/me", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, tenancy.ErrContextMissing.Code, decode(t, w).Error.Code)
}

type brokenRevocations struct{}

func (brokenRevocations) Revoke(context.Context, string, time.Duration) error {
	return assert.AnError
}

func (brokenRevocations) IsRevoked(context.Context, string) (bool, error) {
	return false, nil
}
