package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/auth"
	"github.com/tramites/backend/internal/infrastructure/logger"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"github.com/tramites/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// LogoutResponse represents the logout response
type LogoutResponse struct {
	Message string `json:"message"`
}

// CurrentActorResponse describes the authenticated caller
type CurrentActorResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Scope    string `json:"scope"`
}

// AuthHandler handles token revocation and caller introspection
type AuthHandler struct {
	BaseHandler
	revocations auth.RevocationList
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(revocations auth.RevocationList) *AuthHandler {
	return &AuthHandler{revocations: revocations}
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented access token until it expires
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=LogoutResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	if claims.ID == "" {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Token cannot be revoked")
		return
	}

	ctx := c.Request.Context()
	if err := h.revocations.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		logger.L(ctx).Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnhealthy, "Logout is temporarily unavailable")
		return
	}

	logger.L(ctx).Info("Token revoked", zap.String("jti", claims.ID))
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary      Current caller
// @Description  Returns the identity and tenant scope bound to the request
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=CurrentActorResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	actor, err := tenancy.ActorFromContext(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	scope, err := tenancy.ScopeFromContext(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := CurrentActorResponse{
		UserID: actor.UserID.String(),
		Role:   string(actor.Role),
		Scope:  scope.String(),
	}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		resp.Username = claims.Username
	}
	h.Success(c, resp)
}
