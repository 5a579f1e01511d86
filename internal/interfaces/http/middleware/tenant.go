package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/logger"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// TenantScope turns the JWT claims into a tenancy.Actor and binds the actor
// and its resolved scope to the request context. It must run after
// JWTAuthMiddleware. A non-global actor without a tenant is rejected with
// TENANT_REQUIRED; the request never reaches a handler unscoped.
func TenantScope(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortScope(c, tenancy.ErrContextMissing)
			return
		}

		actor, err := claims.Actor()
		if err != nil {
			abortScope(c, err)
			return
		}

		ctx, err := tenancy.ContextWithActor(c.Request.Context(), actor)
		if err != nil {
			log.Warn("Rejected request without tenant",
				zap.String("user_id", actor.UserID.String()),
				zap.String("role", string(actor.Role)),
				zap.String("path", c.Request.URL.Path),
			)
			abortScope(c, err)
			return
		}

		scope, _ := tenancy.ScopeFromContext(ctx)
		tenantField := "global"
		if !scope.IsGlobal() {
			tenantField = scope.TenantID().String()
		}
		ctx = logger.WithTenantID(ctx, tenantField)
		ctx = logger.WithUserID(ctx, actor.UserID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortScope(c *gin.Context, err error) {
	var status int
	var resp dto.Response
	switch {
	case errors.Is(err, tenancy.ErrTenantRequired), errors.Is(err, tenancy.ErrContextMissing):
		status, resp = dto.ErrorResponseFor(err, GetRequestID(c))
	default:
		status = http.StatusUnauthorized
		resp = dto.NewErrorResponse(dto.ErrCodeTokenInvalid, "Invalid token", GetRequestID(c))
	}
	c.AbortWithStatusJSON(status, resp)
}
