package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tramites/backend/internal/infrastructure/auth"
	"github.com/tramites/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig wires JWTAuthMiddleware. Revocations and Logger are
// optional.
type JWTMiddlewareConfig struct {
	JWTService  *auth.JWTService
	Revocations auth.RevocationList
	Logger      *zap.Logger
}

// tokenErrors lists the validation failures answered as TOKEN_INVALID
var tokenErrors = []error{
	auth.ErrInvalidToken,
	auth.ErrInvalidTokenType,
	auth.ErrInvalidClaims,
	auth.ErrInvalidRole,
	auth.ErrMissingUserID,
	auth.ErrTokenNotYetValid,
}

// JWTAuthMiddleware authenticates the bearer token and leaves its claims
// under JWTClaimsKey. Tenant scoping is TenantScope's job.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			rejectToken(c, log, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(raw)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				// fail open
				log.Error("Revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				rejectToken(c, log, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, BearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	code, msg := tokenErrorCode(err)
	log.Warn("Bearer token rejected",
		zap.Error(err),
		zap.String("code", code),
		zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg, GetRequestID(c)))
}

func tokenErrorCode(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	}
	for _, target := range tokenErrors {
		if errors.Is(err, target) {
			return dto.ErrCodeTokenInvalid, "Invalid token"
		}
	}
	return dto.ErrCodeUnauthorized, "Authentication required"
}

// GetJWTClaims returns the claims JWTAuthMiddleware stored, or nil.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(JWTClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
