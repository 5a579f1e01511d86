package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tramites/backend/internal/domain/identity"
	"github.com/tramites/backend/internal/domain/tenancy"
	"github.com/tramites/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "test-issuer",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func newTestInput() GenerateTokenInput {
	tenantID := uuid.New()
	return GenerateTokenInput{
		TenantID: &tenantID,
		UserID:   uuid.New(),
		Username: "revisor1",
		Role:     identity.RoleReviewer,
	}
}

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", Issuer: "i", AccessTokenExpiration: 5 * time.Minute})
	assert.Equal(t, []byte("s"), svc.secret)
	assert.Equal(t, "i", svc.issuer)
	assert.Equal(t, 5*time.Minute, svc.GetAccessTokenExpiration())

	svc = NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, time.Hour, svc.GetAccessTokenExpiration(), "defaults to one hour")
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()

	issued, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.NotEmpty(t, issued.JTI)
	assert.True(t, issued.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.TenantID.String(), claims.TenantID)
	assert.Equal(t, identity.RoleReviewer, claims.Role)
	assert.Equal(t, issued.JTI, claims.ID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.GetRemainingTTL().Seconds(), 5)
}

func TestGenerateAccessToken_RejectsBadInput(t *testing.T) {
	svc := newTestJWTService()

	input := newTestInput()
	input.UserID = uuid.Nil
	_, err := svc.GenerateAccessToken(input)
	assert.ErrorIs(t, err, ErrMissingUserID)

	input = newTestInput()
	input.Role = "SUPERUSER"
	_, err = svc.GenerateAccessToken(input)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidateAccessToken_Failures(t *testing.T) {
	svc := newTestJWTService()
	issued, err := svc.GenerateAccessToken(newTestInput())
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-chars!!", Issuer: "test-issuer"})
		_, err := other.ValidateAccessToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"})
		_, err := other.ValidateAccessToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := newTestJWTService()
		late.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err := late.ValidateAccessToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not yet valid", func(t *testing.T) {
		early := newTestJWTService()
		early.now = func() time.Time { return time.Now().Add(-time.Hour) }
		_, err := early.ValidateAccessToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("unsigned", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
			UserID:           uuid.NewString(),
			Role:             identity.RoleGlobalAdmin,
			TokenType:        TokenTypeAccess,
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong token type", func(t *testing.T) {
		signed := signClaims(t, svc, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
			UserID:           uuid.NewString(),
			Role:             identity.RoleReviewer,
			TokenType:        "refresh",
		})
		_, err := svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("unknown role", func(t *testing.T) {
		signed := signClaims(t, svc, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
			UserID:           uuid.NewString(),
			Role:             "ROOT",
			TokenType:        TokenTypeAccess,
		})
		_, err := svc.ValidateAccessToken(signed)
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func signClaims(t *testing.T, svc *JWTService, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)
	return signed
}

func TestClaims_Actor(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("scoped actor", func(t *testing.T) {
		c := &Claims{UserID: userID.String(), TenantID: tenantID.String(), Role: identity.RoleRequester}
		actor, err := c.Actor()
		require.NoError(t, err)
		assert.Equal(t, userID, actor.UserID)
		require.NotNil(t, actor.TenantID)
		assert.Equal(t, tenantID, *actor.TenantID)

		scope, err := tenancy.Resolve(actor)
		require.NoError(t, err)
		assert.Equal(t, tenantID, scope.TenantID())
	})

	t.Run("global admin without tenant", func(t *testing.T) {
		c := &Claims{UserID: userID.String(), Role: identity.RoleGlobalAdmin}
		actor, err := c.Actor()
		require.NoError(t, err)
		assert.Nil(t, actor.TenantID)

		scope, err := tenancy.Resolve(actor)
		require.NoError(t, err)
		assert.True(t, scope.IsGlobal())
	})

	t.Run("reviewer without tenant resolves to tenant required", func(t *testing.T) {
		c := &Claims{UserID: userID.String(), Role: identity.RoleReviewer}
		actor, err := c.Actor()
		require.NoError(t, err)

		_, err = tenancy.Resolve(actor)
		assert.ErrorIs(t, err, tenancy.ErrTenantRequired)
	})

	t.Run("malformed ids", func(t *testing.T) {
		_, err := (&Claims{UserID: "x", Role: identity.RoleReviewer}).Actor()
		assert.ErrorIs(t, err, ErrInvalidClaims)

		_, err = (&Claims{UserID: userID.String(), TenantID: "x", Role: identity.RoleReviewer}).Actor()
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestClaims_GetRemainingTTL(t *testing.T) {
	assert.Zero(t, (&Claims{}).GetRemainingTTL())

	past := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}
	assert.Zero(t, past.GetRemainingTTL())
}
