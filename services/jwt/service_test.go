package jwt

import (
	"testing"
	"time"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/user"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestJWTConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:    "test-secret-key-32-chars-long!!",
			Issuer:       "test-issuer",
			AccessExpiry: 15 * time.Minute,
		},
	}
}

func testPrincipal() auth.Principal {
	return auth.Principal{
		UserID:   uuid.New(),
		Email:    "user@example.com",
		Role:     user.RoleClient,
		TenantID: "acme",
	}
}

func TestService_GenerateAccessToken(t *testing.T) {
	service := NewService(getTestJWTConfig(), nil)
	p := testPrincipal()

	tokenString, err := service.GenerateAccessToken(p)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := service.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, p.UserID.String(), claims.Subject)
	assert.Equal(t, p.Email, claims.Email)
	assert.Equal(t, string(p.Role), claims.Role)
	assert.Equal(t, p.TenantID, claims.TenantID)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Empty(t, claims.ImpersonatorID)
	assert.NotEmpty(t, claims.ID)

	rebuilt, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, p, rebuilt)
}

func TestService_GenerateImpersonationToken(t *testing.T) {
	service := NewService(getTestJWTConfig(), nil)
	target := testPrincipal()
	adminID := uuid.New()

	tokenString, err := service.GenerateImpersonationToken(target, adminID)
	require.NoError(t, err)

	claims, err := service.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, adminID.String(), claims.ImpersonatorID)
	assert.Equal(t, target.UserID.String(), claims.Subject)
	assert.Equal(t, target.TenantID, claims.TenantID)

	p, err := claims.Principal()
	require.NoError(t, err)
	require.NotNil(t, p.ImpersonatorID)
	assert.Equal(t, adminID, *p.ImpersonatorID)
	assert.True(t, p.Impersonated())
}

func TestService_ValidateToken(t *testing.T) {
	cfg := getTestJWTConfig()
	service := NewService(cfg, nil)

	t.Run("rejects expired token", func(t *testing.T) {
		expiredCfg := getTestJWTConfig()
		expiredCfg.JWT.AccessExpiry = -1 * time.Minute
		expired := NewService(expiredCfg, nil)

		tokenString, err := expired.GenerateAccessToken(testPrincipal())
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		otherCfg := getTestJWTConfig()
		otherCfg.JWT.SecretKey = "a-completely-different-secret!!!"
		other := NewService(otherCfg, nil)

		tokenString, err := other.GenerateAccessToken(testPrincipal())
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.MapClaims{
			"sub":  uuid.New().String(),
			"type": TokenTypeAccess,
		})
		tokenString, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects validly signed token of the wrong type", func(t *testing.T) {
		claims := service.claimsFor(testPrincipal())
		claims.TokenType = "REFRESH"

		tokenString, err := service.sign(claims)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestService_AccessExpirySeconds(t *testing.T) {
	service := NewService(getTestJWTConfig(), nil)
	assert.Equal(t, 900, service.AccessExpirySeconds())
}

func TestClaims_Principal(t *testing.T) {
	t.Run("rejects non-uuid subject", func(t *testing.T) {
		claims := &Claims{}
		claims.Subject = "not-a-uuid"

		_, err := claims.Principal()
		assert.Error(t, err)
	})

	t.Run("rejects malformed impersonator claim", func(t *testing.T) {
		claims := &Claims{ImpersonatorID: "garbage"}
		claims.Subject = uuid.New().String()

		_, err := claims.Principal()
		assert.Error(t, err)
	})
}
