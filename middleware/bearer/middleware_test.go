package bearer

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/Triet1705/client-hub-backend/testutils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBearerContext(t *testing.T, authHeader string) (echo.Context, echo.HandlerFunc, *jwt.Service) {
	t.Helper()
	jwtService := jwt.NewService(testutils.GetTestConfig(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return c, next, jwtService
}

func testBearerPrincipal() auth.Principal {
	return auth.Principal{
		UserID:   uuid.New(),
		Email:    "bearer@example.com",
		Role:     user.RoleClient,
		TenantID: "acme",
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("valid token attaches principal and narrows tenant", func(t *testing.T) {
		p := testBearerPrincipal()
		jwtService := jwt.NewService(testutils.GetTestConfig(), nil)
		tokenString, err := jwtService.GenerateAccessToken(p)
		require.NoError(t, err)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		// The header claims a different tenant than the token.
		req = req.WithContext(tenant.WithID(req.Context(), "globex"))
		c := e.NewContext(req, httptest.NewRecorder())

		err = Middleware(jwtService, nil)(func(c echo.Context) error {
			got, ok := GetPrincipal(c)
			assert.True(t, ok)
			assert.Equal(t, p, got)

			id, ok := tenant.FromContext(c.Request().Context())
			assert.True(t, ok)
			assert.Equal(t, "acme", id, "token tenant must override the header tenant")

			ctxPrincipal, ok := auth.PrincipalFromContext(c.Request().Context())
			assert.True(t, ok)
			assert.Equal(t, p, ctxPrincipal)
			return c.NoContent(http.StatusOK)
		})(c)
		require.NoError(t, err)
	})

	t.Run("no authorization header continues unauthenticated", func(t *testing.T) {
		c, next, jwtService := newBearerContext(t, "")

		require.NoError(t, Middleware(jwtService, nil)(next)(c))
		_, ok := GetPrincipal(c)
		assert.False(t, ok)
	})

	t.Run("garbage token continues unauthenticated", func(t *testing.T) {
		c, next, jwtService := newBearerContext(t, "Bearer garbage")

		require.NoError(t, Middleware(jwtService, nil)(next)(c))
		_, ok := GetPrincipal(c)
		assert.False(t, ok)
	})

	t.Run("expired token continues unauthenticated", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.JWT.AccessExpiry = -1
		expired := jwt.NewService(cfg, nil)
		tokenString, err := expired.GenerateAccessToken(testBearerPrincipal())
		require.NoError(t, err)

		c, next, jwtService := newBearerContext(t, "Bearer "+tokenString)
		require.NoError(t, Middleware(jwtService, nil)(next)(c))
		_, ok := GetPrincipal(c)
		assert.False(t, ok)
	})
}

func TestRequirePrincipal(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := RequirePrincipal()(func(c echo.Context) error { return nil })(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequireRole(t *testing.T) {
	t.Run("wrong role forbidden", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(principalKey, testBearerPrincipal())

		err := RequireRole(user.RoleAdmin)(func(c echo.Context) error { return nil })(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("matching role passes", func(t *testing.T) {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		p := testBearerPrincipal()
		p.Role = user.RoleAdmin
		c.Set(principalKey, p)

		called := false
		err := RequireRole(user.RoleAdmin)(func(c echo.Context) error {
			called = true
			return nil
		})(c)

		require.NoError(t, err)
		assert.True(t, called)
	})
}
