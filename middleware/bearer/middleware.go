package bearer

import (
	"net/http"
	"strings"

	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const principalKey = "_auth_principal"

// Middleware validates a bearer access token if one is presented. An
// invalid, expired or wrong-type token leaves the request unauthenticated
// rather than failing it; protected route groups enforce the presence of a
// principal separately via RequirePrincipal.
//
// The tenant claim of a valid token overrides the header-derived tenant:
// the signed token is the authoritative statement of who the caller is and
// which tenant they belong to.
func Middleware(jwtService *jwt.Service, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return next(c)
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return next(c)
			}

			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				logger.Warn("bearer token rejected", zap.Error(err))
				return next(c)
			}

			principal, err := claims.Principal()
			if err != nil {
				logger.Warn("bearer token claims rejected", zap.Error(err))
				return next(c)
			}

			c.Set(principalKey, principal)

			req := c.Request()
			ctx := auth.ContextWithPrincipal(req.Context(), principal)
			ctx = tenant.WithID(ctx, principal.TenantID)
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// GetPrincipal returns the authenticated identity attached to the request,
// if any.
func GetPrincipal(c echo.Context) (auth.Principal, bool) {
	p, ok := c.Get(principalKey).(auth.Principal)
	return p, ok
}

// RequirePrincipal rejects unauthenticated requests.
func RequirePrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := GetPrincipal(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRole rejects authenticated requests whose principal lacks the role.
func RequireRole(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if p.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
