package tenantctx

import (
	"net/http"
	"strings"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Middleware parses the tenant header and binds the tenant to the request
// context. With REQUIRE_HEADER set, a missing or malformed header rejects
// the request outright; otherwise it falls back to the configured default
// tenant with a warning. The permissive mode exists for single-tenant
// deployments and is a known multi-tenancy risk, not a recommendation.
//
// No explicit clear is needed: the tenant lives on the request context,
// which dies with the request. Nothing survives into the next request on
// the same connection or worker.
func Middleware(cfg *config.Config, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(cfg.Tenant.Header))

			switch {
			case tenant.ValidID(id):
				// use as-is
			case cfg.Tenant.RequireHeader:
				if id == "" {
					return echo.NewHTTPError(http.StatusBadRequest, "tenant header required")
				}
				return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant identifier")
			default:
				if id == "" {
					logger.Warn("missing tenant header, using default tenant")
				} else {
					logger.Warn("invalid tenant header, using default tenant",
						zap.String("header", id))
				}
				id = cfg.Tenant.DefaultID
			}

			req := c.Request()
			c.SetRequest(req.WithContext(tenant.WithID(req.Context(), id)))

			return next(c)
		}
	}
}
