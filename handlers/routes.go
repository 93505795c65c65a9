package handlers

import (
	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/middleware/bearer"
	"github.com/Triet1705/client-hub-backend/middleware/ratelimit"
	"github.com/Triet1705/client-hub-backend/middleware/tenantctx"
	"github.com/Triet1705/client-hub-backend/server"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes wires every endpoint onto the server. Middleware order
// matters: the tenant header is bound first, then the bearer principal may
// narrow it to the token's tenant.
func RegisterRoutes(srv *server.Server, cfg *config.Config, jwtSvc *jwt.Service, authHandler *AuthHandler, adminHandler *AdminHandler, projectHandler *ProjectHandler, logger *logging.Service) {
	srv.Use(tenantctx.Middleware(cfg, logger))
	srv.Use(bearer.Middleware(jwtSvc, logger))

	srv.Get("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
	srv.Get("/metrics", echo.WrapHandler(promhttp.Handler()))

	authGroup := srv.Group("/api/auth")
	if cfg.RateLimit.Enabled {
		authGroup.Use(ratelimit.Middleware(&ratelimit.Config{
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period,
		}))
	}
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	projects := srv.Group("/api/projects", bearer.RequirePrincipal())
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)

	admin := srv.Group("/api/admin", bearer.RequirePrincipal(), bearer.RequireRole(user.RoleAdmin))
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/impersonate", adminHandler.Impersonate)
	admin.DELETE("/users/:id/sessions", adminHandler.RevokeUserSessions)
	admin.GET("/audit", adminHandler.AuditLog)
}
