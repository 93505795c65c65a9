package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Triet1705/client-hub-backend/middleware/bearer"
	"github.com/Triet1705/client-hub-backend/services/audit"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/refreshtoken"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	users   *user.Service
	jwt     *jwt.Service
	refresh *refreshtoken.Service
	audit   *audit.Service
	logger  *logging.Service
}

func NewAdminHandler(users *user.Service, jwtSvc *jwt.Service, refresh *refreshtoken.Service, auditSvc *audit.Service, logger *logging.Service) *AdminHandler {
	return &AdminHandler{
		users:   users,
		jwt:     jwtSvc,
		refresh: refresh,
		audit:   auditSvc,
		logger:  logger,
	}
}

// Impersonate mints a short-lived token pair for the target user, carrying
// the admin's identity in the impersonator claim so every action remains
// attributable.
func (h *AdminHandler) Impersonate(c echo.Context) error {
	admin, ok := bearer.GetPrincipal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if targetID == admin.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot impersonate yourself")
	}

	ctx := c.Request().Context()

	target, err := h.users.FindByIDAnyTenant(ctx, targetID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		h.logger.Errorf("impersonation target lookup failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "impersonation failed")
	}

	if !target.Active {
		return echo.NewHTTPError(http.StatusForbidden, "cannot impersonate an inactive user")
	}

	accessToken, err := h.jwt.GenerateImpersonationToken(auth.PrincipalFromUser(target), admin.UserID)
	if err != nil {
		h.logger.Errorf("failed to generate impersonation token: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "impersonation failed")
	}

	refreshToken, err := h.refresh.Issue(ctx, target, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		h.logger.Errorf("failed to issue refresh token for impersonation: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "impersonation failed")
	}

	h.audit.Record(ctx, &admin.UserID, audit.ActionImpersonationStarted,
		"admin "+admin.Email+" impersonating user "+target.Email)

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		ExpiresIn:    h.jwt.AccessExpirySeconds(),
		User: userResponse{
			ID:       target.ID.String(),
			FullName: target.FullName,
			Email:    target.Email,
			Role:     target.Role,
			TenantID: target.TenantID,
		},
	})
}

// ListUsers returns users across every tenant. Admin-only; the route is
// guarded by bearer.RequireRole.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.users.ListAllTenants(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Errorf("failed to list users: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list users")
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{
			ID:       u.ID.String(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
			TenantID: u.TenantID,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"users": out})
}

// AuditLog returns recent audit entries for the caller's tenant.
func (h *AdminHandler) AuditLog(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}

	entries, err := h.audit.RecentForTenant(c.Request().Context(), limit)
	if err != nil {
		h.logger.Errorf("failed to read audit log: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read audit log")
	}

	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

// RevokeUserSessions force-logs-out every session of the given user.
func (h *AdminHandler) RevokeUserSessions(c echo.Context) error {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.refresh.RevokeAllForUser(c.Request().Context(), targetID); err != nil {
		h.logger.Errorf("failed to revoke sessions for %s: %v", targetID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to revoke sessions")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "sessions revoked"})
}
