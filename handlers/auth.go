package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Triet1705/client-hub-backend/background"
	"github.com/Triet1705/client-hub-backend/services/audit"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/jwt"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/mail"
	"github.com/Triet1705/client-hub-backend/services/refreshtoken"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth    *auth.Service
	users   *user.Service
	jwt     *jwt.Service
	refresh *refreshtoken.Service
	audit   *audit.Service
	mailer  *mail.Service
	pool    *background.Pool
	logger  *logging.Service
}

func NewAuthHandler(authSvc *auth.Service, users *user.Service, jwtSvc *jwt.Service, refresh *refreshtoken.Service, auditSvc *audit.Service, mailer *mail.Service, pool *background.Pool, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		auth:    authSvc,
		users:   users,
		jwt:     jwtSvc,
		refresh: refresh,
		audit:   auditSvc,
		mailer:  mailer,
		pool:    pool,
		logger:  logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name,omitempty"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
	TenantID string    `json:"tenant_id"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	principal, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountLocked):
			h.audit.Record(ctx, nil, audit.ActionAccountLocked, "login attempt on locked account: "+req.Email)
			h.sendSecurityAlert(ctx, "Login attempt on locked account",
				fmt.Sprintf("A login was attempted for the locked account %s from %s.", req.Email, c.RealIP()))
			return echo.NewHTTPError(http.StatusForbidden, "account temporarily locked")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.audit.Record(ctx, nil, audit.ActionLoginFailed, "invalid credentials for: "+req.Email)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		default:
			h.logger.Errorf("login failed for %s: %v", req.Email, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
		}
	}

	u, err := h.users.FindByIDAnyTenant(ctx, principal.UserID)
	if err != nil {
		h.logger.Errorf("authenticated user %s not found: %v", principal.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}

	accessToken, err := h.jwt.GenerateAccessToken(*principal)
	if err != nil {
		h.logger.Errorf("failed to generate access token for %s: %v", u.Email, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}

	refreshToken, err := h.refresh.Issue(ctx, u, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		h.logger.Errorf("failed to issue refresh token for %s: %v", u.Email, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "authentication failed")
	}

	h.audit.Record(ctx, &u.ID, audit.ActionLoginSuccess, "login from "+c.RealIP())

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		TokenType:    "Bearer",
		ExpiresIn:    h.jwt.AccessExpirySeconds(),
		User: userResponse{
			ID:       u.ID.String(),
			FullName: u.FullName,
			Email:    u.Email,
			Role:     u.Role,
			TenantID: u.TenantID,
		},
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.ValidatePassword(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	u, err := h.auth.Register(ctx, req.FullName, req.Email, req.Password, req.TenantID)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrInvalidTenant):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant identifier")
		default:
			h.logger.Errorf("registration failed for %s: %v", req.Email, err)
			return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
		}
	}

	return c.JSON(http.StatusCreated, userResponse{
		ID:       u.ID.String(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	result, err := h.refresh.Rotate(ctx, req.RefreshToken, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, refreshtoken.ErrTokenReuseDetected) {
			h.audit.Record(ctx, nil, audit.ActionTokenReuseDetected, "refresh token reuse from "+c.RealIP())
			h.sendSecurityAlert(ctx, "Refresh token reuse detected",
				fmt.Sprintf("A revoked refresh token was presented from %s. All sessions for the affected user have been revoked.", c.RealIP()))
		}
		// Generic response regardless of cause; detail stays in the logs.
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	h.audit.Record(ctx, &result.UserID, audit.ActionTokenRefreshed, "token rotated from "+c.RealIP())

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    result.ExpiresIn,
		User: userResponse{
			ID:       result.UserID.String(),
			Email:    result.Email,
			Role:     user.Role(result.Role),
			TenantID: result.TenantID,
		},
	})
}

// Logout revokes the presented refresh token. It always succeeds from the
// client's perspective; an unknown token is already logged out.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	if err := h.refresh.Revoke(ctx, req.RefreshToken); err != nil {
		h.logger.Warnf("logout revocation failed: %v", err)
	}

	if principal, ok := auth.PrincipalFromContext(ctx); ok {
		h.audit.Record(ctx, &principal.UserID, audit.ActionLogout, "logout from "+c.RealIP())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// sendSecurityAlert dispatches an operator email off the request path.
func (h *AuthHandler) sendSecurityAlert(ctx context.Context, subject, body string) {
	err := h.pool.Submit(ctx, "mail:security-alert", func(ctx context.Context) error {
		return h.mailer.SendSecurityAlert(subject, body)
	})
	if err != nil {
		h.logger.Warnf("failed to queue security alert: %v", err)
	}
}
