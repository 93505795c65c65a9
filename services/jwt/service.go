package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/metrics"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrMalformedToken   = errors.New("malformed JWT token")
	ErrInvalidSignature = errors.New("invalid JWT token signature")
	ErrWrongTokenType   = errors.New("token is not an access token")
)

// TokenTypeAccess is the only token type accepted as a bearer credential.
// Refresh tokens are opaque strings, never JWTs, so a presented JWT whose
// type claim differs is rejected even when validly signed.
const TokenTypeAccess = "ACCESS"

type Claims struct {
	Email          string `json:"email"`
	Role           string `json:"role"`
	TenantID       string `json:"tenant_id"`
	TokenType      string `json:"type"`
	ImpersonatorID string `json:"impersonator_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Principal rebuilds the request identity from validated claims.
func (c *Claims) Principal() (auth.Principal, error) {
	id, err := c.UserID()
	if err != nil {
		return auth.Principal{}, fmt.Errorf("invalid subject claim: %w", err)
	}

	p := auth.Principal{
		UserID:   id,
		Email:    c.Email,
		Role:     user.Role(c.Role),
		TenantID: c.TenantID,
	}

	if c.ImpersonatorID != "" {
		impersonator, err := uuid.Parse(c.ImpersonatorID)
		if err != nil {
			return auth.Principal{}, fmt.Errorf("invalid impersonator claim: %w", err)
		}
		p.ImpersonatorID = &impersonator
	}

	return p, nil
}

// Service mints and validates signed access tokens. Validation is stateless:
// signature and expiry only, no persisted state consulted.
type Service struct {
	config *config.Config
	logger *logging.Service
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) AccessExpirySeconds() int {
	return int(s.config.JWT.AccessExpiry.Seconds())
}

func (s *Service) GenerateAccessToken(p auth.Principal) (string, error) {
	return s.sign(s.claimsFor(p))
}

// GenerateImpersonationToken mints an access token carrying the target
// user's claims plus the id of the admin who requested it, so audit trails
// can attribute actions to the real operator. Every issuance is a security
// event.
func (s *Service) GenerateImpersonationToken(target auth.Principal, adminID uuid.UUID) (string, error) {
	claims := s.claimsFor(target)
	claims.ImpersonatorID = adminID.String()

	metrics.ImpersonationTokens.Inc()
	s.logger.Warn("issuing impersonation token",
		zap.String("admin_id", adminID.String()),
		zap.String("target_user_id", target.UserID.String()),
		zap.String("target_tenant_id", target.TenantID))

	return s.sign(claims)
}

func (s *Service) claimsFor(p auth.Principal) Claims {
	now := time.Now()
	return Claims{
		Email:     p.Email,
		Role:      string(p.Role),
		TenantID:  p.TenantID,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.config.JWT.Issuer,
			Subject:   p.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.AccessExpiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func (s *Service) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.SecretKey))
	if err != nil {
		s.logger.Error("failed to sign JWT token", zap.Error(err))
		return "", fmt.Errorf("failed to generate JWT token: %w", err)
	}
	return tokenString, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.JWT.SecretKey), nil
	})

	if err != nil {
		s.logger.Warn("JWT token validation failed", zap.Error(err))

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		s.logger.Warn("JWT with wrong token type presented",
			zap.String("type", claims.TokenType))
		return nil, ErrWrongTokenType
	}

	return claims, nil
}
