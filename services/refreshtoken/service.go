package refreshtoken

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/metrics"
	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/google/uuid"
	"github.com/mileusna/useragent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound         = errors.New("refresh token not found")
	ErrTokenExpired          = errors.New("refresh token expired")
	ErrTokenReuseDetected    = errors.New("refresh token reuse detected")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
)

// TokenIssuer mints access tokens during rotation.
type TokenIssuer interface {
	GenerateAccessToken(p auth.Principal) (string, error)
	AccessExpirySeconds() int
}

// Service owns the refresh token state machine: issuance, rotation,
// revocation on reuse, and the expiry sweep. Token rows are tenant-owned,
// but lookups run system-wide because the presented token itself determines
// the tenant.
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
	issuer TokenIssuer

	stopCleanup chan struct{}
}

func NewService(db *gorm.DB, cfg *config.Config, issuer TokenIssuer, logger *logging.Service) *Service {
	logger.Info("initializing refresh token service",
		zap.Duration("token_expiry", cfg.RefreshToken.Expiry),
		zap.Int("token_length", cfg.RefreshToken.TokenLength),
		zap.Duration("cleanup_interval", cfg.RefreshToken.CleanupInterval))

	return &Service{
		db:          db,
		config:      cfg,
		logger:      logger,
		issuer:      issuer,
		stopCleanup: make(chan struct{}),
	}
}

// Issue creates a fresh ACTIVE token for the user at login. The row is
// stamped with the user's tenant, not the ambient one; login may run under
// the default tenant while the user belongs elsewhere.
func (s *Service) Issue(ctx context.Context, u *user.User, ip, userAgent string) (*RefreshToken, error) {
	token, err := s.newToken(u, ip, userAgent)
	if err != nil {
		return nil, err
	}

	err = tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Create(token).Error
	})
	if err != nil {
		s.logger.Error("failed to store refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.logger.Info("refresh token issued",
		zap.String("user_id", u.ID.String()),
		zap.String("token_id", token.ID.String()),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// Rotate exchanges a presented refresh token for a new token pair.
//
// Reuse of an already-rotated token is treated as credential theft: every
// token belonging to that user is purged and the purge persists even though
// the call fails. The revoke-old/create-new pair runs in one transaction,
// and the revoke is a conditional update checked by affected-row count so
// that of two concurrent rotations of the same token exactly one wins.
func (s *Service) Rotate(ctx context.Context, presented, ip, userAgent string) (*RotationResult, error) {
	if strings.TrimSpace(presented) == "" {
		return nil, ErrTokenNotFound
	}

	sysCtx := tenant.WithSystemScope(ctx)

	var current RefreshToken
	if err := s.db.WithContext(sysCtx).Where("token = ?", presented).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("refresh attempt with unknown token")
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if current.Revoked {
		return nil, s.handleReuse(sysCtx, &current, ip)
	}

	if current.Expired() {
		if err := s.db.WithContext(sysCtx).Delete(&current).Error; err != nil {
			s.logger.Error("failed to delete expired refresh token",
				zap.Error(err),
				zap.String("token_id", current.ID.String()))
		}
		s.logger.Warn("refresh attempt with expired token",
			zap.String("token_id", current.ID.String()),
			zap.String("user_id", current.UserID.String()),
			zap.Time("expired_at", current.ExpiresAt))
		return nil, ErrTokenExpired
	}

	var result *RotationResult
	err := s.db.WithContext(sysCtx).Transaction(func(tx *gorm.DB) error {
		var owner user.User
		if err := tx.Where("id = ?", current.UserID).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		replacement, err := s.newToken(&owner, ip, userAgent)
		if err != nil {
			return err
		}
		if err := tx.Create(replacement).Error; err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}

		now := time.Now()
		res := tx.Model(&RefreshToken{}).
			Where("id = ? AND revoked = ?", current.ID, false).
			Updates(map[string]any{
				"revoked":              true,
				"replaced_by_token_id": replacement.ID,
				"last_used_at":         now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to revoke rotated token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// A concurrent rotation won the race; roll back our
			// replacement and let the caller retry from scratch.
			s.logger.Warn("lost concurrent rotation race",
				zap.String("token_id", current.ID.String()),
				zap.String("user_id", current.UserID.String()))
			return ErrTokenNotFound
		}

		p := auth.PrincipalFromUser(&owner)
		accessToken, err := s.issuer.GenerateAccessToken(p)
		if err != nil {
			return fmt.Errorf("failed to generate access token: %w", err)
		}

		result = &RotationResult{
			AccessToken:  accessToken,
			RefreshToken: replacement.Token,
			ExpiresIn:    s.issuer.AccessExpirySeconds(),
			UserID:       owner.ID,
			Email:        owner.Email,
			Role:         string(owner.Role),
			TenantID:     owner.TenantID,
		}

		metrics.TokenRotations.Inc()
		s.logger.Info("refresh token rotated",
			zap.String("user_id", owner.ID.String()),
			zap.String("old_token_id", current.ID.String()),
			zap.String("new_token_id", replacement.ID.String()))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// handleReuse purges every session of the token's owner. The purge must
// survive the failed call, so it runs outside any caller transaction.
func (s *Service) handleReuse(sysCtx context.Context, current *RefreshToken, ip string) error {
	res := s.db.WithContext(sysCtx).Where("user_id = ?", current.UserID).Delete(&RefreshToken{})
	if res.Error != nil {
		s.logger.Error("failed to purge sessions after token reuse",
			zap.Error(res.Error),
			zap.String("user_id", current.UserID.String()))
	}

	metrics.TokenReuseDetections.Inc()
	s.logger.Error("SECURITY ALERT: revoked refresh token presented again, all sessions purged",
		zap.String("token_id", current.ID.String()),
		zap.String("user_id", current.UserID.String()),
		zap.String("tenant_id", current.TenantID),
		zap.String("presented_from_ip", ip),
		zap.Int64("sessions_purged", res.RowsAffected))

	return ErrTokenReuseDetected
}

// Revoke deletes one token at logout. Missing or blank input is a silent
// no-op; logout is not security-sensitive in the failure direction.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}

	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Where("token = ?", token).Delete(&RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		s.logger.Info("refresh token revoked",
			zap.Int64("affected_rows", res.RowsAffected))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *Service) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		s.logger.Info("all user refresh tokens revoked",
			zap.String("user_id", userID.String()),
			zap.Int64("count", res.RowsAffected))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revoke all user refresh tokens: %w", err)
	}
	return nil
}

// CleanupExpired is pure garbage collection, independent of the reuse path.
func (s *Service) CleanupExpired(ctx context.Context) error {
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.logger.Info("cleaned up expired refresh tokens",
				zap.Int64("count", res.RowsAffected))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}
	return nil
}

func (s *Service) StartCleanupWorker() {
	go func() {
		ticker := time.NewTicker(s.config.RefreshToken.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.CleanupExpired(context.Background()); err != nil {
					s.logger.Error("refresh token cleanup worker failed", zap.Error(err))
				}
			case <-s.stopCleanup:
				return
			}
		}
	}()

	s.logger.Info("started refresh token cleanup worker",
		zap.Duration("interval", s.config.RefreshToken.CleanupInterval))
}

func (s *Service) StopCleanupWorker() {
	select {
	case <-s.stopCleanup:
	default:
		close(s.stopCleanup)
	}
}

func (s *Service) newToken(u *user.User, ip, userAgent string) (*RefreshToken, error) {
	secret, err := s.generateSecureToken()
	if err != nil {
		s.logger.Error("failed to generate secure refresh token", zap.Error(err))
		return nil, ErrTokenGenerationFailed
	}

	return &RefreshToken{
		UserID:     u.ID,
		TenantID:   u.TenantID,
		Token:      secret,
		ExpiresAt:  time.Now().Add(s.config.RefreshToken.Expiry),
		IPAddress:  ip,
		UserAgent:  userAgent,
		DeviceInfo: describeDevice(userAgent),
	}, nil
}

func (s *Service) generateSecureToken() (string, error) {
	tokenBytes := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func describeDevice(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgentString)

	deviceType := "Desktop"
	switch {
	case ua.Mobile:
		deviceType = "Mobile"
	case ua.Tablet:
		deviceType = "Tablet"
	case ua.Bot:
		deviceType = "Bot"
	}

	browser := ua.Name
	if browser == "" {
		browser = "Unknown Browser"
	} else if ua.Version != "" {
		browser = browser + " " + ua.Version
	}

	os := ua.OS
	if os == "" {
		os = "Unknown OS"
	}

	return fmt.Sprintf("%s / %s (%s)", browser, os, deviceType)
}
