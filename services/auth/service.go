package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/metrics"
	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountLocked         = errors.New("account is locked")
	ErrEmailTaken            = errors.New("email is already registered")
	ErrInvalidTenant         = errors.New("invalid tenant identifier")
)

// Service verifies credentials and owns the account lockout state machine.
type Service struct {
	config *config.Config
	users  *user.Service
	logger *logging.Service
}

func NewService(cfg *config.Config, users *user.Service, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		users:  users,
		logger: logger,
	}
}

// Authenticate verifies email/password and enforces progressive lockout.
// Locked accounts are rejected before the password is checked at all. The
// returned errors are intentionally non-enumerable: an unknown email and a
// wrong password both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	u, err := s.users.FindByEmailAnyTenant(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			metrics.LoginFailures.WithLabelValues("unknown_user").Inc()
			s.logger.Warn("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if u.Locked() {
		metrics.LoginFailures.WithLabelValues("locked").Inc()
		s.logger.Warn("login attempt for locked account",
			zap.String("email", u.Email),
			zap.Timep("locked_until", u.AccountLockedUntil))
		return nil, ErrAccountLocked
	}

	if !u.Active {
		metrics.LoginFailures.WithLabelValues("inactive").Inc()
		s.logger.Warn("login attempt for inactive account",
			zap.String("email", u.Email))
		return nil, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(u.Password, password); err != nil {
		if recErr := s.recordFailedAttempt(ctx, u); recErr != nil {
			s.logger.Error("failed to record failed login attempt",
				zap.Error(recErr),
				zap.String("email", u.Email))
		}
		metrics.LoginFailures.WithLabelValues("bad_password").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := s.resetFailedAttempts(ctx, u); err != nil {
		s.logger.Error("failed to reset login attempt counter",
			zap.Error(err),
			zap.String("email", u.Email))
	}

	p := PrincipalFromUser(u)

	s.logger.Info("user authenticated",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("tenant_id", u.TenantID))

	return &p, nil
}

// Register creates a user with the default CLIENT role in the given tenant.
func (s *Service) Register(ctx context.Context, fullName, email, password, tenantID string) (*user.User, error) {
	if !tenant.ValidID(tenantID) {
		return nil, ErrInvalidTenant
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Warn("registration attempt with existing email")
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		FullName: fullName,
		Email:    email,
		Password: hash,
		Role:     user.RoleClient,
		TenantID: tenantID,
		Active:   true,
	}

	if err := s.users.Create(tenant.WithID(ctx, tenantID), u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("tenant_id", u.TenantID))

	return u, nil
}

func (s *Service) recordFailedAttempt(ctx context.Context, u *user.User) error {
	u.FailedLoginAttempts++

	if u.FailedLoginAttempts >= s.config.Auth.MaxFailedAttempts {
		lockUntil := time.Now().Add(s.config.Auth.LockDuration)
		u.AccountLockedUntil = &lockUntil

		metrics.AccountLockouts.Inc()
		s.logger.Warn("account locked after repeated failed logins",
			zap.String("email", u.Email),
			zap.Int("attempts", u.FailedLoginAttempts),
			zap.Time("locked_until", lockUntil))
	} else {
		s.logger.Warn("failed login attempt",
			zap.String("email", u.Email),
			zap.Int("attempts", u.FailedLoginAttempts),
			zap.Int("max_attempts", s.config.Auth.MaxFailedAttempts))
	}

	return s.users.Save(ctx, u)
}

func (s *Service) resetFailedAttempts(ctx context.Context, u *user.User) error {
	if u.FailedLoginAttempts == 0 && u.AccountLockedUntil == nil {
		return nil
	}

	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil

	return s.users.Save(ctx, u)
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		return fmt.Errorf("password must be at least %d characters", s.config.Auth.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	var missing []string

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if s.config.Auth.RequireUpper && !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if s.config.Auth.RequireLower && !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if s.config.Auth.RequireNumber && !hasNumber {
		missing = append(missing, "one number")
	}
	if s.config.Auth.RequireSpecial && !hasSpecial {
		missing = append(missing, "one special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least %s", strings.Join(missing, ", "))
	}

	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
