package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/Triet1705/client-hub-backend/services/logging"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Service is the user directory. Reads are tenant-scoped by default; the
// AnyTenant variants are the sanctioned system-wide bypasses needed by the
// authentication boundary (login happens before a tenant is bound) and by
// admin impersonation.
type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) FindByEmailAnyTenant(ctx context.Context, email string) (*User, error) {
	var u User
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

// FindByIDAnyTenant looks a user up across all tenants. Used by admin
// impersonation, which must reach users outside the admin's own tenant.
func (s *Service) FindByIDAnyTenant(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &u, nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&count).Error
	})
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return count > 0, nil
}

// List returns users of the caller's tenant.
func (s *Service) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := s.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return users, nil
}

// ListAllTenants returns users across every tenant. Admin-only surface; the
// bypass is bounded to this call and the caller's tenant scoping is left
// untouched.
func (s *Service) ListAllTenants(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var users []User
	err := tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).
			Order("created_at").
			Limit(limit).
			Offset(offset).
			Find(&users).Error
	})
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.logger.Info("system-wide user listing served",
		zap.Int("count", len(users)))

	return users, nil
}

// Save persists lockout-state mutations. It runs system-wide because the
// credential verifier updates users before any tenant is bound to the
// request.
func (s *Service) Save(ctx context.Context, u *User) error {
	return tenant.RunAsSystem(ctx, s.logger, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Save(u).Error
	})
}

func (s *Service) Create(ctx context.Context, u *User) error {
	return s.db.WithContext(ctx).Create(u).Error
}
