package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/Triet1705/client-hub-backend/services/auth"
	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/Triet1705/client-hub-backend/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T) (*auth.Service, *user.Service, *gorm.DB) {
	t.Helper()
	db := testutils.SetupTenantTestDB(t, &user.User{})
	users := user.NewService(db, nil)
	return auth.NewService(testutils.GetTestConfig(), users, nil), users, db
}

func createTestUser(t *testing.T, svc *auth.Service, users *user.Service, email, password, tenantID string) *user.User {
	t.Helper()
	hash, err := svc.HashPassword(password)
	require.NoError(t, err)

	u := &user.User{
		FullName: "Test User",
		Email:    email,
		Password: hash,
		Role:     user.RoleClient,
		TenantID: tenantID,
		Active:   true,
	}
	require.NoError(t, users.Create(tenant.WithID(context.Background(), tenantID), u))
	return u
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)
		u := createTestUser(t, svc, users, "valid@example.com", testutils.TestPasswords.Valid, "acme")

		p, err := svc.Authenticate(ctx, "valid@example.com", testutils.TestPasswords.Valid)
		require.NoError(t, err)

		assert.Equal(t, u.ID, p.UserID)
		assert.Equal(t, "acme", p.TenantID)
		assert.Equal(t, user.RoleClient, p.Role)
		assert.Nil(t, p.ImpersonatorID)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)
		createTestUser(t, svc, users, "known@example.com", testutils.TestPasswords.Valid, "acme")

		_, unknownErr := svc.Authenticate(ctx, "nobody@example.com", testutils.TestPasswords.Valid)
		_, wrongErr := svc.Authenticate(ctx, "known@example.com", "Wrong-password1")

		assert.ErrorIs(t, unknownErr, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, wrongErr, auth.ErrInvalidCredentials)
		assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	})

	t.Run("inactive account rejected", func(t *testing.T) {
		svc, users, db := setupAuthService(t)
		u := createTestUser(t, svc, users, "inactive@example.com", testutils.TestPasswords.Valid, "acme")
		sysCtx := tenant.WithSystemScope(ctx)
		require.NoError(t, db.WithContext(sysCtx).Model(u).Where("id = ?", u.ID).Update("active", false).Error)

		_, err := svc.Authenticate(ctx, "inactive@example.com", testutils.TestPasswords.Valid)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Lockout(t *testing.T) {
	ctx := context.Background()
	cfg := testutils.GetTestConfig()

	t.Run("locks after max failed attempts", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)
		u := createTestUser(t, svc, users, "victim@example.com", testutils.TestPasswords.Valid, "acme")

		for i := 0; i < cfg.Auth.MaxFailedAttempts; i++ {
			_, err := svc.Authenticate(ctx, "victim@example.com", "Wrong-password1")
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		}

		stored, err := users.FindByIDAnyTenant(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, cfg.Auth.MaxFailedAttempts, stored.FailedLoginAttempts)
		require.NotNil(t, stored.AccountLockedUntil)
		assert.True(t, stored.Locked())
	})

	t.Run("correct password rejected while locked", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)
		createTestUser(t, svc, users, "locked@example.com", testutils.TestPasswords.Valid, "acme")

		for i := 0; i < cfg.Auth.MaxFailedAttempts; i++ {
			_, _ = svc.Authenticate(ctx, "locked@example.com", "Wrong-password1")
		}

		_, err := svc.Authenticate(ctx, "locked@example.com", testutils.TestPasswords.Valid)
		assert.ErrorIs(t, err, auth.ErrAccountLocked)
	})

	t.Run("lock expires lazily", func(t *testing.T) {
		svc, users, db := setupAuthService(t)
		u := createTestUser(t, svc, users, "expired-lock@example.com", testutils.TestPasswords.Valid, "acme")

		past := time.Now().Add(-1 * time.Minute)
		sysCtx := tenant.WithSystemScope(ctx)
		require.NoError(t, db.WithContext(sysCtx).Model(u).Where("id = ?", u.ID).Updates(map[string]any{
			"failed_login_attempts": cfg.Auth.MaxFailedAttempts,
			"account_locked_until":  past,
		}).Error)

		p, err := svc.Authenticate(ctx, "expired-lock@example.com", testutils.TestPasswords.Valid)
		require.NoError(t, err)
		assert.Equal(t, u.ID, p.UserID)

		// Successful login clears the counter and the lock.
		stored, err := users.FindByIDAnyTenant(ctx, u.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.FailedLoginAttempts)
		assert.Nil(t, stored.AccountLockedUntil)
	})

	t.Run("successful login resets the counter", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)
		u := createTestUser(t, svc, users, "reset@example.com", testutils.TestPasswords.Valid, "acme")

		for i := 0; i < cfg.Auth.MaxFailedAttempts-1; i++ {
			_, _ = svc.Authenticate(ctx, "reset@example.com", "Wrong-password1")
		}

		_, err := svc.Authenticate(ctx, "reset@example.com", testutils.TestPasswords.Valid)
		require.NoError(t, err)

		stored, err := users.FindByIDAnyTenant(ctx, u.ID)
		require.NoError(t, err)
		assert.Zero(t, stored.FailedLoginAttempts)
	})
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a client user in the tenant", func(t *testing.T) {
		svc, users, _ := setupAuthService(t)

		u, err := svc.Register(ctx, "New User", "new@example.com", testutils.TestPasswords.Valid, "acme")
		require.NoError(t, err)

		assert.Equal(t, user.RoleClient, u.Role)
		assert.Equal(t, "acme", u.TenantID)
		assert.True(t, u.Active)
		assert.NotEqual(t, testutils.TestPasswords.Valid, u.Password)

		stored, err := users.FindByEmailAnyTenant(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, stored.ID)
	})

	t.Run("duplicate email rejected across tenants", func(t *testing.T) {
		svc, _, _ := setupAuthService(t)

		_, err := svc.Register(ctx, "First", "dup@example.com", testutils.TestPasswords.Valid, "acme")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Second", "dup@example.com", testutils.TestPasswords.Valid, "globex")
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})

	t.Run("invalid tenant identifier rejected", func(t *testing.T) {
		svc, _, _ := setupAuthService(t)

		_, err := svc.Register(ctx, "User", "bad-tenant@example.com", testutils.TestPasswords.Valid, "not a tenant!")
		assert.ErrorIs(t, err, auth.ErrInvalidTenant)
	})

	t.Run("weak password rejected", func(t *testing.T) {
		svc, _, _ := setupAuthService(t)

		_, err := svc.Register(ctx, "User", "weak@example.com", testutils.TestPasswords.TooShort, "acme")
		assert.Error(t, err)
	})
}

func TestService_PasswordPolicy(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	assert.NoError(t, svc.ValidatePassword(testutils.TestPasswords.Valid))
	assert.Error(t, svc.ValidatePassword(testutils.TestPasswords.TooShort))
	assert.Error(t, svc.ValidatePassword(testutils.TestPasswords.NoUpper))
	assert.Error(t, svc.ValidatePassword(testutils.TestPasswords.NoNumber))
}
