package audit_test

import (
	"context"
	"testing"

	"github.com/Triet1705/client-hub-backend/background"
	"github.com/Triet1705/client-hub-backend/config"
	"github.com/Triet1705/client-hub-backend/services/audit"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/Triet1705/client-hub-backend/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuditService(t *testing.T) (*audit.Service, *background.Pool, *gorm.DB) {
	t.Helper()
	db := testutils.SetupTenantTestDB(t, &audit.AuditLog{})
	pool := background.NewPool(&config.Config{
		Async: config.AsyncConfig{Workers: 1, QueueSize: 16},
	}, nil)
	return audit.NewService(db, pool, nil), pool, db
}

func TestService_Record(t *testing.T) {
	t.Run("entry is written under the submitting tenant", func(t *testing.T) {
		svc, pool, db := setupAuditService(t)

		userID := uuid.New()
		ctx := tenant.WithID(context.Background(), "acme")
		svc.Record(ctx, &userID, audit.ActionLoginSuccess, "login from 10.0.0.1")

		// Stop drains the queue, so the deferred write has happened.
		require.NoError(t, pool.Stop(context.Background()))

		sysCtx := tenant.WithSystemScope(context.Background())
		var entries []audit.AuditLog
		require.NoError(t, db.WithContext(sysCtx).Find(&entries).Error)

		require.Len(t, entries, 1)
		assert.Equal(t, "acme", entries[0].TenantID)
		assert.Equal(t, audit.ActionLoginSuccess, entries[0].Action)
		require.NotNil(t, entries[0].UserID)
		assert.Equal(t, userID, *entries[0].UserID)
	})

	t.Run("write without tenant fails closed but not loudly", func(t *testing.T) {
		svc, pool, db := setupAuditService(t)

		// No tenant on the context: the gate rejects the deferred insert and
		// the audit service degrades to a warning.
		svc.Record(context.Background(), nil, audit.ActionLoginFailed, "no tenant bound")
		require.NoError(t, pool.Stop(context.Background()))

		sysCtx := tenant.WithSystemScope(context.Background())
		var count int64
		require.NoError(t, db.WithContext(sysCtx).Model(&audit.AuditLog{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestService_RecentForTenant(t *testing.T) {
	svc, pool, _ := setupAuditService(t)

	for _, tenantID := range []string{"acme", "acme", "globex"} {
		ctx := tenant.WithID(context.Background(), tenantID)
		svc.Record(ctx, nil, audit.ActionLogout, "logout")
	}
	require.NoError(t, pool.Stop(context.Background()))

	entries, err := svc.RecentForTenant(tenant.WithID(context.Background(), "acme"), 10)
	require.NoError(t, err)

	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "acme", e.TenantID)
	}
}
