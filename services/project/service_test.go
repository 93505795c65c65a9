package project_test

import (
	"context"
	"testing"

	"github.com/Triet1705/client-hub-backend/services/project"
	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/Triet1705/client-hub-backend/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjectService(t *testing.T) *project.Service {
	t.Helper()
	db := testutils.SetupTenantTestDB(t, &project.Project{})
	return project.NewService(db, nil)
}

func createProject(t *testing.T, svc *project.Service, tenantID, title string) *project.Project {
	t.Helper()
	p := &project.Project{
		Title:    title,
		Status:   project.StatusOpen,
		ClientID: uuid.New(),
	}
	require.NoError(t, svc.Create(tenant.WithID(context.Background(), tenantID), p))
	return p
}

func TestService_TenantIsolation(t *testing.T) {
	svc := setupProjectService(t)
	acmeProject := createProject(t, svc, "acme", "Website redesign")
	createProject(t, svc, "globex", "Logo refresh")

	t.Run("create stamps the ambient tenant", func(t *testing.T) {
		assert.Equal(t, "acme", acmeProject.TenantID)
	})

	t.Run("list sees only the caller's tenant", func(t *testing.T) {
		projects, err := svc.List(tenant.WithID(context.Background(), "acme"))
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Website redesign", projects[0].Title)
	})

	t.Run("lookup across tenants fails as not found", func(t *testing.T) {
		_, err := svc.FindByID(tenant.WithID(context.Background(), "globex"), acmeProject.ID)
		assert.ErrorIs(t, err, project.ErrProjectNotFound)
	})

	t.Run("delete cannot reach another tenant's rows", func(t *testing.T) {
		err := svc.Delete(tenant.WithID(context.Background(), "globex"), acmeProject.ID)
		assert.ErrorIs(t, err, project.ErrProjectNotFound)

		still, err := svc.FindByID(tenant.WithID(context.Background(), "acme"), acmeProject.ID)
		require.NoError(t, err)
		assert.Equal(t, acmeProject.ID, still.ID)
	})

	t.Run("no tenant context is denied", func(t *testing.T) {
		_, err := svc.List(context.Background())
		require.Error(t, err)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	svc := setupProjectService(t)
	p := createProject(t, svc, "acme", "Backend migration")
	ctx := tenant.WithID(context.Background(), "acme")

	updated, err := svc.UpdateStatus(ctx, p.ID, project.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, project.StatusInProgress, updated.Status)

	stored, err := svc.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusInProgress, stored.Status)

	_, err = svc.UpdateStatus(tenant.WithID(context.Background(), "globex"), p.ID, project.StatusCancelled)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}
