package testutils

import (
	"testing"

	"github.com/Triet1705/client-hub-backend/tenant"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	if len(models) > 0 {
		err = db.AutoMigrate(models...)
		require.NoError(t, err)
	}

	return db
}

// SetupTenantTestDB returns an in-memory database with the tenant plugin
// installed, so queries behave the way they do in production.
func SetupTenantTestDB(t *testing.T, models ...interface{}) *gorm.DB {
	db := SetupTestDB(t, models...)

	err := db.Use(tenant.NewPlugin(nil))
	require.NoError(t, err)

	return db
}

func CleanupTestDB(t *testing.T, db *gorm.DB, tables ...string) {
	for _, table := range tables {
		err := db.Exec("DELETE FROM " + table).Error
		require.NoError(t, err)
	}
}
