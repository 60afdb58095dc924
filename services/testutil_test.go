package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nbowman189/vitruvian/config"
	"github.com/nbowman189/vitruvian/models"
)

// newTestDB points config.DB at a throwaway sqlite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrateAll(db))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	return db
}

func newTestUser(t *testing.T, email string) models.User {
	t.Helper()

	user := models.User{Email: email, Password: "x", FullName: "Test User"}
	require.NoError(t, config.DB.Create(&user).Error)
	return user
}
