package repository

import (
	"path/filepath"
	"testing"

	"go-forecast-backend/config"
	"go-forecast-backend/database"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh SQLite file per test and returns both stores.
func setupTestDB(t *testing.T) (*gorm.DB, *UserRepository, *ForecastRepository) {
	t.Helper()
	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
		GinMode:  "release", // silent gorm logger
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	writer := database.NewLockRetrier(nil)
	return db, NewUserRepository(db, writer, bcrypt.MinCost), NewForecastRepository(db, writer)
}
