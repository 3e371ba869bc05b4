package repositories_gorm

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gitlab.com/testpaper/papergen/models"
)

// setup opens a private in-memory SQLite database and migrates the models into it.
// The shared cache keeps the database alive across the pool's connections until t ends.
func setup(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to database")

	require.NoError(t, db.AutoMigrate(&models.Subject{}))

	t.Cleanup(func() {
		teardown(db)
	})
	return db
}

// teardown closes every pooled connection, which drops the in-memory database.
func teardown(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
