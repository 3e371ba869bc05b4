package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/testpaper/papergen/db/migrations"
	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/internal/config"
	"gitlab.com/testpaper/papergen/models"
)

func testConfig(t *testing.T, driver string) *config.Config {
	return &config.Config{
		General: config.General{DataDir: t.TempDir()},
		Database: config.Database{
			Driver:      driver,
			DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			AutoMigrate: true,
		},
	}
}

func roundTrip(t *testing.T, store *Store) {
	ctx := context.Background()
	saved, err := store.Subjects.Save(ctx, models.Subject{Name: "Math"})
	require.NoError(t, err)

	found, ok, err := store.Subjects.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Math", found.Name)
}

func TestConnectSQLite(t *testing.T) {
	store, err := Connect(context.Background(), testConfig(t, config.DriverSQLite))
	require.NoError(t, err)
	defer store.Close()

	roundTrip(t, store)

	sqlDB, err := store.SQL()
	require.NoError(t, err)
	version, err := migrations.Version(sqlDB)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)
}

func TestConnectSQLiteFile(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Database.DSN = ""

	store, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	roundTrip(t, store)
	require.NoError(t, store.Close())

	// data survives a reconnect
	store, err = Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()
	count, err := store.Subjects.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestConnectClover(t *testing.T) {
	store, err := Connect(context.Background(), testConfig(t, config.DriverClover))
	require.NoError(t, err)
	defer store.Close()

	roundTrip(t, store)

	_, err = store.SQL()
	assert.Error(t, err)
}

func TestConnectStrictDelete(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Database.StrictDelete = true

	store, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	err = store.Subjects.DeleteByID(context.Background(), 404)
	assert.ErrorIs(t, err, repositories.NotFoundError)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(context.Background(), testConfig(t, "oracle"))
	assert.Error(t, err)
}
