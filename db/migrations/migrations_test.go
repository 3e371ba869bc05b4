package migrations

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var count int
	err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestUpAndDown(t *testing.T) {
	db := setup(t)

	require.NoError(t, Up(db))
	assert.True(t, tableExists(t, db, "subjects"))

	version, err := Version(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	// a second run has nothing left to apply
	require.NoError(t, Up(db))

	require.NoError(t, Down(db))
	assert.False(t, tableExists(t, db, "subjects"))

	version, err = Version(db)
	require.NoError(t, err)
	assert.Zero(t, version)
}

func TestNameIsUnique(t *testing.T) {
	db := setup(t)
	require.NoError(t, Up(db))

	_, err := db.Exec("INSERT INTO subjects (name) VALUES ('Math')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO subjects (name) VALUES ('Math')")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	db := setup(t)

	statuses, err := Status(db)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "pending", statuses[0].Status)
	assert.Nil(t, statuses[0].AppliedAt)

	require.NoError(t, Up(db))

	statuses, err = Status(db)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.EqualValues(t, 1, statuses[0].Version)
	assert.Equal(t, "applied", statuses[0].Status)
	assert.NotNil(t, statuses[0].AppliedAt)
}
