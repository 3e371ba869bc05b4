package repositories_clover

import (
	"testing"

	clover "github.com/ostafen/clover/v2"
	"github.com/stretchr/testify/require"

	"gitlab.com/testpaper/papergen/models"
)

// setup opens a clover database (bbolt under the hood) in a temporary dir
// and creates the collections for the models.
func setup(t *testing.T) *clover.DB {
	db, err := clover.Open(t.TempDir())
	require.NoError(t, err, "failed to connect to database")

	require.NoError(t, CreateCollections(db, CollectionName[models.Subject]()))

	t.Cleanup(func() {
		teardown(db)
	})
	return db
}

// teardown closes the clover database. The directory is removed by the testing package.
func teardown(db *clover.DB) {
	db.Close()
}
