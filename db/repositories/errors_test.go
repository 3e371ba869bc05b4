package repositories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := error(NewStorageError("save", DatabaseError, cause))

	assert.ErrorIs(t, err, DatabaseError)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, NotFoundError)
	assert.Equal(t, "save: Database error: disk I/O error", err.Error())

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "save", storageErr.Op)

	notFound := NewStorageError("get", NotFoundError, nil)
	assert.True(t, IsNotFound(notFound))
	assert.Equal(t, "get: Record not found", notFound.Error())
}

func TestStorageErrorWrappingKind(t *testing.T) {
	err := NewStorageError("find page", InvalidDataError, PageRequest(0, 0).Validate())
	assert.Equal(t, "find page: Invalid data given: page size must be greater than 0", err.Error())
	assert.ErrorIs(t, err, InvalidDataError)
}
