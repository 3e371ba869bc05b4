package repositories_gorm

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"gitlab.com/testpaper/papergen/db/repositories"
)

// handleDBError is a utility function that translates GORM database errors into repository errors.
// The GORM error is kept as the cause so callers can still inspect driver details.
func handleDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	var storageErr *repositories.StorageError
	if errors.As(err, &storageErr) {
		return err
	}

	var sqliteErr sqlite3.Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NewStorageError(op, repositories.NotFoundError, err)
	case errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidField),
		errors.Is(err, gorm.ErrInvalidValue),
		errors.Is(err, gorm.ErrMissingWhereClause),
		errors.Is(err, repositories.InvalidDataError):
		return repositories.NewStorageError(op, repositories.InvalidDataError, err)
	case errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint:
		return repositories.NewStorageError(op, repositories.ConstraintError, err)
	default:
		return repositories.NewStorageError(op, repositories.DatabaseError, err)
	}
}
