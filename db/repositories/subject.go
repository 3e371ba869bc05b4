package repositories

import (
	"context"

	"gitlab.com/testpaper/papergen/models"
)

// SubjectRepository represents a repository for CRUD operations on Subject entities.
type SubjectRepository interface {
	Repository[models.Subject, int64]
	// FindByName retrieves the subject with the given unique name.
	FindByName(ctx context.Context, name string) (models.Subject, bool, error)
}
