package repositories_gorm

import (
	"context"

	"gorm.io/gorm"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

// SubjectRepositoryGORM is a GORM implementation of the SubjectRepository interface.
type SubjectRepositoryGORM struct {
	repositories.Repository[models.Subject, int64]
}

// NewSubjectRepository creates a new instance of SubjectRepositoryGORM.
// It initializes and returns a GORM-based repository for Subject entities.
func NewSubjectRepository(db *gorm.DB, opts ...repositories.Option) repositories.SubjectRepository {
	return &SubjectRepositoryGORM{NewGenericRepository[models.Subject, int64](db, opts...)}
}

// FindByName retrieves the subject with the given name.
func (repo *SubjectRepositoryGORM) FindByName(ctx context.Context, name string) (models.Subject, bool, error) {
	query := repo.GetQuery()
	query.Conditions = append(query.Conditions, repositories.EQ("Name", name))

	subject, err := repo.Find(ctx, query)
	if repositories.IsNotFound(err) {
		return models.Subject{}, false, nil
	}
	if err != nil {
		return models.Subject{}, false, err
	}
	return subject, true, nil
}
