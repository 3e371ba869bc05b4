package repositories_clover

import (
	"context"

	clover "github.com/ostafen/clover/v2"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

// SubjectRepositoryClover is a Clover implementation of the SubjectRepository interface.
type SubjectRepositoryClover struct {
	repositories.Repository[models.Subject, int64]
}

// NewSubjectRepository creates a new instance of SubjectRepositoryClover.
// It initializes and returns a Clover-based repository for Subject entities.
func NewSubjectRepository(db *clover.DB, opts ...repositories.Option) repositories.SubjectRepository {
	return &SubjectRepositoryClover{NewGenericRepository[models.Subject, int64](db, opts...)}
}

// FindByName retrieves the subject with the given name.
func (repo *SubjectRepositoryClover) FindByName(ctx context.Context, name string) (models.Subject, bool, error) {
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
