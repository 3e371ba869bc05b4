// Package repotest holds the behaviour every SubjectRepository implementation must share.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

// Factory returns a repository over an empty store. Cleanup is registered on t.
type Factory func(t *testing.T, opts ...repositories.Option) repositories.SubjectRepository

// SubjectRepositorySuite runs the SubjectRepository contract against one implementation.
type SubjectRepositorySuite struct {
	suite.Suite
	NewRepository Factory

	ctx  context.Context
	repo repositories.SubjectRepository
}

// NewSubjectRepositorySuite creates a suite for the given factory.
func NewSubjectRepositorySuite(factory Factory) *SubjectRepositorySuite {
	return &SubjectRepositorySuite{NewRepository: factory}
}

func (s *SubjectRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = s.NewRepository(s.T())
}

func (s *SubjectRepositorySuite) create(names ...string) []models.Subject {
	created := make([]models.Subject, 0, len(names))
	for _, name := range names {
		subject, err := s.repo.Save(s.ctx, models.Subject{Name: name})
		s.Require().NoError(err)
		created = append(created, subject)
	}
	return created
}

func (s *SubjectRepositorySuite) TestSaveAssignsIDAndFindByIDReturnsIt() {
	saved, err := s.repo.Save(s.ctx, models.Subject{Name: "Math", Description: "Algebra and geometry"})
	s.Require().NoError(err)
	s.NotZero(saved.ID)

	found, ok, err := s.repo.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(saved.ID, found.ID)
	s.Equal("Math", found.Name)
	s.Equal("Algebra and geometry", found.Description)

	s.Require().NoError(s.repo.DeleteByID(s.ctx, saved.ID))

	_, ok, err = s.repo.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SubjectRepositorySuite) TestSaveAssignsDistinctIDs() {
	subjects := s.create("Math", "Physics", "Chemistry")
	seen := map[int64]bool{}
	for _, subject := range subjects {
		s.False(seen[subject.ID], "duplicate id %d", subject.ID)
		seen[subject.ID] = true
	}
}

func (s *SubjectRepositorySuite) TestSaveUpdatesExistingRecord() {
	created := s.create("Math")[0]

	created.Name = "Mathematics"
	created.Description = "Updated"
	updated, err := s.repo.Save(s.ctx, created)
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal("Mathematics", updated.Name)

	found, err := s.repo.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Mathematics", found.Name)
	s.Equal("Updated", found.Description)

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *SubjectRepositorySuite) TestSaveClearsFields() {
	created, err := s.repo.Save(s.ctx, models.Subject{Name: "Math", Description: "Numbers"})
	s.Require().NoError(err)

	created.Description = ""
	updated, err := s.repo.Save(s.ctx, created)
	s.Require().NoError(err)
	s.Empty(updated.Description)

	found, err := s.repo.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Math", found.Name)
	s.Empty(found.Description)
}

func (s *SubjectRepositorySuite) TestDeletedNewestIDIsNotReused() {
	created := s.create("Math", "Physics")
	newest := created[1]

	s.Require().NoError(s.repo.DeleteByID(s.ctx, newest.ID))
	next := s.create("Chemistry")[0]
	s.Greater(next.ID, newest.ID)

	exists, err := s.repo.ExistsByID(s.ctx, newest.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SubjectRepositorySuite) TestSaveWithUnknownIDInsertsByDefault() {
	saved, err := s.repo.Save(s.ctx, models.Subject{ID: 42, Name: "Biology"})
	s.Require().NoError(err)
	s.NotZero(saved.ID)

	exists, err := s.repo.ExistsByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *SubjectRepositorySuite) TestStrictPolicyReportsMissingRecords() {
	repo := s.NewRepository(s.T(), repositories.WithStrictDelete())

	err := repo.DeleteByID(s.ctx, 999)
	s.ErrorIs(err, repositories.NotFoundError)

	err = repo.Delete(s.ctx, models.Subject{Name: "never saved"})
	s.ErrorIs(err, repositories.NotFoundError)

	_, err = repo.Save(s.ctx, models.Subject{ID: 999, Name: "Ghost"})
	s.ErrorIs(err, repositories.NotFoundError)

	saved, err := repo.Save(s.ctx, models.Subject{Name: "History"})
	s.Require().NoError(err)
	s.NoError(repo.Delete(s.ctx, saved))
	s.ErrorIs(repo.Delete(s.ctx, saved), repositories.NotFoundError)
}

func (s *SubjectRepositorySuite) TestLenientPolicyIgnoresMissingRecords() {
	s.NoError(s.repo.DeleteByID(s.ctx, 999))
	s.NoError(s.repo.Delete(s.ctx, models.Subject{Name: "never saved"}))
	s.NoError(s.repo.DeleteAllByID(s.ctx, []int64{997, 998}))
}

func (s *SubjectRepositorySuite) TestGetMissingFailsWithNotFound() {
	_, err := s.repo.Get(s.ctx, 12345)
	s.ErrorIs(err, repositories.NotFoundError)

	var storageErr *repositories.StorageError
	s.ErrorAs(err, &storageErr)
}

func (s *SubjectRepositorySuite) TestExistsByIDUntilDeleted() {
	created := s.create("Geography")[0]

	exists, err := s.repo.ExistsByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.repo.DeleteByID(s.ctx, created.ID))

	exists, err = s.repo.ExistsByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *SubjectRepositorySuite) TestCountTracksInsertsAndDeletes() {
	s.create("Seed")
	before, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)

	created := s.create("A1", "A2", "A3", "A4", "A5")
	s.Require().NoError(s.repo.DeleteByID(s.ctx, created[0].ID))
	s.Require().NoError(s.repo.Delete(s.ctx, created[1]))

	after, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(before+5-2, after)
}

func (s *SubjectRepositorySuite) TestFindPageCoversEveryRecordOnce() {
	const n, k = 7, 3
	for i := 0; i < n; i++ {
		s.create(fmt.Sprintf("Subject %02d", i))
	}

	seen := map[int64]int{}
	pageable := repositories.PageRequest(0, k, repositories.Order{Field: "name"})
	pages := 0
	var names []string
	for {
		page, err := s.repo.FindPage(s.ctx, pageable)
		s.Require().NoError(err)
		s.Equal(3, page.TotalPages)
		s.EqualValues(n, page.TotalElements)
		s.LessOrEqual(len(page.Content), k)

		for _, subject := range page.Content {
			seen[subject.ID]++
			names = append(names, subject.Name)
		}
		pages++
		if !page.HasNext() {
			break
		}
		pageable = page.Next(pageable.Sort)
	}

	s.Equal(3, pages)
	s.Len(seen, n)
	for id, times := range seen {
		s.Equal(1, times, "subject %d seen more than once", id)
	}
	s.IsIncreasing(names)
}

func (s *SubjectRepositorySuite) TestFindPageBeyondLastPageIsEmpty() {
	s.create("Only")

	page, err := s.repo.FindPage(s.ctx, repositories.PageRequest(5, 10))
	s.Require().NoError(err)
	s.Empty(page.Content)
	s.EqualValues(1, page.TotalElements)
	s.False(page.HasNext())
}

func (s *SubjectRepositorySuite) TestFindPageRejectsInvalidRequests() {
	_, err := s.repo.FindPage(s.ctx, repositories.PageRequest(0, 0))
	s.ErrorIs(err, repositories.InvalidDataError)

	_, err = s.repo.FindPage(s.ctx, repositories.PageRequest(0, 10, repositories.Order{Field: "nope"}))
	s.ErrorIs(err, repositories.InvalidDataError)
}

func (s *SubjectRepositorySuite) TestFindAllIsOrderedAndRestartable() {
	s.create("Beta", "Alpha", "Gamma")

	collect := func() []string {
		var names []string
		for subject, err := range s.repo.FindAll(s.ctx, repositories.By("name").Desc()) {
			s.Require().NoError(err)
			names = append(names, subject.Name)
		}
		return names
	}

	s.Equal([]string{"Gamma", "Beta", "Alpha"}, collect())
	s.Equal([]string{"Gamma", "Beta", "Alpha"}, collect())

	var first []string
	for subject, err := range s.repo.FindAll(s.ctx, repositories.By("name")) {
		s.Require().NoError(err)
		first = append(first, subject.Name)
		break
	}
	s.Equal([]string{"Alpha"}, first)
}

func (s *SubjectRepositorySuite) TestFindAllReportsInvalidSort() {
	s.create("Alpha")

	var errs []error
	for _, err := range s.repo.FindAll(s.ctx, repositories.By("unknown")) {
		errs = append(errs, err)
	}
	s.Require().Len(errs, 1)
	s.ErrorIs(errs[0], repositories.InvalidDataError)
}

func (s *SubjectRepositorySuite) TestFindAllByIDSkipsMissing() {
	created := s.create("Art", "Music")

	found, err := s.repo.FindAllByID(s.ctx, []int64{created[0].ID, 9999, created[1].ID})
	s.Require().NoError(err)
	s.Len(found, 2)

	none, err := s.repo.FindAllByID(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *SubjectRepositorySuite) TestSaveAllAndDeleteAllByID() {
	saved, err := s.repo.SaveAll(s.ctx, []models.Subject{{Name: "Latin"}, {Name: "Greek"}, {Name: "French"}})
	s.Require().NoError(err)
	s.Require().Len(saved, 3)
	for _, subject := range saved {
		s.NotZero(subject.ID)
	}

	s.Require().NoError(s.repo.DeleteAllByID(s.ctx, []int64{saved[0].ID, saved[1].ID}))

	count, err := s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, count)

	s.Require().NoError(s.repo.DeleteAll(s.ctx))
	count, err = s.repo.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *SubjectRepositorySuite) TestFindByName() {
	s.create("Math", "Physics")

	found, ok, err := s.repo.FindByName(s.ctx, "Physics")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("Physics", found.Name)

	_, ok, err = s.repo.FindByName(s.ctx, "Alchemy")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *SubjectRepositorySuite) TestFindByConditions() {
	created := s.create("Math", "Physics", "Chemistry")

	query := s.repo.GetQuery()
	query.Conditions = append(query.Conditions, repositories.GT("ID", created[0].ID))
	query.Sort = repositories.By("name")
	found, err := s.repo.FindBy(s.ctx, query)
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal("Chemistry", found[0].Name)
	s.Equal("Physics", found[1].Name)

	query = s.repo.GetQuery()
	query.Instance = models.Subject{Name: "Math"}
	one, err := s.repo.Find(s.ctx, query)
	s.Require().NoError(err)
	s.Equal(created[0].ID, one.ID)

	query = s.repo.GetQuery()
	query.Sort = repositories.By("name")
	query.Limit = 1
	query.Offset = 1
	found, err = s.repo.FindBy(s.ctx, query)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Equal("Math", found[0].Name)

	query = s.repo.GetQuery()
	query.Conditions = append(query.Conditions, repositories.EQ("Name", "Alchemy"))
	_, err = s.repo.Find(s.ctx, query)
	s.ErrorIs(err, repositories.NotFoundError)
}
