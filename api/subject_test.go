package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

func TestCreateAndGetSubject(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"name": "Math", "description": "Algebra"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Subject](t, w)
	assert.NotZero(t, created.ID)
	assert.Contains(t, w.Body.String(), `"subId"`)

	w = do(router, http.MethodGet, fmt.Sprintf("/api/v1/subjects/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[models.Subject](t, w)
	assert.Equal(t, "Math", found.Name)
	assert.Equal(t, "Algebra", found.Description)
}

func TestCreateSubjectIgnoresClientID(t *testing.T) {
	router, repo := SetupTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/subjects", map[string]interface{}{"subId": 77, "name": "Art"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Subject](t, w)

	exists, err := repo.ExistsByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NotEqualValues(t, 77, created.ID)
}

func TestCreateSubjectValidation(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/subjects", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Empty Request Body", decode[ProblemDetail](t, w).Title)

	w = do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"description": "no name"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	problem := decode[ProblemDetail](t, w)
	assert.Equal(t, "Input Validation Error", problem.Title)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, ErrorDetail{Detail: "is required", Pointer: "#/name"}, problem.Errors[0])

	w = do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"name": "M"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be at least 2", decode[ProblemDetail](t, w).Errors[0].Detail)
}

func TestCreateDuplicateSubjectConflicts(t *testing.T) {
	router, _ := SetupTestRouter(t)

	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"name": "Math"}).Code)
	w := do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"name": "Math"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetSubjectErrors(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/subjects/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/api/v1/subjects/999", decode[ProblemDetail](t, w).Instance)

	w = do(router, http.MethodGet, "/api/v1/subjects/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Identifier", decode[ProblemDetail](t, w).Title)
}

func TestSubjectExists(t *testing.T) {
	router, repo := SetupTestRouter(t)
	saved, err := repo.Save(context.Background(), models.Subject{Name: "Math"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(router, http.MethodHead, fmt.Sprintf("/api/v1/subjects/%d", saved.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodHead, "/api/v1/subjects/999", nil).Code)
}

func TestUpdateSubject(t *testing.T) {
	router, repo := SetupTestRouter(t)
	saved, err := repo.Save(context.Background(), models.Subject{Name: "Math"})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/v1/subjects/%d", saved.ID)
	w := do(router, http.MethodPut, path, map[string]string{"name": "Mathematics"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, saved.ID, decode[models.Subject](t, w).ID)

	found, err := repo.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", found.Name)

	w = do(router, http.MethodPut, "/api/v1/subjects/999", map[string]string{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestDeleteSubject(t *testing.T) {
	router, repo := SetupTestRouter(t)
	saved, err := repo.Save(context.Background(), models.Subject{Name: "Math"})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/v1/subjects/%d", saved.ID)
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, path, nil).Code)
	// lenient by default
	assert.Equal(t, http.StatusNoContent, do(router, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, path, nil).Code)
}

func TestDeleteSubjectStrict(t *testing.T) {
	router, _ := SetupTestRouter(t, repositories.WithStrictDelete())

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, "/api/v1/subjects/999", nil).Code)
}

func TestListSubjectsPaged(t *testing.T) {
	router, repo := SetupTestRouter(t)
	for i := 0; i < 5; i++ {
		_, err := repo.Save(context.Background(), models.Subject{Name: fmt.Sprintf("Subject %d", i)})
		require.NoError(t, err)
	}

	w := do(router, http.MethodGet, "/api/v1/subjects?page=1&size=2&sort=name,desc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	page := decode[repositories.Page[models.Subject]](t, w)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 2, page.Size)
	assert.EqualValues(t, 5, page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "Subject 2", page.Content[0].Name)
	assert.Equal(t, "Subject 1", page.Content[1].Name)

	w = do(router, http.MethodGet, "/api/v1/subjects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repositories.DefaultPageSize, decode[repositories.Page[models.Subject]](t, w).Size)
}

func TestListSubjectsRejectsBadParameters(t *testing.T) {
	router, _ := SetupTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/subjects?size=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/subjects?page=-1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/subjects?sort=unknown", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/v1/subjects?sort=name,sideways", nil).Code)
}

func TestAllAndCountSubjects(t *testing.T) {
	router, repo := SetupTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/subjects/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	for _, name := range []string{"Biology", "Art", "Chemistry"} {
		_, err := repo.Save(context.Background(), models.Subject{Name: name})
		require.NoError(t, err)
	}

	w = do(router, http.MethodGet, "/api/v1/subjects/all?sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.Subject](t, w)
	require.Len(t, all, 3)
	assert.Equal(t, "Art", all[0].Name)
	assert.Equal(t, "Chemistry", all[2].Name)

	w = do(router, http.MethodGet, "/api/v1/subjects/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())
}

func TestBatchSubjects(t *testing.T) {
	router, repo := SetupTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/subjects/batch", []map[string]string{{"name": "Latin"}, {"name": "Greek"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[[]models.Subject](t, w)
	require.Len(t, saved, 2)

	w = do(router, http.MethodPost, "/api/v1/subjects/batch", []map[string]string{{"name": "Hebrew"}, {"name": "Latin"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	w = do(router, http.MethodDelete, "/api/v1/subjects/batch", map[string][]int64{"ids": {saved[0].ID, saved[1].ID}})
	assert.Equal(t, http.StatusNoContent, w.Code)

	count, err = repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodDelete, "/api/v1/subjects/batch", map[string][]int64{"ids": {}}).Code)
	assert.Equal(t, http.StatusBadRequest, do(router, http.MethodPost, "/api/v1/subjects/batch", "[]").Code)
}

func TestBatchSubjectsIgnoresClientIDs(t *testing.T) {
	router, repo := SetupTestRouter(t)

	w := do(router, http.MethodPost, "/api/v1/subjects", map[string]string{"name": "Math"})
	require.Equal(t, http.StatusCreated, w.Code)
	math := decode[models.Subject](t, w)

	w = do(router, http.MethodPost, "/api/v1/subjects/batch", []map[string]interface{}{
		{"subId": math.ID, "name": "Physics"},
		{"subId": 500, "name": "Chemistry"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[[]models.Subject](t, w)
	require.Len(t, saved, 2)
	assert.NotEqual(t, math.ID, saved[0].ID)
	assert.NotEqualValues(t, 500, saved[1].ID)

	found, err := repo.Get(context.Background(), math.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math", found.Name)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
