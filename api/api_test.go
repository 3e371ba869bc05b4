package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gitlab.com/testpaper/papergen/db/repositories"
	repositories_gorm "gitlab.com/testpaper/papergen/db/repositories/gorm"
	"gitlab.com/testpaper/papergen/internal/config"
	"gitlab.com/testpaper/papergen/models"
)

func setupRepository(t *testing.T, opts ...repositories.Option) repositories.SubjectRepository {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to database")
	require.NoError(t, db.AutoMigrate(&models.Subject{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories_gorm.NewSubjectRepository(db, opts...)
}

func SetupTestRouter(t *testing.T, opts ...repositories.Option) (*gin.Engine, repositories.SubjectRepository) {
	gin.SetMode(gin.TestMode)
	repo := setupRepository(t, opts...)
	cfg := &config.Config{
		Rest:    config.Rest{AllowedOrigins: []string{"*"}},
		Tracing: config.Tracing{ServiceName: "papergen-test"},
	}
	return SetupRouter(repo, cfg), repo
}

func do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, getCustomCorsConfig([]string{"*"}).AllowAllOrigins)

	corsConfig := getCustomCorsConfig([]string{"http://localhost:3000"})
	assert.False(t, corsConfig.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, corsConfig.AllowOrigins)
}

func TestNewStorageProblem(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repositories.NewStorageError("get", repositories.NotFoundError, nil), http.StatusNotFound},
		{repositories.NewStorageError("find page", repositories.InvalidDataError, nil), http.StatusBadRequest},
		{repositories.NewStorageError("save", repositories.ConstraintError, nil), http.StatusConflict},
		{repositories.NewStorageError("save", repositories.DatabaseError, nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		problem := NewStorageProblem(tt.err, "/api/v1/subjects")
		assert.Equal(t, tt.status, problem.Status, tt.err.Error())
		assert.Equal(t, "/api/v1/subjects", problem.Instance)
	}
}
