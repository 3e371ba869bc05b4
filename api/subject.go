package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/models"
)

// SubjectHandler serves the subject endpoints.
type SubjectHandler struct {
	subjects repositories.SubjectRepository
}

func NewSubjectHandler(subjects repositories.SubjectRepository) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

type pageQuery struct {
	Page int      `form:"page" binding:"min=0"`
	Size int      `form:"size,default=20" binding:"min=1,max=1000"`
	Sort []string `form:"sort"`
}

type idsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// abortWithError answers with the problem detail of a repository error.
func abortWithError(c *gin.Context, err error) {
	problem := NewStorageProblem(err, c.Request.URL.Path)
	if problem.Status == http.StatusInternalServerError {
		zlog.Ctx(c.Request.Context()).Error("subject request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(problem.Status, problem)
}

// subjectID parses the :id path parameter. It answers the request itself on failure.
func subjectID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewInvalidIDProblem(raw))
		return 0, false
	}

	span := trace.SpanFromContext(c.Request.Context())
	span.SetAttributes(attribute.Int64("subject.id", id))
	return id, true
}

// HandleListSubjects  godoc
//
// @Summary			List subjects page by page
// @Description		Returns one page of subjects. Sort accepts "field" or "field,desc" and may be repeated.
// @Tags			subjects
// @Produce			json
// @Param			page	query	int		false	"zero-based page index"
// @Param			size	query	int		false	"page size"	default(20)
// @Param			sort	query	string	false	"sort order, e.g. name,desc"
// @Success			200	{object}	repositories.Page[models.Subject]
// @Router			/subjects [get]
func (h *SubjectHandler) HandleListSubjects(c *gin.Context) {
	var query pageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewValidationProblem(err))
		return
	}

	sort, err := repositories.ParseSort(query.Sort...)
	if err != nil {
		abortWithError(c, err)
		return
	}

	page, err := h.subjects.FindPage(c.Request.Context(), repositories.PageRequest(query.Page, query.Size, sort...))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// HandleAllSubjects  godoc
//
// @Summary			List every subject
// @Tags			subjects
// @Produce			json
// @Param			sort	query	string	false	"sort order, e.g. name,desc"
// @Success			200	{array}	models.Subject
// @Router			/subjects/all [get]
func (h *SubjectHandler) HandleAllSubjects(c *gin.Context) {
	sort, err := repositories.ParseSort(c.QueryArray("sort")...)
	if err != nil {
		abortWithError(c, err)
		return
	}

	subjects := []models.Subject{}
	for subject, err := range h.subjects.FindAll(c.Request.Context(), sort) {
		if err != nil {
			abortWithError(c, err)
			return
		}
		subjects = append(subjects, subject)
	}
	c.JSON(http.StatusOK, subjects)
}

// HandleCountSubjects  godoc
//
// @Summary			Count subjects
// @Tags			subjects
// @Produce			json
// @Success			200	{object}	countResponse
// @Router			/subjects/count [get]
func (h *SubjectHandler) HandleCountSubjects(c *gin.Context) {
	count, err := h.subjects.Count(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: count})
}

// HandleGetSubject  godoc
//
// @Summary			Retrieve a subject
// @Tags			subjects
// @Produce			json
// @Param			id	path	int	true	"subject id"
// @Success			200	{object}	models.Subject
// @Failure			404	{object}	ProblemDetail
// @Router			/subjects/{id} [get]
func (h *SubjectHandler) HandleGetSubject(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}

	subject, found, err := h.subjects.FindByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, NewNotFoundProblem(c.Request.URL.Path))
		return
	}
	c.JSON(http.StatusOK, subject)
}

// HandleSubjectExists answers HEAD requests with 200 when the subject exists and 404 otherwise.
func (h *SubjectHandler) HandleSubjectExists(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}

	exists, err := h.subjects.ExistsByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !exists {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

// HandleCreateSubject  godoc
//
// @Summary			Create a subject
// @Tags			subjects
// @Accept			json
// @Produce			json
// @Param			subject	body	models.Subject	true	"subject to create"
// @Success			201	{object}	models.Subject
// @Failure			400	{object}	ProblemDetail
// @Failure			409	{object}	ProblemDetail
// @Router			/subjects [post]
func (h *SubjectHandler) HandleCreateSubject(c *gin.Context) {
	if c.Request.ContentLength == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewEmptyBodyProblem())
		return
	}

	var subject models.Subject
	if err := c.ShouldBindJSON(&subject); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewValidationProblem(err))
		return
	}
	// identifiers are assigned by the store
	subject.ID = 0

	saved, err := h.subjects.Save(c.Request.Context(), subject)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// HandleUpdateSubject  godoc
//
// @Summary			Update a subject
// @Tags			subjects
// @Accept			json
// @Produce			json
// @Param			id		path	int				true	"subject id"
// @Param			subject	body	models.Subject	true	"new subject state"
// @Success			200	{object}	models.Subject
// @Failure			404	{object}	ProblemDetail
// @Router			/subjects/{id} [put]
func (h *SubjectHandler) HandleUpdateSubject(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}
	if c.Request.ContentLength == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewEmptyBodyProblem())
		return
	}

	var subject models.Subject
	if err := c.ShouldBindJSON(&subject); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewValidationProblem(err))
		return
	}

	exists, err := h.subjects.ExistsByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !exists {
		c.AbortWithStatusJSON(http.StatusNotFound, NewNotFoundProblem(c.Request.URL.Path))
		return
	}

	subject.ID = id
	saved, err := h.subjects.Save(c.Request.Context(), subject)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// HandleDeleteSubject  godoc
//
// @Summary			Delete a subject
// @Tags			subjects
// @Param			id	path	int	true	"subject id"
// @Success			204
// @Router			/subjects/{id} [delete]
func (h *SubjectHandler) HandleDeleteSubject(c *gin.Context) {
	id, ok := subjectID(c)
	if !ok {
		return
	}

	if err := h.subjects.DeleteByID(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleCreateSubjects  godoc
//
// @Summary			Save several subjects at once
// @Description		Subjects without an id are created, the others updated. Either every subject is saved or none.
// @Tags			subjects
// @Accept			json
// @Produce			json
// @Param			subjects	body	[]models.Subject	true	"subjects to save"
// @Success			200	{array}	models.Subject
// @Router			/subjects/batch [post]
func (h *SubjectHandler) HandleCreateSubjects(c *gin.Context) {
	if c.Request.ContentLength == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewEmptyBodyProblem())
		return
	}

	var subjects []models.Subject
	if err := c.ShouldBindJSON(&subjects); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewValidationProblem(err))
		return
	}
	if len(subjects) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewEmptyBodyProblem())
		return
	}
	for i := range subjects {
		subjects[i].ID = 0
	}

	saved, err := h.subjects.SaveAll(c.Request.Context(), subjects)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// HandleDeleteSubjects  godoc
//
// @Summary			Delete several subjects at once
// @Tags			subjects
// @Accept			json
// @Param			ids	body	idsRequest	true	"ids of the subjects to delete"
// @Success			204
// @Router			/subjects/batch [delete]
func (h *SubjectHandler) HandleDeleteSubjects(c *gin.Context) {
	if c.Request.ContentLength == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewEmptyBodyProblem())
		return
	}

	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewValidationProblem(err))
		return
	}

	if err := h.subjects.DeleteAllByID(c.Request.Context(), req.IDs); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
