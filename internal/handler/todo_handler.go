package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/middleware"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/repository"
	"github.com/user/taskloop/backend/internal/service"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

type TodoHandler struct {
	todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	todo, err := h.todos.Create(middleware.MustGetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *TodoHandler) List(c *gin.Context) {
	params := repository.TodoListParams{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	if v, ok := boolQuery(c, "completed"); ok {
		params.Completed = &v
	}
	if v, ok := boolQuery(c, "recurring"); ok {
		params.Recurring = &v
	}
	if v := c.Query("priority"); v != "" {
		priority := models.Priority(v)
		if !priority.Valid() {
			respondError(c, apperrors.ValidationErrorWithFields("Invalid priority filter",
				apperrors.FieldIssue{Field: "priority", Issue: "must be one of low, medium, high"}))
			return
		}
		params.Priority = &priority
	}
	if v := c.Query("tag_id"); v != "" {
		tagID, err := uuid.Parse(v)
		if err != nil {
			respondError(c, apperrors.ValidationErrorWithFields("Invalid tag filter",
				apperrors.FieldIssue{Field: "tag_id", Issue: "must be a UUID"}))
			return
		}
		params.TagID = &tagID
	}
	if v := c.Query("search"); v != "" {
		params.Search = &v
	}

	resp, err := h.todos.List(middleware.MustGetUserID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TodoHandler) Get(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	todo, err := h.todos.GetByID(middleware.MustGetUserID(c), todoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	scope := dto.EditScopeAllFuture
	switch c.Query("edit_scope") {
	case "", string(dto.EditScopeAllFuture):
	case string(dto.EditScopeThisOnly):
		scope = dto.EditScopeThisOnly
	default:
		respondError(c, apperrors.ValidationErrorWithFields("Invalid edit scope",
			apperrors.FieldIssue{Field: "edit_scope", Issue: "must be this_only or all_future"}))
		return
	}

	todo, err := h.todos.Update(middleware.MustGetUserID(c), todoID, req, scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) StopRecurring(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	keepPending, _ := boolQuery(c, "keep_pending")

	todo, err := h.todos.StopRecurring(middleware.MustGetUserID(c), todoID, keepPending)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.todos.Delete(middleware.MustGetUserID(c), todoID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TodoHandler) ListOccurrences(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var status *models.OccurrenceStatus
	if v := c.Query("status"); v != "" {
		s := models.OccurrenceStatus(v)
		switch s {
		case models.OccurrencePending, models.OccurrenceCompleted, models.OccurrenceSkipped:
			status = &s
		default:
			respondError(c, apperrors.ValidationErrorWithFields("Invalid status filter",
				apperrors.FieldIssue{Field: "status", Issue: "must be pending, completed or skipped"}))
			return
		}
	}

	occurrences, err := h.todos.ListOccurrences(middleware.MustGetUserID(c), todoID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occurrences": occurrences})
}

func (h *TodoHandler) CurrentOccurrence(c *gin.Context) {
	todoID, ok := pathID(c, "id")
	if !ok {
		return
	}
	occurrence, err := h.todos.CurrentOccurrence(middleware.MustGetUserID(c), todoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occurrence)
}

func (h *TodoHandler) UpdateOccurrence(c *gin.Context) {
	occurrenceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	occurrence, err := h.todos.UpdateOccurrence(middleware.MustGetUserID(c), occurrenceID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occurrence)
}

func (h *TodoHandler) CompleteOccurrence(c *gin.Context) {
	occurrenceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	occurrence, err := h.todos.CompleteOccurrence(middleware.MustGetUserID(c), occurrenceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occurrence)
}

func (h *TodoHandler) SkipOccurrence(c *gin.Context) {
	occurrenceID, ok := pathID(c, "id")
	if !ok {
		return
	}
	occurrence, err := h.todos.SkipOccurrence(middleware.MustGetUserID(c), occurrenceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occurrence)
}

// pathID parses the named path parameter as a UUID, responding 404 on
// garbage so unguessable ids and malformed ids are indistinguishable.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperrors.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func boolQuery(c *gin.Context, name string) (bool, bool) {
	v := c.Query(name)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
