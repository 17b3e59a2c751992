package service

import (
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/recurrence"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
	"gorm.io/gorm"
)

// TodoService owns todo CRUD and the series-edit semantics for recurring
// todos: this-only splits, all-future patches, stop-recurring, and the
// completion/skip transitions on occurrences.
type TodoService struct {
	todoRepo     *repository.TodoRepository
	occRepo      *repository.OccurrenceRepository
	reminderRepo *repository.ReminderRepository
	tagRepo      *repository.TagRepository
	prefsRepo    *repository.PreferencesRepository
	notifRepo    *repository.NotificationRepository
	maintainer   *OccurrenceMaintainer
	log          zerolog.Logger
}

func NewTodoService(
	todoRepo *repository.TodoRepository,
	occRepo *repository.OccurrenceRepository,
	reminderRepo *repository.ReminderRepository,
	tagRepo *repository.TagRepository,
	prefsRepo *repository.PreferencesRepository,
	notifRepo *repository.NotificationRepository,
	maintainer *OccurrenceMaintainer,
	log zerolog.Logger,
) *TodoService {
	return &TodoService{
		todoRepo:     todoRepo,
		occRepo:      occRepo,
		reminderRepo: reminderRepo,
		tagRepo:      tagRepo,
		prefsRepo:    prefsRepo,
		notifRepo:    notifRepo,
		maintainer:   maintainer,
		log:          log.With().Str("component", "todo_service").Logger(),
	}
}

func (s *TodoService) Create(userID uuid.UUID, req dto.CreateTodoRequest) (*dto.TodoDTO, error) {
	todo := &models.Todo{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}

	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, apperrors.ValidationErrorWithFields("Invalid priority",
				apperrors.FieldIssue{Field: "priority", Issue: "must be one of low, medium, high"})
		}
		todo.Priority = &priority
	}

	if req.Recurrence != nil {
		if req.DueAt == nil {
			return nil, apperrors.ValidationErrorWithFields("Recurring todos need a due date",
				apperrors.FieldIssue{Field: "due_at", Issue: "required when recurrence is set"})
		}
		rule, err := req.Recurrence.RRule()
		if err != nil {
			return nil, apperrors.ValidationErrorWithFields("Invalid recurrence",
				apperrors.FieldIssue{Field: "recurrence", Issue: err.Error()})
		}
		todo.IsRecurring = true
		todo.RecurrenceRule = &rule
		todo.RecurrenceEndDate = req.Recurrence.EndDate
		todo.RecurrenceCount = req.Recurrence.Count
	}

	if len(req.TagIDs) > 0 {
		tags, err := s.resolveTags(userID, req.TagIDs)
		if err != nil {
			return nil, err
		}
		todo.Tags = tags
	}

	if err := s.todoRepo.Create(todo); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to create todo", http.StatusInternalServerError)
	}

	if todo.IsRecurring {
		if _, err := s.maintainer.SeedWindow(todo); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to seed occurrences", http.StatusInternalServerError)
		}
	}

	s.maybeCreateDefaultReminder(todo)

	result := dto.TodoToDTO(todo)
	return &result, nil
}

// maybeCreateDefaultReminder auto-creates one offset reminder at creation
// time when the user has a default offset configured and the fire time is
// still ahead. Edits that add a due date later never get one retroactively.
func (s *TodoService) maybeCreateDefaultReminder(todo *models.Todo) {
	if todo.DueAt == nil {
		return
	}
	prefs, err := s.prefsRepo.GetOrCreate(todo.UserID)
	if err != nil || prefs.DefaultReminderOffset == nil {
		return
	}
	offset := *prefs.DefaultReminderOffset
	fireAt := todo.DueAt.Add(time.Duration(offset) * time.Minute)
	if !fireAt.After(time.Now()) {
		return
	}
	err = s.reminderRepo.Create(&models.Reminder{
		TodoID:        todo.ID,
		UserID:        todo.UserID,
		FireAt:        fireAt.UTC(),
		OffsetMinutes: &offset,
		Status:        models.ReminderPending,
	})
	if err != nil {
		s.log.Warn().Err(err).
			Str("todo_id", todo.ID.String()).
			Msg("failed to create default reminder")
	}
}

func (s *TodoService) GetByID(userID, todoID uuid.UUID) (*dto.TodoDTO, error) {
	todo, err := s.todoRepo.FindByIDAndUser(todoID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	result := dto.TodoToDTO(todo)
	return &result, nil
}

func (s *TodoService) List(userID uuid.UUID, params repository.TodoListParams) (*dto.TodoListResponse, error) {
	params.UserID = userID
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	todos, total, err := s.todoRepo.List(params)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list todos", http.StatusInternalServerError)
	}

	return &dto.TodoListResponse{
		Todos:      dto.TodosToDTO(todos),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(params.PageSize))),
	}, nil
}

// Update applies a patch under the requested edit scope. For non-recurring
// todos the scope is ignored; recurring todos default to all_future.
func (s *TodoService) Update(userID, todoID uuid.UUID, req dto.UpdateTodoRequest, scope dto.EditScope) (*dto.TodoDTO, error) {
	todo, err := s.todoRepo.FindByIDAndUser(todoID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	if todo.IsRecurring && scope == dto.EditScopeThisOnly {
		return s.updateThisOnly(todo, req)
	}
	return s.applyPatch(todo, req)
}

// applyPatch mutates the todo in place: the `none` scope for plain todos and
// `all_future` for series heads, whose future occurrences inherit the head's
// fields by lookup rather than by copy.
func (s *TodoService) applyPatch(todo *models.Todo, req dto.UpdateTodoRequest) (*dto.TodoDTO, error) {
	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description != nil {
		todo.Description = req.Description
	}
	if req.DueAt != nil {
		todo.DueAt = req.DueAt
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, apperrors.ValidationErrorWithFields("Invalid priority",
				apperrors.FieldIssue{Field: "priority", Issue: "must be one of low, medium, high"})
		}
		todo.Priority = &priority
	}
	if req.Completed != nil && *req.Completed != todo.Completed {
		if *req.Completed {
			todo.Complete()
		} else {
			todo.Completed = false
			todo.CompletedAt = nil
		}
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update todo", http.StatusInternalServerError)
	}

	if req.TagIDs != nil {
		tags, err := s.resolveTags(todo.UserID, *req.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.todoRepo.ReplaceTags(todo, tags); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update tags", http.StatusInternalServerError)
		}
		todo.Tags = tags
	}

	result := dto.TodoToDTO(todo)
	return &result, nil
}

// updateThisOnly splits the current occurrence off the series: a new
// non-recurring todo materializes with the merged head+patch fields, and the
// occurrence is skipped on the head so it stops surfacing in today/next
// queries. The head and its future occurrences are untouched.
func (s *TodoService) updateThisOnly(head *models.Todo, req dto.UpdateTodoRequest) (*dto.TodoDTO, error) {
	current, err := s.currentOccurrence(head.ID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to load occurrence", http.StatusInternalServerError)
	}

	var occurrenceDate *time.Time
	if current != nil {
		occurrenceDate = &current.OccurrenceDate
	}

	detached, appErr := materializeThisOnly(head, req, occurrenceDate)
	if appErr != nil {
		return nil, appErr
	}

	if req.TagIDs != nil {
		tags, err := s.resolveTags(head.UserID, *req.TagIDs)
		if err != nil {
			return nil, err
		}
		detached.Tags = tags
	} else {
		// Copy the head's tag set by reference.
		detached.Tags = head.Tags
	}

	if err := s.todoRepo.Create(detached); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to create todo", http.StatusInternalServerError)
	}

	if current != nil {
		if err := s.occRepo.Skip(current.ID); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to skip occurrence", http.StatusInternalServerError)
		}
		if _, err := s.maintainer.EnsureWindow(head); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to refill occurrences", http.StatusInternalServerError)
		}
	}

	result := dto.TodoToDTO(detached)
	return &result, nil
}

// materializeThisOnly builds the detached todo from the head, the patch and
// the current occurrence date. Pure: no I/O.
func materializeThisOnly(head *models.Todo, req dto.UpdateTodoRequest, occurrenceDate *time.Time) (*models.Todo, *apperrors.AppError) {
	detached := &models.Todo{
		UserID:      head.UserID,
		Title:       head.Title,
		Description: head.Description,
		Priority:    head.Priority,
		DueAt:       head.DueAt,
	}

	if req.Title != nil {
		detached.Title = *req.Title
	}
	if req.Description != nil {
		detached.Description = req.Description
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, apperrors.ValidationErrorWithFields("Invalid priority",
				apperrors.FieldIssue{Field: "priority", Issue: "must be one of low, medium, high"})
		}
		detached.Priority = &priority
	}
	if req.Completed != nil && *req.Completed {
		detached.Complete()
	}

	// Due date precedence: patch, then the occurrence's date carrying the
	// head's clock time, then the head's own due date.
	switch {
	case req.DueAt != nil:
		detached.DueAt = req.DueAt
	case occurrenceDate != nil:
		due := *occurrenceDate
		if head.DueAt != nil {
			h := head.DueAt.UTC()
			due = time.Date(occurrenceDate.Year(), occurrenceDate.Month(), occurrenceDate.Day(),
				h.Hour(), h.Minute(), h.Second(), 0, time.UTC)
		}
		detached.DueAt = &due
	}

	return detached, nil
}

// currentOccurrence resolves "the" occurrence a this-only edit targets:
// today's if materialized and pending, otherwise the next strictly-future
// pending one. Overdue pending occurrences are never picked up implicitly.
func (s *TodoService) currentOccurrence(todoID uuid.UUID) (*models.TodoOccurrence, error) {
	today := recurrence.DateOf(time.Now())

	occurrence, err := s.occRepo.OnDate(todoID, today)
	if err == nil && occurrence.IsPending() {
		return occurrence, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	return s.occRepo.NextPending(todoID, today.AddDate(0, 0, 1))
}

// StopRecurring ends the series. Pending future occurrences are deleted
// unless keepPending asks to preserve them. Calling it on a non-recurring
// todo is a no-op.
func (s *TodoService) StopRecurring(userID, todoID uuid.UUID, keepPending bool) (*dto.TodoDTO, error) {
	todo, err := s.todoRepo.FindByIDAndUser(todoID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	if todo.IsRecurring {
		today := recurrence.DateOf(time.Now())
		todo.IsRecurring = false
		todo.RecurrenceRule = nil
		todo.RecurrenceEndDate = &today
		if err := s.todoRepo.Update(todo); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to stop recurring", http.StatusInternalServerError)
		}
		if !keepPending {
			if _, err := s.occRepo.DeletePendingFuture(todoID, today); err != nil {
				return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete pending occurrences", http.StatusInternalServerError)
			}
		}
	}

	result := dto.TodoToDTO(todo)
	return &result, nil
}

// Delete removes the todo with its occurrences and reminders. Notifications
// survive with their todo reference nulled.
func (s *TodoService) Delete(userID, todoID uuid.UUID) error {
	todo, err := s.todoRepo.FindByIDAndUser(todoID, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}

	if err := s.notifRepo.DetachTodo(todo.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to detach notifications", http.StatusInternalServerError)
	}
	if err := s.reminderRepo.DeleteByTodo(todo.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete reminders", http.StatusInternalServerError)
	}
	if err := s.occRepo.DeleteByTodo(todo.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete occurrences", http.StatusInternalServerError)
	}
	if err := s.todoRepo.Delete(todo.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete todo", http.StatusInternalServerError)
	}
	return nil
}

func (s *TodoService) ListOccurrences(userID, todoID uuid.UUID, status *models.OccurrenceStatus) ([]dto.OccurrenceDTO, error) {
	if _, err := s.todoRepo.FindByIDAndUser(todoID, userID); err != nil {
		return nil, apperrors.ErrNotFound
	}
	occurrences, err := s.occRepo.ListByTodo(todoID, status)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list occurrences", http.StatusInternalServerError)
	}
	return dto.OccurrencesToDTO(occurrences), nil
}

func (s *TodoService) CurrentOccurrence(userID, todoID uuid.UUID) (*dto.OccurrenceDTO, error) {
	if _, err := s.todoRepo.FindByIDAndUser(todoID, userID); err != nil {
		return nil, apperrors.ErrNotFound
	}
	occurrence, err := s.currentOccurrence(todoID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.NotFoundError("No current occurrence")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to load occurrence", http.StatusInternalServerError)
	}
	result := dto.OccurrenceToDTO(occurrence)
	return &result, nil
}

func (s *TodoService) CompleteOccurrence(userID, occurrenceID uuid.UUID) (*dto.OccurrenceDTO, error) {
	return s.finishOccurrence(userID, occurrenceID, models.OccurrenceCompleted)
}

func (s *TodoService) SkipOccurrence(userID, occurrenceID uuid.UUID) (*dto.OccurrenceDTO, error) {
	return s.finishOccurrence(userID, occurrenceID, models.OccurrenceSkipped)
}

// UpdateOccurrence is the PATCH form of complete/skip.
func (s *TodoService) UpdateOccurrence(userID, occurrenceID uuid.UUID, req dto.UpdateOccurrenceRequest) (*dto.OccurrenceDTO, error) {
	switch models.OccurrenceStatus(req.Status) {
	case models.OccurrenceCompleted:
		return s.finishOccurrence(userID, occurrenceID, models.OccurrenceCompleted)
	case models.OccurrenceSkipped:
		return s.finishOccurrence(userID, occurrenceID, models.OccurrenceSkipped)
	default:
		return nil, apperrors.ValidationErrorWithFields("Invalid occurrence status",
			apperrors.FieldIssue{Field: "status", Issue: "must be completed or skipped"})
	}
}

// finishOccurrence applies a terminal transition and refills the series
// window when it dips below the floor.
func (s *TodoService) finishOccurrence(userID, occurrenceID uuid.UUID, status models.OccurrenceStatus) (*dto.OccurrenceDTO, error) {
	occurrence, err := s.occRepo.FindByIDAndUser(occurrenceID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if !occurrence.IsPending() {
		return nil, apperrors.ValidationError("Occurrence is already " + string(occurrence.Status))
	}

	switch status {
	case models.OccurrenceCompleted:
		err = s.occRepo.Complete(occurrence.ID)
	case models.OccurrenceSkipped:
		err = s.occRepo.Skip(occurrence.ID)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update occurrence", http.StatusInternalServerError)
	}

	if head, err := s.todoRepo.FindByID(occurrence.ParentTodoID); err != nil {
		s.log.Warn().Err(err).
			Str("todo_id", occurrence.ParentTodoID.String()).
			Msg("failed to load series head for window refill")
	} else if _, err := s.maintainer.EnsureWindow(head); err != nil {
		s.log.Warn().Err(err).
			Str("todo_id", head.ID.String()).
			Msg("failed to refill occurrence window")
	}

	occurrence, err = s.occRepo.FindByID(occurrence.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to reload occurrence", http.StatusInternalServerError)
	}
	result := dto.OccurrenceToDTO(occurrence)
	return &result, nil
}

func (s *TodoService) resolveTags(userID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	tags, err := s.tagRepo.FindAllByIDs(userID, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to resolve tags", http.StatusInternalServerError)
	}
	if len(tags) != len(ids) {
		return nil, apperrors.ValidationErrorWithFields("Unknown tag",
			apperrors.FieldIssue{Field: "tag_ids", Issue: "one or more tags do not exist"})
	}
	return tags, nil
}
