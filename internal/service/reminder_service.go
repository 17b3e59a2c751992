package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

// ReminderService validates and manages per-todo reminders. Fire times are
// resolved to absolute UTC instants at creation; offsets are not re-evaluated
// when the due date later changes.
type ReminderService struct {
	reminderRepo *repository.ReminderRepository
	todoRepo     *repository.TodoRepository
	occRepo      *repository.OccurrenceRepository
}

func NewReminderService(
	reminderRepo *repository.ReminderRepository,
	todoRepo *repository.TodoRepository,
	occRepo *repository.OccurrenceRepository,
) *ReminderService {
	return &ReminderService{
		reminderRepo: reminderRepo,
		todoRepo:     todoRepo,
		occRepo:      occRepo,
	}
}

func (s *ReminderService) Create(userID, todoID uuid.UUID, req dto.CreateReminderRequest) (*dto.ReminderDTO, error) {
	todo, err := s.todoRepo.FindByIDAndUser(todoID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	active, err := s.reminderRepo.CountActive(todo.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to count reminders", http.StatusInternalServerError)
	}

	reminder, appErr := buildReminder(todo, req, active, time.Now())
	if appErr != nil {
		return nil, appErr
	}

	if req.OccurrenceID != nil {
		occurrence, err := s.occRepo.FindByIDAndUser(*req.OccurrenceID, userID)
		if err != nil || occurrence.ParentTodoID != todo.ID {
			return nil, apperrors.NotFoundError("Occurrence not found")
		}
		reminder.OccurrenceID = req.OccurrenceID
	}

	if err := s.reminderRepo.Create(reminder); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to create reminder", http.StatusInternalServerError)
	}

	result := dto.ReminderToDTO(reminder)
	return &result, nil
}

// buildReminder validates a creation request against its todo and resolves it
// into a pending reminder row with an absolute UTC fire time. activeCount is
// the todo's current pending-plus-snoozed total.
func buildReminder(todo *models.Todo, req dto.CreateReminderRequest, activeCount int64, now time.Time) (*models.Reminder, *apperrors.AppError) {
	if (req.FireAt == nil) == (req.OffsetMinutes == nil) {
		return nil, apperrors.ValidationErrorWithFields("Exactly one of fire_at and offset_minutes must be set",
			apperrors.FieldIssue{Field: "fire_at", Issue: "mutually exclusive with offset_minutes"})
	}

	reminder := &models.Reminder{
		TodoID: todo.ID,
		UserID: todo.UserID,
		Status: models.ReminderPending,
	}

	switch {
	case req.FireAt != nil:
		reminder.FireAt = req.FireAt.UTC()
	case req.OffsetMinutes != nil:
		if *req.OffsetMinutes >= 0 {
			return nil, apperrors.ValidationErrorWithFields("Offset must be negative",
				apperrors.FieldIssue{Field: "offset_minutes", Issue: "must be before the due date"})
		}
		if todo.DueAt == nil {
			return nil, apperrors.ValidationErrorWithFields("Offset reminders need a due date",
				apperrors.FieldIssue{Field: "offset_minutes", Issue: "todo has no due date"})
		}
		reminder.OffsetMinutes = req.OffsetMinutes
		reminder.FireAt = todo.DueAt.Add(time.Duration(*req.OffsetMinutes) * time.Minute).UTC()
	}

	if !reminder.FireAt.After(now) {
		return nil, apperrors.ValidationErrorWithFields("Fire time is in the past",
			apperrors.FieldIssue{Field: "fire_at", Issue: "must be in the future"})
	}

	if activeCount >= models.MaxActiveRemindersPerTodo {
		return nil, apperrors.ErrReminderLimit
	}

	return reminder, nil
}

func (s *ReminderService) ListByTodo(userID, todoID uuid.UUID) ([]dto.ReminderDTO, error) {
	if _, err := s.todoRepo.FindByIDAndUser(todoID, userID); err != nil {
		return nil, apperrors.ErrNotFound
	}
	reminders, err := s.reminderRepo.ListByTodo(todoID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list reminders", http.StatusInternalServerError)
	}
	return dto.RemindersToDTO(reminders), nil
}

// Snooze pushes an active reminder's fire time forward by the given number
// of minutes from now.
func (s *ReminderService) Snooze(userID, reminderID uuid.UUID, minutes int) (*dto.ReminderDTO, error) {
	reminder, err := s.reminderRepo.FindByIDAndUser(reminderID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if !reminder.IsActive() {
		return nil, apperrors.ValidationError("Only pending or snoozed reminders can be snoozed")
	}

	until := time.Now().UTC().Add(time.Duration(minutes) * time.Minute)
	if err := s.reminderRepo.Snooze(reminder.ID, until); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to snooze reminder", http.StatusInternalServerError)
	}

	reminder, err = s.reminderRepo.FindByID(reminder.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to reload reminder", http.StatusInternalServerError)
	}
	result := dto.ReminderToDTO(reminder)
	return &result, nil
}

func (s *ReminderService) Delete(userID, reminderID uuid.UUID) error {
	reminder, err := s.reminderRepo.FindByIDAndUser(reminderID, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}
	if err := s.reminderRepo.Delete(reminder.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete reminder", http.StatusInternalServerError)
	}
	return nil
}
