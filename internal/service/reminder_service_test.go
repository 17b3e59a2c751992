package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

func intPtr(n int) *int { return &n }

func reminderTodo(due *time.Time) *models.Todo {
	return &models.Todo{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Title:  "Pay rent",
		DueAt:  due,
	}
}

func TestBuildReminderRequiresExactlyOneTrigger(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)
	todo := reminderTodo(&due)

	tests := []struct {
		name string
		req  dto.CreateReminderRequest
	}{
		{"neither set", dto.CreateReminderRequest{}},
		{"both set", dto.CreateReminderRequest{FireAt: timePtr(now.Add(time.Hour)), OffsetMinutes: intPtr(-60)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := buildReminder(todo, tt.req, 0, now)
			require.NotNil(t, appErr)
			assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
		})
	}
}

func TestBuildReminderOffsetRules(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

	// A valid negative offset anchors at the due instant.
	todo := reminderTodo(&due)
	reminder, appErr := buildReminder(todo, dto.CreateReminderRequest{OffsetMinutes: intPtr(-90)}, 0, now)
	require.Nil(t, appErr)
	assert.Equal(t, due.Add(-90*time.Minute), reminder.FireAt)
	assert.Equal(t, models.ReminderPending, reminder.Status)
	require.NotNil(t, reminder.OffsetMinutes)
	assert.Equal(t, -90, *reminder.OffsetMinutes)

	// Zero and positive offsets are rejected.
	_, appErr = buildReminder(todo, dto.CreateReminderRequest{OffsetMinutes: intPtr(0)}, 0, now)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	// An offset without a due date has nothing to anchor to.
	_, appErr = buildReminder(reminderTodo(nil), dto.CreateReminderRequest{OffsetMinutes: intPtr(-60)}, 0, now)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestBuildReminderRejectsPastFireTime(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	todo := reminderTodo(nil)

	_, appErr := buildReminder(todo, dto.CreateReminderRequest{FireAt: timePtr(now.Add(-time.Minute))}, 0, now)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)

	// The fire instant itself is already past.
	_, appErr = buildReminder(todo, dto.CreateReminderRequest{FireAt: timePtr(now)}, 0, now)
	require.NotNil(t, appErr)
}

func TestBuildReminderEnforcesActiveCap(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	todo := reminderTodo(nil)
	req := dto.CreateReminderRequest{FireAt: timePtr(now.Add(time.Hour))}

	reminder, appErr := buildReminder(todo, req, models.MaxActiveRemindersPerTodo-1, now)
	require.Nil(t, appErr)
	assert.Equal(t, todo.ID, reminder.TodoID)

	_, appErr = buildReminder(todo, req, models.MaxActiveRemindersPerTodo, now)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrReminderLimit, appErr)
	assert.Equal(t, apperrors.CodeReminderLimit, appErr.Code)
}
