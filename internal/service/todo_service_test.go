package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func recurringHead() *models.Todo {
	priority := models.PriorityMedium
	return &models.Todo{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Doctor",
		Description:    strPtr("annual checkup"),
		Priority:       &priority,
		DueAt:          timePtr(time.Date(2026, time.February, 2, 14, 30, 0, 0, time.UTC)),
		IsRecurring:    true,
		RecurrenceRule: strPtr("FREQ=DAILY"),
	}
}

func TestMaterializeThisOnlyMergesPatchOverHead(t *testing.T) {
	head := recurringHead()
	newTitle := "Doctor — rescheduled"
	occurrenceDate := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)

	detached, appErr := materializeThisOnly(head, dto.UpdateTodoRequest{Title: &newTitle}, &occurrenceDate)
	require.Nil(t, appErr)

	assert.Equal(t, newTitle, detached.Title)
	assert.Equal(t, head.UserID, detached.UserID)
	assert.Equal(t, head.Description, detached.Description)
	assert.Equal(t, head.Priority, detached.Priority)
	assert.False(t, detached.IsRecurring)
	assert.Nil(t, detached.RecurrenceRule)
	assert.Equal(t, uuid.Nil, detached.ID, "the detached todo is a new row")
}

func TestMaterializeThisOnlyDueDatePrecedence(t *testing.T) {
	head := recurringHead()
	occurrenceDate := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)

	// Patch wins outright.
	patched := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	detached, appErr := materializeThisOnly(head, dto.UpdateTodoRequest{DueAt: &patched}, &occurrenceDate)
	require.Nil(t, appErr)
	assert.Equal(t, patched, *detached.DueAt)

	// Otherwise the occurrence date carries the head's clock time.
	detached, appErr = materializeThisOnly(head, dto.UpdateTodoRequest{}, &occurrenceDate)
	require.Nil(t, appErr)
	assert.Equal(t, time.Date(2026, time.February, 5, 14, 30, 0, 0, time.UTC), *detached.DueAt)

	// With no materialized occurrence, fall back to the head's due date.
	detached, appErr = materializeThisOnly(head, dto.UpdateTodoRequest{}, nil)
	require.Nil(t, appErr)
	assert.Equal(t, *head.DueAt, *detached.DueAt)
}

func TestMaterializeThisOnlyRejectsBadPriority(t *testing.T) {
	head := recurringHead()
	bad := "urgent"

	_, appErr := materializeThisOnly(head, dto.UpdateTodoRequest{Priority: &bad}, nil)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.StatusCode)
}

func TestMaterializeThisOnlyCompletedPatch(t *testing.T) {
	head := recurringHead()
	done := true

	detached, appErr := materializeThisOnly(head, dto.UpdateTodoRequest{Completed: &done}, nil)
	require.Nil(t, appErr)
	assert.True(t, detached.Completed)
	assert.NotNil(t, detached.CompletedAt)
}
