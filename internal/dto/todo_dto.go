package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/recurrence"
)

// EditScope selects how an update to a recurring todo applies.
type EditScope string

const (
	// EditScopeAllFuture patches the series head; future occurrences inherit
	// by lookup. Default for recurring todos.
	EditScopeAllFuture EditScope = "all_future"
	// EditScopeThisOnly splits the current occurrence off into a new
	// non-recurring todo and skips it on the head.
	EditScopeThisOnly EditScope = "this_only"
)

// CreateTodoRequest is the request body for creating a todo. A recurrence
// config makes it a series head and requires a due date.
type CreateTodoRequest struct {
	Title       string             `json:"title" binding:"required,max=500"`
	Description *string            `json:"description,omitempty"`
	Priority    *string            `json:"priority,omitempty"`
	DueAt       *time.Time         `json:"due_at,omitempty"`
	TagIDs      []uuid.UUID        `json:"tag_ids,omitempty"`
	Recurrence  *recurrence.Config `json:"recurrence,omitempty"`
}

// UpdateTodoRequest is the patch body for updating a todo. Nil fields are
// left untouched; TagIDs nil means "keep", empty means "clear".
type UpdateTodoRequest struct {
	Title       *string      `json:"title,omitempty" binding:"omitempty,max=500"`
	Description *string      `json:"description,omitempty"`
	Completed   *bool        `json:"completed,omitempty"`
	Priority    *string      `json:"priority,omitempty"`
	DueAt       *time.Time   `json:"due_at,omitempty"`
	TagIDs      *[]uuid.UUID `json:"tag_ids,omitempty"`
}

// TodoDTO represents a todo in responses.
type TodoDTO struct {
	ID                   uuid.UUID  `json:"id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	Completed            bool       `json:"completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	Priority             *string    `json:"priority,omitempty"`
	DueAt                *time.Time `json:"due_at,omitempty"`
	IsRecurring          bool       `json:"is_recurring"`
	RecurrenceRule       *string    `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate    *time.Time `json:"recurrence_end_date,omitempty"`
	RecurrenceCount      *int       `json:"recurrence_count,omitempty"`
	OccurrencesGenerated int        `json:"occurrences_generated"`
	Tags                 []TagDTO   `json:"tags,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TodoListResponse is the response for listing todos.
type TodoListResponse struct {
	Todos      []TodoDTO `json:"todos"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

func TodoToDTO(t *models.Todo) TodoDTO {
	dto := TodoDTO{
		ID:                   t.ID,
		Title:                t.Title,
		Description:          t.Description,
		Completed:            t.Completed,
		CompletedAt:          t.CompletedAt,
		DueAt:                t.DueAt,
		IsRecurring:          t.IsRecurring,
		RecurrenceRule:       t.RecurrenceRule,
		RecurrenceEndDate:    t.RecurrenceEndDate,
		RecurrenceCount:      t.RecurrenceCount,
		OccurrencesGenerated: t.OccurrencesGenerated,
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
	if t.Priority != nil {
		p := string(*t.Priority)
		dto.Priority = &p
	}
	if len(t.Tags) > 0 {
		dto.Tags = TagsToDTO(t.Tags)
	}
	return dto
}

func TodosToDTO(todos []models.Todo) []TodoDTO {
	result := make([]TodoDTO, len(todos))
	for i := range todos {
		result[i] = TodoToDTO(&todos[i])
	}
	return result
}
