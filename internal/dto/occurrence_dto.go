package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// UpdateOccurrenceRequest is the patch body for an occurrence. Only the
// pending → completed | skipped transitions are allowed.
type UpdateOccurrenceRequest struct {
	Status string `json:"status" binding:"required"`
}

// OccurrenceDTO represents a materialized occurrence in responses.
type OccurrenceDTO struct {
	ID             uuid.UUID  `json:"id"`
	ParentTodoID   uuid.UUID  `json:"parent_todo_id"`
	OccurrenceDate string     `json:"occurrence_date"` // YYYY-MM-DD
	Status         string     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func OccurrenceToDTO(o *models.TodoOccurrence) OccurrenceDTO {
	return OccurrenceDTO{
		ID:             o.ID,
		ParentTodoID:   o.ParentTodoID,
		OccurrenceDate: o.OccurrenceDate.Format("2006-01-02"),
		Status:         string(o.Status),
		CompletedAt:    o.CompletedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func OccurrencesToDTO(occurrences []models.TodoOccurrence) []OccurrenceDTO {
	result := make([]OccurrenceDTO, len(occurrences))
	for i := range occurrences {
		result[i] = OccurrenceToDTO(&occurrences[i])
	}
	return result
}
