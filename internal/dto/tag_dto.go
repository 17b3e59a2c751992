package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name  string  `json:"name" binding:"required,max=100"`
	Color *string `json:"color,omitempty" binding:"omitempty,len=7"`
}

// UpdateTagRequest is the patch body for a tag.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Color *string `json:"color,omitempty" binding:"omitempty,len=7"`
}

// TagDTO represents a tag in responses.
type TagDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func TagToDTO(t *models.Tag) TagDTO {
	return TagDTO{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
	}
}

func TagsToDTO(tags []models.Tag) []TagDTO {
	result := make([]TagDTO, len(tags))
	for i := range tags {
		result[i] = TagToDTO(&tags[i])
	}
	return result
}
