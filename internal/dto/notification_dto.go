package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// UpdateNotificationRequest is the patch body for a notification.
type UpdateNotificationRequest struct {
	Read *bool `json:"read" binding:"required"`
}

// MarkReadRequest is the request body for marking a set of notifications read.
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// NotificationDTO represents a notification in responses.
type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Body       *string    `json:"body,omitempty"`
	TodoID     *uuid.UUID `json:"todo_id,omitempty"`
	ReminderID *uuid.UUID `json:"reminder_id,omitempty"`
	Read       bool       `json:"read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NotificationListResponse is the response for listing notifications.
type NotificationListResponse struct {
	Notifications []NotificationDTO `json:"notifications"`
	Total         int64             `json:"total"`
	UnreadCount   int64             `json:"unread_count"`
	Limit         int               `json:"limit"`
	Offset        int               `json:"offset"`
}

func NotificationToDTO(n *models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:         n.ID,
		Kind:       string(n.Kind),
		Title:      n.Title,
		Body:       n.Body,
		TodoID:     n.TodoID,
		ReminderID: n.ReminderID,
		Read:       n.Read,
		ReadAt:     n.ReadAt,
		CreatedAt:  n.CreatedAt,
	}
}

func NotificationsToDTO(notifications []models.Notification) []NotificationDTO {
	result := make([]NotificationDTO, len(notifications))
	for i := range notifications {
		result[i] = NotificationToDTO(&notifications[i])
	}
	return result
}
