package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// CreateReminderRequest is the request body for creating a reminder. Exactly
// one of FireAt and OffsetMinutes must be set; an offset needs the todo to
// carry a due date.
type CreateReminderRequest struct {
	FireAt        *time.Time `json:"fire_at,omitempty"`
	OffsetMinutes *int       `json:"offset_minutes,omitempty"`
	OccurrenceID  *uuid.UUID `json:"occurrence_id,omitempty"`
}

// SnoozeReminderRequest is the request body for snoozing a reminder.
type SnoozeReminderRequest struct {
	Minutes int `json:"minutes" binding:"required,min=1,max=10080"` // max one week
}

// ReminderDTO represents a reminder in responses.
type ReminderDTO struct {
	ID            uuid.UUID  `json:"id"`
	TodoID        uuid.UUID  `json:"todo_id"`
	OccurrenceID  *uuid.UUID `json:"occurrence_id,omitempty"`
	FireAt        time.Time  `json:"fire_at"`
	OffsetMinutes *int       `json:"offset_minutes,omitempty"`
	Status        string     `json:"status"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	SnoozedUntil  *time.Time `json:"snoozed_until,omitempty"`
	SnoozeCount   int        `json:"snooze_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ReminderToDTO(r *models.Reminder) ReminderDTO {
	return ReminderDTO{
		ID:            r.ID,
		TodoID:        r.TodoID,
		OccurrenceID:  r.OccurrenceID,
		FireAt:        r.FireAt,
		OffsetMinutes: r.OffsetMinutes,
		Status:        string(r.Status),
		SentAt:        r.SentAt,
		SnoozedUntil:  r.SnoozedUntil,
		SnoozeCount:   r.SnoozeCount,
		CreatedAt:     r.CreatedAt,
	}
}

func RemindersToDTO(reminders []models.Reminder) []ReminderDTO {
	result := make([]ReminderDTO, len(reminders))
	for i := range reminders {
		result[i] = ReminderToDTO(&reminders[i])
	}
	return result
}
