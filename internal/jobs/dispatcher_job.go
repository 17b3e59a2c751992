package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/push"
)

// DispatchBatchSize caps how many due reminders one tick processes.
const DispatchBatchSize = 200

// ReminderQueue is the slice of the reminder repository the dispatcher needs.
type ReminderQueue interface {
	FindDue(before time.Time, limit int) ([]models.Reminder, error)
	MarkSent(id uuid.UUID, at time.Time) error
	Cancel(id uuid.UUID) error
}

// TodoLookup resolves a reminder's todo.
type TodoLookup interface {
	FindByID(id uuid.UUID) (*models.Todo, error)
}

// NotificationWriter persists a notification and fans it out to live streams.
type NotificationWriter interface {
	Create(notification *models.Notification) error
}

// PushFanout delivers a payload to all of a user's browsers, best-effort.
type PushFanout interface {
	SendToUser(ctx context.Context, userID uuid.UUID, payload push.Payload)
}

// DispatcherJob fires due reminders: for each one it writes the durable
// notification row, attempts push delivery, then marks the reminder sent.
// The notification row is written before the reminder transitions, so a
// crash between the two re-fires rather than losing the reminder.
type DispatcherJob struct {
	reminders     ReminderQueue
	todos         TodoLookup
	notifications NotificationWriter
	pusher        PushFanout
	log           zerolog.Logger
}

func NewDispatcherJob(
	reminders ReminderQueue,
	todos TodoLookup,
	notifications NotificationWriter,
	pusher PushFanout,
	log zerolog.Logger,
) *DispatcherJob {
	return &DispatcherJob{
		reminders:     reminders,
		todos:         todos,
		notifications: notifications,
		pusher:        pusher,
		log:           log.With().Str("job", "reminder_dispatcher").Logger(),
	}
}

// Run processes one batch of due reminders. Per-reminder failures are logged
// and the batch continues.
func (j *DispatcherJob) Run(ctx context.Context) error {
	now := time.Now().UTC()

	due, err := j.reminders.FindDue(now, DispatchBatchSize)
	if err != nil {
		return fmt.Errorf("find due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	fired := 0
	for i := range due {
		if err := j.fire(ctx, &due[i], now); err != nil {
			j.log.Error().Err(err).
				Str("reminder_id", due[i].ID.String()).
				Msg("failed to fire reminder")
			continue
		}
		fired++
	}

	j.log.Info().
		Int("due", len(due)).
		Int("fired", fired).
		Msg("dispatched reminders")
	return nil
}

func (j *DispatcherJob) fire(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	todo, err := j.todos.FindByID(reminder.TodoID)
	if err != nil {
		// Orphaned reminder, the todo is gone. Cancel instead of retrying
		// forever.
		if cancelErr := j.reminders.Cancel(reminder.ID); cancelErr != nil {
			return fmt.Errorf("cancel orphaned reminder: %w", cancelErr)
		}
		j.log.Warn().
			Str("reminder_id", reminder.ID.String()).
			Str("todo_id", reminder.TodoID.String()).
			Msg("cancelled reminder for missing todo")
		return nil
	}

	title := "Reminder: " + todo.Title
	body := "Task reminder"
	if todo.DueAt != nil {
		body = "Due: " + todo.DueAt.UTC().Format("Jan 02, 2006")
	}

	reminderID := reminder.ID
	todoID := todo.ID
	notification := &models.Notification{
		UserID:     reminder.UserID,
		Kind:       models.KindReminder,
		Title:      title,
		Body:       &body,
		TodoID:     &todoID,
		ReminderID: &reminderID,
	}
	if err := j.notifications.Create(notification); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}

	j.pusher.SendToUser(ctx, reminder.UserID, push.Payload{
		Title: title,
		Body:  body,
		URL:   "/todos/" + todo.ID.String(),
		Tag:   "reminder-" + reminder.ID.String(),
	})

	if err := j.reminders.MarkSent(reminder.ID, now); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}
