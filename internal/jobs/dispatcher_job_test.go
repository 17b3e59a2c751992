package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/push"
)

type fakeReminderQueue struct {
	due       []models.Reminder
	sent      []uuid.UUID
	cancelled []uuid.UUID
	sentAt    map[uuid.UUID]time.Time
}

func (f *fakeReminderQueue) FindDue(before time.Time, limit int) ([]models.Reminder, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeReminderQueue) MarkSent(id uuid.UUID, at time.Time) error {
	f.sent = append(f.sent, id)
	if f.sentAt == nil {
		f.sentAt = make(map[uuid.UUID]time.Time)
	}
	f.sentAt[id] = at
	return nil
}

func (f *fakeReminderQueue) Cancel(id uuid.UUID) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeTodoLookup struct {
	todos map[uuid.UUID]*models.Todo
}

func (f *fakeTodoLookup) FindByID(id uuid.UUID) (*models.Todo, error) {
	todo, ok := f.todos[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return todo, nil
}

type fakeNotificationWriter struct {
	created []*models.Notification
	err     error
}

func (f *fakeNotificationWriter) Create(notification *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, notification)
	return nil
}

type fakePushFanout struct {
	payloads []push.Payload
	users    []uuid.UUID
}

func (f *fakePushFanout) SendToUser(ctx context.Context, userID uuid.UUID, payload push.Payload) {
	f.users = append(f.users, userID)
	f.payloads = append(f.payloads, payload)
}

func dueReminder(todoID uuid.UUID, fireAt time.Time) models.Reminder {
	return models.Reminder{
		ID:     uuid.New(),
		TodoID: todoID,
		UserID: uuid.New(),
		FireAt: fireAt,
		Status: models.ReminderPending,
	}
}

func TestDispatcherFiresDueReminder(t *testing.T) {
	due := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	todo := &models.Todo{ID: uuid.New(), Title: "Pay rent", DueAt: &due}
	reminder := dueReminder(todo.ID, due.Add(-time.Hour))

	queue := &fakeReminderQueue{due: []models.Reminder{reminder}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}
	notifications := &fakeNotificationWriter{}
	pusher := &fakePushFanout{}

	job := NewDispatcherJob(queue, lookup, notifications, pusher, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	created := notifications.created[0]
	assert.Equal(t, models.KindReminder, created.Kind)
	assert.Equal(t, "Reminder: Pay rent", created.Title)
	require.NotNil(t, created.Body)
	assert.Equal(t, "Due: Mar 01, 2026", *created.Body)
	assert.Equal(t, reminder.UserID, created.UserID)
	require.NotNil(t, created.ReminderID)
	assert.Equal(t, reminder.ID, *created.ReminderID)

	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, "/todos/"+todo.ID.String(), pusher.payloads[0].URL)
	assert.Equal(t, "reminder-"+reminder.ID.String(), pusher.payloads[0].Tag)
	assert.Equal(t, reminder.UserID, pusher.users[0])

	require.Len(t, queue.sent, 1)
	assert.Equal(t, reminder.ID, queue.sent[0])
	assert.WithinDuration(t, time.Now().UTC(), queue.sentAt[reminder.ID], 5*time.Second)
}

func TestDispatcherNoDueDateBody(t *testing.T) {
	todo := &models.Todo{ID: uuid.New(), Title: "Someday"}
	reminder := dueReminder(todo.ID, time.Now().Add(-time.Minute))

	queue := &fakeReminderQueue{due: []models.Reminder{reminder}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}
	notifications := &fakeNotificationWriter{}

	job := NewDispatcherJob(queue, lookup, notifications, &fakePushFanout{}, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "Task reminder", *notifications.created[0].Body)
}

func TestDispatcherCancelsOrphanedReminder(t *testing.T) {
	reminder := dueReminder(uuid.New(), time.Now().Add(-time.Minute))

	queue := &fakeReminderQueue{due: []models.Reminder{reminder}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{}}
	notifications := &fakeNotificationWriter{}
	pusher := &fakePushFanout{}

	job := NewDispatcherJob(queue, lookup, notifications, pusher, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []uuid.UUID{reminder.ID}, queue.cancelled)
	assert.Empty(t, queue.sent)
	assert.Empty(t, notifications.created)
	assert.Empty(t, pusher.payloads)
}

func TestDispatcherNotificationFailureLeavesReminderUnsent(t *testing.T) {
	todo := &models.Todo{ID: uuid.New(), Title: "Water plants"}
	reminder := dueReminder(todo.ID, time.Now().Add(-time.Minute))

	queue := &fakeReminderQueue{due: []models.Reminder{reminder}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}
	notifications := &fakeNotificationWriter{err: errors.New("db down")}
	pusher := &fakePushFanout{}

	job := NewDispatcherJob(queue, lookup, notifications, pusher, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	// The reminder stays due and re-fires on the next tick.
	assert.Empty(t, queue.sent)
	assert.Empty(t, pusher.payloads)
}

func TestDispatcherOneFailureDoesNotHaltBatch(t *testing.T) {
	todo := &models.Todo{ID: uuid.New(), Title: "Second"}
	orphaned := dueReminder(uuid.New(), time.Now().Add(-2*time.Minute))
	healthy := dueReminder(todo.ID, time.Now().Add(-time.Minute))

	queue := &fakeReminderQueue{due: []models.Reminder{orphaned, healthy}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}
	notifications := &fakeNotificationWriter{}

	job := NewDispatcherJob(queue, lookup, notifications, &fakePushFanout{}, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.True(t, strings.HasPrefix(notifications.created[0].Title, "Reminder: "))
	assert.Equal(t, []uuid.UUID{healthy.ID}, queue.sent)
	assert.Equal(t, []uuid.UUID{orphaned.ID}, queue.cancelled)
}

func TestDispatcherFiresSnoozedReminderOnceDue(t *testing.T) {
	due := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	todo := &models.Todo{ID: uuid.New(), Title: "Pay rent", DueAt: &due}

	snoozedUntil := time.Now().UTC().Add(-time.Minute)
	reminder := dueReminder(todo.ID, snoozedUntil)
	reminder.Status = models.ReminderSnoozed
	reminder.SnoozedUntil = &snoozedUntil
	reminder.SnoozeCount = 1

	queue := &fakeReminderQueue{due: []models.Reminder{reminder}}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}
	notifications := &fakeNotificationWriter{}
	pusher := &fakePushFanout{}

	job := NewDispatcherJob(queue, lookup, notifications, pusher, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, "Reminder: Pay rent", notifications.created[0].Title)
	require.Len(t, pusher.payloads, 1)
	assert.Equal(t, []uuid.UUID{reminder.ID}, queue.sent)
	assert.Empty(t, queue.cancelled)
}

func TestDispatcherRespectsBatchLimit(t *testing.T) {
	todo := &models.Todo{ID: uuid.New(), Title: "Bulk"}
	lookup := &fakeTodoLookup{todos: map[uuid.UUID]*models.Todo{todo.ID: todo}}

	queue := &fakeReminderQueue{}
	for i := 0; i < DispatchBatchSize+50; i++ {
		queue.due = append(queue.due, dueReminder(todo.ID, time.Now().Add(-time.Minute)))
	}
	notifications := &fakeNotificationWriter{}

	job := NewDispatcherJob(queue, lookup, notifications, &fakePushFanout{}, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, queue.sent, DispatchBatchSize)
}
