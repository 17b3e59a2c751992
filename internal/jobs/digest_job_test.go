package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/models"
)

type fakeDigestCandidates struct {
	prefs []models.UserPreferences
}

func (f *fakeDigestCandidates) DigestCandidates() ([]models.UserPreferences, error) {
	return f.prefs, nil
}

type fakeDigestLedger struct {
	exists bool
	asked  []time.Time
}

func (f *fakeDigestLedger) HasDigestSince(userID uuid.UUID, since time.Time) (bool, error) {
	f.asked = append(f.asked, since)
	return f.exists, nil
}

type fakeDueTodos struct {
	todos []models.Todo
}

func (f *fakeDueTodos) DueBetween(userID uuid.UUID, from, to time.Time) ([]models.Todo, error) {
	return f.todos, nil
}

type fakePendingOccurrences struct {
	occurrences []models.TodoOccurrence
}

func (f *fakePendingOccurrences) PendingOnDate(userID uuid.UUID, date time.Time) ([]models.TodoOccurrence, error) {
	return f.occurrences, nil
}

func digestPrefs(timezone, digestTime string) models.UserPreferences {
	return models.UserPreferences{
		UserID:             uuid.New(),
		Timezone:           timezone,
		DailyDigestEnabled: true,
		DailyDigestTime:    &digestTime,
	}
}

func newDigestJob(
	candidates *fakeDigestCandidates,
	ledger *fakeDigestLedger,
	todos *fakeDueTodos,
	occurrences *fakePendingOccurrences,
	notifications *fakeNotificationWriter,
	now time.Time,
) *DigestJob {
	job := NewDigestJob(candidates, ledger, todos, occurrences, notifications, zerolog.Nop())
	job.now = func() time.Time { return now }
	return job
}

func TestDigestQuietDayKarachi(t *testing.T) {
	prefs := digestPrefs("Asia/Karachi", "08:00")
	// 03:30 UTC is 08:30 in Karachi (UTC+5).
	now := time.Date(2026, time.February, 2, 3, 30, 0, 0, time.UTC)

	notifications := &fakeNotificationWriter{}
	job := newDigestJob(
		&fakeDigestCandidates{prefs: []models.UserPreferences{prefs}},
		&fakeDigestLedger{},
		&fakeDueTodos{},
		&fakePendingOccurrences{},
		notifications,
		now,
	)

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	created := notifications.created[0]
	assert.Equal(t, models.KindDailyDigest, created.Kind)
	assert.Equal(t, "Daily Digest: No tasks due today", created.Title)
	require.NotNil(t, created.Body)
	assert.Equal(t, "You have no tasks due today. Enjoy your day!", *created.Body)
	assert.Equal(t, prefs.UserID, created.UserID)
}

func TestDigestSkipsWrongLocalHour(t *testing.T) {
	prefs := digestPrefs("Asia/Karachi", "08:00")
	// 06:30 UTC is 11:30 in Karachi.
	now := time.Date(2026, time.February, 2, 6, 30, 0, 0, time.UTC)

	notifications := &fakeNotificationWriter{}
	job := newDigestJob(
		&fakeDigestCandidates{prefs: []models.UserPreferences{prefs}},
		&fakeDigestLedger{},
		&fakeDueTodos{},
		&fakePendingOccurrences{},
		notifications,
		now,
	)

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, notifications.created)
}

func TestDigestAtMostOncePerDay(t *testing.T) {
	prefs := digestPrefs("UTC", "09:00")
	now := time.Date(2026, time.February, 2, 9, 5, 0, 0, time.UTC)

	ledger := &fakeDigestLedger{exists: true}
	notifications := &fakeNotificationWriter{}
	job := newDigestJob(
		&fakeDigestCandidates{prefs: []models.UserPreferences{prefs}},
		ledger,
		&fakeDueTodos{},
		&fakePendingOccurrences{},
		notifications,
		now,
	)

	require.NoError(t, job.Run(context.Background()))

	assert.Empty(t, notifications.created)
	// The at-most-once check is anchored at the start of the local day.
	require.Len(t, ledger.asked, 1)
	assert.Equal(t, time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC), ledger.asked[0])
}

func TestDigestInvalidTimezoneSkipped(t *testing.T) {
	broken := digestPrefs("Neverland/Nowhere", "08:00")
	healthy := digestPrefs("UTC", "08:00")
	now := time.Date(2026, time.February, 2, 8, 0, 0, 0, time.UTC)

	notifications := &fakeNotificationWriter{}
	job := newDigestJob(
		&fakeDigestCandidates{prefs: []models.UserPreferences{broken, healthy}},
		&fakeDigestLedger{},
		&fakeDueTodos{},
		&fakePendingOccurrences{},
		notifications,
		now,
	)

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, notifications.created, 1)
	assert.Equal(t, healthy.UserID, notifications.created[0].UserID)
}

func TestComposeDigestBulletsAndTruncation(t *testing.T) {
	high := models.PriorityHigh
	low := models.PriorityLow

	var todos []models.Todo
	for i := 0; i < 7; i++ {
		todos = append(todos, models.Todo{Title: fmt.Sprintf("Task %d", i+1), Priority: &high})
	}
	todos[6].Priority = &low

	recurringHead := &models.Todo{Title: "Standup"}
	occurrences := []models.TodoOccurrence{{Todo: recurringHead}}

	title, body := composeDigest(todos, occurrences)

	assert.Equal(t, "Daily Digest: 8 tasks due today", title)
	assert.Contains(t, body, "• Task 1 🔴")
	assert.Contains(t, body, "• Task 5 🔴")
	assert.NotContains(t, body, "Task 6", "only the first five todos are listed")
	assert.Contains(t, body, "• Standup (recurring)")
	assert.Contains(t, body, "...and 2 more")
}

func TestComposeDigestSingular(t *testing.T) {
	title, body := composeDigest([]models.Todo{{Title: "Only one"}}, nil)

	assert.Equal(t, "Daily Digest: 1 task due today", title)
	assert.Equal(t, "• Only one", body)
}
