package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/recurrence"
)

type fakeOccurrenceStore struct {
	dates    []time.Time
	inserted []models.TodoOccurrence
	pending  int64
	latest   *time.Time
}

func (f *fakeOccurrenceStore) ExistingDates(todoID uuid.UUID) ([]time.Time, error) {
	return f.dates, nil
}

func (f *fakeOccurrenceStore) InsertPending(occurrences []models.TodoOccurrence) (int, error) {
	f.inserted = append(f.inserted, occurrences...)
	return len(occurrences), nil
}

func (f *fakeOccurrenceStore) CountPendingFuture(todoID uuid.UUID, from time.Time) (int64, error) {
	return f.pending, nil
}

func (f *fakeOccurrenceStore) LatestDate(todoID uuid.UUID) (time.Time, bool, error) {
	if f.latest == nil {
		return time.Time{}, false, nil
	}
	return *f.latest, true, nil
}

type fakeSeriesCounter struct {
	bumps map[uuid.UUID]int
}

func (f *fakeSeriesCounter) BumpOccurrencesGenerated(id uuid.UUID, n int) error {
	if f.bumps == nil {
		f.bumps = make(map[uuid.UUID]int)
	}
	f.bumps[id] += n
	return nil
}

func strPtr(s string) *string { return &s }

func seriesHead(rule string, due time.Time) *models.Todo {
	return &models.Todo{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Standup",
		DueAt:          &due,
		IsRecurring:    true,
		RecurrenceRule: strPtr(rule),
	}
}

func TestSeedWindowWeekdayPattern(t *testing.T) {
	store := &fakeOccurrenceStore{}
	counter := &fakeSeriesCounter{}
	maintainer := NewOccurrenceMaintainer(store, counter, zerolog.Nop())

	// Monday 2026-01-05, MO/WE/FR.
	head := seriesHead("FREQ=WEEKLY;BYDAY=MO,WE,FR", time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC))

	inserted, err := maintainer.SeedWindow(head)
	require.NoError(t, err)

	january := []time.Time{
		time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 30, 0, 0, 0, 0, time.UTC),
	}

	require.GreaterOrEqual(t, inserted, len(january))
	for i, want := range january {
		assert.Equal(t, want, store.inserted[i].OccurrenceDate)
		assert.Equal(t, models.OccurrencePending, store.inserted[i].Status)
		assert.Equal(t, head.ID, store.inserted[i].ParentTodoID)
		assert.Equal(t, head.UserID, store.inserted[i].UserID)
	}
	assert.Equal(t, inserted, counter.bumps[head.ID])
}

func TestTopUpSkipsExistingDates(t *testing.T) {
	anchor := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	store := &fakeOccurrenceStore{
		dates: []time.Time{anchor, anchor.AddDate(0, 0, 1)},
	}
	counter := &fakeSeriesCounter{}
	maintainer := NewOccurrenceMaintainer(store, counter, zerolog.Nop())

	head := seriesHead("FREQ=DAILY", anchor)

	inserted, err := maintainer.TopUp(head, anchor, anchor.AddDate(0, 0, 4), 30)
	require.NoError(t, err)

	assert.Equal(t, 3, inserted)
	for _, occurrence := range store.inserted {
		assert.True(t, occurrence.OccurrenceDate.After(anchor.AddDate(0, 0, 1)),
			"already materialized dates must not be re-inserted")
	}
}

func TestTopUpNonRecurringIsNoop(t *testing.T) {
	store := &fakeOccurrenceStore{}
	maintainer := NewOccurrenceMaintainer(store, &fakeSeriesCounter{}, zerolog.Nop())

	due := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	todo := &models.Todo{ID: uuid.New(), DueAt: &due}

	inserted, err := maintainer.TopUp(todo, due, due.AddDate(0, 0, 30), 30)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, store.inserted)
}

func TestEnsureWindowRefillsBelowFloor(t *testing.T) {
	latest := recurrence.DateOf(time.Now()).AddDate(0, 0, 3)
	store := &fakeOccurrenceStore{
		pending: PendingFloor - 1,
		latest:  &latest,
	}
	counter := &fakeSeriesCounter{}
	maintainer := NewOccurrenceMaintainer(store, counter, zerolog.Nop())

	due := recurrence.DateOf(time.Now())
	head := seriesHead("FREQ=DAILY", due)

	inserted, err := maintainer.EnsureWindow(head)
	require.NoError(t, err)

	require.NotZero(t, inserted)
	// The refill extends the window: nothing on or before the latest known
	// date, and the first new date immediately follows it.
	require.NotEmpty(t, store.inserted)
	assert.Equal(t, latest.AddDate(0, 0, 1), store.inserted[0].OccurrenceDate)
	for _, occurrence := range store.inserted {
		assert.True(t, occurrence.OccurrenceDate.After(latest))
	}
	assert.LessOrEqual(t, len(store.inserted), 2*PendingFloor)
}

func TestEnsureWindowAtFloorIsNoop(t *testing.T) {
	store := &fakeOccurrenceStore{pending: PendingFloor}
	maintainer := NewOccurrenceMaintainer(store, &fakeSeriesCounter{}, zerolog.Nop())

	head := seriesHead("FREQ=DAILY", recurrence.DateOf(time.Now()))

	inserted, err := maintainer.EnsureWindow(head)
	require.NoError(t, err)
	assert.Zero(t, inserted)
	assert.Empty(t, store.inserted)
}
