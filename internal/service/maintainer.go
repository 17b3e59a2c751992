package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/recurrence"
)

const (
	// WindowDays is how far ahead the occurrence window reaches.
	WindowDays = 30
	// PendingFloor is the minimum number of pending future occurrences a
	// live series keeps materialized.
	PendingFloor = 5
)

// OccurrenceWindowStore is the slice of the occurrence repository the
// maintainer needs.
type OccurrenceWindowStore interface {
	ExistingDates(todoID uuid.UUID) ([]time.Time, error)
	InsertPending(occurrences []models.TodoOccurrence) (int, error)
	CountPendingFuture(todoID uuid.UUID, from time.Time) (int64, error)
	LatestDate(todoID uuid.UUID) (time.Time, bool, error)
}

// SeriesCounterStore bumps the per-series materialization counter.
type SeriesCounterStore interface {
	BumpOccurrencesGenerated(id uuid.UUID, n int) error
}

// OccurrenceMaintainer keeps a rolling window of pending future occurrences
// materialized for every recurring series. Concurrent top-ups of the same
// series are safe: the (series, date) unique constraint turns the race into
// a no-op.
type OccurrenceMaintainer struct {
	occurrences OccurrenceWindowStore
	todos       SeriesCounterStore
	log         zerolog.Logger
}

func NewOccurrenceMaintainer(occurrences OccurrenceWindowStore, todos SeriesCounterStore, log zerolog.Logger) *OccurrenceMaintainer {
	return &OccurrenceMaintainer{
		occurrences: occurrences,
		todos:       todos,
		log:         log.With().Str("component", "occurrence_maintainer").Logger(),
	}
}

// TopUp materializes up to max occurrences of the series inside
// [from, windowEnd], skipping dates that already exist. Returns how many
// rows were inserted.
func (m *OccurrenceMaintainer) TopUp(todo *models.Todo, from, windowEnd time.Time, max int) (int, error) {
	if !todo.IsRecurring || todo.RecurrenceRule == nil {
		return 0, nil
	}
	anchor, ok := todo.AnchorDate()
	if !ok {
		return 0, fmt.Errorf("series %s has no anchor date", todo.ID)
	}

	existingDates, err := m.occurrences.ExistingDates(todo.ID)
	if err != nil {
		return 0, err
	}
	existing := make(map[time.Time]struct{}, len(existingDates))
	for _, d := range existingDates {
		existing[recurrence.DateOf(d)] = struct{}{}
	}

	dates, err := recurrence.Enumerate(*todo.RecurrenceRule, anchor, from, windowEnd, max)
	if err != nil {
		return 0, err
	}

	var missing []models.TodoOccurrence
	for _, date := range dates {
		if _, seen := existing[date]; seen {
			continue
		}
		missing = append(missing, models.TodoOccurrence{
			ParentTodoID:   todo.ID,
			UserID:         todo.UserID,
			OccurrenceDate: date,
			Status:         models.OccurrencePending,
		})
	}
	if len(missing) == 0 {
		return 0, nil
	}

	inserted, err := m.occurrences.InsertPending(missing)
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		if err := m.todos.BumpOccurrencesGenerated(todo.ID, inserted); err != nil {
			return inserted, err
		}
	}

	m.log.Debug().
		Str("todo_id", todo.ID.String()).
		Int("inserted", inserted).
		Time("from", from).
		Msg("topped up occurrence window")
	return inserted, nil
}

// SeedWindow materializes the first window of a freshly created series,
// anchored at its due date.
func (m *OccurrenceMaintainer) SeedWindow(todo *models.Todo) (int, error) {
	anchor, ok := todo.AnchorDate()
	if !ok {
		return 0, fmt.Errorf("series %s has no anchor date", todo.ID)
	}
	return m.TopUp(todo, anchor, anchor.AddDate(0, 0, WindowDays), WindowDays)
}

// EnsureWindow refills the series after a completion or skip. When fewer
// than the floor remain pending and in the future, it extends the window
// past the latest known date.
func (m *OccurrenceMaintainer) EnsureWindow(todo *models.Todo) (int, error) {
	today := recurrence.DateOf(time.Now())

	pending, err := m.occurrences.CountPendingFuture(todo.ID, today)
	if err != nil {
		return 0, err
	}
	if pending >= PendingFloor {
		return 0, nil
	}

	from := today
	if latest, ok, err := m.occurrences.LatestDate(todo.ID); err != nil {
		return 0, err
	} else if ok {
		from = recurrence.DateOf(latest).AddDate(0, 0, 1)
	}

	return m.TopUp(todo, from, from.AddDate(1, 0, 0), 2*PendingFloor)
}

// RefreshDaily is the scheduled per-series invocation: keep the next thirty
// days materialized.
func (m *OccurrenceMaintainer) RefreshDaily(todo *models.Todo) (int, error) {
	today := recurrence.DateOf(time.Now())
	return m.TopUp(todo, today, today.AddDate(0, 0, WindowDays), WindowDays)
}
