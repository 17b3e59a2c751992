package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/taskloop/backend/internal/models"
)

type fakeSeriesSource struct {
	heads []models.Todo
}

func (f *fakeSeriesSource) ListRecurring() ([]models.Todo, error) {
	return f.heads, nil
}

type fakeWindowMaintainer struct {
	refreshed []uuid.UUID
	failFor   uuid.UUID
}

func (f *fakeWindowMaintainer) RefreshDaily(todo *models.Todo) (int, error) {
	if todo.ID == f.failFor {
		return 0, errors.New("boom")
	}
	f.refreshed = append(f.refreshed, todo.ID)
	return 1, nil
}

func TestMaintenanceRefreshesEverySeries(t *testing.T) {
	heads := []models.Todo{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	maintainer := &fakeWindowMaintainer{}

	job := NewMaintenanceJob(&fakeSeriesSource{heads: heads}, maintainer, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, maintainer.refreshed, len(heads))
}

func TestMaintenanceContinuesPastFailingSeries(t *testing.T) {
	heads := []models.Todo{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	maintainer := &fakeWindowMaintainer{failFor: heads[1].ID}

	job := NewMaintenanceJob(&fakeSeriesSource{heads: heads}, maintainer, zerolog.Nop())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, []uuid.UUID{heads[0].ID, heads[2].ID}, maintainer.refreshed)
}
