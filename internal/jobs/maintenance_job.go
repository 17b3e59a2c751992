package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/models"
)

// SeriesSource lists every active recurring series head.
type SeriesSource interface {
	ListRecurring() ([]models.Todo, error)
}

// WindowMaintainer tops a single series' occurrence window up.
type WindowMaintainer interface {
	RefreshDaily(todo *models.Todo) (int, error)
}

// MaintenanceJob is the daily occurrence top-up: every recurring series gets
// its next thirty days materialized. Per-series failures are logged and the
// sweep continues.
type MaintenanceJob struct {
	series     SeriesSource
	maintainer WindowMaintainer
	log        zerolog.Logger
}

func NewMaintenanceJob(series SeriesSource, maintainer WindowMaintainer, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		series:     series,
		maintainer: maintainer,
		log:        log.With().Str("job", "occurrence_maintenance").Logger(),
	}
}

func (j *MaintenanceJob) Run(ctx context.Context) error {
	heads, err := j.series.ListRecurring()
	if err != nil {
		return fmt.Errorf("list recurring series: %w", err)
	}

	inserted := 0
	for i := range heads {
		n, err := j.maintainer.RefreshDaily(&heads[i])
		if err != nil {
			j.log.Error().Err(err).
				Str("todo_id", heads[i].ID.String()).
				Msg("failed to refresh occurrence window")
			continue
		}
		inserted += n
	}

	j.log.Info().
		Int("series", len(heads)).
		Int("inserted", inserted).
		Msg("refreshed occurrence windows")
	return nil
}
