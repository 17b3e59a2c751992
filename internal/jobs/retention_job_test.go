package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePruner struct {
	cutoffs []time.Time
	deleted int64
}

func (f *fakePruner) DeleteOlderThan(cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, nil
}

func TestRetentionPrunesAtThirtyDays(t *testing.T) {
	pruner := &fakePruner{deleted: 12}
	job := NewRetentionJob(pruner, zerolog.Nop())

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, pruner.cutoffs, 1)
	want := time.Now().UTC().AddDate(0, 0, -RetentionDays)
	assert.WithinDuration(t, want, pruner.cutoffs[0], 5*time.Second)
}
