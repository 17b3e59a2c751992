package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetentionDays is how long notifications are kept.
const RetentionDays = 30

// NotificationPruner deletes notifications older than a cutoff.
type NotificationPruner interface {
	DeleteOlderThan(cutoff time.Time) (int64, error)
}

// RetentionJob is the daily notification sweep.
type RetentionJob struct {
	notifications NotificationPruner
	log           zerolog.Logger
}

func NewRetentionJob(notifications NotificationPruner, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		notifications: notifications,
		log:           log.With().Str("job", "notification_retention").Logger(),
	}
}

func (j *RetentionJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -RetentionDays)

	deleted, err := j.notifications.DeleteOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("prune notifications: %w", err)
	}

	j.log.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("pruned old notifications")
	return nil
}
