// Package scheduler hosts the process-wide periodic jobs on gocron v2.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Job names, used for logging and manual triggers.
const (
	JobDispatcher  = "reminder-dispatcher"
	JobMaintenance = "occurrence-maintenance"
	JobDigest      = "daily-digest"
	JobRetention   = "notification-retention"
)

// Runner is one periodic job. Run processes a single tick.
type Runner interface {
	Run(ctx context.Context) error
}

// Host owns the four periodic jobs. All timers run in UTC and every job is
// non-overlapping: a tick that arrives while the previous run is still going
// is rescheduled rather than stacked.
type Host struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger

	started   bool
	startedMu sync.Mutex
}

func NewHost(log zerolog.Logger) (*Host, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}
	return &Host{
		scheduler: scheduler,
		log:       log.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Register wires the four jobs: the dispatcher every minute, the maintainer
// daily at 01:00 UTC, the digest hourly at :00, the sweeper daily at 02:00
// UTC.
func (h *Host) Register(dispatcher, maintenance, digest, retention Runner) error {
	if err := h.add(JobDispatcher, gocron.DurationJob(time.Minute), dispatcher, time.Minute); err != nil {
		return err
	}
	if err := h.add(JobMaintenance, gocron.CronJob("0 1 * * *", false), maintenance, 10*time.Minute); err != nil {
		return err
	}
	if err := h.add(JobDigest, gocron.CronJob("0 * * * *", false), digest, 10*time.Minute); err != nil {
		return err
	}
	if err := h.add(JobRetention, gocron.CronJob("0 2 * * *", false), retention, 10*time.Minute); err != nil {
		return err
	}
	return nil
}

func (h *Host) add(name string, definition gocron.JobDefinition, runner Runner, timeout time.Duration) error {
	_, err := h.scheduler.NewJob(
		definition,
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := runner.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				h.log.Error().Err(err).Str("job", name).Msg("job run failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

func (h *Host) Start() {
	h.startedMu.Lock()
	defer h.startedMu.Unlock()

	if h.started {
		return
	}
	h.scheduler.Start()
	h.started = true
	h.log.Info().Int("jobs", len(h.scheduler.Jobs())).Msg("scheduler started")
}

// Shutdown stops the timers and waits for running jobs to finish.
func (h *Host) Shutdown() error {
	h.startedMu.Lock()
	defer h.startedMu.Unlock()

	if !h.started {
		return nil
	}
	err := h.scheduler.Shutdown()
	h.started = false
	if err != nil {
		return err
	}
	h.log.Info().Msg("scheduler stopped")
	return nil
}

// RunNow triggers one named job out of schedule. The singleton guarantee
// still holds: a manual trigger never overlaps a scheduled run.
func (h *Host) RunNow(name string) error {
	for _, job := range h.scheduler.Jobs() {
		if job.Name() == name {
			return job.RunNow()
		}
	}
	return fmt.Errorf("unknown job %q", name)
}

// JobNames lists the registered job names.
func (h *Host) JobNames() []string {
	jobs := h.scheduler.Jobs()
	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = job.Name()
	}
	return names
}
