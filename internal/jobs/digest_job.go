package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/models"
)

// digestBulletCap limits how many titles of each kind the digest body lists.
const digestBulletCap = 5

// DigestCandidateSource lists the preferences rows with the digest enabled.
type DigestCandidateSource interface {
	DigestCandidates() ([]models.UserPreferences, error)
}

// DigestLedger answers whether a digest was already written today.
type DigestLedger interface {
	HasDigestSince(userID uuid.UUID, since time.Time) (bool, error)
}

// DueTodoSource lists a user's open non-recurring todos due inside a window.
type DueTodoSource interface {
	DueBetween(userID uuid.UUID, from, to time.Time) ([]models.Todo, error)
}

// PendingOccurrenceSource lists a user's pending occurrences on one date.
type PendingOccurrenceSource interface {
	PendingOnDate(userID uuid.UUID, date time.Time) ([]models.TodoOccurrence, error)
}

// DigestJob runs hourly and writes one daily-digest notification per user
// whose configured local digest hour has arrived. In-app only, no push.
type DigestJob struct {
	candidates    DigestCandidateSource
	ledger        DigestLedger
	todos         DueTodoSource
	occurrences   PendingOccurrenceSource
	notifications NotificationWriter
	log           zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewDigestJob(
	candidates DigestCandidateSource,
	ledger DigestLedger,
	todos DueTodoSource,
	occurrences PendingOccurrenceSource,
	notifications NotificationWriter,
	log zerolog.Logger,
) *DigestJob {
	return &DigestJob{
		candidates:    candidates,
		ledger:        ledger,
		todos:         todos,
		occurrences:   occurrences,
		notifications: notifications,
		log:           log.With().Str("job", "daily_digest").Logger(),
		now:           time.Now,
	}
}

func (j *DigestJob) Run(ctx context.Context) error {
	candidates, err := j.candidates.DigestCandidates()
	if err != nil {
		return fmt.Errorf("load digest candidates: %w", err)
	}

	sent := 0
	for i := range candidates {
		prefs := &candidates[i]
		ok, err := j.runForUser(prefs)
		if err != nil {
			j.log.Error().Err(err).
				Str("user_id", prefs.UserID.String()).
				Msg("failed to build digest")
			continue
		}
		if ok {
			sent++
		}
	}

	if sent > 0 {
		j.log.Info().Int("sent", sent).Msg("wrote daily digests")
	}
	return nil
}

// runForUser writes the user's digest when their local hour matches. Returns
// whether a notification was written.
func (j *DigestJob) runForUser(prefs *models.UserPreferences) (bool, error) {
	hour, ok := prefs.DigestHour()
	if !ok {
		return false, nil
	}

	location, err := prefs.Location()
	if err != nil {
		j.log.Warn().
			Str("user_id", prefs.UserID.String()).
			Str("timezone", prefs.Timezone).
			Msg("skipping digest for invalid timezone")
		return false, nil
	}

	local := j.now().In(location)
	if local.Hour() != hour {
		return false, nil
	}

	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
	already, err := j.ledger.HasDigestSince(prefs.UserID, dayStart.UTC())
	if err != nil {
		return false, fmt.Errorf("check existing digest: %w", err)
	}
	if already {
		return false, nil
	}

	todos, err := j.todos.DueBetween(prefs.UserID, dayStart.UTC(), dayStart.AddDate(0, 0, 1).UTC())
	if err != nil {
		return false, fmt.Errorf("load due todos: %w", err)
	}

	localDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	occurrences, err := j.occurrences.PendingOnDate(prefs.UserID, localDate)
	if err != nil {
		return false, fmt.Errorf("load pending occurrences: %w", err)
	}

	title, body := composeDigest(todos, occurrences)
	notification := &models.Notification{
		UserID: prefs.UserID,
		Kind:   models.KindDailyDigest,
		Title:  title,
		Body:   &body,
	}
	if err := j.notifications.Create(notification); err != nil {
		return false, fmt.Errorf("write digest notification: %w", err)
	}
	return true, nil
}

// composeDigest renders the digest title and body from today's workload.
func composeDigest(todos []models.Todo, occurrences []models.TodoOccurrence) (string, string) {
	total := len(todos) + len(occurrences)
	if total == 0 {
		return "Daily Digest: No tasks due today",
			"You have no tasks due today. Enjoy your day!"
	}

	var b strings.Builder
	shown := 0
	for i, todo := range todos {
		if i >= digestBulletCap {
			break
		}
		b.WriteString("• ")
		b.WriteString(todo.Title)
		if dot := priorityDot(todo.Priority); dot != "" {
			b.WriteString(" ")
			b.WriteString(dot)
		}
		b.WriteString("\n")
		shown++
	}
	for i, occurrence := range occurrences {
		if i >= digestBulletCap {
			break
		}
		b.WriteString("• ")
		if occurrence.Todo != nil {
			b.WriteString(occurrence.Todo.Title)
		} else {
			b.WriteString("Recurring task")
		}
		b.WriteString(" (recurring)\n")
		shown++
	}
	if remaining := total - shown; remaining > 0 {
		b.WriteString(fmt.Sprintf("...and %d more", remaining))
	}

	noun := "tasks"
	if total == 1 {
		noun = "task"
	}
	title := fmt.Sprintf("Daily Digest: %d %s due today", total, noun)
	return title, strings.TrimRight(b.String(), "\n")
}

func priorityDot(p *models.Priority) string {
	if p == nil {
		return ""
	}
	switch *p {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	case models.PriorityLow:
		return "🟢"
	}
	return ""
}
