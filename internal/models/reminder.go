package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderSent      ReminderStatus = "sent"
	ReminderSnoozed   ReminderStatus = "snoozed"
	ReminderCancelled ReminderStatus = "cancelled"
)

// MaxActiveRemindersPerTodo caps pending plus snoozed reminders on one todo.
const MaxActiveRemindersPerTodo = 5

// Reminder schedules a one-shot notification for a todo. It fires at an
// absolute instant, either set directly or derived once from the todo's due
// date plus a negative offset.
type Reminder struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TodoID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"todo_id"`
	OccurrenceID  *uuid.UUID     `gorm:"type:uuid;index" json:"occurrence_id,omitempty"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	FireAt        time.Time      `gorm:"not null;index" json:"fire_at"`
	OffsetMinutes *int           `json:"offset_minutes,omitempty"`
	Status        ReminderStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SentAt        *time.Time     `json:"sent_at,omitempty"`
	SnoozedUntil  *time.Time     `json:"snoozed_until,omitempty"`
	SnoozeCount   int            `gorm:"default:0" json:"snooze_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Relations
	Todo          *Todo           `gorm:"foreignKey:TodoID" json:"-"`
	Occurrence    *TodoOccurrence `gorm:"foreignKey:OccurrenceID" json:"-"`
	User          *User           `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification  `gorm:"foreignKey:ReminderID;constraint:OnDelete:SET NULL" json:"-"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the reminder still occupies a slot of the
// per-todo cap and remains eligible for dispatch.
func (r *Reminder) IsActive() bool {
	return r.Status == ReminderPending || r.Status == ReminderSnoozed
}

func (r *Reminder) MarkSent() {
	now := time.Now().UTC()
	r.Status = ReminderSent
	r.SentAt = &now
}

func (r *Reminder) Cancel() {
	r.Status = ReminderCancelled
}

func (r *Reminder) Snooze(d time.Duration) {
	until := time.Now().UTC().Add(d)
	r.Status = ReminderSnoozed
	r.FireAt = until
	r.SnoozedUntil = &until
	r.SnoozeCount++
}
