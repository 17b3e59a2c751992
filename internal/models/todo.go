package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is a task, and for recurring tasks the series head that owns the
// recurrence rule and the materialized occurrences.
type Todo struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title                string     `gorm:"size:500;not null" json:"title"`
	Description          *string    `json:"description,omitempty"`
	Completed            bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	Priority             *Priority  `gorm:"type:varchar(10)" json:"priority,omitempty"`
	DueAt                *time.Time `gorm:"index" json:"due_at,omitempty"`
	IsRecurring          bool       `gorm:"default:false;index" json:"is_recurring"`
	RecurrenceRule       *string    `gorm:"size:500" json:"recurrence_rule,omitempty"`
	RecurrenceEndDate    *time.Time `gorm:"type:date" json:"recurrence_end_date,omitempty"`
	RecurrenceCount      *int       `json:"recurrence_count,omitempty"`
	OccurrencesGenerated int        `gorm:"default:0" json:"occurrences_generated"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Relations
	User          *User            `gorm:"foreignKey:UserID" json:"-"`
	Tags          []Tag            `gorm:"many2many:todo_tags" json:"tags,omitempty"`
	Occurrences   []TodoOccurrence `gorm:"foreignKey:ParentTodoID;constraint:OnDelete:CASCADE" json:"-"`
	Reminders     []Reminder       `gorm:"foreignKey:TodoID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications []Notification   `gorm:"foreignKey:TodoID;constraint:OnDelete:SET NULL" json:"-"`
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Todo) HasDueDate() bool {
	return t.DueAt != nil
}

// AnchorDate is the UTC calendar date the recurrence rule starts from.
func (t *Todo) AnchorDate() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	d := t.DueAt.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
}

func (t *Todo) Complete() {
	now := time.Now().UTC()
	t.Completed = true
	t.CompletedAt = &now
}
