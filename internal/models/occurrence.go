package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OccurrenceStatus string

const (
	OccurrencePending   OccurrenceStatus = "pending"
	OccurrenceCompleted OccurrenceStatus = "completed"
	OccurrenceSkipped   OccurrenceStatus = "skipped"
)

// TodoOccurrence is a single materialized date of a recurring series with
// its own completion state. The composite unique index is what makes
// window top-ups idempotent.
type TodoOccurrence struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ParentTodoID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_occurrence_todo_date" json:"parent_todo_id"`
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	OccurrenceDate time.Time        `gorm:"type:date;not null;uniqueIndex:idx_occurrence_todo_date" json:"occurrence_date"`
	Status         OccurrenceStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	// Relations
	Todo      *Todo      `gorm:"foreignKey:ParentTodoID" json:"-"`
	Reminders []Reminder `gorm:"foreignKey:OccurrenceID;constraint:OnDelete:SET NULL" json:"-"`
}

func (o *TodoOccurrence) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *TodoOccurrence) IsPending() bool {
	return o.Status == OccurrencePending
}

func (o *TodoOccurrence) Complete() {
	now := time.Now().UTC()
	o.Status = OccurrenceCompleted
	o.CompletedAt = &now
}

func (o *TodoOccurrence) Skip() {
	o.Status = OccurrenceSkipped
}
