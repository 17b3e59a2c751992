package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	KindReminder    NotificationKind = "reminder"
	KindDailyDigest NotificationKind = "daily_digest"
	// KindRecurringDue is accepted on reads but no job produces it yet.
	KindRecurringDue NotificationKind = "recurring_due"
)

// Notification is the durable in-app record of something the system told the
// user. Push delivery is additive; this row is the source of truth.
type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind       NotificationKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	Title      string           `gorm:"size:500;not null" json:"title"`
	Body       *string          `json:"body,omitempty"`
	TodoID     *uuid.UUID       `gorm:"type:uuid;index" json:"todo_id,omitempty"`
	ReminderID *uuid.UUID       `gorm:"type:uuid" json:"reminder_id,omitempty"`
	Read       bool             `gorm:"default:false;index" json:"read"`
	ReadAt     *time.Time       `json:"read_at,omitempty"`
	CreatedAt  time.Time        `gorm:"index" json:"created_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Notification) MarkRead() {
	now := time.Now().UTC()
	n.Read = true
	n.ReadAt = &now
}
