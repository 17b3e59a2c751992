package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PushSubscription is a browser Web Push endpoint plus its encryption keys.
// Endpoints are globally unique; re-registering one moves it to the new user.
type PushSubscription struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint   string     `gorm:"uniqueIndex;not null" json:"endpoint"`
	P256dh     string     `gorm:"not null" json:"-"`
	Auth       string     `gorm:"not null" json:"-"`
	UserAgent  *string    `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (s *PushSubscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
