package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreferences holds per-user scheduling and notification settings.
// A row is created lazily on first read.
type UserPreferences struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID                uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Timezone              string    `gorm:"size:64;default:'UTC'" json:"timezone"`
	DefaultReminderOffset *int      `json:"default_reminder_offset,omitempty"` // minutes, negative = before due
	PushEnabled           bool      `gorm:"default:true" json:"push_enabled"`
	DailyDigestEnabled    bool      `gorm:"default:false" json:"daily_digest_enabled"`
	DailyDigestTime       *string   `gorm:"size:5" json:"daily_digest_time,omitempty"` // "HH:MM" local
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *UserPreferences) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Location resolves the user's IANA timezone.
func (p *UserPreferences) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// DigestHour returns the local hour-of-day of the configured digest time.
func (p *UserPreferences) DigestHour() (int, bool) {
	if p.DailyDigestTime == nil {
		return 0, false
	}
	t, err := time.Parse("15:04", *p.DailyDigestTime)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}
