package dto

import (
	"time"

	"github.com/user/taskloop/backend/internal/models"
)

// UpdatePreferencesRequest is the patch body for user preferences.
type UpdatePreferencesRequest struct {
	Timezone              *string `json:"timezone,omitempty"`
	DefaultReminderOffset *int    `json:"default_reminder_offset,omitempty"`
	PushEnabled           *bool   `json:"push_enabled,omitempty"`
	DailyDigestEnabled    *bool   `json:"daily_digest_enabled,omitempty"`
	DailyDigestTime       *string `json:"daily_digest_time,omitempty"` // "HH:MM"
}

// PreferencesDTO represents user preferences in responses.
type PreferencesDTO struct {
	Timezone              string    `json:"timezone"`
	DefaultReminderOffset *int      `json:"default_reminder_offset,omitempty"`
	PushEnabled           bool      `json:"push_enabled"`
	DailyDigestEnabled    bool      `json:"daily_digest_enabled"`
	DailyDigestTime       *string   `json:"daily_digest_time,omitempty"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TimezonesResponse lists the IANA timezone names offered to the UI.
type TimezonesResponse struct {
	Timezones []string `json:"timezones"`
}

func PreferencesToDTO(p *models.UserPreferences) PreferencesDTO {
	return PreferencesDTO{
		Timezone:              p.Timezone,
		DefaultReminderOffset: p.DefaultReminderOffset,
		PushEnabled:           p.PushEnabled,
		DailyDigestEnabled:    p.DailyDigestEnabled,
		DailyDigestTime:       p.DailyDigestTime,
		UpdatedAt:             p.UpdatedAt,
	}
}
