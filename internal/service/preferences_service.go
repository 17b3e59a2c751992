package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

// curatedTimezones is the list offered to the settings UI. Any valid IANA
// name is still accepted on writes.
var curatedTimezones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"America/Sao_Paulo",
	"Europe/London",
	"Europe/Paris",
	"Europe/Berlin",
	"Europe/Madrid",
	"Europe/Moscow",
	"Africa/Cairo",
	"Africa/Lagos",
	"Asia/Dubai",
	"Asia/Karachi",
	"Asia/Kolkata",
	"Asia/Shanghai",
	"Asia/Tokyo",
	"Asia/Singapore",
	"Australia/Sydney",
	"Pacific/Auckland",
}

// PreferencesService manages the per-user settings row.
type PreferencesService struct {
	prefsRepo *repository.PreferencesRepository
}

func NewPreferencesService(prefsRepo *repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefsRepo: prefsRepo}
}

func (s *PreferencesService) Get(userID uuid.UUID) (*dto.PreferencesDTO, error) {
	preferences, err := s.prefsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to load preferences", http.StatusInternalServerError)
	}
	result := dto.PreferencesToDTO(preferences)
	return &result, nil
}

func (s *PreferencesService) Update(userID uuid.UUID, req dto.UpdatePreferencesRequest) (*dto.PreferencesDTO, error) {
	preferences, err := s.prefsRepo.GetOrCreate(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to load preferences", http.StatusInternalServerError)
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, apperrors.ValidationErrorWithFields("Unknown timezone",
				apperrors.FieldIssue{Field: "timezone", Issue: "must be a valid IANA timezone name"})
		}
		preferences.Timezone = *req.Timezone
	}
	if req.DefaultReminderOffset != nil {
		if *req.DefaultReminderOffset >= 0 {
			return nil, apperrors.ValidationErrorWithFields("Invalid default reminder offset",
				apperrors.FieldIssue{Field: "default_reminder_offset", Issue: "must be negative (minutes before due)"})
		}
		preferences.DefaultReminderOffset = req.DefaultReminderOffset
	}
	if req.PushEnabled != nil {
		preferences.PushEnabled = *req.PushEnabled
	}
	if req.DailyDigestEnabled != nil {
		preferences.DailyDigestEnabled = *req.DailyDigestEnabled
	}
	if req.DailyDigestTime != nil {
		if _, err := time.Parse("15:04", *req.DailyDigestTime); err != nil {
			return nil, apperrors.ValidationErrorWithFields("Invalid digest time",
				apperrors.FieldIssue{Field: "daily_digest_time", Issue: "must be HH:MM"})
		}
		preferences.DailyDigestTime = req.DailyDigestTime
	}

	if err := s.prefsRepo.Update(preferences); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update preferences", http.StatusInternalServerError)
	}

	result := dto.PreferencesToDTO(preferences)
	return &result, nil
}

// Timezones returns the curated IANA names offered in the settings UI.
func (s *PreferencesService) Timezones() []string {
	return curatedTimezones
}
