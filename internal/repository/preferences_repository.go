package repository

import (
	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetOrCreate returns the user's preferences row, creating the defaults on
// first access.
func (r *PreferencesRepository) GetOrCreate(userID uuid.UUID) (*models.UserPreferences, error) {
	var preferences models.UserPreferences
	err := r.db.Where("user_id = ?", userID).First(&preferences).Error
	if err == gorm.ErrRecordNotFound {
		preferences = models.UserPreferences{
			UserID:      userID,
			Timezone:    "UTC",
			PushEnabled: true,
		}
		if err := r.db.Create(&preferences).Error; err != nil {
			return nil, err
		}
		return &preferences, nil
	}
	if err != nil {
		return nil, err
	}
	return &preferences, nil
}

func (r *PreferencesRepository) Update(preferences *models.UserPreferences) error {
	return r.db.Save(preferences).Error
}

// DigestCandidates returns every preferences row that has the daily digest
// switched on with a configured delivery time. The hourly digest job filters
// these by local hour.
func (r *PreferencesRepository) DigestCandidates() ([]models.UserPreferences, error) {
	var preferences []models.UserPreferences
	err := r.db.
		Where("daily_digest_enabled = ? AND daily_digest_time IS NOT NULL", true).
		Find(&preferences).Error
	return preferences, err
}
