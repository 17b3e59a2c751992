package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type PushSubscriptionRepository struct {
	db *gorm.DB
}

func NewPushSubscriptionRepository(db *gorm.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{db: db}
}

func (r *PushSubscriptionRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.PushSubscription, error) {
	var subscription models.PushSubscription
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&subscription).Error
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *PushSubscriptionRepository) ListByUser(userID uuid.UUID) ([]models.PushSubscription, error) {
	var subscriptions []models.PushSubscription
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subscriptions).Error
	return subscriptions, err
}

// Upsert registers a subscription. Endpoints are globally unique: when a
// browser profile moves to another account, re-registering the same endpoint
// rebinds it to the new user with the fresh keys.
func (r *PushSubscriptionRepository) Upsert(subscription *models.PushSubscription) error {
	var existing models.PushSubscription
	err := r.db.Where("endpoint = ?", subscription.Endpoint).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(subscription).Error
	}
	if err != nil {
		return err
	}

	existing.UserID = subscription.UserID
	existing.P256dh = subscription.P256dh
	existing.Auth = subscription.Auth
	existing.UserAgent = subscription.UserAgent
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*subscription = existing
	return nil
}

func (r *PushSubscriptionRepository) UpdateLastUsed(id uuid.UUID) error {
	return r.db.Model(&models.PushSubscription{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now().UTC()).Error
}

func (r *PushSubscriptionRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.PushSubscription{}, id).Error
}

// DeleteByEndpoint removes a subscription by its endpoint URL. Used when the
// push service reports the endpoint gone.
func (r *PushSubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&models.PushSubscription{}).Error
}

// DeleteByEndpointForUser removes a subscription by endpoint, scoped to the
// owner. Used for user-initiated unsubscribes.
func (r *PushSubscriptionRepository) DeleteByEndpointForUser(userID uuid.UUID, endpoint string) (int64, error) {
	result := r.db.
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushSubscription{})
	return result.RowsAffected, result.Error
}
