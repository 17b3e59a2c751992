package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
)

// SubscribeRequest carries the browser's PushSubscription JSON.
type SubscribeRequest struct {
	Endpoint string               `json:"endpoint" binding:"required,url"`
	Keys     SubscriptionKeys     `json:"keys" binding:"required"`
}

// SubscriptionKeys are the client-side encryption keys of a subscription.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// UnsubscribeRequest removes a subscription by its endpoint.
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
}

// VAPIDPublicKeyResponse exposes the server's VAPID public key.
type VAPIDPublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// PushSubscriptionDTO represents a registered subscription in responses.
// Keys are never echoed back.
type PushSubscriptionDTO struct {
	ID         uuid.UUID  `json:"id"`
	Endpoint   string     `json:"endpoint"`
	UserAgent  *string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func PushSubscriptionToDTO(s *models.PushSubscription) PushSubscriptionDTO {
	return PushSubscriptionDTO{
		ID:         s.ID,
		Endpoint:   s.Endpoint,
		UserAgent:  s.UserAgent,
		CreatedAt:  s.CreatedAt,
		LastUsedAt: s.LastUsedAt,
	}
}

func PushSubscriptionsToDTO(subscriptions []models.PushSubscription) []PushSubscriptionDTO {
	result := make([]PushSubscriptionDTO, len(subscriptions))
	for i := range subscriptions {
		result[i] = PushSubscriptionToDTO(&subscriptions[i])
	}
	return result
}
