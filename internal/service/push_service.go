package service

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/push"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

// PushSender is the slice of the push client the service needs.
type PushSender interface {
	Enabled() bool
	PublicKey() string
	Send(ctx context.Context, subscription *models.PushSubscription, payload push.Payload) error
}

// PushService manages subscription registrations and fans payloads out to all
// of a user's browsers.
type PushService struct {
	subsRepo  *repository.PushSubscriptionRepository
	prefsRepo *repository.PreferencesRepository
	sender    PushSender
	log       zerolog.Logger
}

func NewPushService(
	subsRepo *repository.PushSubscriptionRepository,
	prefsRepo *repository.PreferencesRepository,
	sender PushSender,
	log zerolog.Logger,
) *PushService {
	return &PushService{
		subsRepo:  subsRepo,
		prefsRepo: prefsRepo,
		sender:    sender,
		log:       log.With().Str("component", "push_service").Logger(),
	}
}

func (s *PushService) Enabled() bool {
	return s.sender.Enabled()
}

// VAPIDPublicKey returns the key browsers use to subscribe, or a 503 when
// push is not configured on this deployment.
func (s *PushService) VAPIDPublicKey() (string, error) {
	if !s.sender.Enabled() {
		return "", apperrors.ErrPushNotConfigured
	}
	return s.sender.PublicKey(), nil
}

func (s *PushService) Subscribe(userID uuid.UUID, req dto.SubscribeRequest, userAgent string) (*dto.PushSubscriptionDTO, error) {
	if !s.sender.Enabled() {
		return nil, apperrors.ErrPushNotConfigured
	}

	subscription := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if userAgent != "" {
		subscription.UserAgent = &userAgent
	}

	if err := s.subsRepo.Upsert(subscription); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to register subscription", http.StatusInternalServerError)
	}

	result := dto.PushSubscriptionToDTO(subscription)
	return &result, nil
}

// Unsubscribe removes the caller's subscription for an endpoint. Unknown
// endpoints are a no-op so the client can unsubscribe blindly.
func (s *PushService) Unsubscribe(userID uuid.UUID, endpoint string) error {
	if _, err := s.subsRepo.DeleteByEndpointForUser(userID, endpoint); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to remove subscription", http.StatusInternalServerError)
	}
	return nil
}

func (s *PushService) ListSubscriptions(userID uuid.UUID) ([]dto.PushSubscriptionDTO, error) {
	subscriptions, err := s.subsRepo.ListByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list subscriptions", http.StatusInternalServerError)
	}
	return dto.PushSubscriptionsToDTO(subscriptions), nil
}

func (s *PushService) DeleteSubscription(userID, subscriptionID uuid.UUID) error {
	subscription, err := s.subsRepo.FindByIDAndUser(subscriptionID, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}
	if err := s.subsRepo.Delete(subscription.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete subscription", http.StatusInternalServerError)
	}
	return nil
}

// SendToUser delivers one payload to every subscription the user has. It
// never fails the caller: push is additive to the durable notification row.
// Gone endpoints are pruned, successes stamp last_used_at, other failures
// are logged and skipped.
func (s *PushService) SendToUser(ctx context.Context, userID uuid.UUID, payload push.Payload) {
	if !s.sender.Enabled() {
		return
	}

	prefs, err := s.prefsRepo.GetOrCreate(userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load preferences")
		return
	}
	if !prefs.PushEnabled {
		return
	}

	subscriptions, err := s.subsRepo.ListByUser(userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var wg sync.WaitGroup
	for i := range subscriptions {
		subscription := subscriptions[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.deliver(ctx, &subscription, payload)
		}()
	}
	wg.Wait()
}

func (s *PushService) deliver(ctx context.Context, subscription *models.PushSubscription, payload push.Payload) {
	err := s.sender.Send(ctx, subscription, payload)
	switch {
	case err == nil:
		if err := s.subsRepo.UpdateLastUsed(subscription.ID); err != nil {
			s.log.Warn().Err(err).Str("subscription_id", subscription.ID.String()).Msg("failed to stamp last_used_at")
		}
	case errors.Is(err, push.ErrSubscriptionGone):
		s.log.Info().
			Str("subscription_id", subscription.ID.String()).
			Msg("pruning gone push subscription")
		if err := s.subsRepo.DeleteByEndpoint(subscription.Endpoint); err != nil {
			s.log.Warn().Err(err).Str("subscription_id", subscription.ID.String()).Msg("failed to prune subscription")
		}
	default:
		s.log.Warn().Err(err).
			Str("subscription_id", subscription.ID.String()).
			Msg("push delivery failed")
	}
}
