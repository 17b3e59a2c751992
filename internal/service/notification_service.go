package service

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/pubsub"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
)

// NotificationService is the notification center: the durable rows plus the
// live fan-out to open streams.
type NotificationService struct {
	notifRepo *repository.NotificationRepository
	hub       *pubsub.Hub
}

func NewNotificationService(notifRepo *repository.NotificationRepository, hub *pubsub.Hub) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, hub: hub}
}

// Create persists the notification and broadcasts it, with the user's new
// unread count, to any live listeners. The jobs call this.
func (s *NotificationService) Create(notification *models.Notification) error {
	if err := s.notifRepo.Create(notification); err != nil {
		return err
	}

	unread, err := s.notifRepo.UnreadCount(notification.UserID)
	if err != nil {
		unread = 0
	}
	s.hub.Broadcast(notification.UserID, pubsub.NotificationEvent{
		Notification: notification,
		UnreadCount:  unread,
	})
	return nil
}

func (s *NotificationService) List(userID uuid.UUID, unreadOnly bool, limit, offset int) (*dto.NotificationListResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	notifications, total, err := s.notifRepo.List(repository.NotificationListParams{
		UserID:     userID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list notifications", http.StatusInternalServerError)
	}

	unread, err := s.notifRepo.UnreadCount(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to count notifications", http.StatusInternalServerError)
	}

	return &dto.NotificationListResponse{
		Notifications: dto.NotificationsToDTO(notifications),
		Total:         total,
		UnreadCount:   unread,
		Limit:         limit,
		Offset:        offset,
	}, nil
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	count, err := s.notifRepo.UnreadCount(userID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to count notifications", http.StatusInternalServerError)
	}
	return count, nil
}

// SetRead marks a notification read or unread.
func (s *NotificationService) SetRead(userID, notificationID uuid.UUID, read bool) (*dto.NotificationDTO, error) {
	notification, err := s.notifRepo.FindByIDAndUser(notificationID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if err := s.notifRepo.SetRead(notification.ID, read); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update notification", http.StatusInternalServerError)
	}

	notification, err = s.notifRepo.FindByIDAndUser(notificationID, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to reload notification", http.StatusInternalServerError)
	}
	result := dto.NotificationToDTO(notification)
	return &result, nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	updated, err := s.notifRepo.MarkAllRead(userID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to mark notifications read", http.StatusInternalServerError)
	}
	return updated, nil
}

func (s *NotificationService) MarkManyRead(userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	updated, err := s.notifRepo.MarkManyRead(userID, ids)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to mark notifications read", http.StatusInternalServerError)
	}
	return updated, nil
}

func (s *NotificationService) Delete(userID, notificationID uuid.UUID) error {
	notification, err := s.notifRepo.FindByIDAndUser(notificationID, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}
	if err := s.notifRepo.Delete(notification.ID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete notification", http.StatusInternalServerError)
	}
	return nil
}
