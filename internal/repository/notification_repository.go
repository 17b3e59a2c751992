package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

type NotificationListParams struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (r *NotificationRepository) List(params NotificationListParams) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := r.db.Model(&models.Notification{}).Where("user_id = ?", params.UserID)
	if params.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *NotificationRepository) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) SetRead(id uuid.UUID, read bool) error {
	updates := map[string]interface{}{"read": read, "read_at": nil}
	if read {
		updates["read_at"] = time.Now().UTC()
	}
	return r.db.Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *NotificationRepository) MarkAllRead(userID uuid.UUID) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) MarkManyRead(userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND id IN ? AND read = ?", userID, ids, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Notification{}, id).Error
}

// HasDigestSince reports whether a daily digest was already written for the
// user at or after the given instant. The digest job uses the start of the
// user's local day here, which is what makes the digest at-most-once per day.
func (r *NotificationRepository) HasDigestSince(userID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ? AND kind = ? AND created_at >= ?",
			userID, models.KindDailyDigest, since).
		Count(&count).Error
	return count > 0, err
}

// DeleteOlderThan removes notifications past the retention horizon.
func (r *NotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DetachTodo nulls the todo reference on notifications that mention it, so
// they survive the todo's deletion.
func (r *NotificationRepository) DetachTodo(todoID uuid.UUID) error {
	return r.db.Model(&models.Notification{}).
		Where("todo_id = ?", todoID).
		Updates(map[string]interface{}{"todo_id": nil, "reminder_id": nil}).Error
}
