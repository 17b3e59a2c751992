package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(reminder *models.Reminder) error {
	return r.db.Create(reminder).Error
}

func (r *ReminderRepository) FindByID(id uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.Where("id = ?", id).First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *ReminderRepository) ListByTodo(todoID uuid.UUID) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("todo_id = ?", todoID).
		Order("fire_at ASC").
		Find(&reminders).Error
	return reminders, err
}

// CountActive counts pending and snoozed reminders on a todo. The per-todo
// cap is checked against this before a create.
func (r *ReminderRepository) CountActive(todoID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reminder{}).
		Where("todo_id = ? AND status IN ?", todoID,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Count(&count).Error
	return count, err
}

// FindDue returns dispatchable reminders whose fire time has arrived, oldest
// first. Snoozed reminders re-enter through the same query once their
// updated fire time passes.
func (r *ReminderRepository) FindDue(before time.Time, limit int) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.
		Where("fire_at <= ? AND status IN ?", before,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Order("fire_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

// MarkSent transitions a reminder to sent. The status guard in the WHERE
// clause makes the check atomic with the write: a reminder a concurrent
// writer already finished is left alone.
func (r *ReminderRepository) MarkSent(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.Reminder{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Updates(map[string]interface{}{
			"status":  models.ReminderSent,
			"sent_at": at,
		}).Error
}

func (r *ReminderRepository) Cancel(id uuid.UUID) error {
	return r.db.Model(&models.Reminder{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Update("status", models.ReminderCancelled).Error
}

func (r *ReminderRepository) CancelByTodo(todoID uuid.UUID) error {
	return r.db.Model(&models.Reminder{}).
		Where("todo_id = ? AND status IN ?", todoID,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Update("status", models.ReminderCancelled).Error
}

// Snooze pushes the fire time forward. There is no separate queue: the
// updated fire_at keeps the reminder visible to FindDue.
func (r *ReminderRepository) Snooze(id uuid.UUID, until time.Time) error {
	return r.db.Model(&models.Reminder{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReminderStatus{models.ReminderPending, models.ReminderSnoozed}).
		Updates(map[string]interface{}{
			"status":        models.ReminderSnoozed,
			"fire_at":       until,
			"snoozed_until": until,
			"snooze_count":  gorm.Expr("snooze_count + 1"),
		}).Error
}

func (r *ReminderRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Reminder{}, id).Error
}

func (r *ReminderRepository) DeleteByTodo(todoID uuid.UUID) error {
	return r.db.Where("todo_id = ?", todoID).Delete(&models.Reminder{}).Error
}
