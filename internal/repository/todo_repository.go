package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

func (r *TodoRepository) FindByID(id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.Where("id = ?", id).First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.Preload("Tags").Where("id = ? AND user_id = ?", id, userID).First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

type TodoListParams struct {
	UserID    uuid.UUID
	Completed *bool
	Priority  *models.Priority
	TagID     *uuid.UUID
	Recurring *bool
	Search    *string
	Page      int
	PageSize  int
}

func (r *TodoRepository) List(params TodoListParams) ([]models.Todo, int64, error) {
	var todos []models.Todo
	var total int64

	query := r.db.Model(&models.Todo{}).Where("todos.user_id = ?", params.UserID)

	if params.Completed != nil {
		query = query.Where("todos.completed = ?", *params.Completed)
	}
	if params.Priority != nil {
		query = query.Where("todos.priority = ?", *params.Priority)
	}
	if params.Recurring != nil {
		query = query.Where("todos.is_recurring = ?", *params.Recurring)
	}
	if params.TagID != nil {
		query = query.
			Joins("JOIN todo_tags ON todo_tags.todo_id = todos.id").
			Where("todo_tags.tag_id = ?", *params.TagID)
	}
	if params.Search != nil && *params.Search != "" {
		pattern := "%" + *params.Search + "%"
		query = query.Where("todos.title ILIKE ? OR todos.description ILIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.
		Preload("Tags").
		Order("todos.due_at ASC NULLS LAST, todos.created_at DESC").
		Offset(offset).
		Limit(params.PageSize).
		Find(&todos).Error

	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

func (r *TodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

func (r *TodoRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) error {
	return r.db.Model(&models.Todo{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *TodoRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Todo{}, id).Error
}

// ListRecurring returns every active series head. Used by the daily
// occurrence maintainer.
func (r *TodoRepository) ListRecurring() ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.
		Where("is_recurring = ? AND recurrence_rule IS NOT NULL", true).
		Find(&todos).Error
	return todos, err
}

// ReplaceTags swaps the todo's tag set in one association write.
func (r *TodoRepository) ReplaceTags(todo *models.Todo, tags []models.Tag) error {
	return r.db.Model(todo).Association("Tags").Replace(tags)
}

// DueBetween returns non-recurring open todos whose due instant falls inside
// [from, to). The digest uses this with the bounds of a user-local day.
func (r *TodoRepository) DueBetween(userID uuid.UUID, from, to time.Time) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.
		Where("user_id = ? AND completed = ? AND is_recurring = ?", userID, false, false).
		Where("due_at >= ? AND due_at < ?", from, to).
		Order("due_at ASC").
		Find(&todos).Error
	return todos, err
}

// BumpOccurrencesGenerated adds n to the series counter.
func (r *TodoRepository) BumpOccurrencesGenerated(id uuid.UUID, n int) error {
	return r.db.Model(&models.Todo{}).
		Where("id = ?", id).
		Update("occurrences_generated", gorm.Expr("occurrences_generated + ?", n)).Error
}
