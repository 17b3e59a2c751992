package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OccurrenceRepository struct {
	db *gorm.DB
}

func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

func (r *OccurrenceRepository) Create(occurrence *models.TodoOccurrence) error {
	return r.db.Create(occurrence).Error
}

// InsertPending bulk-inserts pending occurrences, skipping any row that
// collides on (parent_todo_id, occurrence_date). Returns how many rows were
// actually written, which is what the series counter is bumped by.
func (r *OccurrenceRepository) InsertPending(occurrences []models.TodoOccurrence) (int, error) {
	if len(occurrences) == 0 {
		return 0, nil
	}
	result := r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "parent_todo_id"}, {Name: "occurrence_date"}},
			DoNothing: true,
		}).
		Create(&occurrences)
	return int(result.RowsAffected), result.Error
}

func (r *OccurrenceRepository) FindByID(id uuid.UUID) (*models.TodoOccurrence, error) {
	var occurrence models.TodoOccurrence
	err := r.db.Where("id = ?", id).First(&occurrence).Error
	if err != nil {
		return nil, err
	}
	return &occurrence, nil
}

func (r *OccurrenceRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.TodoOccurrence, error) {
	var occurrence models.TodoOccurrence
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&occurrence).Error
	if err != nil {
		return nil, err
	}
	return &occurrence, nil
}

func (r *OccurrenceRepository) ListByTodo(todoID uuid.UUID, status *models.OccurrenceStatus) ([]models.TodoOccurrence, error) {
	var occurrences []models.TodoOccurrence
	query := r.db.Where("parent_todo_id = ?", todoID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Order("occurrence_date ASC").Find(&occurrences).Error
	return occurrences, err
}

// ExistingDates returns only the dates already materialized for a series.
// The maintainer diffs against this set instead of loading full rows.
func (r *OccurrenceRepository) ExistingDates(todoID uuid.UUID) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&models.TodoOccurrence{}).
		Where("parent_todo_id = ?", todoID).
		Order("occurrence_date ASC").
		Pluck("occurrence_date", &dates).Error
	return dates, err
}

func (r *OccurrenceRepository) OnDate(todoID uuid.UUID, date time.Time) (*models.TodoOccurrence, error) {
	var occurrence models.TodoOccurrence
	err := r.db.
		Where("parent_todo_id = ? AND occurrence_date = ?", todoID, date).
		First(&occurrence).Error
	if err != nil {
		return nil, err
	}
	return &occurrence, nil
}

// NextPending returns the earliest pending occurrence dated on or after from.
func (r *OccurrenceRepository) NextPending(todoID uuid.UUID, from time.Time) (*models.TodoOccurrence, error) {
	var occurrence models.TodoOccurrence
	err := r.db.
		Where("parent_todo_id = ? AND status = ? AND occurrence_date >= ?",
			todoID, models.OccurrencePending, from).
		Order("occurrence_date ASC").
		First(&occurrence).Error
	if err != nil {
		return nil, err
	}
	return &occurrence, nil
}

func (r *OccurrenceRepository) CountPendingFuture(todoID uuid.UUID, from time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.TodoOccurrence{}).
		Where("parent_todo_id = ? AND status = ? AND occurrence_date >= ?",
			todoID, models.OccurrencePending, from).
		Count(&count).Error
	return count, err
}

// LatestDate returns the latest materialized date for a series, or false
// when nothing has been materialized yet.
func (r *OccurrenceRepository) LatestDate(todoID uuid.UUID) (time.Time, bool, error) {
	var occurrence models.TodoOccurrence
	err := r.db.
		Where("parent_todo_id = ?", todoID).
		Order("occurrence_date DESC").
		First(&occurrence).Error
	if err == gorm.ErrRecordNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return occurrence.OccurrenceDate, true, nil
}

// PendingOnDate returns all of a user's pending occurrences for one date,
// across series. The daily digest reads this.
func (r *OccurrenceRepository) PendingOnDate(userID uuid.UUID, date time.Time) ([]models.TodoOccurrence, error) {
	var occurrences []models.TodoOccurrence
	err := r.db.
		Preload("Todo").
		Where("user_id = ? AND status = ? AND occurrence_date = ?",
			userID, models.OccurrencePending, date).
		Find(&occurrences).Error
	return occurrences, err
}

// Complete marks a pending occurrence completed. The status guard keeps the
// transition terminal even under a concurrent writer.
func (r *OccurrenceRepository) Complete(id uuid.UUID) error {
	return r.db.Model(&models.TodoOccurrence{}).
		Where("id = ? AND status = ?", id, models.OccurrencePending).
		Updates(map[string]interface{}{
			"status":       models.OccurrenceCompleted,
			"completed_at": time.Now().UTC(),
		}).Error
}

func (r *OccurrenceRepository) Skip(id uuid.UUID) error {
	return r.db.Model(&models.TodoOccurrence{}).
		Where("id = ? AND status = ?", id, models.OccurrencePending).
		Update("status", models.OccurrenceSkipped).Error
}

// DeletePendingFuture removes not-yet-acted-on occurrences dated on or after
// from. Used when a series stops recurring without keeping its window.
func (r *OccurrenceRepository) DeletePendingFuture(todoID uuid.UUID, from time.Time) (int64, error) {
	result := r.db.
		Where("parent_todo_id = ? AND status = ? AND occurrence_date >= ?",
			todoID, models.OccurrencePending, from).
		Delete(&models.TodoOccurrence{})
	return result.RowsAffected, result.Error
}

func (r *OccurrenceRepository) DeleteByTodo(todoID uuid.UUID) error {
	return r.db.Where("parent_todo_id = ?", todoID).Delete(&models.TodoOccurrence{}).Error
}
