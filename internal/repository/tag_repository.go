package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/models"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *TagRepository) FindByIDAndUser(id, userID uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// FindByName looks a tag up case-insensitively; uniqueness per user is
// enforced against this lookup.
func (r *TagRepository) FindByName(userID uuid.UUID, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) ListByUser(userID uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&tags).Error
	return tags, err
}

// FindAllByIDs resolves a set of tag ids scoped to the owner. Missing or
// foreign ids are simply absent from the result.
func (r *TagRepository) FindAllByIDs(userID uuid.UUID, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&tags).Error
	return tags, err
}

func (r *TagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete removes the tag and its todo memberships. Todos themselves are
// untouched.
func (r *TagRepository) Delete(tag *models.Tag) error {
	if err := r.db.Model(tag).Association("Todos").Clear(); err != nil {
		return err
	}
	return r.db.Delete(tag).Error
}
