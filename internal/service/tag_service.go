package service

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/user/taskloop/backend/internal/dto"
	"github.com/user/taskloop/backend/internal/models"
	"github.com/user/taskloop/backend/internal/repository"
	apperrors "github.com/user/taskloop/backend/pkg/errors"
	"gorm.io/gorm"
)

// TagService manages user-owned labels. Names are unique per user, compared
// case-insensitively.
type TagService struct {
	tagRepo *repository.TagRepository
}

func NewTagService(tagRepo *repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) Create(userID uuid.UUID, req dto.CreateTagRequest) (*dto.TagDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.ValidationErrorWithFields("Tag name is required",
			apperrors.FieldIssue{Field: "name", Issue: "must not be blank"})
	}

	if _, err := s.tagRepo.FindByName(userID, name); err == nil {
		return nil, apperrors.ErrDuplicateTag
	} else if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to check tag name", http.StatusInternalServerError)
	}

	tag := &models.Tag{
		UserID: userID,
		Name:   name,
		Color:  req.Color,
	}
	if err := s.tagRepo.Create(tag); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to create tag", http.StatusInternalServerError)
	}

	result := dto.TagToDTO(tag)
	return &result, nil
}

func (s *TagService) List(userID uuid.UUID) ([]dto.TagDTO, error) {
	tags, err := s.tagRepo.ListByUser(userID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to list tags", http.StatusInternalServerError)
	}
	return dto.TagsToDTO(tags), nil
}

func (s *TagService) Update(userID, tagID uuid.UUID, req dto.UpdateTagRequest) (*dto.TagDTO, error) {
	tag, err := s.tagRepo.FindByIDAndUser(tagID, userID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.ValidationErrorWithFields("Tag name is required",
				apperrors.FieldIssue{Field: "name", Issue: "must not be blank"})
		}
		if existing, err := s.tagRepo.FindByName(userID, name); err == nil && existing.ID != tag.ID {
			return nil, apperrors.ErrDuplicateTag
		} else if err != nil && err != gorm.ErrRecordNotFound {
			return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to check tag name", http.StatusInternalServerError)
		}
		tag.Name = name
	}
	if req.Color != nil {
		tag.Color = req.Color
	}

	if err := s.tagRepo.Update(tag); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to update tag", http.StatusInternalServerError)
	}

	result := dto.TagToDTO(tag)
	return &result, nil
}

// Delete removes the tag and its memberships; tagged todos are untouched.
func (s *TagService) Delete(userID, tagID uuid.UUID) error {
	tag, err := s.tagRepo.FindByIDAndUser(tagID, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}
	if err := s.tagRepo.Delete(tag); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternalError, "Failed to delete tag", http.StatusInternalServerError)
	}
	return nil
}
