package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type objectiveRepository interface {
	List(ctx context.Context) ([]models.LearningObjective, error)
	Upsert(ctx context.Context, objective models.LearningObjective) (models.LearningObjective, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// ObjectiveInput carries a learning objective save payload.
type ObjectiveInput struct {
	ClassLevel  string `json:"classLevel" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// ObjectiveService orchestrates learning objective reference data.
type ObjectiveService struct {
	repo      objectiveRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewObjectiveService constructs an ObjectiveService.
func NewObjectiveService(repo objectiveRepository, validate *validator.Validate, logger *zap.Logger) *ObjectiveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectiveService{repo: repo, validator: validate, logger: logger}
}

// List returns objectives, optionally filtered by class and subject.
func (s *ObjectiveService) List(ctx context.Context, classLevel, subject string) ([]models.LearningObjective, error) {
	if classLevel != "" && !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	if subject != "" && !models.IsValidSubject(subject) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSubject, fmt.Sprintf("unknown subject %q", subject))
	}
	objectives, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list objectives")
	}
	filtered := make([]models.LearningObjective, 0, len(objectives))
	for _, objective := range objectives {
		if classLevel != "" && objective.ClassLevel != classLevel {
			continue
		}
		if subject != "" && objective.Subject != subject {
			continue
		}
		filtered = append(filtered, objective)
	}
	return filtered, nil
}

// Save upserts an objective on its (class, subject, code) key.
func (s *ObjectiveService) Save(ctx context.Context, input ObjectiveInput) (models.LearningObjective, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.LearningObjective{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid objective payload")
	}
	if !models.IsValidClass(input.ClassLevel) {
		return models.LearningObjective{}, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", input.ClassLevel))
	}
	if !models.IsValidSubject(input.Subject) {
		return models.LearningObjective{}, appErrors.Clone(appErrors.ErrUnknownSubject, fmt.Sprintf("unknown subject %q", input.Subject))
	}
	objective := models.LearningObjective{
		ID:          uuid.NewString(),
		ClassLevel:  input.ClassLevel,
		Subject:     input.Subject,
		Code:        input.Code,
		Description: input.Description,
	}
	stored, err := s.repo.Upsert(ctx, objective)
	if err != nil {
		return models.LearningObjective{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save objective")
	}
	return stored, nil
}

// Delete removes an objective by ID.
func (s *ObjectiveService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete objective")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "objective not found")
	}
	return nil
}
