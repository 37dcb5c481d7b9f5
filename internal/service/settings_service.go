package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (models.SchoolSettings, error)
	Save(ctx context.Context, settings models.SchoolSettings) error
}

// SettingsInput carries a full settings replacement.
type SettingsInput struct {
	SchoolName            string                        `json:"schoolName" validate:"required"`
	SchoolAddress         string                        `json:"schoolAddress"`
	AcademicYear          string                        `json:"academicYear" validate:"required"`
	Semester              string                        `json:"semester" validate:"required"`
	PrincipalName         string                        `json:"principalName"`
	PrincipalNIP          string                        `json:"principalNip"`
	City                  string                        `json:"city"`
	ReportDate            string                        `json:"reportDate"`
	PrincipalSignatureURL string                        `json:"principalSignatureUrl"`
	SchoolStampURL        string                        `json:"schoolStampUrl"`
	Teachers              map[string]models.TeacherInfo `json:"teachers"`
}

// SettingsService orchestrates the singleton school settings.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Get returns the settings, materializing defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (models.SchoolSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return models.SchoolSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Save replaces the settings snapshot. Teacher entries for unknown
// classes are rejected; missing classes are backfilled on write.
func (s *SettingsService) Save(ctx context.Context, input SettingsInput) (models.SchoolSettings, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.SchoolSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	for class := range input.Teachers {
		if !models.IsValidClass(class) {
			return models.SchoolSettings{}, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", class))
		}
	}

	settings := models.SchoolSettings{
		SchoolName:            input.SchoolName,
		SchoolAddress:         input.SchoolAddress,
		AcademicYear:          input.AcademicYear,
		Semester:              input.Semester,
		PrincipalName:         input.PrincipalName,
		PrincipalNIP:          input.PrincipalNIP,
		City:                  input.City,
		ReportDate:            input.ReportDate,
		PrincipalSignatureURL: input.PrincipalSignatureURL,
		SchoolStampURL:        input.SchoolStampURL,
		Teachers:              input.Teachers,
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return models.SchoolSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	s.logger.Info("settings saved", zap.String("academicYear", settings.AcademicYear), zap.String("semester", settings.Semester))
	settings.EnsureTeachers()
	return settings, nil
}

// UpdateTeacher writes one class's homeroom teacher entry, keeping the
// rest of the snapshot intact.
func (s *SettingsService) UpdateTeacher(ctx context.Context, classLevel string, info models.TeacherInfo) (models.SchoolSettings, error) {
	if !models.IsValidClass(classLevel) {
		return models.SchoolSettings{}, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return models.SchoolSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	settings.Teachers[classLevel] = info
	if err := s.repo.Save(ctx, settings); err != nil {
		return models.SchoolSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return settings, nil
}
