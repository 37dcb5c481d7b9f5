package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
	Upsert(ctx context.Context, grade models.Grade) error
}

type gradeStudentReader interface {
	List(ctx context.Context) ([]models.Student, error)
}

// GradeInput carries a grade save payload. Out-of-range scores are
// rejected, not clamped.
type GradeInput struct {
	StudentID      string  `json:"studentId" validate:"required"`
	Subject        string  `json:"subject" validate:"required"`
	TPScore        float64 `json:"tpScore" validate:"gte=0,lte=100"`
	FinalScore     float64 `json:"finalScore" validate:"gte=0,lte=100"`
	KnowledgeScore float64 `json:"knowledgeScore" validate:"gte=0,lte=100"`
	SkillScore     float64 `json:"skillScore" validate:"gte=0,lte=100"`
	Notes          string  `json:"notes"`
}

// GradeService orchestrates grade reads and upserts.
type GradeService struct {
	repo      gradeRepository
	students  gradeStudentReader
	ledger    *LedgerService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, students gradeStudentReader, ledger *LedgerService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, ledger: ledger, validator: validate, logger: logger}
}

// List returns grades, optionally filtered by student and subject.
func (s *GradeService) List(ctx context.Context, studentID, subject string) ([]models.Grade, error) {
	if subject != "" && !models.IsValidSubject(subject) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSubject, fmt.Sprintf("unknown subject %q", subject))
	}
	grades, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	filtered := make([]models.Grade, 0, len(grades))
	for _, grade := range grades {
		if studentID != "" && grade.StudentID != studentID {
			continue
		}
		if subject != "" && grade.Subject != subject {
			continue
		}
		filtered = append(filtered, grade)
	}
	return filtered, nil
}

// Save upserts one grade record keyed by student and subject.
func (s *GradeService) Save(ctx context.Context, input GradeInput) (models.Grade, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Grade{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !models.IsValidSubject(input.Subject) {
		return models.Grade{}, appErrors.Clone(appErrors.ErrUnknownSubject, fmt.Sprintf("unknown subject %q", input.Subject))
	}
	if err := s.ensureStudent(ctx, input.StudentID); err != nil {
		return models.Grade{}, err
	}

	grade := models.Grade{
		StudentID:      input.StudentID,
		Subject:        input.Subject,
		TPScore:        input.TPScore,
		FinalScore:     input.FinalScore,
		KnowledgeScore: input.KnowledgeScore,
		SkillScore:     input.SkillScore,
		Notes:          input.Notes,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return models.Grade{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade")
	}
	s.ledger.Invalidate(ctx)
	s.logger.Debug("grade saved",
		zap.String("studentId", grade.StudentID),
		zap.String("subject", grade.Subject))
	return grade, nil
}

func (s *GradeService) ensureStudent(ctx context.Context, studentID string) error {
	students, err := s.students.List(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	for _, student := range students {
		if student.ID == studentID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "student not found")
}
