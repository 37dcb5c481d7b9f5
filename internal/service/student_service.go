package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	Upsert(ctx context.Context, student models.Student) error
	Append(ctx context.Context, batch []models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

// StudentInput carries a create or update payload.
type StudentInput struct {
	Name       string `json:"name" validate:"required"`
	NISN       string `json:"nisn"`
	NIPD       string `json:"nipd"`
	Gender     string `json:"gender" validate:"omitempty,oneof=L P"`
	ClassLevel string `json:"classLevel" validate:"required"`

	BirthPlace        string `json:"birthPlace"`
	BirthDate         string `json:"birthDate"`
	Religion          string `json:"religion"`
	PreviousEducation string `json:"previousEducation"`
	Address           string `json:"address"`

	FatherName string `json:"fatherName"`
	MotherName string `json:"motherName"`
	FatherJob  string `json:"fatherJob"`
	MotherJob  string `json:"motherJob"`

	ParentAddressStreet   string `json:"parentAddressStreet"`
	ParentAddressVillage  string `json:"parentAddressVillage"`
	ParentAddressDistrict string `json:"parentAddressDistrict"`
	ParentAddressCity     string `json:"parentAddressCity"`
	ParentAddressProvince string `json:"parentAddressProvince"`

	GuardianName    string `json:"guardianName"`
	GuardianJob     string `json:"guardianJob"`
	GuardianAddress string `json:"guardianAddress"`
}

// StudentService orchestrates roster reads and mutations. Every mutation
// invalidates the standing cache.
type StudentService struct {
	repo      studentRepository
	ledger    *LedgerService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, ledger *LedgerService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, ledger: ledger, validator: validate, logger: logger}
}

// List returns students, optionally scoped to one class, sorted by name.
func (s *StudentService) List(ctx context.Context, classLevel string) ([]models.Student, error) {
	if classLevel != "" && !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if classLevel != "" {
		students = filterByClass(students, classLevel)
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	for _, student := range students {
		if student.ID == id {
			return student, nil
		}
	}
	return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// Create adds a new student. The fase is always derived from the class.
func (s *StudentService) Create(ctx context.Context, input StudentInput) (models.Student, error) {
	student, err := s.buildStudent(uuid.NewString(), input)
	if err != nil {
		return models.Student{}, err
	}
	if err := s.repo.Append(ctx, []models.Student{student}); err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	s.ledger.Invalidate(ctx)
	s.logger.Info("student created", zap.String("id", student.ID), zap.String("class", student.ClassLevel))
	return student, nil
}

// Update replaces a student record.
func (s *StudentService) Update(ctx context.Context, id string, input StudentInput) (models.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Student{}, err
	}
	student, err := s.buildStudent(id, input)
	if err != nil {
		return models.Student{}, err
	}
	if err := s.repo.Upsert(ctx, student); err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	s.ledger.Invalidate(ctx)
	return student, nil
}

// Delete removes a student. Grade and attendance records are kept; they
// simply stop being reachable through the roster.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.ledger.Invalidate(ctx)
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}

func (s *StudentService) buildStudent(id string, input StudentInput) (models.Student, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.IsValidClass(input.ClassLevel) {
		return models.Student{}, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", input.ClassLevel))
	}
	return models.Student{
		ID:         id,
		Name:       input.Name,
		NISN:       input.NISN,
		NIPD:       input.NIPD,
		Gender:     input.Gender,
		ClassLevel: input.ClassLevel,
		Fase:       models.FaseForClass(input.ClassLevel),

		BirthPlace:        input.BirthPlace,
		BirthDate:         input.BirthDate,
		Religion:          input.Religion,
		PreviousEducation: input.PreviousEducation,
		Address:           input.Address,

		FatherName: input.FatherName,
		MotherName: input.MotherName,
		FatherJob:  input.FatherJob,
		MotherJob:  input.MotherJob,

		ParentAddressStreet:   input.ParentAddressStreet,
		ParentAddressVillage:  input.ParentAddressVillage,
		ParentAddressDistrict: input.ParentAddressDistrict,
		ParentAddressCity:     input.ParentAddressCity,
		ParentAddressProvince: input.ParentAddressProvince,

		GuardianName:    input.GuardianName,
		GuardianJob:     input.GuardianJob,
		GuardianAddress: input.GuardianAddress,
	}, nil
}
