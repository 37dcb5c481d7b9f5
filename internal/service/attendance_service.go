package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context) ([]models.Attendance, error)
	Find(ctx context.Context, studentID string) (models.Attendance, error)
	Upsert(ctx context.Context, record models.Attendance) error
}

type attendanceStudentReader interface {
	List(ctx context.Context) ([]models.Student, error)
}

// AttendanceInput carries absence counters and the homeroom note.
type AttendanceInput struct {
	StudentID   string `json:"studentId" validate:"required"`
	Sick        int    `json:"sick" validate:"gte=0"`
	Permission  int    `json:"permission" validate:"gte=0"`
	Alpha       int    `json:"alpha" validate:"gte=0"`
	TeacherNote string `json:"teacherNote"`
}

// AttendanceService orchestrates attendance reads and upserts.
type AttendanceService struct {
	repo      attendanceRepository
	students  attendanceStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, students attendanceStudentReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, validator: validate, logger: logger}
}

// Find returns the student's attendance record. A student without a saved
// record gets zero counters, never an error.
func (s *AttendanceService) Find(ctx context.Context, studentID string) (models.Attendance, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return models.Attendance{}, err
	}
	record, err := s.repo.Find(ctx, studentID)
	if err != nil {
		return models.Attendance{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return record, nil
}

// Save upserts the student's attendance record.
func (s *AttendanceService) Save(ctx context.Context, input AttendanceInput) (models.Attendance, error) {
	if err := s.validator.Struct(input); err != nil {
		return models.Attendance{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := s.ensureStudent(ctx, input.StudentID); err != nil {
		return models.Attendance{}, err
	}
	record := models.Attendance{
		StudentID:   input.StudentID,
		Sick:        input.Sick,
		Permission:  input.Permission,
		Alpha:       input.Alpha,
		TeacherNote: input.TeacherNote,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return models.Attendance{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return record, nil
}

func (s *AttendanceService) ensureStudent(ctx context.Context, studentID string) error {
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
