package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

// studentImportColumns is the fixed column layout of the roster CSV. The
// file carries no class column: every row lands in the target class the
// operator selected. A row shorter than this is skipped, extra columns
// are ignored.
var studentImportColumns = []string{
	"nama", "nisn", "nipd", "jenis_kelamin",
	"tempat_lahir", "tanggal_lahir", "agama", "pendidikan_sebelumnya", "alamat",
	"nama_ayah", "nama_ibu", "pekerjaan_ayah", "pekerjaan_ibu", "alamat_jalan",
	"nama_wali", "pekerjaan_wali", "alamat_wali",
}

const objectiveImportColumns = 3 // mata_pelajaran;kode;deskripsi

type importStudentWriter interface {
	Append(ctx context.Context, batch []models.Student) error
}

type importObjectiveWriter interface {
	UpsertBatch(ctx context.Context, batch []models.LearningObjective) error
}

// RowResult reports the outcome of one CSV data row. Row numbering starts
// at 1 on the first data row, after the header.
type RowResult struct {
	Row     int    `json:"row"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ImportSummary aggregates a whole import run.
type ImportSummary struct {
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Rows     []RowResult `json:"rows"`
}

// ImportService maps uploaded CSV files onto domain records. Malformed
// rows never abort the run: each row succeeds or is reported individually.
type ImportService struct {
	students   importStudentWriter
	objectives importObjectiveWriter
	ledger     *LedgerService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(students importStudentWriter, objectives importObjectiveWriter, ledger *LedgerService, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, objectives: objectives, ledger: ledger, metrics: metrics, logger: logger}
}

// ImportStudents parses the 17-column roster CSV and appends every valid
// row to the target class; classLevel also decides each row's fase. Rows
// are appended even when the NISN already exists; cleaning up duplicates
// is an explicit roster edit, not an import-time guess.
func (s *ImportService) ImportStudents(ctx context.Context, classLevel string, r io.Reader) (*ImportSummary, error) {
	if !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	records, err := readCSV(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable csv file")
	}
	if len(records) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv has no data rows")
	}

	summary := &ImportSummary{}
	var batch []models.Student
	for i, record := range records[1:] {
		result := RowResult{Row: i + 1}
		if len(record) < len(studentImportColumns) {
			result.Status = "skipped"
			result.Message = fmt.Sprintf("expected %d columns, got %d", len(studentImportColumns), len(record))
			summary.Skipped++
			summary.Rows = append(summary.Rows, result)
			continue
		}
		student, err := studentFromRecord(record, classLevel)
		if err != nil {
			result.Status = "skipped"
			result.Message = err.Error()
			result.Name = strings.TrimSpace(record[0])
			summary.Skipped++
			summary.Rows = append(summary.Rows, result)
			continue
		}
		result.Status = "imported"
		result.Name = student.Name
		summary.Imported++
		summary.Rows = append(summary.Rows, result)
		batch = append(batch, student)
	}

	if len(batch) > 0 {
		if err := s.students.Append(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported students")
		}
		s.ledger.Invalidate(ctx)
	}
	s.metrics.RecordImportRows("students", summary.Imported, summary.Skipped)
	s.logger.Info("student import finished",
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// ImportObjectives parses the 3-column objective CSV
// (mata_pelajaran;kode;deskripsi) for one class.
func (s *ImportService) ImportObjectives(ctx context.Context, classLevel string, r io.Reader) (*ImportSummary, error) {
	if !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	records, err := readCSV(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable csv file")
	}
	if len(records) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv has no data rows")
	}

	summary := &ImportSummary{}
	var batch []models.LearningObjective
	for i, record := range records[1:] {
		result := RowResult{Row: i + 1}
		if len(record) < objectiveImportColumns {
			result.Status = "skipped"
			result.Message = fmt.Sprintf("expected %d columns, got %d", objectiveImportColumns, len(record))
			summary.Skipped++
			summary.Rows = append(summary.Rows, result)
			continue
		}
		subject := strings.TrimSpace(record[0])
		code := strings.TrimSpace(record[1])
		description := strings.TrimSpace(record[2])
		switch {
		case !models.IsValidSubject(subject):
			result.Status = "skipped"
			result.Message = fmt.Sprintf("unknown subject %q", subject)
		case code == "" || description == "":
			result.Status = "skipped"
			result.Message = "code and description are required"
		default:
			result.Status = "imported"
			result.Name = fmt.Sprintf("%s %s", subject, code)
			summary.Imported++
			summary.Rows = append(summary.Rows, result)
			batch = append(batch, models.LearningObjective{
				ID:          uuid.NewString(),
				ClassLevel:  classLevel,
				Subject:     subject,
				Code:        code,
				Description: description,
			})
			continue
		}
		summary.Skipped++
		summary.Rows = append(summary.Rows, result)
	}

	if len(batch) > 0 {
		if err := s.objectives.UpsertBatch(ctx, batch); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported objectives")
		}
	}
	s.metrics.RecordImportRows("objectives", summary.Imported, summary.Skipped)
	return summary, nil
}

func studentFromRecord(record []string, classLevel string) (models.Student, error) {
	get := func(i int) string { return strings.TrimSpace(record[i]) }
	orDefault := func(value, fallback string) string {
		if value == "" {
			return fallback
		}
		return value
	}

	name := get(0)
	if name == "" {
		return models.Student{}, fmt.Errorf("name is required")
	}
	nisn := get(1)
	if nisn == "" {
		return models.Student{}, fmt.Errorf("nisn is required")
	}
	gender := orDefault(strings.ToUpper(get(3)), "L")
	if gender != "L" && gender != "P" {
		return models.Student{}, fmt.Errorf("gender must be L or P, got %q", gender)
	}

	return models.Student{
		ID:         uuid.NewString(),
		Name:       name,
		NISN:       nisn,
		NIPD:       orDefault(get(2), "-"),
		Gender:     gender,
		ClassLevel: classLevel,
		Fase:       models.FaseForClass(classLevel),

		BirthPlace:        get(4),
		BirthDate:         get(5),
		Religion:          orDefault(get(6), "Islam"),
		PreviousEducation: get(7),
		Address:           get(8),

		FatherName: get(9),
		MotherName: get(10),
		FatherJob:  get(11),
		MotherJob:  get(12),

		ParentAddressStreet: get(13),

		GuardianName:    get(14),
		GuardianJob:     get(15),
		GuardianAddress: get(16),
	}, nil
}

// readCSV parses semicolon or comma separated content, tolerating ragged
// rows and a UTF-8 BOM.
func readCSV(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	content := strings.TrimPrefix(string(raw), "\uFEFF")

	delimiter := ';'
	if firstLine, _, found := strings.Cut(content, "\n"); found || firstLine != "" {
		if !strings.ContainsRune(firstLine, ';') && strings.ContainsRune(firstLine, ',') {
			delimiter = ','
		}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}
