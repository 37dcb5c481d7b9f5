package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type reportStudentReader interface {
	List(ctx context.Context) ([]models.Student, error)
}

type reportGradeReader interface {
	List(ctx context.Context) ([]models.Grade, error)
}

type reportAttendanceReader interface {
	Find(ctx context.Context, studentID string) (models.Attendance, error)
}

type reportSettingsReader interface {
	Get(ctx context.Context) (models.SchoolSettings, error)
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// ReportService composes printable documents from stored records. It is a
// pure projection layer: every formatting decision (rounding, dash
// placeholders, localized dates) happens here so the renderers and the
// API both see final display values.
type ReportService struct {
	students   reportStudentReader
	grades     reportGradeReader
	attendance reportAttendanceReader
	settings   reportSettingsReader
	ledger     *LedgerService
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(students reportStudentReader, grades reportGradeReader, attendance reportAttendanceReader, settings reportSettingsReader, ledger *LedgerService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:   students,
		grades:     grades,
		attendance: attendance,
		settings:   settings,
		ledger:     ledger,
		logger:     logger,
	}
}

// BuildReport composes the individual report sheet for a student.
func (s *ReportService) BuildReport(ctx context.Context, studentID string) (models.ReportDocument, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return models.ReportDocument{}, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.ReportDocument{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	grades, err := s.grades.List(ctx)
	if err != nil {
		return models.ReportDocument{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	attendance, err := s.attendance.Find(ctx, student.ID)
	if err != nil {
		return models.ReportDocument{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return composeReport(student, settings, grades, attendance), nil
}

// BuildClassReports composes report sheets for every student of a class,
// in roster order.
func (s *ReportService) BuildClassReports(ctx context.Context, classLevel string) ([]models.ReportDocument, error) {
	if !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	docs := make([]models.ReportDocument, 0)
	for _, student := range students {
		if student.ClassLevel != classLevel {
			continue
		}
		attendance, err := s.attendance.Find(ctx, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		docs = append(docs, composeReport(student, settings, grades, attendance))
	}
	if len(docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no students in %s", classLevel))
	}
	return docs, nil
}

// BuildCover composes the three-page report cover for a student.
func (s *ReportService) BuildCover(ctx context.Context, studentID string) (models.CoverDocument, error) {
	student, err := s.findStudent(ctx, studentID)
	if err != nil {
		return models.CoverDocument{}, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.CoverDocument{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return composeCover(student, settings), nil
}

// BuildClassCovers composes covers for every student of a class.
func (s *ReportService) BuildClassCovers(ctx context.Context, classLevel string) ([]models.CoverDocument, error) {
	if !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	docs := make([]models.CoverDocument, 0)
	for _, student := range students {
		if student.ClassLevel != classLevel {
			continue
		}
		docs = append(docs, composeCover(student, settings))
	}
	if len(docs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no students in %s", classLevel))
	}
	return docs, nil
}

// BuildLedger composes the class ledger from the ranked standings.
func (s *ReportService) BuildLedger(ctx context.Context, classLevel string) (models.LedgerDocument, error) {
	standings, err := s.ledger.ClassStanding(ctx, classLevel)
	if err != nil {
		return models.LedgerDocument{}, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.LedgerDocument{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	doc := models.LedgerDocument{
		SchoolName:   settings.SchoolName,
		ClassLevel:   classLevel,
		Semester:     semesterLabel(settings.Semester),
		AcademicYear: settings.AcademicYear,
		Subjects:     models.Subjects,
		DateLine:     dateLine(settings),
		Teacher:      teacherSignature(settings, classLevel),
	}
	if len(standings) == 0 {
		doc.Placeholder = "Belum ada data siswa untuk kelas ini."
		return doc, nil
	}

	for i, standing := range standings {
		row := models.LedgerRow{
			Seq:     i + 1,
			Name:    standing.Student.Name,
			NISN:    standing.Student.NISN,
			Total:   fmt.Sprintf("%.0f", standing.Total),
			Average: fmt.Sprintf("%.1f", standing.Average),
			Rank:    standing.Rank,
		}
		for _, subject := range models.Subjects {
			score := standing.Scores[subject]
			row.Scores = append(row.Scores, models.LedgerScore{
				TP:    scoreOrDash(score.TP),
				Final: scoreOrDash(score.Final),
			})
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc, nil
}

func (s *ReportService) findStudent(ctx context.Context, studentID string) (models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return models.Student{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	for _, student := range students {
		if student.ID == studentID {
			return student, nil
		}
	}
	return models.Student{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func composeReport(student models.Student, settings models.SchoolSettings, grades []models.Grade, attendance models.Attendance) models.ReportDocument {
	doc := models.ReportDocument{
		StudentName:   student.Name,
		NISN:          student.NISN,
		SchoolName:    settings.SchoolName,
		SchoolAddress: settings.SchoolAddress,
		ClassLevel:    student.ClassLevel,
		Fase:          faseOrDerived(student),
		Semester:      semesterLabel(settings.Semester),
		AcademicYear:  settings.AcademicYear,
		Attendance: models.AttendanceBlock{
			Sick:       countOrDash(attendance.Sick),
			Permission: countOrDash(attendance.Permission),
			Alpha:      countOrDash(attendance.Alpha),
		},
		TeacherNote: attendance.TeacherNote,
		DateLine:    dateLine(settings),
		Teacher:     teacherSignature(settings, student.ClassLevel),
		Principal: models.SignatureBlock{
			Role:         "Kepala Sekolah",
			Name:         settings.PrincipalName,
			NIP:          settings.PrincipalNIP,
			SignatureURL: settings.PrincipalSignatureURL,
			StampURL:     settings.SchoolStampURL,
		},
	}

	for i, subject := range models.Subjects {
		row := models.SubjectRow{No: i + 1, Subject: subject}
		if grade, ok := findGrade(grades, student.ID, subject); ok {
			avg := models.SubjectAverage(grade.TPScore, grade.FinalScore)
			row.Average = fmt.Sprintf("%d", int(math.Round(avg)))
			row.Competency = grade.Notes
		}
		doc.Subjects = append(doc.Subjects, row)
	}

	doc.Extracurricular = []models.ExtracurricularRow{
		{No: 1, Name: "Pramuka", Note: "-"},
		{No: 2, Name: "", Note: ""},
		{No: 3, Name: "", Note: ""},
	}
	return doc
}

func composeCover(student models.Student, settings models.SchoolSettings) models.CoverDocument {
	schoolRows := []models.LabelValue{
		{Label: "Nama Sekolah", Value: settings.SchoolName},
		{Label: "NPSN", Value: "-"},
		{Label: "Alamat Sekolah", Value: settings.SchoolAddress},
		{Label: "Kelurahan / Desa", Value: "-"},
		{Label: "Kecamatan", Value: "-"},
		{Label: "Kabupaten / Kota", Value: settings.City},
		{Label: "Provinsi", Value: "-"},
	}

	studentRows := []models.LabelValue{
		{Label: "Nama Peserta Didik", Value: student.Name},
		{Label: "NISN / NIS", Value: joinPair(student.NISN, student.NIPD)},
		{Label: "Tempat, Tanggal Lahir", Value: fmt.Sprintf("%s, %s", valueOrDash(student.BirthPlace), valueOrDash(formatIndonesianDate(student.BirthDate)))},
		{Label: "Jenis Kelamin", Value: genderLabel(student.Gender)},
		{Label: "Agama", Value: valueOrDash(student.Religion)},
		{Label: "Pendidikan Sebelumnya", Value: valueOrDash(student.PreviousEducation)},
		{Label: "Alamat Peserta Didik", Value: valueOrDash(student.Address)},
		{Label: "", Value: "Nama Orang Tua"},
		{Label: "a. Ayah", Value: valueOrDash(student.FatherName)},
		{Label: "b. Ibu", Value: valueOrDash(student.MotherName)},
		{Label: "", Value: "Pekerjaan Orang Tua"},
		{Label: "a. Ayah", Value: valueOrDash(student.FatherJob)},
		{Label: "b. Ibu", Value: valueOrDash(student.MotherJob)},
		{Label: "", Value: "Alamat Orang Tua"},
		{Label: "Jalan", Value: valueOrDash(student.ParentAddressStreet)},
		{Label: "Kelurahan / Desa", Value: valueOrDash(student.ParentAddressVillage)},
		{Label: "Kecamatan", Value: valueOrDash(student.ParentAddressDistrict)},
		{Label: "Kabupaten / Kota", Value: valueOrDash(student.ParentAddressCity)},
		{Label: "Provinsi", Value: valueOrDash(student.ParentAddressProvince)},
		{Label: "", Value: "Wali Peserta Didik"},
		{Label: "a. Nama", Value: valueOrDash(student.GuardianName)},
		{Label: "b. Pekerjaan", Value: valueOrDash(student.GuardianJob)},
		{Label: "c. Alamat", Value: valueOrDash(student.GuardianAddress)},
	}

	return models.CoverDocument{
		LogoURL:     settings.SchoolStampURL,
		SchoolName:  settings.SchoolName,
		StudentName: student.Name,
		NISN:        student.NISN,
		SchoolRows:  schoolRows,
		StudentRows: studentRows,
	}
}

func findGrade(grades []models.Grade, studentID, subject string) (models.Grade, bool) {
	for _, g := range grades {
		if g.StudentID == studentID && g.Subject == subject {
			return g, true
		}
	}
	return models.Grade{}, false
}

func teacherSignature(settings models.SchoolSettings, classLevel string) models.SignatureBlock {
	teacher := settings.Teachers[classLevel]
	return models.SignatureBlock{
		Role:         "Wali Kelas",
		Name:         teacher.Name,
		NIP:          teacher.NIP,
		SignatureURL: teacher.SignatureURL,
	}
}

// dateLine renders "City, 20 Desember 2025" from the stored report date.
func dateLine(settings models.SchoolSettings) string {
	return fmt.Sprintf("%s, %s", settings.City, formatIndonesianDate(settings.ReportDate))
}

func formatIndonesianDate(value string) string {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%d %s %d", parsed.Day(), indonesianMonths[parsed.Month()-1], parsed.Year())
}

func semesterLabel(semester string) string {
	switch semester {
	case "I", "1":
		return "I (Satu)"
	case "II", "2":
		return "II (Dua)"
	default:
		return semester
	}
}

func faseOrDerived(student models.Student) string {
	if student.Fase != "" {
		return student.Fase
	}
	return models.FaseForClass(student.ClassLevel)
}

func genderLabel(gender string) string {
	switch gender {
	case "L":
		return "Laki-laki"
	case "P":
		return "Perempuan"
	default:
		return valueOrDash(gender)
	}
}

func countOrDash(count int) string {
	if count == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", count)
}

func scoreOrDash(score float64) string {
	if score == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f", score)
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func joinPair(a, b string) string {
	return fmt.Sprintf("%s / %s", valueOrDash(a), valueOrDash(b))
}
