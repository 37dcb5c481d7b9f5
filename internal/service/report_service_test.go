package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

type fakeAttendanceRepo struct {
	records []models.Attendance
}

func (f *fakeAttendanceRepo) List(ctx context.Context) ([]models.Attendance, error) {
	return f.records, nil
}

func (f *fakeAttendanceRepo) Find(ctx context.Context, studentID string) (models.Attendance, error) {
	for _, record := range f.records {
		if record.StudentID == studentID {
			return record, nil
		}
	}
	return models.Attendance{StudentID: studentID}, nil
}

func (f *fakeAttendanceRepo) Upsert(ctx context.Context, record models.Attendance) error {
	for i := range f.records {
		if f.records[i].StudentID == record.StudentID {
			f.records[i] = record
			return nil
		}
	}
	f.records = append(f.records, record)
	return nil
}

type fakeSettingsRepo struct {
	settings models.SchoolSettings
}

func (f *fakeSettingsRepo) Get(ctx context.Context) (models.SchoolSettings, error) {
	f.settings.EnsureTeachers()
	return f.settings, nil
}

func (f *fakeSettingsRepo) Save(ctx context.Context, settings models.SchoolSettings) error {
	f.settings = settings
	return nil
}

func newTestReportService(students []models.Student, grades []models.Grade, attendance []models.Attendance, settings models.SchoolSettings) *ReportService {
	studentRepo := &fakeStudentRepo{students: students}
	gradeRepo := &fakeGradeRepo{grades: grades}
	ledger := NewLedgerService(studentRepo, gradeRepo, nil, nil)
	return NewReportService(studentRepo, gradeRepo, &fakeAttendanceRepo{records: attendance}, &fakeSettingsRepo{settings: settings}, ledger, nil)
}

func testSettings() models.SchoolSettings {
	settings := models.DefaultSettings()
	settings.City = "Muara Padang"
	settings.ReportDate = "2025-12-20"
	settings.Teachers["Kelas 4"] = models.TeacherInfo{Name: "Ibu Ani", NIP: "1987"}
	return settings
}

func TestBuildReportRoundsDisplayAverage(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4", NISN: "0123"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90}}
	svc := newTestReportService(students, grades, nil, testSettings())

	doc, err := svc.BuildReport(context.Background(), "s-1")
	require.NoError(t, err)

	row := subjectRow(t, doc, "Matematika")
	assert.Equal(t, "85", row.Average)
}

func TestBuildReportZeroGradeRecordShowsZero(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	// A saved record with both scores zero is shown as "0", unlike a
	// missing record which stays blank.
	grades := []models.Grade{{StudentID: "s-1", Subject: "BTA", TPScore: 0, FinalScore: 0}}
	svc := newTestReportService(students, grades, nil, testSettings())

	doc, err := svc.BuildReport(context.Background(), "s-1")
	require.NoError(t, err)

	assert.Equal(t, "0", subjectRow(t, doc, "BTA").Average)
	assert.Equal(t, "", subjectRow(t, doc, "Matematika").Average)
}

func TestBuildReportAttendanceZeroRendersDash(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	attendance := []models.Attendance{{StudentID: "s-1", Sick: 2, Permission: 0, Alpha: 0, TeacherNote: "Rajin."}}
	svc := newTestReportService(students, nil, attendance, testSettings())

	doc, err := svc.BuildReport(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "2", doc.Attendance.Sick)
	assert.Equal(t, "-", doc.Attendance.Permission)
	assert.Equal(t, "-", doc.Attendance.Alpha)
	assert.Equal(t, "Rajin.", doc.TeacherNote)
}

func TestBuildReportDateLineAndSignatures(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	svc := newTestReportService(students, nil, nil, testSettings())

	doc, err := svc.BuildReport(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Muara Padang, 20 Desember 2025", doc.DateLine)
	assert.Equal(t, "Ibu Ani", doc.Teacher.Name)
	assert.Equal(t, "Kepala Sekolah", doc.Principal.Name)
	assert.Equal(t, "B", doc.Fase)
}

func TestBuildReportUnknownStudent(t *testing.T) {
	svc := newTestReportService(nil, nil, nil, testSettings())
	_, err := svc.BuildReport(context.Background(), "missing")
	assert.Error(t, err)
}

func TestBuildClassReportsKeepsRosterOrder(t *testing.T) {
	students := []models.Student{
		{ID: "s-1", Name: "Citra", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Adi", ClassLevel: "Kelas 4"},
		{ID: "s-3", Name: "Budi", ClassLevel: "Kelas 5"},
	}
	svc := newTestReportService(students, nil, nil, testSettings())

	docs, err := svc.BuildClassReports(context.Background(), "Kelas 4")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Citra", docs[0].StudentName)
	assert.Equal(t, "Adi", docs[1].StudentName)
}

func TestBuildCoverIdentityRows(t *testing.T) {
	students := []models.Student{{
		ID: "s-1", Name: "Budi Santoso", NISN: "0123", NIPD: "456",
		ClassLevel: "Kelas 4", Gender: "L",
		BirthPlace: "Palembang", BirthDate: "2016-03-05",
		FatherName: "Santoso",
	}}
	svc := newTestReportService(students, nil, nil, testSettings())

	doc, err := svc.BuildCover(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi Santoso", doc.StudentName)
	assert.Equal(t, "SDN 22 Muara Padang", doc.SchoolName)

	rows := map[string]string{}
	for _, row := range doc.StudentRows {
		if row.Label != "" {
			rows[row.Label] = row.Value
		}
	}
	assert.Equal(t, "0123 / 456", rows["NISN / NIS"])
	assert.Equal(t, "Palembang, 5 Maret 2016", rows["Tempat, Tanggal Lahir"])
	assert.Equal(t, "Laki-laki", rows["Jenis Kelamin"])
}

func TestBuildLedgerFormatsScores(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", NISN: "0123", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90}}
	svc := newTestReportService(students, grades, nil, testSettings())

	doc, err := svc.BuildLedger(context.Background(), "Kelas 4")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	row := doc.Rows[0]

	mathIdx := subjectIndex(t, "Matematika")
	assert.Equal(t, "80", row.Scores[mathIdx].TP)
	assert.Equal(t, "90", row.Scores[mathIdx].Final)

	ipasIdx := subjectIndex(t, "IPAS")
	assert.Equal(t, "-", row.Scores[ipasIdx].TP)
	assert.Equal(t, "-", row.Scores[ipasIdx].Final)

	assert.Equal(t, "85", row.Total)
	assert.Equal(t, "8.5", row.Average)
	assert.Equal(t, 1, row.Rank)
}

func TestBuildLedgerEmptyClassPlaceholder(t *testing.T) {
	svc := newTestReportService(nil, nil, nil, testSettings())

	doc, err := svc.BuildLedger(context.Background(), "Kelas 6")
	require.NoError(t, err)
	assert.Empty(t, doc.Rows)
	assert.Equal(t, "Belum ada data siswa untuk kelas ini.", doc.Placeholder)
}

func subjectRow(t *testing.T, doc models.ReportDocument, subject string) models.SubjectRow {
	t.Helper()
	for _, row := range doc.Subjects {
		if row.Subject == subject {
			return row
		}
	}
	t.Fatalf("subject %s not in document", subject)
	return models.SubjectRow{}
}

func subjectIndex(t *testing.T, subject string) int {
	t.Helper()
	for i, s := range models.Subjects {
		if s == subject {
			return i
		}
	}
	t.Fatalf("subject %s not enumerated", subject)
	return -1
}
