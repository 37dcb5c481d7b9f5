package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

type fakeStudentRepo struct {
	students []models.Student
}

func (f *fakeStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	return f.students, nil
}

func (f *fakeStudentRepo) Upsert(ctx context.Context, student models.Student) error {
	for i := range f.students {
		if f.students[i].ID == student.ID {
			f.students[i] = student
			return nil
		}
	}
	f.students = append(f.students, student)
	return nil
}

func (f *fakeStudentRepo) Append(ctx context.Context, batch []models.Student) error {
	f.students = append(f.students, batch...)
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i := range f.students {
		if f.students[i].ID == id {
			f.students = append(f.students[:i], f.students[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeGradeRepo struct {
	grades []models.Grade
}

func (f *fakeGradeRepo) List(ctx context.Context) ([]models.Grade, error) {
	return f.grades, nil
}

func (f *fakeGradeRepo) Upsert(ctx context.Context, grade models.Grade) error {
	for i := range f.grades {
		if f.grades[i].StudentID == grade.StudentID && f.grades[i].Subject == grade.Subject {
			f.grades[i] = grade
			return nil
		}
	}
	f.grades = append(f.grades, grade)
	return nil
}

func newTestLedger(students []models.Student, grades []models.Grade) *LedgerService {
	return NewLedgerService(&fakeStudentRepo{students: students}, &fakeGradeRepo{grades: grades}, nil, nil)
}

func TestClassStandingStudentWithoutGrades(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	ledger := newTestLedger(students, nil)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Zero(t, standings[0].Total)
	assert.Zero(t, standings[0].Average)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Len(t, standings[0].Scores, len(models.Subjects))
}

func TestClassStandingAveragesSubjectPairs(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "Matematika", TPScore: 80, FinalScore: 90}}
	ledger := newTestLedger(students, grades)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	score := standings[0].Scores["Matematika"]
	assert.Equal(t, 85.0, score.Average)
	// Ranking keeps the precise value, not the rounded display one.
	assert.Equal(t, 85.0, standings[0].Total)
	assert.InDelta(t, 8.5, standings[0].Average, 1e-9)
}

func TestClassStandingSingleSidedScoreStillAverages(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{{StudentID: "s-1", Subject: "IPAS", TPScore: 80, FinalScore: 0}}
	ledger := newTestLedger(students, grades)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	assert.Equal(t, 40.0, standings[0].Scores["IPAS"].Average)
}

func TestClassStandingRanksByAverageDesc(t *testing.T) {
	students := []models.Student{
		{ID: "s-1", Name: "Adi", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Budi", ClassLevel: "Kelas 4"},
	}
	grades := gradeAllSubjects("s-1", 70)
	grades = append(grades, gradeAllSubjects("s-2", 80)...)
	ledger := newTestLedger(students, grades)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "Budi", standings[0].Student.Name)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "Adi", standings[1].Student.Name)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestClassStandingTieBreaksByNameThenID(t *testing.T) {
	students := []models.Student{
		{ID: "s-9", Name: "Citra", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Budi", ClassLevel: "Kelas 4"},
		{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"},
	}
	var grades []models.Grade
	for _, s := range students {
		grades = append(grades, gradeAllSubjects(s.ID, 75)...)
	}
	ledger := newTestLedger(students, grades)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, "s-1", standings[0].Student.ID)
	assert.Equal(t, "s-2", standings[1].Student.ID)
	assert.Equal(t, "Citra", standings[2].Student.Name)
	// Tied averages still get distinct, contiguous ranks.
	assert.Equal(t, []int{1, 2, 3}, []int{standings[0].Rank, standings[1].Rank, standings[2].Rank})
}

func TestClassStandingDeterministic(t *testing.T) {
	students := []models.Student{
		{ID: "s-3", Name: "Citra", ClassLevel: "Kelas 4"},
		{ID: "s-1", Name: "Adi", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Budi", ClassLevel: "Kelas 4"},
	}
	grades := append(gradeAllSubjects("s-1", 82), gradeAllSubjects("s-2", 82)...)
	grades = append(grades, gradeAllSubjects("s-3", 90)...)
	ledger := newTestLedger(students, grades)

	first, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	second, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClassStandingAverageIsTotalOverSubjectCount(t *testing.T) {
	students := []models.Student{{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"}}
	grades := []models.Grade{
		{StudentID: "s-1", Subject: "Matematika", TPScore: 90, FinalScore: 80},
		{StudentID: "s-1", Subject: "PJOK", TPScore: 60, FinalScore: 70},
	}
	ledger := newTestLedger(students, grades)

	standings, err := ledger.ClassStanding(context.Background(), "Kelas 4")
	require.NoError(t, err)
	standing := standings[0]
	sum := 0.0
	for _, subject := range models.Subjects {
		sum += standing.Scores[subject].Average
	}
	assert.InDelta(t, sum, standing.Total, 1e-9)
	assert.InDelta(t, sum/float64(len(models.Subjects)), standing.Average, 1e-9)
}

func TestClassStandingRejectsUnknownClass(t *testing.T) {
	ledger := newTestLedger(nil, nil)
	_, err := ledger.ClassStanding(context.Background(), "Kelas 7")
	assert.Error(t, err)
}

func TestStudentStandingFindsEntry(t *testing.T) {
	students := []models.Student{
		{ID: "s-1", Name: "Adi", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Budi", ClassLevel: "Kelas 4"},
	}
	ledger := newTestLedger(students, gradeAllSubjects("s-2", 88))

	standing, err := ledger.StudentStanding(context.Background(), students[1])
	require.NoError(t, err)
	assert.Equal(t, "s-2", standing.Student.ID)
	assert.Equal(t, 1, standing.Rank)
}

func gradeAllSubjects(studentID string, score float64) []models.Grade {
	grades := make([]models.Grade, 0, len(models.Subjects))
	for _, subject := range models.Subjects {
		grades = append(grades, models.Grade{
			StudentID:  studentID,
			Subject:    subject,
			TPScore:    score,
			FinalScore: score,
		})
	}
	return grades
}
