package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

type fakeObjectiveRepo struct {
	objectives []models.LearningObjective
}

func (f *fakeObjectiveRepo) List(ctx context.Context) ([]models.LearningObjective, error) {
	return f.objectives, nil
}

func (f *fakeObjectiveRepo) Upsert(ctx context.Context, objective models.LearningObjective) (models.LearningObjective, error) {
	f.objectives = append(f.objectives, objective)
	return objective, nil
}

func (f *fakeObjectiveRepo) UpsertBatch(ctx context.Context, batch []models.LearningObjective) error {
	f.objectives = append(f.objectives, batch...)
	return nil
}

func (f *fakeObjectiveRepo) Delete(ctx context.Context, id string) (bool, error) {
	for i := range f.objectives {
		if f.objectives[i].ID == id {
			f.objectives = append(f.objectives[:i], f.objectives[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newTestImportService(students *fakeStudentRepo, objectives *fakeObjectiveRepo) *ImportService {
	ledger := NewLedgerService(students, &fakeGradeRepo{}, nil, nil)
	return NewImportService(students, objectives, ledger, nil, nil)
}

const studentCSVHeader = "nama;nisn;nipd;jenis_kelamin;tempat_lahir;tanggal_lahir;agama;pendidikan_sebelumnya;alamat;nama_ayah;nama_ibu;pekerjaan_ayah;pekerjaan_ibu;alamat_jalan;nama_wali;pekerjaan_wali;alamat_wali"

func TestImportStudentsSingleRow(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi Santoso;0123456789;456;L;Palembang;2016-03-05;Islam;TK Melati;Muara Padang;Santoso;Aminah;Petani;IRT;Jl. Mawar No. 3;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, students.students, 1)

	imported := students.students[0]
	assert.NotEmpty(t, imported.ID)
	assert.Equal(t, "Budi Santoso", imported.Name)
	assert.Equal(t, "Kelas 4", imported.ClassLevel)
	assert.Equal(t, "B", imported.Fase)
	assert.Equal(t, "Islam", imported.Religion)
	assert.Equal(t, "Jl. Mawar No. 3", imported.ParentAddressStreet)
}

func TestImportStudentsClassComesFromTarget(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi;0123;456;L;;;;;;;;;;;;;\n" +
		"Siti;0124;457;P;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 6", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Imported)
	require.Len(t, students.students, 2)
	for _, student := range students.students {
		assert.Equal(t, "Kelas 6", student.ClassLevel)
		assert.Equal(t, "C", student.Fase)
	}
}

func TestImportStudentsUnknownTargetClass(t *testing.T) {
	svc := newTestImportService(&fakeStudentRepo{}, &fakeObjectiveRepo{})
	_, err := svc.ImportStudents(context.Background(), "Kelas 9",
		strings.NewReader(studentCSVHeader+"\nBudi;0123;;;;;;;;;;;;;;;"))
	assert.Error(t, err)
}

func TestImportStudentsSkipsShortRow(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi;0123;456;L\n" +
		"Siti Aminah;0124;457;P;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, "skipped", summary.Rows[0].Status)
	assert.Contains(t, summary.Rows[0].Message, "columns")
	assert.Equal(t, "imported", summary.Rows[1].Status)
	require.Len(t, students.students, 1)
	assert.Equal(t, "Siti Aminah", students.students[0].Name)
}

func TestImportStudentsSkipsEmptyNISN(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi Santoso;;456;L;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Rows, 1)
	assert.Contains(t, summary.Rows[0].Message, "nisn")
	assert.Empty(t, students.students)
}

func TestImportStudentsAppliesDefaults(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi Santoso;0123456789;;;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	require.Len(t, students.students, 1)

	imported := students.students[0]
	assert.Equal(t, "-", imported.NIPD)
	assert.Equal(t, "L", imported.Gender)
	assert.Equal(t, "Islam", imported.Religion)
}

func TestImportStudentsAppendsDuplicateNISN(t *testing.T) {
	students := &fakeStudentRepo{students: []models.Student{{ID: "s-1", Name: "Budi", NISN: "0123", ClassLevel: "Kelas 4"}}}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := studentCSVHeader + "\n" +
		"Budi Lain;0123;999;L;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Len(t, students.students, 2)
}

func TestImportStudentsCommaDelimited(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := strings.ReplaceAll(studentCSVHeader, ";", ",") + "\n" +
		"Budi,0123,456,L,,,,,,,,,,,,,"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
}

func TestImportStudentsStripsBOM(t *testing.T) {
	students := &fakeStudentRepo{}
	svc := newTestImportService(students, &fakeObjectiveRepo{})

	csv := "\uFEFF" + studentCSVHeader + "\n" +
		"Budi;0123;456;L;;;;;;;;;;;;;"

	summary, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
}

func TestImportStudentsNoDataRows(t *testing.T) {
	svc := newTestImportService(&fakeStudentRepo{}, &fakeObjectiveRepo{})
	_, err := svc.ImportStudents(context.Background(), "Kelas 4", strings.NewReader(studentCSVHeader))
	assert.Error(t, err)
}

func TestImportObjectives(t *testing.T) {
	objectives := &fakeObjectiveRepo{}
	svc := newTestImportService(&fakeStudentRepo{}, objectives)

	csv := "mata_pelajaran;kode;deskripsi\n" +
		"Matematika;4.1;Membaca bilangan cacah sampai 10.000\n" +
		"Fisika;4.2;Bukan mata pelajaran SD\n" +
		"IPAS;;\n"

	summary, err := svc.ImportObjectives(context.Background(), "Kelas 4", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	require.Len(t, objectives.objectives, 1)
	assert.Equal(t, "Kelas 4", objectives.objectives[0].ClassLevel)
	assert.Equal(t, "Matematika", objectives.objectives[0].Subject)
	assert.Equal(t, "4.1", objectives.objectives[0].Code)
}

func TestImportObjectivesUnknownClass(t *testing.T) {
	svc := newTestImportService(&fakeStudentRepo{}, &fakeObjectiveRepo{})
	_, err := svc.ImportObjectives(context.Background(), "Kelas X", strings.NewReader("a;b;c\n1;2;3"))
	assert.Error(t, err)
}
