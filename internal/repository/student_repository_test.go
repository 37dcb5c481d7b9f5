package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

func studentSnapshot(t *testing.T, students []models.Student) []byte {
	payload, err := json.Marshal(students)
	require.NoError(t, err)
	return payload
}

func TestStudentRepositoryListEmptyWhenUnwritten(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()
	repo := NewStudentRepository(store)

	mock.ExpectQuery("SELECT payload FROM kv_snapshots").
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
}

func TestStudentRepositoryUpsertReplacesByID(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()
	repo := NewStudentRepository(store)

	existing := []models.Student{
		{ID: "s-1", Name: "Budi", ClassLevel: "Kelas 4"},
		{ID: "s-2", Name: "Siti", ClassLevel: "Kelas 4"},
	}
	mock.ExpectQuery("SELECT payload FROM kv_snapshots").
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(studentSnapshot(t, existing)))
	mock.ExpectExec("INSERT INTO kv_snapshots").
		WithArgs(KeyStudents, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), models.Student{ID: "s-2", Name: "Siti Aminah", ClassLevel: "Kelas 5"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryAppendKeepsDuplicateNISN(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()
	repo := NewStudentRepository(store)

	existing := []models.Student{{ID: "s-1", Name: "Budi", NISN: "0123"}}
	mock.ExpectQuery("SELECT payload FROM kv_snapshots").
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(studentSnapshot(t, existing)))

	var written []models.Student
	mock.ExpectExec("INSERT INTO kv_snapshots").
		WithArgs(KeyStudents, payloadCapture(&written)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), []models.Student{{ID: "s-9", Name: "Budi Lain", NISN: "0123"}})
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "0123", written[0].NISN)
	assert.Equal(t, "0123", written[1].NISN)
}

func TestStudentRepositoryDeleteLeavesOthers(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()
	repo := NewStudentRepository(store)

	existing := []models.Student{
		{ID: "s-1", Name: "Budi"},
		{ID: "s-2", Name: "Siti"},
	}
	mock.ExpectQuery("SELECT payload FROM kv_snapshots").
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(studentSnapshot(t, existing)))

	var written []models.Student
	mock.ExpectExec("INSERT INTO kv_snapshots").
		WithArgs(KeyStudents, payloadCapture(&written)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	removed, err := repo.Delete(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, removed)
	require.Len(t, written, 1)
	assert.Equal(t, "s-2", written[0].ID)
}

func TestStudentRepositoryDeleteUnknownID(t *testing.T) {
	store, mock, cleanup := newStoreMock(t)
	defer cleanup()
	repo := NewStudentRepository(store)

	mock.ExpectQuery("SELECT payload FROM kv_snapshots").
		WithArgs(KeyStudents).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(studentSnapshot(t, []models.Student{{ID: "s-1"}})))

	removed, err := repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, removed)
}
