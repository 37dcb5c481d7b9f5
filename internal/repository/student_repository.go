package repository

import (
	"context"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// StudentRepository manages the student roster snapshot.
type StudentRepository struct {
	store *Store
}

// NewStudentRepository instantiates the repository.
func NewStudentRepository(store *Store) *StudentRepository {
	return &StudentRepository{store: store}
}

// List returns every student in stored order.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if _, err := r.store.load(ctx, KeyStudents, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Upsert replaces the student with the same ID or appends a new one.
func (r *StudentRepository) Upsert(ctx context.Context, student models.Student) error {
	students, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range students {
		if students[i].ID == student.ID {
			students[i] = student
			replaced = true
			break
		}
	}
	if !replaced {
		students = append(students, student)
	}
	return r.store.save(ctx, KeyStudents, students)
}

// Append adds the given students to the roster without deduplication;
// imported rows become new records even when the NISN already exists.
func (r *StudentRepository) Append(ctx context.Context, batch []models.Student) error {
	if len(batch) == 0 {
		return nil
	}
	students, err := r.List(ctx)
	if err != nil {
		return err
	}
	students = append(students, batch...)
	return r.store.save(ctx, KeyStudents, students)
}

// Replace overwrites the whole roster.
func (r *StudentRepository) Replace(ctx context.Context, students []models.Student) error {
	return r.store.save(ctx, KeyStudents, students)
}

// Delete removes a student by ID. Grade and attendance records for the
// student are intentionally left in place.
func (r *StudentRepository) Delete(ctx context.Context, id string) (bool, error) {
	students, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	kept := students[:0]
	removed := false
	for _, s := range students {
		if s.ID == id {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return false, nil
	}
	return true, r.store.save(ctx, KeyStudents, kept)
}
