package repository

import (
	"context"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// GradeRepository manages the grade snapshot. (studentId, subject) is the
// natural key; an upsert replaces the matching record.
type GradeRepository struct {
	store *Store
}

// NewGradeRepository instantiates the repository.
func NewGradeRepository(store *Store) *GradeRepository {
	return &GradeRepository{store: store}
}

// List returns every grade record.
func (r *GradeRepository) List(ctx context.Context) ([]models.Grade, error) {
	var grades []models.Grade
	if _, err := r.store.load(ctx, KeyGrades, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

// Upsert stores a grade, replacing any record for the same student and
// subject.
func (r *GradeRepository) Upsert(ctx context.Context, grade models.Grade) error {
	grades, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range grades {
		if grades[i].StudentID == grade.StudentID && grades[i].Subject == grade.Subject {
			grades[i] = grade
			replaced = true
			break
		}
	}
	if !replaced {
		grades = append(grades, grade)
	}
	return r.store.save(ctx, KeyGrades, grades)
}
