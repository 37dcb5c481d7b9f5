package repository

import (
	"context"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// AttendanceRepository manages per-student absence counters.
type AttendanceRepository struct {
	store *Store
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(store *Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// List returns every attendance record.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	var records []models.Attendance
	if _, err := r.store.load(ctx, KeyAttendance, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Find returns the student's attendance record, or a zeroed record when
// none has been saved yet.
func (r *AttendanceRepository) Find(ctx context.Context, studentID string) (models.Attendance, error) {
	records, err := r.List(ctx)
	if err != nil {
		return models.Attendance{}, err
	}
	for _, record := range records {
		if record.StudentID == studentID {
			return record, nil
		}
	}
	return models.Attendance{StudentID: studentID}, nil
}

// Upsert stores an attendance record keyed by student ID.
func (r *AttendanceRepository) Upsert(ctx context.Context, record models.Attendance) error {
	records, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range records {
		if records[i].StudentID == record.StudentID {
			records[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, record)
	}
	return r.store.save(ctx, KeyAttendance, records)
}
