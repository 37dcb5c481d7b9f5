package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// Seeder populates an empty database with a starter roster and a few
// learning objectives so a fresh install is usable immediately. It only
// runs when seeding is enabled and the student snapshot has never been
// written.
type Seeder struct {
	store      *Store
	students   *StudentRepository
	objectives *ObjectiveRepository
	logger     *zap.Logger
}

// NewSeeder instantiates the seeder.
func NewSeeder(store *Store, students *StudentRepository, objectives *ObjectiveRepository, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, students: students, objectives: objectives, logger: logger}
}

// Run seeds starter data when the store is empty.
func (s *Seeder) Run(ctx context.Context) error {
	_, found, err := s.store.Get(ctx, KeyStudents)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	roster := starterRoster()
	if err := s.students.Replace(ctx, roster); err != nil {
		return err
	}
	if err := s.objectives.UpsertBatch(ctx, starterObjectives()); err != nil {
		return err
	}
	s.logger.Info("seeded starter data",
		zap.Int("students", len(roster)))
	return nil
}

func starterRoster() []models.Student {
	names := []struct {
		name   string
		gender string
		class  string
	}{
		{"Adinda Putri Lestari", "P", "Kelas 4"},
		{"Bagas Saputra", "L", "Kelas 4"},
		{"Citra Ayu Ningsih", "P", "Kelas 4"},
		{"Dimas Prasetyo", "L", "Kelas 5"},
		{"Eka Rahmawati", "P", "Kelas 5"},
		{"Fajar Hidayat", "L", "Kelas 6"},
	}
	students := make([]models.Student, 0, len(names))
	for i, n := range names {
		students = append(students, models.Student{
			ID:         uuid.NewString(),
			Name:       n.name,
			NISN:       fmt.Sprintf("31%08d", 40216800+i),
			Gender:     n.gender,
			ClassLevel: n.class,
			Fase:       models.FaseForClass(n.class),
			Religion:   "Islam",
			Address:    "Muara Padang",
		})
	}
	return students
}

func starterObjectives() []models.LearningObjective {
	entries := []struct {
		class, subject, code, description string
	}{
		{"Kelas 4", "Matematika", "4.1", "Membaca dan menulis bilangan cacah sampai 10.000 serta menentukan nilai tempatnya."},
		{"Kelas 4", "Bahasa Indonesia", "4.1", "Memahami ide pokok dan informasi penting dari teks yang dibacakan."},
		{"Kelas 5", "IPAS", "5.1", "Mendeskripsikan siklus air dan kaitannya dengan kelestarian lingkungan."},
		{"Kelas 6", "Pendidikan Pancasila", "6.1", "Menerapkan nilai-nilai Pancasila dalam kehidupan sehari-hari di sekolah."},
	}
	objectives := make([]models.LearningObjective, 0, len(entries))
	for _, e := range entries {
		objectives = append(objectives, models.LearningObjective{
			ID:          uuid.NewString(),
			ClassLevel:  e.class,
			Subject:     e.subject,
			Code:        e.code,
			Description: e.description,
		})
	}
	return objectives
}
