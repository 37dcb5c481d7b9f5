package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type standingStudentReader interface {
	List(ctx context.Context) ([]models.Student, error)
}

type standingGradeReader interface {
	List(ctx context.Context) ([]models.Grade, error)
}

// LedgerService computes class standings: per-subject score triples, the
// overall average over the fixed subject list and the resulting rank.
type LedgerService struct {
	students standingStudentReader
	grades   standingGradeReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(students standingStudentReader, grades standingGradeReader, cache *CacheService, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{students: students, grades: grades, cache: cache, logger: logger}
}

func standingCacheKey(classLevel string) string {
	return fmt.Sprintf("standings:%s", classLevel)
}

// ClassStanding returns the ranked standings for one class, ordered by
// rank.
func (s *LedgerService) ClassStanding(ctx context.Context, classLevel string) ([]models.StudentStanding, error) {
	if !models.IsValidClass(classLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", classLevel))
	}

	var cached []models.StudentStanding
	if s.cache.Get(ctx, standingCacheKey(classLevel), &cached) {
		return cached, nil
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	standings := ComputeStandings(filterByClass(students, classLevel), grades)
	s.cache.Set(ctx, standingCacheKey(classLevel), standings)
	return standings, nil
}

// StudentStanding returns one student's entry from their class standings.
func (s *LedgerService) StudentStanding(ctx context.Context, student models.Student) (models.StudentStanding, error) {
	standings, err := s.ClassStanding(ctx, student.ClassLevel)
	if err != nil {
		return models.StudentStanding{}, err
	}
	for _, standing := range standings {
		if standing.Student.ID == student.ID {
			return standing, nil
		}
	}
	return models.StudentStanding{}, appErrors.Clone(appErrors.ErrNotFound, "student not found in class standings")
}

// Invalidate drops every cached standing. Write paths call it after any
// student or grade mutation.
func (s *LedgerService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, "standings:*")
}

// ComputeStandings is the pure aggregation core. Every student gets a
// score triple for every enumerated subject; a missing grade record
// counts as zero. Ranks are assigned after sorting by average descending
// with ties broken by name, then by student ID, so reruns over the same
// data always produce the same order.
func ComputeStandings(students []models.Student, grades []models.Grade) []models.StudentStanding {
	type gradeKey struct{ studentID, subject string }
	index := make(map[gradeKey]models.Grade, len(grades))
	for _, g := range grades {
		index[gradeKey{g.StudentID, g.Subject}] = g
	}

	standings := make([]models.StudentStanding, 0, len(students))
	for _, student := range students {
		scores := make(map[string]models.SubjectScore, len(models.Subjects))
		total := 0.0
		for _, subject := range models.Subjects {
			grade := index[gradeKey{student.ID, subject}]
			avg := models.SubjectAverage(grade.TPScore, grade.FinalScore)
			scores[subject] = models.SubjectScore{
				TP:      grade.TPScore,
				Final:   grade.FinalScore,
				Average: avg,
			}
			total += avg
		}
		standings = append(standings, models.StudentStanding{
			Student: student,
			Scores:  scores,
			Total:   total,
			Average: total / float64(len(models.Subjects)),
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Average != b.Average {
			return a.Average > b.Average
		}
		if a.Student.Name != b.Student.Name {
			return a.Student.Name < b.Student.Name
		}
		return a.Student.ID < b.Student.ID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}

func filterByClass(students []models.Student, classLevel string) []models.Student {
	filtered := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.ClassLevel == classLevel {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
