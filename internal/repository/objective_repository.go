package repository

import (
	"context"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// ObjectiveRepository manages the learning objective snapshot.
type ObjectiveRepository struct {
	store *Store
}

// NewObjectiveRepository instantiates the repository.
func NewObjectiveRepository(store *Store) *ObjectiveRepository {
	return &ObjectiveRepository{store: store}
}

// List returns every learning objective.
func (r *ObjectiveRepository) List(ctx context.Context) ([]models.LearningObjective, error) {
	var objectives []models.LearningObjective
	if _, err := r.store.load(ctx, KeyObjectives, &objectives); err != nil {
		return nil, err
	}
	return objectives, nil
}

// Upsert stores an objective, replacing any record with the same class,
// subject and code. The returned record carries the surviving ID.
func (r *ObjectiveRepository) Upsert(ctx context.Context, objective models.LearningObjective) (models.LearningObjective, error) {
	objectives, err := r.List(ctx)
	if err != nil {
		return models.LearningObjective{}, err
	}
	stored := upsertObjective(&objectives, objective)
	if err := r.store.save(ctx, KeyObjectives, objectives); err != nil {
		return models.LearningObjective{}, err
	}
	return stored, nil
}

// UpsertBatch applies a batch of objectives in one snapshot write. Imports
// use it so a hundred rows do not cause a hundred round trips.
func (r *ObjectiveRepository) UpsertBatch(ctx context.Context, batch []models.LearningObjective) error {
	if len(batch) == 0 {
		return nil
	}
	objectives, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, objective := range batch {
		upsertObjective(&objectives, objective)
	}
	return r.store.save(ctx, KeyObjectives, objectives)
}

// Delete removes an objective by ID.
func (r *ObjectiveRepository) Delete(ctx context.Context, id string) (bool, error) {
	objectives, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	kept := objectives[:0]
	removed := false
	for _, o := range objectives {
		if o.ID == id {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	if !removed {
		return false, nil
	}
	return true, r.store.save(ctx, KeyObjectives, kept)
}

func upsertObjective(objectives *[]models.LearningObjective, objective models.LearningObjective) models.LearningObjective {
	for i := range *objectives {
		existing := &(*objectives)[i]
		if existing.ClassLevel == objective.ClassLevel &&
			existing.Subject == objective.Subject &&
			existing.Code == objective.Code {
			objective.ID = existing.ID
			*existing = objective
			return objective
		}
	}
	*objectives = append(*objectives, objective)
	return objective
}
