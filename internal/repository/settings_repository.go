package repository

import (
	"context"

	"github.com/noah-isme/erapor-sd-api/internal/models"
)

// SettingsRepository manages the singleton school settings snapshot.
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository instantiates the repository.
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the stored settings. On first read it materializes the
// defaults; older snapshots missing homeroom entries get them backfilled
// so callers can always index Teachers by class.
func (r *SettingsRepository) Get(ctx context.Context) (models.SchoolSettings, error) {
	var settings models.SchoolSettings
	found, err := r.store.load(ctx, KeySettings, &settings)
	if err != nil {
		return models.SchoolSettings{}, err
	}
	if !found {
		settings = models.DefaultSettings()
		if err := r.store.save(ctx, KeySettings, settings); err != nil {
			return models.SchoolSettings{}, err
		}
		return settings, nil
	}
	if settings.EnsureTeachers() {
		if err := r.store.save(ctx, KeySettings, settings); err != nil {
			return models.SchoolSettings{}, err
		}
	}
	return settings, nil
}

// Save replaces the settings snapshot.
func (r *SettingsRepository) Save(ctx context.Context, settings models.SchoolSettings) error {
	settings.EnsureTeachers()
	return r.store.save(ctx, KeySettings, settings)
}
