package repository

import (
	"context"
)

// DefaultTeacherPassword applies to every class until a teacher changes
// theirs.
const DefaultTeacherPassword = "123456"

// CredentialRepository manages per-class teacher passwords. The snapshot
// is a class -> password map; classes without an entry use the default.
type CredentialRepository struct {
	store *Store
}

// NewCredentialRepository instantiates the repository.
func NewCredentialRepository(store *Store) *CredentialRepository {
	return &CredentialRepository{store: store}
}

// Verify reports whether the password matches the class credential.
func (r *CredentialRepository) Verify(ctx context.Context, classLevel, password string) (bool, error) {
	passwords := map[string]string{}
	if _, err := r.store.load(ctx, KeyCredentials, &passwords); err != nil {
		return false, err
	}
	expected, ok := passwords[classLevel]
	if !ok {
		expected = DefaultTeacherPassword
	}
	return password == expected, nil
}

// UpdatePassword sets a new password for the class.
func (r *CredentialRepository) UpdatePassword(ctx context.Context, classLevel, password string) error {
	passwords := map[string]string{}
	if _, err := r.store.load(ctx, KeyCredentials, &passwords); err != nil {
		return err
	}
	passwords[classLevel] = password
	return r.store.save(ctx, KeyCredentials, passwords)
}
