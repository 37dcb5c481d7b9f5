package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Snapshot keys. Each key holds one whole collection as a JSON document;
// writers replace the full payload, so the last write wins per key.
const (
	KeyStudents    = "erapor_students"
	KeyGrades      = "erapor_grades"
	KeyAttendance  = "erapor_attendance"
	KeySettings    = "erapor_settings"
	KeyObjectives  = "erapor_tps"
	KeyCredentials = "erapor_teacher_auth"
)

// Store persists JSON collection snapshots in the kv_snapshots table. The
// typed repositories sit on top of it and own the (de)serialization.
type Store struct {
	db *sqlx.DB
}

// NewStore instantiates the snapshot store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get loads the snapshot payload for a key. The second return is false
// when the key has never been written.
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, "SELECT payload FROM kv_snapshots WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

// Set replaces the snapshot payload for a key.
func (s *Store) Set(ctx context.Context, key string, payload json.RawMessage) error {
	query := `INSERT INTO kv_snapshots (key, payload, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, key, []byte(payload)); err != nil {
		return fmt.Errorf("store snapshot %s: %w", key, err)
	}
	return nil
}

// load decodes a snapshot into out, leaving out untouched when the key is
// absent. Returns whether the key existed.
func (s *Store) load(ctx context.Context, key string, out interface{}) (bool, error) {
	payload, found, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return true, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}

// save encodes in and replaces the snapshot.
func (s *Store) save(ctx context.Context, key string, in interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return s.Set(ctx, key, payload)
}
