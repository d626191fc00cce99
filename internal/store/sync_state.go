package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Sync state keys
const (
	SyncKeyLastActivity = "strava_last_activity_at"
	SyncKeyLastImport   = "last_import_at"
)

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (s *Store) GetSyncState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.QueryRowContext(ctx, `
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (s *Store) SetSyncState(ctx context.Context, key, value string) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads a timestamp stored with SetSyncTime. A missing key is the
// zero time.
func (s *Store) GetSyncTime(ctx context.Context, key string) (time.Time, error) {
	v, err := s.GetSyncState(ctx, key)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return parseTime(v)
}

// SetSyncTime stores a timestamp under key
func (s *Store) SetSyncTime(ctx context.Context, key string, t time.Time) error {
	return s.SetSyncState(ctx, key, formatTime(t))
}
