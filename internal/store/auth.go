package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// authRowID keys the only auth row. A database belongs to one athlete, so a
// new authorization replaces the old one.
const authRowID = 1

// GetAuth returns the stored authorization, or ErrNoAuth before the first
// Strava login
func (s *Store) GetAuth(ctx context.Context) (*Auth, error) {
	row := s.QueryRowContext(ctx, `
		SELECT athlete_id, athlete_name, access_token, refresh_token, expires_at
		FROM auth
		WHERE id = ?
	`, authRowID)

	var a Auth
	var expires string
	err := row.Scan(&a.AthleteID, &a.AthleteName, &a.AccessToken, &a.RefreshToken, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth: %w", err)
	}

	a.ExpiresAt, err = parseTime(expires)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at %q: %w", expires, err)
	}
	return &a, nil
}

// SaveAuth stores a fresh authorization, replacing any earlier one
func (s *Store) SaveAuth(ctx context.Context, a *Auth) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO auth (id, athlete_id, athlete_name, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			athlete_name = excluded.athlete_name,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, authRowID, a.AthleteID, a.AthleteName, a.AccessToken, a.RefreshToken, formatTime(a.ExpiresAt))
	if err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	return nil
}

// UpdateTokens records a refreshed token pair. Returns ErrNoAuth when there
// is no authorization to refresh.
func (s *Store) UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error {
	result, err := s.ExecContext(ctx, `
		UPDATE auth
		SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, accessToken, refreshToken, formatTime(expiresAt), authRowID)
	if err != nil {
		return fmt.Errorf("updating tokens: %w", err)
	}

	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoAuth
	}
	return nil
}

// DeleteAuth forgets the Strava authorization; the next sync logs in again
func (s *Store) DeleteAuth(ctx context.Context) error {
	_, err := s.ExecContext(ctx, "DELETE FROM auth WHERE id = ?", authRowID)
	return err
}
