package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"apexrun/internal/session"
)

const sessionColumns = `id, source, name, start_time, utc_offset, distance, duration, sample_count, has_heartrate`

// SaveSessions merges records into the history. A record whose source and
// start time are already stored is skipped, so re-importing a file is a no-op.
func (s *Store) SaveSessions(ctx context.Context, recs []session.Record) (SaveResult, error) {
	var result SaveResult

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range recs {
		rec := &recs[i]
		res, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (`+sessionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			rec.ID, rec.Source, rec.Name, formatTime(rec.StartTime), utcOffset(rec.StartTime),
			rec.Distance, rec.Duration, len(rec.Samples), boolToInt(rec.HasHeartRate()),
		)
		if err != nil {
			return result, fmt.Errorf("inserting session %s: %w", rec.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return result, err
		}
		if n == 0 {
			result.Skipped++
			continue
		}
		if err := insertSamples(ctx, tx, rec); err != nil {
			return result, fmt.Errorf("inserting samples for %s: %w", rec.ID, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("committing transaction: %w", err)
	}
	return result, nil
}

// UpsertSession stores rec, replacing any stored session with the same ID
// along with its samples.
func (s *Store) UpsertSession(ctx context.Context, rec session.Record) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", rec.ID); err != nil {
		return fmt.Errorf("deleting existing session: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.Source, rec.Name, formatTime(rec.StartTime), utcOffset(rec.StartTime),
		rec.Distance, rec.Duration, len(rec.Samples), boolToInt(rec.HasHeartRate()),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	if err := insertSamples(ctx, tx, &rec); err != nil {
		return fmt.Errorf("inserting samples: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// HasSession reports whether a session with the given ID is stored
func (s *Store) HasSession(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSession retrieves a session with its samples
func (s *Store) GetSession(ctx context.Context, id string) (*session.Record, error) {
	row := s.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	rec := sum.record()
	rec.Samples, err = s.getSamples(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	return &rec, nil
}

// ListSessions returns session summaries ordered by start time descending
func (s *Store) ListSessions(ctx context.Context, limit, offset int) ([]SessionSummary, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY start_time DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sum)
	}
	return out, rows.Err()
}

// CountSessions returns the total number of stored sessions
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// DeleteSession removes a session and its samples
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// LoadHistory returns every stored session with samples, oldest first
func (s *Store) LoadHistory(ctx context.Context) ([]session.Record, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		ORDER BY start_time, id
	`)
	if err != nil {
		return nil, err
	}

	var history []session.Record
	index := make(map[string]int)
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[sum.ID] = len(history)
		history = append(history, sum.record())
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.fillSamples(ctx, history, index); err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*SessionSummary, error) {
	var sum SessionSummary
	var start string
	var offset, hasHR int
	err := row.Scan(
		&sum.ID, &sum.Source, &sum.Name, &start, &offset,
		&sum.Distance, &sum.Duration, &sum.SampleCount, &hasHR,
	)
	if err != nil {
		return nil, err
	}
	sum.StartTime, err = parseTime(start)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time %q: %w", start, err)
	}
	sum.StartTime = inOffset(sum.StartTime, offset)
	sum.HasHeartRate = hasHR == 1
	return &sum, nil
}

func (sum SessionSummary) record() session.Record {
	return session.Record{
		ID:        sum.ID,
		Source:    sum.Source,
		Name:      sum.Name,
		StartTime: sum.StartTime,
		Distance:  sum.Distance,
		Duration:  sum.Duration,
	}
}
