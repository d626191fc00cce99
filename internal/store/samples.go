package store

import (
	"context"
	"database/sql"
	"time"

	"apexrun/internal/session"
)

// insertSamples writes rec's samples inside tx. Times are stored as
// nanosecond offsets from the session start.
func insertSamples(ctx context.Context, tx *sql.Tx, rec *session.Record) error {
	if len(rec.Samples) == 0 {
		return nil
	}

	// Prepare insert statement for batch efficiency
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (
			session_id, seq, time_offset_ns, lat, lng, altitude, distance, heart_rate, cadence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range rec.Samples {
		_, err := stmt.ExecContext(ctx,
			rec.ID, i, p.Time.Sub(rec.StartTime).Nanoseconds(),
			p.Lat, p.Lng, p.Altitude, p.Distance, p.HeartRate, p.Cadence,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const sampleQuery = `
	SELECT session_id, time_offset_ns, lat, lng, altitude, distance, heart_rate, cadence
	FROM samples`

func scanSample(rows *sql.Rows, start func(id string) time.Time) (string, session.Sample, error) {
	var id string
	var offset int64
	var p session.Sample
	err := rows.Scan(&id, &offset, &p.Lat, &p.Lng, &p.Altitude, &p.Distance, &p.HeartRate, &p.Cadence)
	if err != nil {
		return "", p, err
	}
	p.Time = start(id).Add(time.Duration(offset))
	return id, p, nil
}

// getSamples retrieves the samples of one session in recorded order
func (s *Store) getSamples(ctx context.Context, rec session.Record) ([]session.Sample, error) {
	rows, err := s.QueryContext(ctx, sampleQuery+`
		WHERE session_id = ?
		ORDER BY seq
	`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	start := func(string) time.Time { return rec.StartTime }
	var samples []session.Sample
	for rows.Next() {
		_, p, err := scanSample(rows, start)
		if err != nil {
			return nil, err
		}
		samples = append(samples, p)
	}
	return samples, rows.Err()
}

// fillSamples loads samples for every session in history with one query.
// index maps session ID to its position in history.
func (s *Store) fillSamples(ctx context.Context, history []session.Record, index map[string]int) error {
	rows, err := s.QueryContext(ctx, sampleQuery+`
		ORDER BY session_id, seq
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	start := func(id string) time.Time { return history[index[id]].StartTime }
	for rows.Next() {
		id, p, err := scanSample(rows, start)
		if err != nil {
			return err
		}
		i := index[id]
		history[i].Samples = append(history[i].Samples, p)
	}
	return rows.Err()
}
