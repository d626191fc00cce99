package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Strava authorization; one athlete per database
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			athlete_name TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions (one normalized record per imported file or synced activity)
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			name TEXT NOT NULL,
			start_time TEXT NOT NULL,
			utc_offset INTEGER NOT NULL DEFAULT 0,
			distance REAL NOT NULL,
			duration REAL NOT NULL,
			sample_count INTEGER NOT NULL,
			has_heartrate INTEGER NOT NULL,
			imported_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (source, start_time)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time)`,

		// Samples (trackpoints; seq keeps order when timestamps repeat)
		`CREATE TABLE IF NOT EXISTS samples (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			time_offset_ns INTEGER NOT NULL,
			lat REAL,
			lng REAL,
			altitude REAL,
			distance REAL,
			heart_rate INTEGER,
			cadence INTEGER,
			PRIMARY KEY (session_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
