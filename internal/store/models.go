package store

import "time"

// Auth is the single Strava authorization this database syncs from
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AthleteName  string    `db:"athlete_name"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// SessionSummary is a session row without its samples
type SessionSummary struct {
	ID           string    `db:"id" json:"id"`
	Source       string    `db:"source" json:"source"`
	Name         string    `db:"name" json:"name"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	Distance     float64   `db:"distance" json:"distance"` // meters
	Duration     float64   `db:"duration" json:"duration"` // seconds
	SampleCount  int       `db:"sample_count" json:"sample_count"`
	HasHeartRate bool      `db:"has_heartrate" json:"has_heart_rate"`
}

// SaveResult counts what a merge did
type SaveResult struct {
	Inserted int
	Skipped  int // already stored under the same source and start time
}

// timeLayout is fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// utcOffset is the seconds east of UTC in effect at t. start_time is kept in
// UTC for ordering; the offset restores the athlete's local clock on load.
func utcOffset(t time.Time) int {
	_, off := t.Zone()
	return off
}

func inOffset(t time.Time, offset int) time.Time {
	if offset == 0 {
		return t
	}
	return t.In(time.FixedZone("", offset))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
