package session

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Sample is a single timestamped trackpoint. Optional sensor fields are nil when
// the device did not record them.
type Sample struct {
	Time      time.Time `json:"time"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Distance  *float64  `json:"distance,omitempty"` // cumulative meters
	HeartRate *int      `json:"heart_rate,omitempty"`
	Cadence   *int      `json:"cadence,omitempty"` // steps per minute, both legs
}

// Record is a normalized running session. Records are treated as immutable once
// parsed; analysis never mutates them.
type Record struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Distance  float64   `json:"distance"` // meters
	Duration  float64   `json:"duration"` // seconds
	Samples   []Sample  `json:"samples"`
}

// recordNamespace scopes deterministic record IDs.
var recordNamespace = uuid.MustParse("9b1f4c9e-3a57-4f0e-8d43-2f3c6c1a7e10")

// NewID returns a stable ID for a record imported from source at start.
// Importing the same file twice yields the same ID.
func NewID(source string, start time.Time) string {
	return uuid.NewSHA1(recordNamespace, []byte(DedupeKey(source, start))).String()
}

// DedupeKey is the identity used when merging histories.
func DedupeKey(source string, start time.Time) string {
	return source + "|" + start.UTC().Format(time.RFC3339Nano)
}

// InvalidSessionError reports a record that cannot be analyzed.
type InvalidSessionError struct {
	ID     string
	Source string
	Reason string
}

func (e *InvalidSessionError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("invalid session %s (%s): %s", e.ID, e.Source, e.Reason)
	}
	return fmt.Sprintf("invalid session %s: %s", e.ID, e.Reason)
}

// Validate checks the record invariants and returns *InvalidSessionError when
// one is violated.
func (r *Record) Validate() error {
	invalid := func(format string, args ...any) error {
		return &InvalidSessionError{ID: r.ID, Source: r.Source, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case r.StartTime.IsZero():
		return invalid("start time missing")
	case math.IsNaN(r.Duration) || math.IsInf(r.Duration, 0):
		return invalid("duration is not a number")
	case r.Duration <= 0:
		return invalid("duration must be positive, got %v", r.Duration)
	case math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0):
		return invalid("distance is not a number")
	case r.Distance < 0:
		return invalid("distance must not be negative, got %v", r.Distance)
	}

	for i := 1; i < len(r.Samples); i++ {
		if r.Samples[i].Time.Before(r.Samples[i-1].Time) {
			return invalid("sample %d is earlier than sample %d", i, i-1)
		}
	}
	return nil
}

// HasHeartRate reports whether any sample carries a heart rate.
func (r *Record) HasHeartRate() bool {
	for _, s := range r.Samples {
		if s.HeartRate != nil {
			return true
		}
	}
	return false
}

// DistanceKm returns the distance in kilometers.
func (r *Record) DistanceKm() float64 {
	return r.Distance / 1000
}

// DurationMinutes returns the duration in minutes.
func (r *Record) DurationMinutes() float64 {
	return r.Duration / 60
}
