package session

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{
			name:   "valid",
			record: Record{ID: "a", StartTime: start, Distance: 5000, Duration: 1500},
		},
		{
			name:   "zero distance is allowed",
			record: Record{ID: "a", StartTime: start, Distance: 0, Duration: 600},
		},
		{
			name:    "missing start time",
			record:  Record{ID: "a", Distance: 5000, Duration: 1500},
			wantErr: true,
		},
		{
			name:    "zero duration",
			record:  Record{ID: "a", StartTime: start, Distance: 5000, Duration: 0},
			wantErr: true,
		},
		{
			name:    "negative duration",
			record:  Record{ID: "a", StartTime: start, Distance: 5000, Duration: -3},
			wantErr: true,
		},
		{
			name:    "negative distance",
			record:  Record{ID: "a", StartTime: start, Distance: -1, Duration: 600},
			wantErr: true,
		},
		{
			name:    "NaN distance",
			record:  Record{ID: "a", StartTime: start, Distance: math.NaN(), Duration: 600},
			wantErr: true,
		},
		{
			name: "samples out of order",
			record: Record{ID: "a", StartTime: start, Distance: 100, Duration: 60, Samples: []Sample{
				{Time: start.Add(10 * time.Second)},
				{Time: start},
			}},
			wantErr: true,
		},
		{
			name: "ordered samples",
			record: Record{ID: "a", StartTime: start, Distance: 100, Duration: 60, Samples: []Sample{
				{Time: start},
				{Time: start},
				{Time: start.Add(time.Second)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *InvalidSessionError
				if !errors.As(err, &invalid) {
					t.Fatalf("Validate() error type = %T, want *InvalidSessionError", err)
				}
				if invalid.Reason == "" {
					t.Error("InvalidSessionError.Reason is empty")
				}
			}
		})
	}
}

func TestNewIDIsStable(t *testing.T) {
	start := time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

	a := NewID("run.fit", start)
	b := NewID("run.fit", start.In(time.FixedZone("CET", 3600)))
	if a != b {
		t.Errorf("NewID differs across time zones: %s vs %s", a, b)
	}
	if c := NewID("other.fit", start); c == a {
		t.Error("NewID should differ for different sources")
	}
}

func TestEstimateMaxHR(t *testing.T) {
	tests := []struct {
		name     string
		athlete  Athlete
		observed float64
		expected float64
	}{
		{"configured wins", Athlete{MaxHR: 192, Age: 40}, 170, 192},
		{"observed plus buffer", Athlete{Age: 40}, 178, 183},
		{"observed too low uses age", Athlete{Age: 40}, 140, 180},
		{"fallback default", Athlete{}, 0, DefaultMaxHR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.athlete.EstimateMaxHR(tt.observed); got != tt.expected {
				t.Errorf("EstimateMaxHR(%v) = %v, want %v", tt.observed, got, tt.expected)
			}
		})
	}
}

func TestResting(t *testing.T) {
	if got := (Athlete{}).Resting(); got != DefaultRestingHR {
		t.Errorf("Resting() = %v, want %v", got, DefaultRestingHR)
	}
	if got := (Athlete{RestingHR: 44}).Resting(); got != 44 {
		t.Errorf("Resting() = %v, want 44", got)
	}
}
