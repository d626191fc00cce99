package analysis

import (
	"testing"

	"apexrun/internal/session"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		features ClassificationFeatures
		want     SessionType
	}{
		{"long by duration", ClassificationFeatures{DurationSeconds: 95 * 60, DistanceMeters: 14000, DominantZone: Z2}, LongRun},
		{"long by distance", ClassificationFeatures{DurationSeconds: 70 * 60, DistanceMeters: 16000, DominantZone: Z3}, LongRun},
		{"long beats variability", ClassificationFeatures{DurationSeconds: 100 * 60, PaceCV: 0.3, DominantZone: Z4}, LongRun},
		{"race", ClassificationFeatures{DurationSeconds: 20 * 60, PaceCV: 0.16, DominantZone: Z5}, Race},
		{"intervals", ClassificationFeatures{DurationSeconds: 45 * 60, PaceCV: 0.25, DominantZone: Z3}, Intervals},
		{"fartlek", ClassificationFeatures{DurationSeconds: 45 * 60, PaceCV: 0.13, DominantZone: Z2}, Fartlek},
		{"recovery zone", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.05, DominantZone: Z1}, Recovery},
		{"easy zone", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.05, DominantZone: Z2}, Easy},
		{"tempo zone", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.05, DominantZone: Z3}, Tempo},
		{"threshold zone", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.05, DominantZone: Z4}, Threshold},
		{"no HR short", ClassificationFeatures{DurationSeconds: 20 * 60, PaceCV: 0.05}, Recovery},
		{"no HR variable", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.22}, Intervals},
		{"no HR steady defaults to easy", ClassificationFeatures{DurationSeconds: 40 * 60, PaceCV: 0.05}, Easy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.features); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	rec := makeRecord("d", makeSamples(testStart, 600, 5, 3, 150, 172))
	m := ComputeMetrics(rec, session.Athlete{}, DefaultZones())

	first := Classify(m.Features())
	for i := 0; i < 50; i++ {
		if got := Classify(m.Features()); got != first {
			t.Fatalf("Classify() run %d = %v, want %v", i, got, first)
		}
	}
}

func TestSessionTypeLabel(t *testing.T) {
	if got := LongRun.Label(); got != "Long Run" {
		t.Errorf("LongRun.Label() = %q, want %q", got, "Long Run")
	}
	if got := SessionType("other").Label(); got != "other" {
		t.Errorf("unknown Label() = %q, want passthrough", got)
	}
}
