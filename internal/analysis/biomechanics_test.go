package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestClassifyPaceZone(t *testing.T) {
	tests := []struct {
		pace float64
		want PaceZone
	}{
		{420, PaceEasy},
		{390, PaceEasy},
		{389, PaceModerate},
		{300, PaceModerate},
		{299, PaceTempo},
		{240, PaceTempo},
		{239, PaceFast},
	}
	for _, tt := range tests {
		if got := ClassifyPaceZone(tt.pace); got != tt.want {
			t.Errorf("ClassifyPaceZone(%v) = %v, want %v", tt.pace, got, tt.want)
		}
	}
}

func TestRunningEconomy(t *testing.T) {
	if got := RunningEconomy(nil, nil); got != nil {
		t.Errorf("RunningEconomy(nil) = %+v, want nil", got)
	}

	perfect := RunningEconomy([]float64{180, 180, 180}, []float64{1.1, 1.2})
	if perfect == nil || math.Abs(perfect.Score-100) > 1e-9 || perfect.Rating != "excellent" {
		t.Errorf("RunningEconomy(perfect) = %+v, want 100 excellent", perfect)
	}

	// Cadence 160 and 200: efficiency 90 each, consistency 100 - 20 = 80,
	// strides 0.75 (score 80) and 1.1 (score 100)
	got := RunningEconomy([]float64{160, 200}, []float64{0.75, 1.1})
	want := 0.4*90 + 0.3*80 + 0.3*90
	if got == nil || math.Abs(got.Score-want) > 1e-9 {
		t.Errorf("RunningEconomy() = %+v, want score %v", got, want)
	}
}

func cadenceMetrics(pace, cadence float64) Metrics {
	mpm := MetersPerKm / pace * SecondsPerMinute
	return Metrics{
		DistanceMeters:  5000,
		DurationSeconds: pace * 5,
		PaceSecPerKm:    floatPtr(pace),
		AvgCadence:      floatPtr(cadence),
		StrideLength:    StrideLength(mpm, floatPtr(cadence)),
	}
}

func TestAnalyzeBiomechanics(t *testing.T) {
	t.Run("no cadence", func(t *testing.T) {
		got := AnalyzeBiomechanics([]Metrics{{PaceSecPerKm: floatPtr(300)}})
		if got.HasData {
			t.Error("HasData = true, want false")
		}
	})

	t.Run("low cadence on easy runs", func(t *testing.T) {
		ms := []Metrics{
			cadenceMetrics(400, 158),
			cadenceMetrics(410, 160),
			cadenceMetrics(280, 172),
		}
		got := AnalyzeBiomechanics(ms)
		if !got.HasData || got.Sessions != 3 {
			t.Fatalf("AnalyzeBiomechanics() = %+v, want 3 sessions", got)
		}
		if got.CadenceStatus != "low" {
			t.Errorf("CadenceStatus = %q, want low", got.CadenceStatus)
		}
		if len(got.Zones) != 2 || got.Zones[0].Zone != PaceEasy || got.Zones[0].Optimal {
			t.Fatalf("Zones = %+v, want non-optimal easy zone first", got.Zones)
		}
		if !got.Zones[1].Optimal {
			t.Errorf("tempo zone %+v should be optimal", got.Zones[1])
		}
		found := false
		for _, r := range got.Recommendations {
			if strings.Contains(r, "metronome") {
				found = true
			}
		}
		if !found {
			t.Errorf("Recommendations = %v, want metronome suggestion", got.Recommendations)
		}
		if got.Economy == nil || got.Stride == nil {
			t.Error("economy and stride should be set")
		}
	})
}
