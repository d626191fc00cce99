package analysis

import (
	"strings"
	"testing"
)

func TestClassifyTerrain(t *testing.T) {
	tests := []struct {
		gain float64
		want TerrainClass
	}{
		{0, Flat},
		{9.99, Flat},
		{10, Rolling},
		{29.9, Rolling},
		{30, Hilly},
		{59.9, Hilly},
		{60, Mountainous},
		{400, Mountainous},
		{-5, Flat},
	}
	for _, tt := range tests {
		if got := ClassifyTerrain(tt.gain); got != tt.want {
			t.Errorf("ClassifyTerrain(%v) = %v, want %v", tt.gain, got, tt.want)
		}
	}
}

func TestClassifyTerrainPartition(t *testing.T) {
	// Every non-negative value lands in exactly one band
	for g := 0.0; g < 200; g += 0.25 {
		matches := 0
		for _, b := range terrainBands {
			if g >= b.minPerKm && g < b.maxPerKm {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("gain %v matched %d bands, want 1", g, matches)
		}
		if got := ClassifyTerrain(g); got == "" {
			t.Fatalf("ClassifyTerrain(%v) returned no class", g)
		}
	}
}

func TestGainPerKm(t *testing.T) {
	if got := GainPerKm(0, 100); got != 0 {
		t.Errorf("GainPerKm(0 m) = %v, want 0", got)
	}
	if got := GainPerKm(5000, 100); got != 20 {
		t.Errorf("GainPerKm(5 km, 100 m) = %v, want 20", got)
	}
}

func terrainMetrics(distance, gain, duration float64) Metrics {
	gap := GAPDistance(distance, gain)
	return Metrics{
		DistanceMeters:  distance,
		DurationSeconds: duration,
		ElevationGain:   gain,
		GAPDistance:     gap,
		PaceSecPerKm:    PaceSecondsPerKm(distance, duration),
		GAPPaceSecPerKm: PaceSecondsPerKm(gap, duration),
	}
}

func TestAnalyzeTerrain(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		got := AnalyzeTerrain([]Metrics{{DistanceMeters: 0, DurationSeconds: 600}})
		if got.HasData {
			t.Error("HasData = true, want false")
		}
	})

	t.Run("all flat", func(t *testing.T) {
		var ms []Metrics
		for i := 0; i < 5; i++ {
			ms = append(ms, terrainMetrics(10000, 20, 3000))
		}
		got := AnalyzeTerrain(ms)
		if !got.HasData || len(got.Classes) != 1 {
			t.Fatalf("AnalyzeTerrain() = %+v, want one class", got)
		}
		flat, ok := got.Class(Flat)
		if !ok || flat.Sessions != 5 || flat.SessionPct != 100 || flat.DistanceKm != 50 {
			t.Errorf("flat = %+v, want 5 sessions, 100%%, 50 km", flat)
		}
		if len(got.Recommendations) == 0 || !strings.Contains(got.Recommendations[0], "Lack of climbing") {
			t.Errorf("Recommendations = %v, want lack of climbing", got.Recommendations)
		}
	})

	t.Run("percentages sum to 100", func(t *testing.T) {
		ms := []Metrics{
			terrainMetrics(10000, 20, 3000),  // flat
			terrainMetrics(10000, 200, 3300), // rolling
			terrainMetrics(10000, 400, 3600), // hilly
			terrainMetrics(10000, 800, 4200), // mountainous
		}
		got := AnalyzeTerrain(ms)
		var total float64
		for _, c := range got.Classes {
			total += c.SessionPct
		}
		if total != 100 {
			t.Errorf("session pct total = %v, want 100", total)
		}
		if len(got.GAPEffects) != 4 {
			t.Fatalf("GAPEffects = %d, want 4", len(got.GAPEffects))
		}
		// GAP pace is faster, so the adjustment grows with climbing
		if got.GAPEffects[3].AvgAdjustment <= got.GAPEffects[0].AvgAdjustment {
			t.Errorf("mountain adjustment %v should exceed flat %v",
				got.GAPEffects[3].AvgAdjustment, got.GAPEffects[0].AvgAdjustment)
		}
		// 25% flat and 50% hilly+mountain: no flat or hill skew
		for _, r := range got.Recommendations {
			if strings.Contains(r, "Lack of climbing") || strings.Contains(r, "Lots of climbing") {
				t.Errorf("unexpected recommendation %q", r)
			}
		}
	})
}
