package analysis

import (
	"math"
	"testing"

	"apexrun/internal/session"
)

func TestComputeMetricsWithoutHeartRate(t *testing.T) {
	// 20 minutes at 3 m/s, no HR, no altitude
	rec := makeRecord("nohr", makeSamples(testStart, 241, 5, 3, 0, 0))
	m := ComputeMetrics(rec, session.Athlete{}, DefaultZones())

	if m.EfficiencyIndex != nil {
		t.Errorf("EfficiencyIndex = %v, want nil", *m.EfficiencyIndex)
	}
	if m.Drift != nil || m.Coupling != nil || m.Decoupling != nil {
		t.Error("cardio metrics should be nil without heart rate")
	}
	if m.AvgHR != nil || m.TRIMP != 0 {
		t.Errorf("AvgHR = %v, TRIMP = %v; want nil and 0", m.AvgHR, m.TRIMP)
	}
	if m.ElevationGain != 0 || m.GAPDistance != m.DistanceMeters {
		t.Errorf("GAP distance = %v, want %v", m.GAPDistance, m.DistanceMeters)
	}
	if m.IntensityFactor != DefaultIntensityFactor {
		t.Errorf("IntensityFactor = %v, want default", m.IntensityFactor)
	}
	if m.Zones.HasData() {
		t.Error("zone distribution should be empty")
	}
	// Classified from duration and pace variability only
	if got := Classify(m.Features()); got != Recovery {
		t.Errorf("Classify() = %v, want recovery for a short steady run", got)
	}
}

func TestComputeMetrics(t *testing.T) {
	// 50 minutes at 10000/3000 m/s, HR 150, cadence 180
	samples := makeSamples(testStart, 601, 5, 10.0/3, 150, 180)
	rec := makeRecord("full", samples)
	athlete := session.Athlete{MaxHR: 190, RestingHR: 50}
	zones := ZonesFor(athlete, 150)

	m := ComputeMetrics(rec, athlete, zones)

	if math.Abs(m.DistanceMeters-10000) > 1e-6 || m.DurationSeconds != 3000 {
		t.Fatalf("distance %v duration %v, want 10000 and 3000", m.DistanceMeters, m.DurationSeconds)
	}
	if m.PaceSecPerKm == nil || math.Abs(*m.PaceSecPerKm-300) > 1e-6 {
		t.Errorf("PaceSecPerKm = %v, want 300", m.PaceSecPerKm)
	}
	if m.EfficiencyIndex == nil || math.Abs(*m.EfficiencyIndex-200.0/150) > 1e-6 {
		t.Errorf("EfficiencyIndex = %v, want %v", m.EfficiencyIndex, 200.0/150)
	}
	if math.Abs(m.TRIMP-140.7) > 0.5 {
		t.Errorf("TRIMP = %v, want ~140.7", m.TRIMP)
	}
	if m.StrideLength == nil || math.Abs(*m.StrideLength-200.0/180) > 1e-6 {
		t.Errorf("StrideLength = %v, want %v", m.StrideLength, 200.0/180)
	}
	if m.Drift == nil || m.Drift.Fraction != 0 {
		t.Errorf("Drift = %+v, want zero drift", m.Drift)
	}
	if m.HRCoverage != 1 {
		t.Errorf("HRCoverage = %v, want 1", m.HRCoverage)
	}
	if m.Zones.Dominant() != Z3 {
		t.Errorf("dominant zone = %v, want Z3", m.Zones.Dominant())
	}
}

func TestDataQualityDescription(t *testing.T) {
	tests := []struct {
		coverage float64
		want     string
	}{
		{1, "Excellent"},
		{0.9, "Good"},
		{0.75, "Fair"},
		{0.5, "Poor"},
		{0.1, "Very Poor"},
	}
	for _, tt := range tests {
		if got := DataQualityDescription(tt.coverage); got != tt.want {
			t.Errorf("DataQualityDescription(%v) = %q, want %q", tt.coverage, got, tt.want)
		}
	}
}
