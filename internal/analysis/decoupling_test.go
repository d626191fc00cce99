package analysis

import (
	"math"
	"testing"

	"apexrun/internal/session"
)

func TestCardiacDrift(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		samples := makeSamples(testStart, MinCardioSamples-1, 1, 3, 150, 0)
		if got := CardiacDrift(samples); got != nil {
			t.Errorf("CardiacDrift() = %+v, want nil", got)
		}
	})

	t.Run("no heart rate", func(t *testing.T) {
		samples := makeSamples(testStart, 100, 1, 3, 0, 0)
		if got := CardiacDrift(samples); got != nil {
			t.Errorf("CardiacDrift() = %+v, want nil", got)
		}
	})

	t.Run("steady heart rate", func(t *testing.T) {
		samples := makeSamples(testStart, 40, 1, 3, 150, 0)
		got := CardiacDrift(samples)
		if got == nil {
			t.Fatal("CardiacDrift() = nil, want value")
		}
		if got.Fraction != 0 || got.Severity != TierExcellent || !got.Optimal {
			t.Errorf("CardiacDrift() = %+v, want zero drift, excellent, optimal", got)
		}
	})

	t.Run("rising heart rate", func(t *testing.T) {
		samples := makeSamples(testStart, 40, 1, 3, 140, 0)
		for i := 20; i < 40; i++ {
			samples[i].HeartRate = intPtr(150)
		}
		got := CardiacDrift(samples)
		if got == nil {
			t.Fatal("CardiacDrift() = nil, want value")
		}
		// (150 - 140) / 140 = 7.1%
		if math.Abs(got.Percent()-10.0/140*100) > 1e-9 {
			t.Errorf("Percent() = %v, want %v", got.Percent(), 10.0/140*100)
		}
		if got.Severity != TierModerate || got.Optimal {
			t.Errorf("CardiacDrift() = %+v, want moderate, not optimal", got)
		}
	})
}

func TestDriftSeverity(t *testing.T) {
	tests := []struct {
		pct  float64
		want Tier
	}{
		{-2, TierExcellent},
		{2.9, TierExcellent},
		{3, TierGood},
		{4.9, TierGood},
		{5, TierModerate},
		{7.9, TierModerate},
		{8, TierHigh},
		{15, TierHigh},
	}
	for _, tt := range tests {
		if got := DriftSeverity(tt.pct); got != tt.want {
			t.Errorf("DriftSeverity(%v) = %v, want %v", tt.pct, got, tt.want)
		}
	}
}

func TestCouplingTier(t *testing.T) {
	tests := []struct {
		ratio float64
		want  Tier
	}{
		{0, TierExcellent},
		{0.49, TierExcellent},
		{0.5, TierGood},
		{0.99, TierGood},
		{1.0, TierModerate},
		{1.49, TierModerate},
		{1.5, TierPoor},
	}
	for _, tt := range tests {
		if got := CouplingTier(tt.ratio); got != tt.want {
			t.Errorf("CouplingTier(%v) = %v, want %v", tt.ratio, got, tt.want)
		}
	}
}

func TestHRPaceCoupling(t *testing.T) {
	if got := HRPaceCoupling(makeSamples(testStart, 10, 1, 3, 150, 0)); got != nil {
		t.Errorf("HRPaceCoupling(10 samples) = %+v, want nil", got)
	}

	// Alternating pace with constant HR: HR does not follow pace at all
	var samples []session.Sample
	dist := 0.0
	for i := 0; i < 60; i++ {
		speed := 3.0
		if i%2 == 1 {
			speed = 4.0
		}
		if i > 0 {
			dist += speed
		}
		samples = append(samples, session.Sample{
			Time:      testStart.Add(secs(i)),
			Distance:  floatPtr(dist),
			HeartRate: intPtr(150),
		})
	}
	got := HRPaceCoupling(samples)
	if got == nil {
		t.Fatal("HRPaceCoupling() = nil, want value")
	}
	if got.HRCV != 0 || got.PaceCV <= 0 {
		t.Errorf("HRPaceCoupling() = %+v, want zero HR CV and positive pace CV", got)
	}
	if got.Ratio != 0 || got.Efficiency != TierExcellent {
		t.Errorf("HRPaceCoupling() = %+v, want ratio 0, excellent", got)
	}
}

func TestAerobicDecoupling(t *testing.T) {
	steady := makeSamples(testStart, 60, 1, 3, 150, 0)
	got := AerobicDecoupling(steady)
	if got == nil {
		t.Fatal("AerobicDecoupling() = nil, want value")
	}
	if math.Abs(got.Percent) > 1e-6 || got.Status != TierExcellent {
		t.Errorf("AerobicDecoupling(steady) = %+v, want ~0%%, excellent", got)
	}

	// Same pace, HR 20% higher in the second half
	drifting := makeSamples(testStart, 60, 1, 3, 140, 0)
	for i := 31; i < 60; i++ {
		drifting[i].HeartRate = intPtr(168)
	}
	got = AerobicDecoupling(drifting)
	if got == nil {
		t.Fatal("AerobicDecoupling() = nil, want value")
	}
	if got.Status != TierPoor {
		t.Errorf("AerobicDecoupling(drifting) = %+v, want poor", got)
	}

	if got := DecouplingStatus(-7); got != TierGood {
		t.Errorf("DecouplingStatus(-7) = %v, want good", got)
	}
}
