package analysis

import (
	"math"
	"testing"

	"apexrun/internal/session"
)

func TestZoneFor(t *testing.T) {
	zones := HRZones{RestingHR: 50, MaxHR: 190}

	tests := []struct {
		hr   float64
		want Zone
	}{
		{40, Z1},  // below resting clamps to 0
		{130, Z1}, // 0.571
		{140, Z2}, // 0.643
		{155, Z3}, // 0.75
		{170, Z4}, // 0.857
		{180, Z5}, // 0.929
		{250, Z5}, // clamps to 1
	}
	for _, tt := range tests {
		if got := zones.ZoneFor(tt.hr); got != tt.want {
			t.Errorf("ZoneFor(%v) = %v, want %v", tt.hr, got, tt.want)
		}
	}

	broken := HRZones{RestingHR: 60, MaxHR: 60}
	if got := broken.ZoneFor(150); got != NoZone {
		t.Errorf("ZoneFor with no reserve = %v, want none", got)
	}
}

func TestSessionZoneDistribution(t *testing.T) {
	zones := HRZones{RestingHR: 50, MaxHR: 190}

	t.Run("sums to duration", func(t *testing.T) {
		rec := makeRecord("z", makeSamples(testStart, 11, 1, 3, 140, 0))
		d := SessionZoneDistribution(rec, zones)
		if d.TotalSeconds != 10 {
			t.Errorf("TotalSeconds = %v, want 10", d.TotalSeconds)
		}
		if d.Seconds(Z2) != 10 || d.Zones[Z2-1].Percent != 100 {
			t.Errorf("Z2 = %+v, want all time", d.Zones[Z2-1])
		}
		if d.Dominant() != Z2 {
			t.Errorf("Dominant() = %v, want Z2", d.Dominant())
		}
	})

	t.Run("remainder goes to last sample", func(t *testing.T) {
		rec := makeRecord("z", makeSamples(testStart, 11, 1, 3, 140, 0))
		rec.Samples[10].HeartRate = intPtr(180)
		rec.Duration = 20
		d := SessionZoneDistribution(rec, zones)
		if d.TotalSeconds != 20 {
			t.Errorf("TotalSeconds = %v, want 20", d.TotalSeconds)
		}
		if d.Seconds(Z5) != 10 {
			t.Errorf("Z5 seconds = %v, want 10", d.Seconds(Z5))
		}
		// 10 s each: ties go to the lower zone
		if d.Dominant() != Z2 {
			t.Errorf("Dominant() = %v, want Z2", d.Dominant())
		}
	})

	t.Run("paused span is scaled to duration", func(t *testing.T) {
		rec := makeRecord("z", makeSamples(testStart, 11, 1, 3, 155, 0))
		rec.Duration = 5
		d := SessionZoneDistribution(rec, zones)
		if math.Abs(d.TotalSeconds-5) > 1e-9 {
			t.Errorf("TotalSeconds = %v, want 5", d.TotalSeconds)
		}
	})

	t.Run("no heart rate", func(t *testing.T) {
		rec := makeRecord("z", makeSamples(testStart, 11, 1, 3, 0, 0))
		d := SessionZoneDistribution(rec, zones)
		if d.HasData() || d.Dominant() != NoZone {
			t.Errorf("distribution = %+v, want no data", d)
		}
	})
}

func TestAnalyzeZones(t *testing.T) {
	zones := HRZones{RestingHR: 50, MaxHR: 190}
	records := []session.Record{
		makeRecord("a", makeSamples(testStart, 11, 1, 3, 140, 0)),
		makeRecord("b", makeSamples(testStart.Add(secs(3600)), 21, 1, 3, 170, 0)),
		makeRecord("c", makeSamples(testStart.Add(secs(7200)), 21, 1, 3, 0, 0)),
	}
	got := AnalyzeZones(records, zones)
	if !got.HasData || got.Sessions != 2 {
		t.Fatalf("AnalyzeZones() = %+v, want data from 2 sessions", got)
	}
	if got.Distribution.TotalSeconds != 30 || got.Dominant != Z4 {
		t.Errorf("AnalyzeZones() total %v dominant %v, want 30 and Z4",
			got.Distribution.TotalSeconds, got.Dominant)
	}

	empty := AnalyzeZones(nil, zones)
	if empty.HasData {
		t.Error("AnalyzeZones(nil).HasData = true, want false")
	}
}
