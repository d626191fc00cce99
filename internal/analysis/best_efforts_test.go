package analysis

import (
	"math"
	"testing"

	"apexrun/internal/session"
)

func TestFindBestEffort(t *testing.T) {
	t.Run("too few points", func(t *testing.T) {
		if got := FindBestEffort(makeSamples(testStart, 5, 60, 4, 0, 0), Distance1K); got != nil {
			t.Errorf("FindBestEffort() = %+v, want nil", got)
		}
	})

	t.Run("shorter than target", func(t *testing.T) {
		if got := FindBestEffort(makeSamples(testStart, 100, 1, 4, 0, 0), Distance1K); got != nil {
			t.Errorf("FindBestEffort() = %+v, want nil", got)
		}
	})

	t.Run("constant pace", func(t *testing.T) {
		// 4 m/s for 600 s = 2400 m
		got := FindBestEffort(makeSamples(testStart, 601, 1, 4, 160, 0), Distance1K)
		if got == nil {
			t.Fatal("FindBestEffort() = nil")
		}
		if got.DurationSeconds != 250 || got.DistanceMeters != Distance1K {
			t.Errorf("effort = %+v, want 1000 m in 250 s", got)
		}
		if got.AvgHR == nil || *got.AvgHR != 160 {
			t.Errorf("AvgHR = %v, want 160", got.AvgHR)
		}
	})

	t.Run("finds the fast section", func(t *testing.T) {
		// 3 m/s except a 5 m/s stretch from 300 s to 500 s (1000 m)
		var samples []session.Sample
		dist := 0.0
		for i := 0; i <= 900; i++ {
			if i > 0 {
				speed := 3.0
				if i > 300 && i <= 500 {
					speed = 5.0
				}
				dist += speed
			}
			samples = append(samples, session.Sample{Time: testStart.Add(secs(i)), Distance: floatPtr(dist)})
		}
		got := FindBestEffort(samples, Distance1K)
		if got == nil {
			t.Fatal("FindBestEffort() = nil")
		}
		if got.DurationSeconds != 200 || got.StartOffset != 300 {
			t.Errorf("effort = %+v, want 200 s starting at 300 s", got)
		}
	})

	t.Run("scales overshoot to the exact distance", func(t *testing.T) {
		// 30 m every 10 s: 1000 m is first covered at 1020 m
		got := FindBestEffort(makeSamples(testStart, 60, 10, 3, 0, 0), Distance1K)
		if got == nil {
			t.Fatal("FindBestEffort() = nil")
		}
		want := 340.0 * 1000 / 1020
		if math.Abs(got.DurationSeconds-want) > 1e-9 {
			t.Errorf("DurationSeconds = %v, want %v", got.DurationSeconds, want)
		}
	})
}

func TestMatchesRecordDistance(t *testing.T) {
	tests := []struct {
		distance float64
		bucket   float64
		want     bool
	}{
		{5000, Distance5K, true},
		{5090, Distance5K, true},
		{4910, Distance5K, true},
		{5150, Distance5K, false},
		{21000, DistanceHalfMara, true},
		{40000, DistanceMarathon, false},
	}
	for _, tt := range tests {
		if got := MatchesRecordDistance(tt.distance, tt.bucket); got != tt.want {
			t.Errorf("MatchesRecordDistance(%v, %v) = %v, want %v", tt.distance, tt.bucket, got, tt.want)
		}
	}
}

func TestFindPersonalRecords(t *testing.T) {
	if got := FindPersonalRecords(nil); len(got) != 0 {
		t.Errorf("FindPersonalRecords(nil) = %v, want none", got)
	}

	// Whole-session fallback: no samples, 5050 m in 25:15
	summaryOnly := session.Record{
		ID: "race", StartTime: testStart, Distance: 5050, Duration: 1515,
	}
	// Sampled 3.2 km run at 4 m/s
	sampled := makeRecord("run", makeSamples(testStart.AddDate(0, 0, 7), 801, 1, 4, 0, 0))

	prs := FindPersonalRecords([]session.Record{sampled, summaryOnly})

	byBucket := make(map[string]PersonalRecord)
	for _, pr := range prs {
		byBucket[pr.Bucket] = pr
	}
	if len(prs) != 3 {
		t.Fatalf("got %d records %+v, want 1K, 3K and 5K", len(prs), prs)
	}
	if pr := byBucket["1K"]; pr.SessionID != "run" || pr.DurationSeconds != 250 {
		t.Errorf("1K = %+v, want 250 s from run", pr)
	}
	if pr := byBucket["3K"]; pr.SessionID != "run" || pr.DurationSeconds != 750 {
		t.Errorf("3K = %+v, want 750 s from run", pr)
	}
	pr := byBucket["5K"]
	if pr.SessionID != "race" || math.Abs(pr.DurationSeconds-1500) > 1e-9 {
		t.Errorf("5K = %+v, want 1500 s scaled from race", pr)
	}
	if math.Abs(pr.PaceSecPerKm-300) > 1e-9 {
		t.Errorf("5K pace = %v, want 300", pr.PaceSecPerKm)
	}
}

func TestFindPersonalRecordsTieGoesToEarlier(t *testing.T) {
	early := makeRecord("early", makeSamples(testStart, 301, 1, 4, 0, 0))
	late := makeRecord("late", makeSamples(testStart.AddDate(0, 1, 0), 301, 1, 4, 0, 0))

	prs := FindPersonalRecords([]session.Record{late, early})
	if len(prs) != 1 || prs[0].SessionID != "early" {
		t.Errorf("FindPersonalRecords() = %+v, want 1K from early", prs)
	}
}
