package analysis

import (
	"testing"
	"time"
)

func TestAnalyzeCardio(t *testing.T) {
	t.Run("no heart rate data", func(t *testing.T) {
		got := AnalyzeCardio([]Metrics{{SessionID: "a"}})
		if got.HasData || got.Latest != nil {
			t.Errorf("AnalyzeCardio() = %+v, want no data", got)
		}
		if len(got.Insights) != 1 {
			t.Errorf("Insights = %v, want a single no-data note", got.Insights)
		}
	})

	t.Run("recent drift issues", func(t *testing.T) {
		var ms []Metrics
		for i := 0; i < 12; i++ {
			d := &Drift{Fraction: 0.02, Severity: TierExcellent, Optimal: true}
			if i >= 8 {
				d = &Drift{Fraction: 0.09, Severity: TierHigh}
			}
			ms = append(ms, Metrics{
				SessionID: string(rune('a' + i)),
				StartTime: testStart.Add(time.Duration(i) * 24 * time.Hour),
				Drift:     d,
				Coupling:  &Coupling{Ratio: 0.4, Efficiency: TierExcellent},
			})
		}
		got := AnalyzeCardio(ms)
		if !got.HasData || got.Recent != CardioRecentSessions {
			t.Fatalf("AnalyzeCardio() = %+v, want %d recent sessions", got, CardioRecentSessions)
		}
		if got.Latest == nil || got.Latest.SessionID != "l" {
			t.Errorf("Latest = %+v, want session l", got.Latest)
		}
		if got.DriftIssues != 4 {
			t.Errorf("DriftIssues = %d, want 4", got.DriftIssues)
		}
		if got.GoodCoupling != 10 {
			t.Errorf("GoodCoupling = %d, want 10", got.GoodCoupling)
		}
		if len(got.Insights) != 2 {
			t.Errorf("Insights = %v, want drift and coupling notes", got.Insights)
		}
	})
}
