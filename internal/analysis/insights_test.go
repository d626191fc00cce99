package analysis

import (
	"testing"
	"time"
)

func findInsight(insights []Insight, title string) (Insight, bool) {
	for _, ins := range insights {
		if ins.Title == title {
			return ins, true
		}
	}
	return Insight{}, false
}

func insightInput(ms []Metrics, labels []SessionType, now time.Time) InsightInput {
	return InsightInput{
		Now:     now,
		Metrics: ms,
		Labels:  labels,
		Windows: AggregateWindows(ms, labels, now),
	}
}

func TestShortTermInsights(t *testing.T) {
	now := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

	t.Run("no runs", func(t *testing.T) {
		got := GenerateInsights(insightInput(nil, nil, now))
		ins, ok := findInsight(got, "No recent runs")
		if !ok || ins.Severity != SeverityInfo || ins.Horizon != HorizonShort {
			t.Errorf("insights = %+v, want short-term no-runs info", got)
		}
	})

	t.Run("one low-volume easy run", func(t *testing.T) {
		ms := []Metrics{windowMetrics(now, 1, 8000, 2800, nil)}
		got := GenerateInsights(insightInput(ms, []SessionType{Easy}, now))

		// Rules do not suppress each other: one run is also one session type
		for _, title := range []string{"Low weekly volume", "Low run frequency", "No training variety"} {
			ins, ok := findInsight(got, title)
			if !ok || ins.Severity != SeverityWarning {
				t.Errorf("missing warning %q in %+v", title, got)
			}
		}
	})

	t.Run("big varied week", func(t *testing.T) {
		var ms []Metrics
		labels := []SessionType{Easy, Tempo, Intervals, Easy, LongRun}
		for i := range labels {
			ms = append(ms, windowMetrics(now, float64(i)+0.5, 12000, 3600, nil))
		}
		got := GenerateInsights(insightInput(ms, labels, now))
		for _, title := range []string{"High weekly volume", "Good training variety", "Consistent training"} {
			if ins, ok := findInsight(got, title); !ok || ins.Severity != SeveritySuccess {
				t.Errorf("missing success %q in %+v", title, got)
			}
		}
	})

	t.Run("load spike", func(t *testing.T) {
		in := insightInput(nil, nil, now)
		in.AcuteChronic = floatPtr(1.8)
		if _, ok := findInsight(GenerateInsights(in), "Load spike"); !ok {
			t.Error("acute:chronic 1.8 did not warn")
		}
	})
}

func TestMediumTermInsights(t *testing.T) {
	now := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

	few := []Metrics{windowMetrics(now, 2, 5000, 1500, nil)}
	if ins, ok := findInsight(GenerateInsights(insightInput(few, nil, now)), "Not enough data"); !ok || ins.Horizon != HorizonMedium {
		t.Error("missing medium-term not-enough-data info")
	}

	// Older half: EI 1.0 at 5:00/km; newer half: EI 1.1 at 4:30/km
	var ms []Metrics
	for i := 0; i < 3; i++ {
		ms = append(ms, windowMetrics(now, float64(28-i), 5000, 1500, floatPtr(1.0)))
	}
	for i := 0; i < 3; i++ {
		ms = append(ms, windowMetrics(now, float64(5-i), 5000, 1350, floatPtr(1.1)))
	}
	got := GenerateInsights(insightInput(ms, nil, now))
	for _, title := range []string{"Efficiency improving", "Getting faster"} {
		if ins, ok := findInsight(got, title); !ok || ins.Severity != SeveritySuccess {
			t.Errorf("missing %q in %+v", title, got)
		}
	}
}

func TestLongTermInsights(t *testing.T) {
	now := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

	var ms []Metrics
	for i := 0; i < 24; i++ {
		// one run every 5 days over four months, getting longer
		ms = append(ms, windowMetrics(now, float64(120-5*i), 5000+float64(i)*200, 1800, nil))
	}
	got := GenerateInsights(insightInput(ms, nil, now))
	for _, title := range []string{"Total volume", "Volume trending up", "Most active month"} {
		if _, ok := findInsight(got, title); !ok {
			t.Errorf("missing %q in %+v", title, got)
		}
	}
	if _, ok := findInsight(got, "Building history"); ok {
		t.Error("building-history note fired with enough history")
	}

	short := GenerateInsights(insightInput(ms[:5], nil, now))
	if _, ok := findInsight(short, "Building history"); !ok {
		t.Error("missing building-history note for 5 runs")
	}
}

func TestAnalyzerInsights(t *testing.T) {
	tests := []struct {
		name     string
		drift    float64
		want     Severity
		wantNone bool
	}{
		{"high drift", 0.09, SeverityError, false},
		{"elevated drift", 0.06, SeverityWarning, false},
		{"fine", 0.02, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := InsightInput{Cardio: CardioSummary{
				HasData: true,
				Latest:  &SessionCardio{Drift: &Drift{Fraction: tt.drift}},
			}}
			got := InsightsFor(GenerateInsights(in), HorizonAnalysis)
			if tt.wantNone {
				if len(got) != 0 {
					t.Errorf("insights = %+v, want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Severity != tt.want || got[0].Category != "cardio" {
				t.Errorf("insights = %+v, want one %s cardio insight", got, tt.want)
			}
		})
	}

	in := InsightInput{
		Terrain: TerrainSummary{HasData: true, Classes: []TerrainClassStats{{Class: Flat, SessionPct: 100}}},
		Biomech: BiomechanicsSummary{HasData: true, AvgCadence: 160, CadenceStatus: "low"},
	}
	got := InsightsFor(GenerateInsights(in), HorizonAnalysis)
	if len(got) != 2 {
		t.Fatalf("insights = %+v, want terrain and cadence", got)
	}
	if got[0].Severity != SeverityInfo || got[1].Severity != SeverityWarning {
		t.Errorf("severities = %v, %v; want info, warning", got[0].Severity, got[1].Severity)
	}
}
