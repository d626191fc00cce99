package analysis

import (
	"errors"
	"sort"
	"time"

	"apexrun/internal/session"
)

// SessionAnalysis is a session's derived metrics with its labels
type SessionAnalysis struct {
	Name    string       `json:"name"`
	Source  string       `json:"source"`
	Type    SessionType  `json:"type"`
	Terrain TerrainClass `json:"terrain"`
	Metrics Metrics      `json:"metrics"`
}

// Rejection records a session excluded from analysis and why
type Rejection struct {
	SessionID string `json:"session_id"`
	Source    string `json:"source"`
	Reason    string `json:"reason"`
}

// Report is the complete analysis of one athlete's history
type Report struct {
	Now          time.Time           `json:"now"`
	Athlete      session.Athlete     `json:"athlete"`
	Zones        HRZones             `json:"hr_zones"`
	Sessions     []SessionAnalysis   `json:"sessions"` // oldest first
	Rejected     []Rejection         `json:"rejected,omitempty"`
	ZoneSummary  ZoneSummary         `json:"zone_summary"`
	Terrain      TerrainSummary      `json:"terrain"`
	Biomech      BiomechanicsSummary `json:"biomechanics"`
	Cardio       CardioSummary       `json:"cardio"`
	Windows      Windows             `json:"windows"`
	Insights     []Insight           `json:"insights"`
	Records      []PersonalRecord    `json:"personal_records"`
	Predictions  Predictions         `json:"predictions"`
	Fitness      FitnessMetrics      `json:"fitness"`
	FitnessTrend []FitnessMetrics    `json:"fitness_trend,omitempty"`
	AcuteChronic *float64            `json:"acute_chronic_ratio,omitempty"`
}

// Session returns the analysis for a session ID
func (r Report) Session(id string) (SessionAnalysis, bool) {
	for _, s := range r.Sessions {
		if s.Metrics.SessionID == id {
			return s, true
		}
	}
	return SessionAnalysis{}, false
}

// Latest returns the most recent session analysis
func (r Report) Latest() (SessionAnalysis, bool) {
	if len(r.Sessions) == 0 {
		return SessionAnalysis{}, false
	}
	return r.Sessions[len(r.Sessions)-1], true
}

// Metrics returns the per-session metrics, oldest first
func (r Report) Metrics() []Metrics {
	out := make([]Metrics, len(r.Sessions))
	for i, s := range r.Sessions {
		out[i] = s.Metrics
	}
	return out
}

// Analyze runs the whole engine over a history. Invalid records are reported
// in Rejected and skipped; they never stop the rest of the history from being
// analyzed. A zero now means the latest session start. history is not modified.
func Analyze(history []session.Record, athlete session.Athlete, now time.Time) Report {
	var valid []session.Record
	var rejected []Rejection
	for i := range history {
		rec := history[i]
		if err := rec.Validate(); err != nil {
			rej := Rejection{SessionID: rec.ID, Source: rec.Source, Reason: err.Error()}
			var invalid *session.InvalidSessionError
			if errors.As(err, &invalid) {
				rej.Reason = invalid.Reason
			}
			rejected = append(rejected, rej)
			continue
		}
		valid = append(valid, rec)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].StartTime.Before(valid[j].StartTime)
	})

	var observedMax float64
	for _, rec := range valid {
		if hr := AggregateSampleStats(rec.Samples).HRMax; hr > observedMax {
			observedMax = hr
		}
	}
	zones := ZonesFor(athlete, observedMax)

	sessions := make([]SessionAnalysis, len(valid))
	metrics := make([]Metrics, len(valid))
	labels := make([]SessionType, len(valid))
	loads := make([]DailyLoad, 0, len(valid))
	for i, rec := range valid {
		m := ComputeMetrics(rec, athlete, zones)
		label := Classify(m.Features())
		sessions[i] = SessionAnalysis{
			Name:    rec.Name,
			Source:  rec.Source,
			Type:    label,
			Terrain: SessionTerrain(m),
			Metrics: m,
		}
		metrics[i] = m
		labels[i] = label
		loads = append(loads, DailyLoad{Date: rec.StartTime, TRIMP: m.TRIMP})
	}

	now = ResolveNow(metrics, now)
	windows := AggregateWindows(metrics, labels, now)
	trend := CalculateFitnessTrend(loads)
	acr := AcuteChronicRatio(loads, now)

	report := Report{
		Now:          now,
		Athlete:      athlete,
		Zones:        zones,
		Sessions:     sessions,
		Rejected:     rejected,
		ZoneSummary:  AnalyzeZones(valid, zones),
		Terrain:      AnalyzeTerrain(metrics),
		Biomech:      AnalyzeBiomechanics(metrics),
		Cardio:       AnalyzeCardio(metrics),
		Windows:      windows,
		FitnessTrend: trend,
		AcuteChronic: acr,
	}
	if len(trend) > 0 {
		report.Fitness = trend[len(trend)-1]
	}

	report.Records = FindPersonalRecords(valid)
	report.Predictions = PredictRaces(report.Records, athlete, now)

	report.Insights = GenerateInsights(InsightInput{
		Now:          now,
		Metrics:      metrics,
		Labels:       labels,
		Windows:      windows,
		AcuteChronic: acr,
		Terrain:      report.Terrain,
		Biomech:      report.Biomech,
		Cardio:       report.Cardio,
	})

	return report
}
