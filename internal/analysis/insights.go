package analysis

import (
	"fmt"
	"sort"
	"time"
)

// Severity ranks how urgently an insight needs attention
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Horizon is the time scale an insight speaks to
type Horizon string

const (
	HorizonShort    Horizon = "short_term"
	HorizonMedium   Horizon = "medium_term"
	HorizonLong     Horizon = "long_term"
	HorizonAnalysis Horizon = "analysis"
)

// Insight is one coaching observation
type Insight struct {
	Horizon  Horizon  `json:"horizon"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Insight thresholds
const (
	// Short term, per 7 days
	ShortHighVolumeKm    = 50.0
	ShortLowVolumeKm     = 15.0
	ShortVarietyTypes    = 3
	ShortHighLoad        = 400.0
	ShortLowFrequency    = 2
	ShortHighFrequency   = 5
	AcuteChronicHighRisk = 1.5

	// Medium term, per 30 days
	MediumMinSessions     = 5
	MediumEIChangePct     = 2.0
	MediumPaceChangePct   = 2.0
	MediumVolumeChangePct = 10.0

	// Long term
	LongMinSessions = 20
	LongMinMonths   = 3

	// Analyzer derived, percent
	DriftWarningPct = 5.0
	DriftErrorPct   = 8.0
)

// InsightInput is everything the generator reads. Metrics and Labels are
// parallel and ordered by start time.
type InsightInput struct {
	Now          time.Time
	Metrics      []Metrics
	Labels       []SessionType
	Windows      Windows
	AcuteChronic *float64
	Terrain      TerrainSummary
	Biomech      BiomechanicsSummary
	Cardio       CardioSummary
}

type insightRule func(in InsightInput) *Insight

func fired(h Horizon, category, title string, sev Severity, format string, args ...any) *Insight {
	return &Insight{
		Horizon:  h,
		Category: category,
		Title:    title,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	}
}

var shortTermRules = []insightRule{
	func(in InsightInput) *Insight {
		if in.Windows.Short.Sessions > 0 {
			return nil
		}
		return fired(HorizonShort, "activity", "No recent runs", SeverityInfo,
			"No runs in the last %d days.", ShortWindowDays)
	},
	func(in InsightInput) *Insight {
		km := in.Windows.Short.DistanceKm()
		if in.Windows.Short.Sessions == 0 || km <= ShortHighVolumeKm {
			return nil
		}
		return fired(HorizonShort, "volume", "High weekly volume", SeveritySuccess,
			"%.1f km this week. Strong volume, keep an eye on recovery.", km)
	},
	func(in InsightInput) *Insight {
		km := in.Windows.Short.DistanceKm()
		if in.Windows.Short.Sessions == 0 || km >= ShortLowVolumeKm {
			return nil
		}
		return fired(HorizonShort, "volume", "Low weekly volume", SeverityWarning,
			"Only %.1f km this week. Consider adding an easy run.", km)
	},
	func(in InsightInput) *Insight {
		if len(in.Windows.Short.Types) != 1 {
			return nil
		}
		var only SessionType
		for t := range in.Windows.Short.Types {
			only = t
		}
		return fired(HorizonShort, "variety", "No training variety", SeverityWarning,
			"Every run this week was %s. Mix in different session types.", only.Label())
	},
	func(in InsightInput) *Insight {
		if n := len(in.Windows.Short.Types); n >= ShortVarietyTypes {
			return fired(HorizonShort, "variety", "Good training variety", SeveritySuccess,
				"%d different session types this week.", n)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		if in.Windows.Short.Load <= ShortHighLoad {
			return nil
		}
		return fired(HorizonShort, "load", "High training load", SeverityWarning,
			"Weekly load of %.0f TRIMP is high. Plan recovery days.", in.Windows.Short.Load)
	},
	func(in InsightInput) *Insight {
		n := in.Windows.Short.Sessions
		if n == 0 || n >= ShortLowFrequency {
			return nil
		}
		return fired(HorizonShort, "frequency", "Low run frequency", SeverityWarning,
			"Only %d run this week. Consistency builds fitness.", n)
	},
	func(in InsightInput) *Insight {
		if n := in.Windows.Short.Sessions; n >= ShortHighFrequency {
			return fired(HorizonShort, "frequency", "Consistent training", SeveritySuccess,
				"%d runs this week.", n)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		if in.AcuteChronic == nil || *in.AcuteChronic <= AcuteChronicHighRisk {
			return nil
		}
		return fired(HorizonShort, "load", "Load spike", SeverityWarning,
			"Acute:chronic load ratio is %.2f. Injury risk rises above %.1f.", *in.AcuteChronic, AcuteChronicHighRisk)
	},
}

// mediumSessions returns the metrics inside the medium window in time order
func mediumSessions(in InsightInput) []Metrics {
	w := in.Windows.Medium
	var out []Metrics
	for _, m := range in.Metrics {
		if !m.StartTime.Before(w.Start) && !m.StartTime.After(w.End) {
			out = append(out, m)
		}
	}
	return out
}

type halfTotals struct {
	eis      []float64
	distance float64
	duration float64
}

func splitHalves(ms []Metrics) (first, second halfTotals) {
	mid := len(ms) / 2
	for i, m := range ms {
		h := &first
		if i >= mid {
			h = &second
		}
		h.distance += m.DistanceMeters
		h.duration += m.DurationSeconds
		if m.EfficiencyIndex != nil {
			h.eis = append(h.eis, *m.EfficiencyIndex)
		}
	}
	return first, second
}

var mediumTermRules = []insightRule{
	func(in InsightInput) *Insight {
		if n := len(mediumSessions(in)); n < MediumMinSessions {
			return fired(HorizonMedium, "data", "Not enough data", SeverityInfo,
				"%d runs in the last %d days. At least %d are needed for monthly trends.",
				n, MediumWindowDays, MediumMinSessions)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		ms := mediumSessions(in)
		if len(ms) < MediumMinSessions {
			return nil
		}
		first, second := splitHalves(ms)
		if len(first.eis) == 0 || len(second.eis) == 0 {
			return nil
		}
		change := (mean(second.eis) - mean(first.eis)) / mean(first.eis) * 100
		switch {
		case change > MediumEIChangePct:
			return fired(HorizonMedium, "efficiency", "Efficiency improving", SeveritySuccess,
				"Efficiency index up %.1f%% over the month.", change)
		case change < -MediumEIChangePct:
			return fired(HorizonMedium, "efficiency", "Efficiency declining", SeverityWarning,
				"Efficiency index down %.1f%% over the month. Check fatigue and recovery.", -change)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		ms := mediumSessions(in)
		if len(ms) < MediumMinSessions {
			return nil
		}
		first, second := splitHalves(ms)
		p1 := PaceSecondsPerKm(first.distance, first.duration)
		p2 := PaceSecondsPerKm(second.distance, second.duration)
		if p1 == nil || p2 == nil {
			return nil
		}
		if change := (*p2 - *p1) / *p1 * 100; change < -MediumPaceChangePct {
			return fired(HorizonMedium, "pace", "Getting faster", SeveritySuccess,
				"Average pace improved from %s to %s /km.", FormatPace(*p1), FormatPace(*p2))
		}
		return nil
	},
	func(in InsightInput) *Insight {
		ms := mediumSessions(in)
		if len(ms) < MediumMinSessions {
			return nil
		}
		first, second := splitHalves(ms)
		if first.distance <= 0 {
			return nil
		}
		if change := (second.distance - first.distance) / first.distance * 100; change > MediumVolumeChangePct {
			return fired(HorizonMedium, "volume", "Volume increasing", SeverityInfo,
				"Volume up %.0f%% in the second half of the month. Build gradually.", change)
		}
		return nil
	},
}

type monthKm struct {
	month time.Time
	km    float64
}

// monthlyKm buckets sessions in the long window by calendar month
func monthlyKm(in InsightInput) []monthKm {
	w := in.Windows.Long
	byMonth := make(map[time.Time]float64)
	for _, m := range in.Metrics {
		if m.StartTime.Before(w.Start) || m.StartTime.After(w.End) {
			continue
		}
		t := m.StartTime
		key := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		byMonth[key] += m.DistanceMeters / MetersPerKm
	}
	months := make([]monthKm, 0, len(byMonth))
	for k, v := range byMonth {
		months = append(months, monthKm{k, v})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month.Before(months[j].month) })
	return months
}

func longTermReady(in InsightInput) bool {
	return in.Windows.Long.Sessions >= LongMinSessions && len(monthlyKm(in)) >= LongMinMonths
}

var longTermRules = []insightRule{
	func(in InsightInput) *Insight {
		if longTermReady(in) {
			return nil
		}
		return fired(HorizonLong, "data", "Building history", SeverityInfo,
			"Long-term trends need %d runs over %d months; you have %d runs.",
			LongMinSessions, LongMinMonths, in.Windows.Long.Sessions)
	},
	func(in InsightInput) *Insight {
		if !longTermReady(in) {
			return nil
		}
		return fired(HorizonLong, "volume", "Total volume", SeveritySuccess,
			"%.0f km over %d runs since %s.", in.Windows.Long.DistanceKm(), in.Windows.Long.Sessions,
			in.Windows.Long.Start.Format("Jan 2006"))
	},
	func(in InsightInput) *Insight {
		if !longTermReady(in) {
			return nil
		}
		months := monthlyKm(in)
		mid := len(months) / 2
		var early, late []float64
		for i, m := range months {
			if i < mid {
				early = append(early, m.km)
			} else {
				late = append(late, m.km)
			}
		}
		if mean(late) > mean(early) {
			return fired(HorizonLong, "volume", "Volume trending up", SeveritySuccess,
				"Monthly volume rose from %.0f km to %.0f km on average.", mean(early), mean(late))
		}
		return nil
	},
	func(in InsightInput) *Insight {
		if !longTermReady(in) {
			return nil
		}
		months := monthlyKm(in)
		best := months[0]
		for _, m := range months[1:] {
			if m.km > best.km {
				best = m
			}
		}
		return fired(HorizonLong, "consistency", "Most active month", SeverityInfo,
			"%s was your biggest month with %.0f km.", best.month.Format("January 2006"), best.km)
	},
}

var analyzerRules = []insightRule{
	func(in InsightInput) *Insight {
		if in.Cardio.Latest == nil || in.Cardio.Latest.Drift == nil {
			return nil
		}
		pct := in.Cardio.Latest.Drift.Percent()
		switch {
		case pct >= DriftErrorPct:
			return fired(HorizonAnalysis, "cardio", "High cardiac drift", SeverityError,
				"Heart rate drifted %.1f%% in your latest run. Check hydration, heat and pacing.", pct)
		case pct >= DriftWarningPct:
			return fired(HorizonAnalysis, "cardio", "Elevated cardiac drift", SeverityWarning,
				"Heart rate drifted %.1f%% in your latest run.", pct)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		if !in.Terrain.HasData {
			return nil
		}
		flat, _ := in.Terrain.Class(Flat)
		hilly, _ := in.Terrain.Class(Hilly)
		mountain, _ := in.Terrain.Class(Mountainous)
		switch {
		case flat.SessionPct > TerrainFlatHeavyPct:
			return fired(HorizonAnalysis, "terrain", "Mostly flat running", SeverityInfo,
				"%.0f%% of your runs are flat. Hills build strength.", flat.SessionPct)
		case hilly.SessionPct+mountain.SessionPct > TerrainHillHeavyPct:
			return fired(HorizonAnalysis, "terrain", "Mostly hilly running", SeverityInfo,
				"%.0f%% of your runs are hilly. Flat runs help speed work.", hilly.SessionPct+mountain.SessionPct)
		}
		return nil
	},
	func(in InsightInput) *Insight {
		if !in.Biomech.HasData || in.Biomech.CadenceStatus == "optimal" {
			return nil
		}
		return fired(HorizonAnalysis, "biomechanics", "Cadence outside optimal range", SeverityWarning,
			"Average cadence %.0f spm is outside %d-%d spm.",
			in.Biomech.AvgCadence, OptimalCadenceMin, OptimalCadenceMax)
	},
}

// InsightRules groups the rule tables by horizon
var InsightRules = map[Horizon][]insightRule{
	HorizonShort:    shortTermRules,
	HorizonMedium:   mediumTermRules,
	HorizonLong:     longTermRules,
	HorizonAnalysis: analyzerRules,
}

// HorizonOrder is the order insights are emitted in
var HorizonOrder = []Horizon{HorizonShort, HorizonMedium, HorizonLong, HorizonAnalysis}

// GenerateInsights evaluates every rule independently; any number may fire.
func GenerateInsights(in InsightInput) []Insight {
	var insights []Insight
	for _, h := range HorizonOrder {
		for _, rule := range InsightRules[h] {
			if ins := rule(in); ins != nil {
				insights = append(insights, *ins)
			}
		}
	}
	return insights
}

// InsightsFor filters insights by horizon
func InsightsFor(insights []Insight, h Horizon) []Insight {
	var out []Insight
	for _, ins := range insights {
		if ins.Horizon == h {
			out = append(out, ins)
		}
	}
	return out
}
