package analysis

import (
	"fmt"
	"math"
)

// TerrainClass categorizes a session by elevation gain per kilometer
type TerrainClass string

const (
	Flat        TerrainClass = "flat"
	Rolling     TerrainClass = "rolling"
	Hilly       TerrainClass = "hilly"
	Mountainous TerrainClass = "mountainous"
)

type terrainBand struct {
	class    TerrainClass
	label    string
	minPerKm float64 // inclusive
	maxPerKm float64 // exclusive
}

// terrainBands partition [0, inf) without gaps or overlap
var terrainBands = []terrainBand{
	{Flat, "Flat", 0, 10},
	{Rolling, "Rolling", 10, 30},
	{Hilly, "Hilly", 30, 60},
	{Mountainous, "Mountainous", 60, math.Inf(1)},
}

// TerrainClasses lists the classes in ascending order of climb
var TerrainClasses = []TerrainClass{Flat, Rolling, Hilly, Mountainous}

// Label returns a human-readable label
func (c TerrainClass) Label() string {
	for _, b := range terrainBands {
		if b.class == c {
			return b.label
		}
	}
	return string(c)
}

// GainPerKm returns meters climbed per kilometer, 0 for zero distance
func GainPerKm(distanceMeters, elevationGain float64) float64 {
	if distanceMeters <= 0 {
		return 0
	}
	return elevationGain / (distanceMeters / MetersPerKm)
}

// ClassifyTerrain maps gain per km to exactly one class. Negative or NaN
// inputs are treated as flat.
func ClassifyTerrain(gainPerKm float64) TerrainClass {
	for _, b := range terrainBands {
		if gainPerKm >= b.minPerKm && gainPerKm < b.maxPerKm {
			return b.class
		}
	}
	if gainPerKm >= terrainBands[len(terrainBands)-1].minPerKm {
		return Mountainous
	}
	return Flat
}

// SessionTerrain classifies a session from its metrics
func SessionTerrain(m Metrics) TerrainClass {
	return ClassifyTerrain(GainPerKm(m.DistanceMeters, m.ElevationGain))
}

// TerrainClassStats summarizes the sessions of one terrain class
type TerrainClassStats struct {
	Class        TerrainClass `json:"class"`
	Sessions     int          `json:"sessions"`
	DistanceKm   float64      `json:"distance_km"`
	SessionPct   float64      `json:"session_pct"`
	DistancePct  float64      `json:"distance_pct"`
	AvgPace      float64      `json:"avg_pace_sec_per_km"`
	AvgGAPPace   float64      `json:"avg_gap_pace_sec_per_km"`
	AvgHR        *float64     `json:"avg_hr,omitempty"`
	AvgGainPerKm float64      `json:"avg_gain_per_km"`
}

// GAPEffect measures how much grade adjustment changes pace on a terrain
type GAPEffect struct {
	Class         TerrainClass `json:"class"`
	AvgAdjustment float64      `json:"avg_adjustment_sec_per_km"` // pace - GAP pace
	AvgDiffPct    float64      `json:"avg_diff_pct"`              // adjustment / pace * 100
}

// TerrainSummary is the terrain analyzer's result
type TerrainSummary struct {
	HasData         bool                `json:"has_data"`
	Classes         []TerrainClassStats `json:"classes"`
	GAPEffects      []GAPEffect         `json:"gap_effects"`
	Recommendations []string            `json:"recommendations"`
}

// Class returns the stats for c, and false if no session had that terrain
func (s TerrainSummary) Class(c TerrainClass) (TerrainClassStats, bool) {
	for _, cs := range s.Classes {
		if cs.Class == c {
			return cs, true
		}
	}
	return TerrainClassStats{}, false
}

// AnalyzeTerrain classifies every session with a distance and reports the
// distribution, GAP effectiveness and recommendations.
func AnalyzeTerrain(metrics []Metrics) TerrainSummary {
	type acc struct {
		sessions   int
		km         float64
		paces      []float64
		gapPaces   []float64
		hrs        []float64
		gains      []float64
		adjust     []float64
		adjustPcts []float64
	}
	byClass := make(map[TerrainClass]*acc)

	var totalSessions int
	var totalKm float64
	for _, m := range metrics {
		if m.DistanceMeters <= 0 {
			continue
		}
		class := SessionTerrain(m)
		a := byClass[class]
		if a == nil {
			a = &acc{}
			byClass[class] = a
		}
		a.sessions++
		a.km += m.DistanceMeters / MetersPerKm
		a.gains = append(a.gains, GainPerKm(m.DistanceMeters, m.ElevationGain))
		if m.AvgHR != nil {
			a.hrs = append(a.hrs, *m.AvgHR)
		}
		if m.PaceSecPerKm != nil && m.GAPPaceSecPerKm != nil {
			pace, gap := *m.PaceSecPerKm, *m.GAPPaceSecPerKm
			a.paces = append(a.paces, pace)
			a.gapPaces = append(a.gapPaces, gap)
			a.adjust = append(a.adjust, pace-gap)
			a.adjustPcts = append(a.adjustPcts, (pace-gap)/pace*100)
		}
		totalSessions++
		totalKm += m.DistanceMeters / MetersPerKm
	}

	summary := TerrainSummary{HasData: totalSessions > 0}
	if !summary.HasData {
		summary.Recommendations = []string{"Add more sessions with distance data for terrain analysis."}
		return summary
	}

	for _, class := range TerrainClasses {
		a := byClass[class]
		if a == nil {
			continue
		}
		stats := TerrainClassStats{
			Class:        class,
			Sessions:     a.sessions,
			DistanceKm:   a.km,
			SessionPct:   float64(a.sessions) / float64(totalSessions) * 100,
			AvgPace:      mean(a.paces),
			AvgGAPPace:   mean(a.gapPaces),
			AvgGainPerKm: mean(a.gains),
		}
		if totalKm > 0 {
			stats.DistancePct = a.km / totalKm * 100
		}
		if len(a.hrs) > 0 {
			stats.AvgHR = ptr(mean(a.hrs))
		}
		summary.Classes = append(summary.Classes, stats)

		if len(a.adjust) > 0 {
			summary.GAPEffects = append(summary.GAPEffects, GAPEffect{
				Class:         class,
				AvgAdjustment: mean(a.adjust),
				AvgDiffPct:    mean(a.adjustPcts),
			})
		}
	}

	summary.Recommendations = terrainRecommendations(summary)
	return summary
}

func terrainRecommendations(summary TerrainSummary) []string {
	var recs []string

	flat, _ := summary.Class(Flat)
	hilly, _ := summary.Class(Hilly)
	mountain, _ := summary.Class(Mountainous)
	flatPct := flat.SessionPct
	hillPct := hilly.SessionPct + mountain.SessionPct

	if flatPct > TerrainFlatHeavyPct {
		recs = append(recs, fmt.Sprintf(
			"Lack of climbing: %.0f%% of your sessions are flat. Add at least one hilly session a week to build power.",
			flatPct))
	}
	if hillPct > TerrainHillHeavyPct {
		recs = append(recs, fmt.Sprintf(
			"Lots of climbing: %.0f%% of your sessions are hilly or mountainous. Include flat sessions for pure speed work.",
			hillPct))
	}
	if flatPct >= TerrainBalancedLowPct && flatPct <= TerrainBalancedHighPct &&
		hillPct >= TerrainBalancedLowPct && hillPct <= TerrainBalancedHighPct {
		recs = append(recs, "Balanced terrain: a good mix of flat and hilly running develops complete fitness.")
	}

	var hillPcts []float64
	var hillWeights []float64
	for _, e := range summary.GAPEffects {
		if e.Class == Hilly || e.Class == Mountainous {
			cs, _ := summary.Class(e.Class)
			hillPcts = append(hillPcts, e.AvgDiffPct)
			hillWeights = append(hillWeights, float64(cs.Sessions))
		}
	}
	if impact := weightedMean(hillPcts, hillWeights); impact > TerrainHillPaceImpactPct {
		recs = append(recs, fmt.Sprintf(
			"Hills hurt your pace: on hilly terrain you slow down ~%.0f%%. Work on hill-specific strength.",
			impact))
	}

	return recs
}

func weightedMean(values, weights []float64) float64 {
	var sum, wsum float64
	for i, v := range values {
		sum += v * weights[i]
		wsum += weights[i]
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}
