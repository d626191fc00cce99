package analysis

import (
	"fmt"
	"math"
)

// PaceZone buckets a session by average pace for cadence comparison
type PaceZone string

const (
	PaceEasy     PaceZone = "easy"     // slower than 6:30/km
	PaceModerate PaceZone = "moderate" // 5:00 - 6:30/km
	PaceTempo    PaceZone = "tempo"    // 4:00 - 5:00/km
	PaceFast     PaceZone = "fast"     // faster than 4:00/km
)

// PaceZones lists pace zones from slowest to fastest
var PaceZones = []PaceZone{PaceEasy, PaceModerate, PaceTempo, PaceFast}

// Pace zone lower bounds in seconds per km
const (
	paceEasyMin     = 6.5 * SecondsPerMinute
	paceModerateMin = 5.0 * SecondsPerMinute
	paceTempoMin    = 4.0 * SecondsPerMinute
)

// ClassifyPaceZone maps seconds per km to a pace zone
func ClassifyPaceZone(secPerKm float64) PaceZone {
	switch {
	case secPerKm >= paceEasyMin:
		return PaceEasy
	case secPerKm >= paceModerateMin:
		return PaceModerate
	case secPerKm >= paceTempoMin:
		return PaceTempo
	default:
		return PaceFast
	}
}

// CadenceZoneStats is the cadence profile of one pace zone
type CadenceZoneStats struct {
	Zone       PaceZone `json:"zone"`
	Sessions   int      `json:"sessions"`
	AvgCadence float64  `json:"avg_cadence"`
	Optimal    bool     `json:"optimal"` // within 170-190 spm
}

// StrideStats summarizes stride length across sessions
type StrideStats struct {
	Avg           float64 `json:"avg_meters"`
	Std           float64 `json:"std_meters"`
	Overstriding  bool    `json:"overstriding"`
	ShortStriding bool    `json:"short_striding"`
}

// EconomyScore is the 0-100 running economy composite and its parts
type EconomyScore struct {
	Score              float64 `json:"score"`
	CadenceEfficiency  float64 `json:"cadence_efficiency"`
	CadenceConsistency float64 `json:"cadence_consistency"`
	StrideEfficiency   float64 `json:"stride_efficiency"`
	Rating             string  `json:"rating"`
}

// BiomechanicsSummary is the biomechanics analyzer's result
type BiomechanicsSummary struct {
	HasData         bool               `json:"has_data"`
	Sessions        int                `json:"sessions"`
	AvgCadence      float64            `json:"avg_cadence"`
	CadenceStatus   string             `json:"cadence_status"` // low, optimal, high
	Zones           []CadenceZoneStats `json:"zones"`
	Stride          *StrideStats       `json:"stride,omitempty"`
	Economy         *EconomyScore      `json:"economy,omitempty"`
	Recommendations []string           `json:"recommendations"`
}

// InOptimalCadenceBand reports whether cadence is within 170-190 spm
func InOptimalCadenceBand(cadence float64) bool {
	return cadence >= OptimalCadenceMin && cadence <= OptimalCadenceMax
}

// cadenceEfficiency scores one cadence: 100 at the 180 target, losing a point
// for every 2 spm away from it.
func cadenceEfficiency(cadence float64) float64 {
	return math.Max(0, 100-math.Abs(cadence-OptimalCadenceTarget)/2)
}

// strideEfficiency scores one stride length: 100 inside [0.85, 1.4] m,
// otherwise 200 points lost per meter outside the band.
func strideEfficiency(stride float64) float64 {
	var outside float64
	switch {
	case stride < ShortStrideMeters:
		outside = ShortStrideMeters - stride
	case stride > OverstrideMeters:
		outside = stride - OverstrideMeters
	}
	return math.Max(0, 100-StrideEfficiencyPenaltyPerMeter*outside)
}

// RunningEconomy combines cadence and stride measurements into a 0-100 score:
//
//	0.4 * cadence efficiency + 0.3 * cadence consistency + 0.3 * stride efficiency
//
// Cadence consistency is 100 minus the population std dev of cadences, clamped
// to [0, 100]. When no strides are available the stride part scores as the
// cadence efficiency. Returns nil without cadences.
func RunningEconomy(cadences, strides []float64) *EconomyScore {
	if len(cadences) == 0 {
		return nil
	}

	var effs []float64
	for _, c := range cadences {
		effs = append(effs, cadenceEfficiency(c))
	}
	cadEff := mean(effs)
	consistency := clamp(100-popStdDev(cadences), 0, 100)

	strideEff := cadEff
	if len(strides) > 0 {
		var scores []float64
		for _, s := range strides {
			scores = append(scores, strideEfficiency(s))
		}
		strideEff = mean(scores)
	}

	score := EconomyWeightCadenceEfficiency*cadEff +
		EconomyWeightCadenceConsistency*consistency +
		EconomyWeightStrideEfficiency*strideEff
	score = clamp(score, 0, 100)

	return &EconomyScore{
		Score:              score,
		CadenceEfficiency:  cadEff,
		CadenceConsistency: consistency,
		StrideEfficiency:   strideEff,
		Rating:             economyRating(score),
	}
}

func economyRating(score float64) string {
	switch {
	case score >= EconomyExcellent:
		return "excellent"
	case score >= EconomyNeedsWork:
		return "good"
	default:
		return "needs work"
	}
}

// AnalyzeBiomechanics buckets session cadence by pace zone and scores running
// economy. Sessions without cadence or pace are skipped.
func AnalyzeBiomechanics(metrics []Metrics) BiomechanicsSummary {
	byZone := make(map[PaceZone][]float64)
	var cadences, strides []float64

	for _, m := range metrics {
		if m.AvgCadence == nil || m.PaceSecPerKm == nil {
			continue
		}
		cad := *m.AvgCadence
		cadences = append(cadences, cad)
		zone := ClassifyPaceZone(*m.PaceSecPerKm)
		byZone[zone] = append(byZone[zone], cad)
		if m.StrideLength != nil {
			strides = append(strides, *m.StrideLength)
		}
	}

	summary := BiomechanicsSummary{HasData: len(cadences) > 0, Sessions: len(cadences)}
	if !summary.HasData {
		summary.Recommendations = []string{"No cadence data. Use a watch or foot pod that records cadence."}
		return summary
	}

	summary.AvgCadence = mean(cadences)
	switch {
	case summary.AvgCadence < OptimalCadenceMin:
		summary.CadenceStatus = "low"
	case summary.AvgCadence > OptimalCadenceMax:
		summary.CadenceStatus = "high"
	default:
		summary.CadenceStatus = "optimal"
	}

	for _, zone := range PaceZones {
		values := byZone[zone]
		if len(values) == 0 {
			continue
		}
		avg := mean(values)
		summary.Zones = append(summary.Zones, CadenceZoneStats{
			Zone:       zone,
			Sessions:   len(values),
			AvgCadence: avg,
			Optimal:    InOptimalCadenceBand(avg),
		})
	}

	if len(strides) > 0 {
		avg := mean(strides)
		summary.Stride = &StrideStats{
			Avg:           avg,
			Std:           popStdDev(strides),
			Overstriding:  avg > OverstrideMeters,
			ShortStriding: avg < ShortStrideMeters,
		}
	}

	summary.Economy = RunningEconomy(cadences, strides)
	summary.Recommendations = biomechanicsRecommendations(summary)
	return summary
}

func biomechanicsRecommendations(s BiomechanicsSummary) []string {
	var recs []string

	switch s.CadenceStatus {
	case "low":
		recs = append(recs, fmt.Sprintf(
			"Cadence is low (%.0f spm). Aim for %d-%d spm with shorter, quicker steps.",
			s.AvgCadence, OptimalCadenceMin, OptimalCadenceMax))
	case "high":
		recs = append(recs, fmt.Sprintf(
			"Cadence is high (%.0f spm). Check that your stride is not too short.", s.AvgCadence))
	}

	for _, z := range s.Zones {
		if z.AvgCadence < LowZoneCadence {
			recs = append(recs, fmt.Sprintf(
				"Low cadence in %s runs (%.0f spm). Try a metronome at %d spm.",
				z.Zone, z.AvgCadence, OptimalCadenceTarget))
		}
	}

	if s.Stride != nil {
		if s.Stride.Overstriding {
			recs = append(recs, fmt.Sprintf(
				"Possible overstriding (%.2f m stride). Land with your foot under your hips.", s.Stride.Avg))
		}
		if s.Stride.ShortStriding {
			recs = append(recs, fmt.Sprintf(
				"Short stride (%.2f m). Add strides and hill sprints to develop power.", s.Stride.Avg))
		}
	}

	if s.Economy != nil {
		switch {
		case s.Economy.Score >= EconomyExcellent:
			recs = append(recs, fmt.Sprintf("Excellent running economy (%.0f/100).", s.Economy.Score))
		case s.Economy.Score < EconomyNeedsWork:
			recs = append(recs, fmt.Sprintf(
				"Running economy %.0f/100. Technique drills will help.", s.Economy.Score))
		}
	}

	return recs
}
