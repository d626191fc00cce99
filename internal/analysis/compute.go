package analysis

import (
	"time"

	"apexrun/internal/session"
)

// Metrics are the derived values for one session. Pointer fields are nil when
// the inputs they need (heart rate, cadence, distance) are missing.
type Metrics struct {
	SessionID       string    `json:"session_id"`
	StartTime       time.Time `json:"start_time"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`

	PaceSecPerKm    *float64 `json:"pace_sec_per_km,omitempty"`
	ElevationGain   float64  `json:"elevation_gain"`
	GAPDistance     float64  `json:"gap_distance_meters"`
	GAPPaceSecPerKm *float64 `json:"gap_pace_sec_per_km,omitempty"`
	PaceVariability float64  `json:"pace_variability"` // CV of instantaneous pace

	AvgHR      *float64 `json:"avg_hr,omitempty"`
	MaxHR      *float64 `json:"max_hr,omitempty"`
	HRCoverage float64  `json:"hr_coverage"`
	AvgCadence *float64 `json:"avg_cadence,omitempty"`

	EfficiencyIndex    *float64 `json:"efficiency_index,omitempty"`
	GAPEfficiencyIndex *float64 `json:"gap_efficiency_index,omitempty"`
	StrideLength       *float64 `json:"stride_length,omitempty"`

	TRIMP           float64 `json:"trimp"`
	TSS             float64 `json:"tss"`
	IntensityFactor float64 `json:"intensity_factor"`

	Drift      *Drift      `json:"cardiac_drift,omitempty"`
	Coupling   *Coupling   `json:"coupling,omitempty"`
	Decoupling *Decoupling `json:"decoupling,omitempty"`

	Zones ZoneDistribution `json:"zones"`
}

// ComputeMetrics calculates all metrics for a single session. zones should be
// resolved once per history (see ZonesFor) so loads are comparable.
func ComputeMetrics(rec session.Record, athlete session.Athlete, zones HRZones) Metrics {
	stats := AggregateSampleStats(rec.Samples)

	m := Metrics{
		SessionID:       rec.ID,
		StartTime:       rec.StartTime,
		DistanceMeters:  rec.Distance,
		DurationSeconds: rec.Duration,
		AvgHR:           stats.AvgHR(),
		AvgCadence:      stats.AvgCadence(),
		HRCoverage:      stats.HRCoverage(),
	}
	if stats.HRCount > 0 {
		m.MaxHR = ptr(stats.HRMax)
	}

	m.PaceSecPerKm = PaceSecondsPerKm(rec.Distance, rec.Duration)
	m.ElevationGain = ElevationGain(rec.Samples)
	m.GAPDistance = GAPDistance(rec.Distance, m.ElevationGain)
	m.GAPPaceSecPerKm = PaceSecondsPerKm(m.GAPDistance, rec.Duration)

	paces := SamplePaces(rec.Samples)
	paceValues := make([]float64, len(paces))
	for i, p := range paces {
		paceValues[i] = p.Pace
	}
	m.PaceVariability = coefficientOfVariation(paceValues)

	m.EfficiencyIndex = EfficiencyIndex(rec.Distance, rec.Duration, m.AvgHR)
	m.GAPEfficiencyIndex = EfficiencyIndex(m.GAPDistance, rec.Duration, m.AvgHR)
	m.StrideLength = StrideLength(rec.Distance/(rec.Duration/SecondsPerMinute), m.AvgCadence)

	if m.AvgHR != nil {
		m.TRIMP = TRIMP(rec.Duration, *m.AvgHR, zones, athlete.IsFemale())
	}
	m.IntensityFactor = IntensityFactor(m.AvgHR, zones.MaxHR)
	m.TSS = TSS(rec.Duration, m.IntensityFactor)

	m.Drift = CardiacDrift(rec.Samples)
	m.Coupling = HRPaceCoupling(rec.Samples)
	m.Decoupling = AerobicDecoupling(rec.Samples)

	m.Zones = SessionZoneDistribution(rec, zones)

	return m
}

// DataQualityDescription returns a human-readable HR coverage assessment
func DataQualityDescription(coverage float64) string {
	switch {
	case coverage >= 0.95:
		return "Excellent"
	case coverage >= 0.85:
		return "Good"
	case coverage >= 0.70:
		return "Fair"
	case coverage >= 0.50:
		return "Poor"
	default:
		return "Very Poor"
	}
}
