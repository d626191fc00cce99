package analysis

import (
	"math"

	"apexrun/internal/session"
)

// Tier is a qualitative rating shared by the cardiovascular metrics
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierModerate  Tier = "moderate"
	TierHigh      Tier = "high"
	TierPoor      Tier = "poor"
)

// Drift is the heart rate rise between the first and second half of a session
type Drift struct {
	FirstHalfHR  float64 `json:"first_half_hr"`
	SecondHalfHR float64 `json:"second_half_hr"`
	Fraction     float64 `json:"fraction"` // (second - first) / first
	Severity     Tier    `json:"severity"`
	Optimal      bool    `json:"optimal"`
}

// Percent returns the drift as a percentage
func (d Drift) Percent() float64 {
	return d.Fraction * 100
}

// CardiacDrift compares the average HR of the two halves of the heart rate
// series. Returns nil with fewer than MinCardioSamples HR points.
func CardiacDrift(samples []session.Sample) *Drift {
	hrs := heartRates(samples)
	if len(hrs) < MinCardioSamples {
		return nil
	}

	mid := len(hrs) / 2
	first := mean(hrs[:mid])
	second := mean(hrs[mid:])
	if first <= 0 {
		return nil
	}

	fraction := (second - first) / first
	pct := fraction * 100
	return &Drift{
		FirstHalfHR:  first,
		SecondHalfHR: second,
		Fraction:     fraction,
		Severity:     DriftSeverity(pct),
		Optimal:      pct < DriftOptimalPct,
	}
}

// DriftSeverity rates a drift percentage
func DriftSeverity(pct float64) Tier {
	switch {
	case pct < DriftExcellentPct:
		return TierExcellent
	case pct < DriftOptimalPct:
		return TierGood
	case pct < DriftModeratePct:
		return TierModerate
	default:
		return TierHigh
	}
}

// Coupling describes how heart rate variability relates to pace variability
type Coupling struct {
	HRCV        float64 `json:"hr_cv"`   // fraction
	PaceCV      float64 `json:"pace_cv"` // fraction
	Ratio       float64 `json:"ratio"`   // HR CV / pace CV, lower is better
	Correlation float64 `json:"correlation"`
	Efficiency  Tier    `json:"efficiency"`
}

// HRPaceCoupling computes the coupling ratio over samples carrying both a
// pace and a heart rate. Returns nil with fewer than MinCardioSamples pairs.
func HRPaceCoupling(samples []session.Sample) *Coupling {
	hrs, paces := pairedHRPace(SamplePaces(samples))
	if len(hrs) < MinCardioSamples {
		return nil
	}

	hrCV := coefficientOfVariation(hrs)
	paceCV := coefficientOfVariation(paces)
	ratio := 0.0
	if paceCV > 0 {
		ratio = hrCV / paceCV
	}

	return &Coupling{
		HRCV:        hrCV,
		PaceCV:      paceCV,
		Ratio:       ratio,
		Correlation: correlation(hrs, paces),
		Efficiency:  CouplingTier(ratio),
	}
}

// CouplingTier rates a coupling ratio
func CouplingTier(ratio float64) Tier {
	switch {
	case ratio < CouplingExcellent:
		return TierExcellent
	case ratio < CouplingGood:
		return TierGood
	case ratio < CouplingModerate:
		return TierModerate
	default:
		return TierPoor
	}
}

// Decoupling is the change in the HR:pace ratio between session halves
type Decoupling struct {
	FirstHalfRatio  float64 `json:"first_half_ratio"`
	SecondHalfRatio float64 `json:"second_half_ratio"`
	Percent         float64 `json:"percent"` // positive means the second half cost more
	Status          Tier    `json:"status"`
}

// AerobicDecoupling compares avg HR / avg pace between the first and second
// half of the paired series. Returns nil with fewer than MinCardioSamples pairs.
func AerobicDecoupling(samples []session.Sample) *Decoupling {
	hrs, paces := pairedHRPace(SamplePaces(samples))
	if len(hrs) < MinCardioSamples {
		return nil
	}

	mid := len(hrs) / 2
	firstPace, secondPace := mean(paces[:mid]), mean(paces[mid:])
	if firstPace <= 0 || secondPace <= 0 {
		return nil
	}
	first := mean(hrs[:mid]) / firstPace
	second := mean(hrs[mid:]) / secondPace
	if first <= 0 {
		return nil
	}

	pct := (second - first) / first * 100
	return &Decoupling{
		FirstHalfRatio:  first,
		SecondHalfRatio: second,
		Percent:         pct,
		Status:          DecouplingStatus(pct),
	}
}

// DecouplingStatus rates a decoupling percentage by magnitude
func DecouplingStatus(pct float64) Tier {
	switch abs := math.Abs(pct); {
	case abs < DecouplingExcellentPct:
		return TierExcellent
	case abs < DecouplingGoodPct:
		return TierGood
	default:
		return TierPoor
	}
}

// DecouplingAssessment returns a human-readable decoupling assessment
func DecouplingAssessment(status Tier) string {
	switch status {
	case TierExcellent:
		return "Excellent aerobic base, no decoupling"
	case TierGood:
		return "Good aerobic coupling"
	default:
		return "High decoupling - add more Z2 volume"
	}
}

func pairedHRPace(points []PacePoint) (hrs, paces []float64) {
	for _, p := range points {
		if p.HeartRate == nil {
			continue
		}
		hrs = append(hrs, float64(*p.HeartRate))
		paces = append(paces, p.Pace)
	}
	return hrs, paces
}
