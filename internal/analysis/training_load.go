package analysis

import (
	"math"
	"sort"
	"time"

	"apexrun/internal/session"
)

// HRZones holds the heart rate bounds zone and load calculations run against
type HRZones struct {
	RestingHR float64
	MaxHR     float64
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR: session.DefaultRestingHR,
		MaxHR:     session.DefaultMaxHR,
	}
}

// ZonesFor resolves an athlete's zones, estimating max HR from observedMax
// when the athlete has not configured one.
func ZonesFor(athlete session.Athlete, observedMax float64) HRZones {
	return HRZones{
		RestingHR: athlete.Resting(),
		MaxHR:     athlete.EstimateMaxHR(observedMax),
	}
}

// ReserveRatio returns (hr - resting) / (max - resting) clamped to [0, 1].
// ok is false when the reserve is not positive.
func (z HRZones) ReserveRatio(hr float64) (ratio float64, ok bool) {
	reserve := z.MaxHR - z.RestingHR
	if reserve <= 0 {
		return 0, false
	}
	return clamp((hr-z.RestingHR)/reserve, 0, 1), true
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
// where b = 1.92 for men, 1.67 for women
func TRIMP(durationSeconds, avgHR float64, zones HRZones, female bool) float64 {
	if avgHR <= 0 || durationSeconds <= 0 {
		return 0
	}

	hrRatio, ok := zones.ReserveRatio(avgHR)
	if !ok {
		return 0
	}

	b := TRIMPCoefficientMale
	if female {
		b = TRIMPCoefficientFemale
	}

	return durationSeconds / SecondsPerMinute * hrRatio * math.Exp(b*hrRatio)
}

// IntensityFactor is avgHR / maxHR, or the default when HR is unknown
func IntensityFactor(avgHR *float64, maxHR float64) float64 {
	if avgHR == nil || *avgHR <= 0 || maxHR <= 0 {
		return DefaultIntensityFactor
	}
	return *avgHR / maxHR
}

// TSS estimates Training Stress Score: hours * IF^2 * 100
func TSS(durationSeconds, intensityFactor float64) float64 {
	hours := durationSeconds / 3600
	return hours * intensityFactor * intensityFactor * 100
}

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date  time.Time
	TRIMP float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := append([]DailyLoad(nil), dailyLoads...)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0) // 42-day time constant
	atlDecay := 2.0 / (7.0 + 1.0)  // 7-day time constant

	var metrics []FitnessMetrics
	var ctl, atl float64

	startDate := dayStart(loads[0].Date)
	endDate := dayStart(loads[len(loads)-1].Date)

	// Sum multiple sessions on the same day
	loadMap := make(map[string]float64)
	for _, dl := range loads {
		loadMap[dl.Date.Format("2006-01-02")] += dl.TRIMP
	}

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		trimp := loadMap[d.Format("2006-01-02")] // 0 if no session

		ctl = ctl + ctlDecay*(trimp-ctl)
		atl = atl + atlDecay*(trimp-atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// GetCurrentFitness returns the most recent CTL/ATL/TSB values
func GetCurrentFitness(dailyLoads []DailyLoad) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads)
	if len(metrics) == 0 {
		return FitnessMetrics{}
	}
	return metrics[len(metrics)-1]
}

// AcuteChronicRatio compares the mean daily load of the last 7 days with the
// mean daily load of the last 42 days. Returns nil when there is no chronic load.
func AcuteChronicRatio(dailyLoads []DailyLoad, now time.Time) *float64 {
	acuteStart := now.AddDate(0, 0, -7)
	chronicStart := now.AddDate(0, 0, -42)

	var acute, chronic float64
	for _, dl := range dailyLoads {
		if dl.Date.After(now) || dl.Date.Before(chronicStart) {
			continue
		}
		chronic += dl.TRIMP
		if !dl.Date.Before(acuteStart) {
			acute += dl.TRIMP
		}
	}
	if chronic == 0 {
		return nil
	}
	return ptr((acute / 7) / (chronic / 42))
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
