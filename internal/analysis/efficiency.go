package analysis

import "apexrun/internal/session"

// EfficiencyIndex calculates meters per minute per beat of average heart rate.
// Higher is better - you're covering more ground for the same cardiac cost.
// Returns nil when no heart rate is available.
func EfficiencyIndex(distanceMeters, durationSeconds float64, avgHR *float64) *float64 {
	if avgHR == nil || *avgHR <= 0 || durationSeconds <= 0 {
		return nil
	}
	metersPerMinute := distanceMeters / (durationSeconds / SecondsPerMinute)
	return ptr(metersPerMinute / *avgHR)
}

// ElevationGain sums positive altitude changes between consecutive samples
// that both carry an altitude.
func ElevationGain(samples []session.Sample) float64 {
	var gain float64
	var prev *float64
	for _, s := range samples {
		if s.Altitude == nil {
			prev = nil
			continue
		}
		if prev != nil {
			if diff := *s.Altitude - *prev; diff > 0 {
				gain += diff
			}
		}
		prev = s.Altitude
	}
	return gain
}

// GAPDistance is the elevation-adjusted equivalent distance:
// distance + elevation gain * 10
func GAPDistance(distanceMeters, elevationGain float64) float64 {
	return distanceMeters + elevationGain*GAPElevationFactor
}

// PaceSecondsPerKm returns seconds per km, or nil for zero distance
func PaceSecondsPerKm(distanceMeters, durationSeconds float64) *float64 {
	if distanceMeters <= 0 || durationSeconds <= 0 {
		return nil
	}
	return ptr(durationSeconds / (distanceMeters / MetersPerKm))
}

// StrideLength calculates meters per step from speed (m/min) and cadence (spm)
func StrideLength(metersPerMinute float64, cadence *float64) *float64 {
	if cadence == nil || *cadence <= 0 || metersPerMinute <= 0 {
		return nil
	}
	return ptr(metersPerMinute / *cadence)
}
