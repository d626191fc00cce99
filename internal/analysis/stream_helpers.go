package analysis

import (
	"fmt"
	"math"
	"sort"

	"apexrun/internal/session"
)

// SampleStats holds aggregated sensor values from a session's samples
type SampleStats struct {
	HRSum        float64
	HRCount      int
	HRMax        float64
	CadenceSum   float64
	CadenceCount int
	Samples      int
}

// AggregateSampleStats calculates HR and cadence stats from samples
func AggregateSampleStats(samples []session.Sample) SampleStats {
	stats := SampleStats{Samples: len(samples)}
	for _, s := range samples {
		if isValidHeartrate(s.HeartRate) {
			hr := float64(*s.HeartRate)
			stats.HRSum += hr
			stats.HRCount++
			if hr > stats.HRMax {
				stats.HRMax = hr
			}
		}
		if isValidCadence(s.Cadence) {
			stats.CadenceSum += float64(*s.Cadence)
			stats.CadenceCount++
		}
	}
	return stats
}

// AvgHR returns the average heart rate, or nil if no valid readings
func (s SampleStats) AvgHR() *float64 {
	if s.HRCount == 0 {
		return nil
	}
	avg := s.HRSum / float64(s.HRCount)
	return &avg
}

// AvgCadence returns the average cadence, or nil if no valid readings
func (s SampleStats) AvgCadence() *float64 {
	if s.CadenceCount == 0 {
		return nil
	}
	avg := s.CadenceSum / float64(s.CadenceCount)
	return &avg
}

// HRCoverage is the fraction of samples carrying a valid heart rate
func (s SampleStats) HRCoverage() float64 {
	if s.Samples == 0 {
		return 0
	}
	return float64(s.HRCount) / float64(s.Samples)
}

// isValidHeartrate checks if HR is in valid range
func isValidHeartrate(hr *int) bool {
	return hr != nil && *hr > MinValidHeartrate && *hr < MaxValidHeartrate
}

// isValidCadence checks if cadence is present and positive
func isValidCadence(cad *int) bool {
	return cad != nil && *cad > 0
}

// PacePoint is the instantaneous pace over the segment ending at a sample
type PacePoint struct {
	Index     int     // index of the segment's end sample
	Distance  float64 // cumulative meters at the end sample
	Pace      float64 // seconds per km
	HeartRate *int
}

// SamplePaces derives an instantaneous pace series from consecutive samples.
// Segments slower than MinSpeedForPace are treated as stopped and skipped.
func SamplePaces(samples []session.Sample) []PacePoint {
	dist, ok := session.CumulativeDistances(samples)
	if !ok {
		return nil
	}

	var points []PacePoint
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time.Sub(samples[i-1].Time).Seconds()
		dd := dist[i] - dist[i-1]
		if dt <= 0 || dd <= 0 {
			continue
		}
		speed := dd / dt
		if speed < MinSpeedForPace {
			continue
		}
		hr := samples[i].HeartRate
		if !isValidHeartrate(hr) {
			hr = nil
		}
		points = append(points, PacePoint{
			Index:     i,
			Distance:  dist[i],
			Pace:      MetersPerKm / speed,
			HeartRate: hr,
		})
	}
	return points
}

// heartRates returns the valid heart rate series in sample order
func heartRates(samples []session.Sample) []float64 {
	var hrs []float64
	for _, s := range samples {
		if isValidHeartrate(s.HeartRate) {
			hrs = append(hrs, float64(*s.HeartRate))
		}
	}
	return hrs
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation (n-1)
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// popStdDev is the population standard deviation (n)
func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// coefficientOfVariation returns std/mean as a fraction, 0 when undefined
func coefficientOfVariation(values []float64) float64 {
	m := mean(values)
	if m <= 0 {
		return 0
	}
	return stdDev(values) / m
}

// correlation is the Pearson correlation coefficient, 0 when undefined
func correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func ptr(f float64) *float64 {
	return &f
}

// FormatDuration formats seconds as "H:MM:SS" or "M:SS"
func FormatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatPace formats seconds per km as "M:SS/km"
func FormatPace(secPerKm float64) string {
	if secPerKm <= 0 || math.IsInf(secPerKm, 0) || math.IsNaN(secPerKm) {
		return "--"
	}
	return FormatDuration(secPerKm) + "/km"
}
