package analysis

import (
	"math"

	"apexrun/internal/session"
)

// Split is one kilometer (or the final partial kilometer) of a session
type Split struct {
	Number          int      `json:"number"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
	PaceSecPerKm    float64  `json:"pace_sec_per_km"`
	AvgHR           *float64 `json:"avg_hr,omitempty"`
	AvgCadence      *float64 `json:"avg_cadence,omitempty"`
	ElevationChange *float64 `json:"elevation_change,omitempty"`
}

// KmSplits divides a session into per-kilometer splits. A trailing partial
// split is kept when it covers at least 100 m.
func KmSplits(samples []session.Sample) []Split {
	dist, ok := session.CumulativeDistances(samples)
	if !ok || len(samples) < 2 {
		return nil
	}

	var splits []Split
	start := 0
	next := MetersPerKm
	for i := 1; i < len(samples); i++ {
		last := i == len(samples)-1
		if dist[i] < next && !last {
			continue
		}
		d := dist[i] - dist[start]
		if dist[i] < next && d < 100 {
			break
		}
		splits = append(splits, buildSplit(len(splits)+1, samples[start:i+1], d))
		start = i
		next = (math.Floor(dist[i]/MetersPerKm) + 1) * MetersPerKm
	}
	return splits
}

func buildSplit(number int, seg []session.Sample, distance float64) Split {
	duration := seg[len(seg)-1].Time.Sub(seg[0].Time).Seconds()
	stats := AggregateSampleStats(seg)
	s := Split{
		Number:          number,
		DistanceMeters:  distance,
		DurationSeconds: duration,
		AvgHR:           stats.AvgHR(),
		AvgCadence:      stats.AvgCadence(),
	}
	if distance > 0 {
		s.PaceSecPerKm = duration / (distance / MetersPerKm)
	}
	first, last := seg[0].Altitude, seg[len(seg)-1].Altitude
	if first != nil && last != nil {
		s.ElevationChange = ptr(*last - *first)
	}
	return s
}

// PacingStrategy describes how pace changed between session halves
type PacingStrategy string

const (
	PacingEven           PacingStrategy = "even"
	PacingNegative       PacingStrategy = "negative_split"
	PacingSlightPositive PacingStrategy = "slight_positive"
	PacingPositive       PacingStrategy = "positive_split"
)

// PacingAnalysis compares the average pace of the two halves of the splits
type PacingAnalysis struct {
	FirstHalfPace  float64        `json:"first_half_pace"`
	SecondHalfPace float64        `json:"second_half_pace"`
	DiffPct        float64        `json:"diff_pct"` // positive means the second half was slower
	Strategy       PacingStrategy `json:"strategy"`
}

// AnalyzePacing returns nil with fewer than two full splits
func AnalyzePacing(splits []Split) *PacingAnalysis {
	var paces []float64
	for _, s := range splits {
		if s.DistanceMeters >= MetersPerKm*0.99 && s.PaceSecPerKm > 0 {
			paces = append(paces, s.PaceSecPerKm)
		}
	}
	if len(paces) < 2 {
		return nil
	}

	mid := len(paces) / 2
	first, second := mean(paces[:mid]), mean(paces[mid:])
	diff := (second - first) / first * 100

	var strategy PacingStrategy
	switch {
	case math.Abs(diff) < 2:
		strategy = PacingEven
	case diff <= -2:
		strategy = PacingNegative
	case diff < 5:
		strategy = PacingSlightPositive
	default:
		strategy = PacingPositive
	}

	return &PacingAnalysis{
		FirstHalfPace:  first,
		SecondHalfPace: second,
		DiffPct:        diff,
		Strategy:       strategy,
	}
}

// Interval is a detected fast segment
type Interval struct {
	StartIndex      int      `json:"start_index"`
	EndIndex        int      `json:"end_index"`
	DistanceMeters  float64  `json:"distance_meters"`
	DurationSeconds float64  `json:"duration_seconds"`
	PaceSecPerKm    float64  `json:"pace_sec_per_km"`
	AvgHR           *float64 `json:"avg_hr,omitempty"`
}

// Interval detection thresholds relative to the median pace, s/km
const (
	intervalStartOffset = 30
	intervalEndOffset   = 15
	intervalMinPoints   = 5
)

// DetectIntervals finds segments run clearly faster than the session's median
// pace. A segment starts below median - 30 s/km and ends once pace is back
// above median - 15 s/km; segments need more than 5 pace points.
func DetectIntervals(samples []session.Sample) []Interval {
	points := SamplePaces(samples)
	if len(points) <= intervalMinPoints {
		return nil
	}
	paces := make([]float64, len(points))
	for i, p := range points {
		paces[i] = p.Pace
	}
	med := median(paces)
	startBelow := med - intervalStartOffset
	endAbove := med - intervalEndOffset

	var intervals []Interval
	begin := -1
	flush := func(end int) {
		if end-begin+1 > intervalMinPoints {
			intervals = append(intervals, buildInterval(samples, points[begin:end+1]))
		}
		begin = -1
	}
	for i, p := range points {
		switch {
		case begin < 0 && p.Pace < startBelow:
			begin = i
		case begin >= 0 && p.Pace >= endAbove:
			flush(i - 1)
		}
	}
	if begin >= 0 {
		flush(len(points) - 1)
	}
	return intervals
}

func buildInterval(samples []session.Sample, pts []PacePoint) Interval {
	startIdx := pts[0].Index - 1
	endIdx := pts[len(pts)-1].Index
	duration := samples[endIdx].Time.Sub(samples[startIdx].Time).Seconds()

	var distance float64
	var hrs []float64
	for _, p := range pts {
		distance += MetersPerKm / p.Pace * samples[p.Index].Time.Sub(samples[p.Index-1].Time).Seconds()
		if p.HeartRate != nil {
			hrs = append(hrs, float64(*p.HeartRate))
		}
	}

	iv := Interval{
		StartIndex:      startIdx,
		EndIndex:        endIdx,
		DistanceMeters:  distance,
		DurationSeconds: duration,
	}
	if distance > 0 {
		iv.PaceSecPerKm = duration / (distance / MetersPerKm)
	}
	if len(hrs) > 0 {
		iv.AvgHR = ptr(mean(hrs))
	}
	return iv
}

// QualityScore rates how well a session was executed and recorded
type QualityScore struct {
	Pacing       float64 `json:"pacing"`       // out of 30
	HRCoverage   float64 `json:"hr_coverage"`  // out of 20
	Cadence      float64 `json:"cadence"`      // out of 20
	Completeness float64 `json:"completeness"` // out of 15
	Distance     float64 `json:"distance"`     // out of 15
	Total        float64 `json:"total"`        // 0-100
	Rating       int     `json:"rating"`       // 1-10
}

// SessionQuality scores a session from its pacing, sensor coverage and length
func SessionQuality(rec session.Record, pacing *PacingAnalysis) QualityScore {
	var q QualityScore

	switch {
	case pacing == nil:
		q.Pacing = 10
	case pacing.Strategy == PacingEven || pacing.Strategy == PacingNegative:
		q.Pacing = 30
	case pacing.Strategy == PacingSlightPositive:
		q.Pacing = 20
	default:
		q.Pacing = 10
	}

	stats := AggregateSampleStats(rec.Samples)
	switch cov := stats.HRCoverage(); {
	case cov > 0.8:
		q.HRCoverage = 20
	case cov > 0:
		q.HRCoverage = 10
	}

	var cadences []float64
	for _, s := range rec.Samples {
		if isValidCadence(s.Cadence) {
			cadences = append(cadences, float64(*s.Cadence))
		}
	}
	if len(cadences) > 0 {
		switch cv := coefficientOfVariation(cadences); {
		case cv < 0.05:
			q.Cadence = 20
		case cv < 0.10:
			q.Cadence = 15
		default:
			q.Cadence = 10
		}
	}

	q.Completeness = 15

	switch km := rec.DistanceKm(); {
	case km >= 10:
		q.Distance = 15
	case km >= 5:
		q.Distance = 10
	default:
		q.Distance = 5
	}

	q.Total = q.Pacing + q.HRCoverage + q.Cadence + q.Completeness + q.Distance
	q.Rating = int(math.Max(1, math.Min(10, math.Round(q.Total/10))))
	return q
}

// SessionDetail is the deep dive into a single session
type SessionDetail struct {
	Splits    []Split         `json:"splits"`
	Pacing    *PacingAnalysis `json:"pacing,omitempty"`
	Intervals []Interval      `json:"intervals"`
	Quality   QualityScore    `json:"quality"`
}

// AnalyzeSession builds the deep dive for one record
func AnalyzeSession(rec session.Record) SessionDetail {
	splits := KmSplits(rec.Samples)
	pacing := AnalyzePacing(splits)
	return SessionDetail{
		Splits:    splits,
		Pacing:    pacing,
		Intervals: DetectIntervals(rec.Samples),
		Quality:   SessionQuality(rec, pacing),
	}
}
