package ingest

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tormoder/fit"

	"apexrun/internal/session"
)

func decodeFIT(r io.Reader) (parsed, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return parsed{}, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return parsed{}, fmt.Errorf("activity FIT expected: %w", err)
	}

	var p parsed
	if len(activity.Sessions) > 0 {
		s := activity.Sessions[0]
		p.sport = strings.ReplaceAll(s.Sport.String(), "_", " ")
		if !fit.IsBaseTime(s.StartTime) {
			p.start = s.StartTime
		}
		p.duration = finite(s.GetTotalTimerTimeScaled())
		p.distance = finite(s.GetTotalDistanceScaled())
	}

	for _, rec := range activity.Records {
		if rec.Timestamp.IsZero() || fit.IsBaseTime(rec.Timestamp) {
			continue
		}
		p.samples = append(p.samples, fitSample(rec))
	}
	return p, nil
}

func fitSample(rec *fit.RecordMsg) session.Sample {
	s := session.Sample{Time: rec.Timestamp}

	if !rec.PositionLat.Invalid() && !rec.PositionLong.Invalid() {
		lat, lng := rec.PositionLat.Degrees(), rec.PositionLong.Degrees()
		s.Lat, s.Lng = &lat, &lng
	}

	alt := rec.GetEnhancedAltitudeScaled()
	if !isFinite(alt) {
		alt = rec.GetAltitudeScaled()
	}
	if isFinite(alt) {
		s.Altitude = &alt
	}

	if d := rec.GetDistanceScaled(); isFinite(d) && d >= 0 {
		s.Distance = &d
	}

	if rec.HeartRate != math.MaxUint8 && rec.HeartRate > 0 {
		hr := int(rec.HeartRate)
		s.HeartRate = &hr
	}

	// FIT stores running cadence per leg
	if rec.Cadence != math.MaxUint8 && rec.Cadence > 0 {
		cad := int(rec.Cadence) * 2
		s.Cadence = &cad
	}
	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finite returns v, or 0 for the decoder's invalid markers
func finite(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}
