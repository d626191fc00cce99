package session

import "github.com/golang/geo/s2"

// EarthRadiusMeters is the mean Earth radius used for great-circle distance.
const EarthRadiusMeters = 6371000.0

// PointDistance returns the great-circle distance in meters between two
// coordinates given in degrees.
func PointDistance(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lng1)
	p2 := s2.LatLngFromDegrees(lat2, lng2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// CumulativeDistances returns the running distance in meters at every sample.
// A device-recorded distance is authoritative; otherwise the great-circle
// distance between consecutive positions is accumulated. ok is false when the
// samples carry neither distances nor at least two positions.
func CumulativeDistances(samples []Sample) (dist []float64, ok bool) {
	dist = make([]float64, len(samples))

	var total float64
	var lastLat, lastLng float64
	havePos := false
	positions := 0

	for i, s := range samples {
		hasPos := s.Lat != nil && s.Lng != nil
		switch {
		case s.Distance != nil:
			total = *s.Distance
			ok = true
		case hasPos && havePos:
			total += PointDistance(lastLat, lastLng, *s.Lat, *s.Lng)
		}
		if hasPos {
			lastLat, lastLng = *s.Lat, *s.Lng
			havePos = true
			positions++
		}
		dist[i] = total
	}

	if positions >= 2 {
		ok = true
	}
	return dist, ok
}

// FillDistances sets Distance on every sample that lacks one, using
// CumulativeDistances. It returns the total track distance.
func FillDistances(samples []Sample) float64 {
	dist, ok := CumulativeDistances(samples)
	if !ok || len(dist) == 0 {
		return 0
	}
	for i := range samples {
		if samples[i].Distance == nil {
			d := dist[i]
			samples[i].Distance = &d
		}
	}
	return dist[len(dist)-1]
}
