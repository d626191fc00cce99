package analysis

import (
	"math"
	"sort"
	"time"

	"apexrun/internal/session"
)

// Standard effort distances in meters
const (
	Distance1K       = 1000
	Distance3K       = 3000
	Distance5K       = 5000
	Distance10K      = 10000
	Distance15K      = 15000
	DistanceHalfMara = 21097.5
	DistanceMarathon = 42195

	MinPointsForEffort = 10 // minimum distance points needed for a segment search
)

// RecordBucket is a standard distance personal records are tracked for
type RecordBucket struct {
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
}

// RecordBuckets are tracked shortest first
var RecordBuckets = []RecordBucket{
	{"1K", Distance1K},
	{"3K", Distance3K},
	{"5K", Distance5K},
	{"10K", Distance10K},
	{"15K", Distance15K},
	{"21K", DistanceHalfMara},
	{"42K", DistanceMarathon},
}

// BestEffort is the fastest segment of a given distance within a session
type BestEffort struct {
	DistanceMeters  float64  `json:"distance_meters"`  // bucket distance
	DurationSeconds float64  `json:"duration_seconds"` // scaled to the bucket distance
	StartOffset     float64  `json:"start_offset"`     // seconds from session start
	EndOffset       float64  `json:"end_offset"`
	AvgHR           *float64 `json:"avg_hr,omitempty"`
}

// PersonalRecord is the best effort for one bucket across a history
type PersonalRecord struct {
	Bucket          string    `json:"bucket"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	PaceSecPerKm    float64   `json:"pace_sec_per_km"`
	SessionID       string    `json:"session_id"`
	AchievedAt      time.Time `json:"achieved_at"`
	AvgHR           *float64  `json:"avg_hr,omitempty"`
}

type distPoint struct {
	distance  float64
	offset    float64
	heartrate *int
}

// FindBestEffort finds the fastest segment of targetDistance meters within the
// samples using a two-pointer sliding window, O(n). The segment time is scaled
// to exactly targetDistance. Returns nil when the samples are too short or too
// sparse.
func FindBestEffort(samples []session.Sample, targetDistance float64) *BestEffort {
	if len(samples) < MinPointsForEffort || targetDistance <= 0 {
		return nil
	}
	dist, ok := session.CumulativeDistances(samples)
	if !ok {
		return nil
	}

	start := samples[0].Time
	points := make([]distPoint, len(samples))
	for i, s := range samples {
		points[i] = distPoint{
			distance:  dist[i],
			offset:    s.Time.Sub(start).Seconds(),
			heartrate: s.HeartRate,
		}
	}

	if points[len(points)-1].distance-points[0].distance < targetDistance {
		return nil
	}

	var best *BestEffort
	bestDuration := math.Inf(1)

	right := 0
	for left := 0; left < len(points); left++ {
		if right < left {
			right = left
		}
		for right < len(points) && points[right].distance-points[left].distance < targetDistance {
			right++
		}
		if right == len(points) {
			break
		}

		segDist := points[right].distance - points[left].distance
		elapsed := points[right].offset - points[left].offset
		if elapsed <= 0 || segDist <= 0 {
			continue
		}
		duration := elapsed * targetDistance / segDist
		if duration < bestDuration {
			bestDuration = duration
			best = &BestEffort{
				DistanceMeters:  targetDistance,
				DurationSeconds: duration,
				StartOffset:     points[left].offset,
				EndOffset:       points[right].offset,
				AvgHR:           segmentAvgHR(points[left : right+1]),
			}
		}
	}

	return best
}

func segmentAvgHR(points []distPoint) *float64 {
	var sum float64
	var count int
	for _, p := range points {
		if isValidHeartrate(p.heartrate) {
			sum += float64(*p.heartrate)
			count++
		}
	}
	if count == 0 {
		return nil
	}
	return ptr(sum / float64(count))
}

// MatchesRecordDistance checks whether a whole session's distance is within
// RecordDistanceTolerance of a bucket distance
func MatchesRecordDistance(sessionDistance, bucketDistance float64) bool {
	return math.Abs(sessionDistance-bucketDistance) <= bucketDistance*RecordDistanceTolerance
}

// sessionEffort is a session's best time for a bucket, from its samples or,
// failing that, from the whole session when its distance matches
func sessionEffort(rec session.Record, bucket RecordBucket) *BestEffort {
	if effort := FindBestEffort(rec.Samples, bucket.DistanceMeters); effort != nil {
		return effort
	}
	if rec.Distance > 0 && MatchesRecordDistance(rec.Distance, bucket.DistanceMeters) {
		stats := AggregateSampleStats(rec.Samples)
		return &BestEffort{
			DistanceMeters:  bucket.DistanceMeters,
			DurationSeconds: rec.Duration * bucket.DistanceMeters / rec.Distance,
			EndOffset:       rec.Duration,
			AvgHR:           stats.AvgHR(),
		}
	}
	return nil
}

// FindPersonalRecords returns the best effort per bucket across records.
// Equal times go to the earlier achievement. Buckets without any effort are
// omitted; the result is ordered by bucket distance.
func FindPersonalRecords(records []session.Record) []PersonalRecord {
	ordered := append([]session.Record(nil), records...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	var prs []PersonalRecord
	for _, bucket := range RecordBuckets {
		var best *PersonalRecord
		for _, rec := range ordered {
			effort := sessionEffort(rec, bucket)
			if effort == nil {
				continue
			}
			if best != nil && effort.DurationSeconds >= best.DurationSeconds {
				continue
			}
			best = &PersonalRecord{
				Bucket:          bucket.Name,
				DistanceMeters:  bucket.DistanceMeters,
				DurationSeconds: effort.DurationSeconds,
				PaceSecPerKm:    effort.DurationSeconds / (bucket.DistanceMeters / MetersPerKm),
				SessionID:       rec.ID,
				AchievedAt:      rec.StartTime,
				AvgHR:           effort.AvgHR,
			}
		}
		if best != nil {
			prs = append(prs, *best)
		}
	}
	return prs
}
