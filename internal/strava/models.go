package strava

import (
	"fmt"
	"time"

	"apexrun/internal/session"
)

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	StartDate      time.Time `json:"start_date"`
	Distance       float64   `json:"distance"`     // meters
	MovingTime     int       `json:"moving_time"`  // seconds
	ElapsedTime    int       `json:"elapsed_time"` // seconds
	HasHeartrate   bool      `json:"has_heartrate"`
	AverageCadence float64   `json:"average_cadence"` // strides per minute, one leg
}

// IsRun reports whether the activity is any kind of run
func (a Activity) IsRun() bool {
	switch a.SportType {
	case "Run", "TrailRun", "VirtualRun":
		return true
	case "":
		return a.Type == "Run"
	}
	return false
}

// Source is the record source used for Strava activities
func (a Activity) Source() string {
	return fmt.Sprintf("strava:%d", a.ID)
}

// Streams represents activity stream data keyed by type
type Streams struct {
	Time      *StreamData[int]        `json:"time"`
	LatLng    *StreamData[[2]float64] `json:"latlng"`
	Altitude  *StreamData[float64]    `json:"altitude"`
	Heartrate *StreamData[int]        `json:"heartrate"`
	Cadence   *StreamData[int]        `json:"cadence"`
	Distance  *StreamData[float64]    `json:"distance"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// at returns the i-th value, or nil when the stream is absent or short
func (s *StreamData[T]) at(i int) *T {
	if s == nil || i >= len(s.Data) {
		return nil
	}
	v := s.Data[i]
	return &v
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// ToRecord converts an activity and its streams to a session record. Streams
// may be nil for manual activities; the record then carries only the summary.
// Strava reports running cadence per leg, so it is doubled.
func ToRecord(a Activity, streams *Streams) session.Record {
	duration := float64(a.MovingTime)
	if duration <= 0 {
		duration = float64(a.ElapsedTime)
	}

	rec := session.Record{
		ID:        session.NewID(a.Source(), a.StartDate),
		Source:    a.Source(),
		Name:      a.Name,
		StartTime: a.StartDate,
		Distance:  a.Distance,
		Duration:  duration,
	}

	for i := 0; i < streams.Len(); i++ {
		s := session.Sample{
			Time:      a.StartDate.Add(time.Duration(streams.Time.Data[i]) * time.Second),
			Altitude:  streams.Altitude.at(i),
			Distance:  streams.Distance.at(i),
			HeartRate: streams.Heartrate.at(i),
		}
		if ll := streams.LatLng.at(i); ll != nil {
			lat, lng := ll[0], ll[1]
			s.Lat, s.Lng = &lat, &lng
		}
		if cad := streams.Cadence.at(i); cad != nil && *cad > 0 {
			steps := *cad * 2
			s.Cadence = &steps
		}
		if hr := s.HeartRate; hr != nil && *hr <= 0 {
			s.HeartRate = nil
		}
		rec.Samples = append(rec.Samples, s)
	}
	return rec
}
