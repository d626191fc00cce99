package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"apexrun/internal/session"
)

type tcxDatabase struct {
	XMLName    xml.Name      `xml:"TrainingCenterDatabase"`
	Activities []tcxActivity `xml:"Activities>Activity"`
}

type tcxActivity struct {
	Sport string   `xml:"Sport,attr"`
	ID    string   `xml:"Id"`
	Laps  []tcxLap `xml:"Lap"`
}

type tcxLap struct {
	StartTime        string          `xml:"StartTime,attr"`
	TotalTimeSeconds float64         `xml:"TotalTimeSeconds"`
	DistanceMeters   float64         `xml:"DistanceMeters"`
	Trackpoints      []tcxTrackpoint `xml:"Track>Trackpoint"`
}

type tcxTrackpoint struct {
	Time     string `xml:"Time"`
	Position *struct {
		Lat float64 `xml:"LatitudeDegrees"`
		Lng float64 `xml:"LongitudeDegrees"`
	} `xml:"Position"`
	Altitude   *float64 `xml:"AltitudeMeters"`
	Distance   *float64 `xml:"DistanceMeters"`
	HeartRate  *int     `xml:"HeartRateBpm>Value"`
	Cadence    *int     `xml:"Cadence"`
	RunCadence *int     `xml:"Extensions>TPX>RunCadence"`
}

func decodeTCX(r io.Reader) (parsed, error) {
	var db tcxDatabase
	if err := xml.NewDecoder(r).Decode(&db); err != nil {
		return parsed{}, fmt.Errorf("decode TCX file: %w", err)
	}
	if len(db.Activities) == 0 {
		return parsed{}, ErrNoSamples
	}

	act := db.Activities[0]
	p := parsed{sport: act.Sport}
	if t, err := time.Parse(time.RFC3339, act.ID); err == nil {
		p.start = t
	}

	for _, lap := range act.Laps {
		p.duration += lap.TotalTimeSeconds
		p.distance += lap.DistanceMeters
		if p.start.IsZero() {
			if t, err := time.Parse(time.RFC3339, lap.StartTime); err == nil {
				p.start = t
			}
		}
		for _, tp := range lap.Trackpoints {
			s, ok := tcxSample(tp)
			if ok {
				p.samples = append(p.samples, s)
			}
		}
	}
	return p, nil
}

// tcxSample converts a trackpoint. Points without a timestamp are skipped.
func tcxSample(tp tcxTrackpoint) (session.Sample, bool) {
	t, err := time.Parse(time.RFC3339, tp.Time)
	if err != nil {
		return session.Sample{}, false
	}

	s := session.Sample{
		Time:      t,
		Altitude:  tp.Altitude,
		Distance:  tp.Distance,
		HeartRate: tp.HeartRate,
	}
	if tp.Position != nil {
		lat, lng := tp.Position.Lat, tp.Position.Lng
		s.Lat, s.Lng = &lat, &lng
	}

	// TCX stores cadence for one leg
	cad := tp.Cadence
	if cad == nil {
		cad = tp.RunCadence
	}
	if cad != nil {
		steps := *cad * 2
		s.Cadence = &steps
	}
	return s, true
}
