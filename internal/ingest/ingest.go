// Package ingest turns activity files into normalized session records.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"apexrun/internal/session"
)

// ErrUnsupportedFormat is returned for files that are neither FIT nor TCX
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoSamples is returned when a file holds no usable trackpoints
var ErrNoSamples = errors.New("file has no samples")

// Format identifies an activity file encoding
type Format string

const (
	FormatFIT Format = "fit"
	FormatTCX Format = "tcx"
)

// DetectFormat picks the decoder from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fit":
		return FormatFIT, nil
	case ".tcx":
		return FormatTCX, nil
	default:
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
}

// Supported reports whether path has an extension ParseFile understands
func Supported(path string) bool {
	_, err := DetectFormat(path)
	return err == nil
}

// ParseFile decodes the activity at path. The record's source is the file's
// base name, so the same file imported from another directory keeps its ID.
func ParseFile(path string) (session.Record, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return session.Record{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return session.Record{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, format, filepath.Base(path))
}

// Parse decodes r in the given format
func Parse(r io.Reader, format Format, source string) (session.Record, error) {
	var (
		act parsed
		err error
	)
	switch format {
	case FormatFIT:
		act, err = decodeFIT(r)
	case FormatTCX:
		act, err = decodeTCX(r)
	default:
		return session.Record{}, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	if err != nil {
		return session.Record{}, fmt.Errorf("decoding %s: %w", source, err)
	}
	return act.record(source)
}

// parsed is a decoder's output before normalization
type parsed struct {
	sport    string
	start    time.Time
	distance float64 // meters, 0 when the file has no summary
	duration float64 // seconds, 0 when the file has no summary
	samples  []session.Sample
}

// record normalizes p: fills missing distances from positions, falls back to
// the sample span and final distance for absent summaries, and validates.
func (p parsed) record(source string) (session.Record, error) {
	if len(p.samples) == 0 {
		return session.Record{}, fmt.Errorf("%s: %w", source, ErrNoSamples)
	}

	trackDistance := session.FillDistances(p.samples)

	start := p.start
	if start.IsZero() {
		start = p.samples[0].Time
	}
	duration := p.duration
	if duration <= 0 {
		duration = p.samples[len(p.samples)-1].Time.Sub(p.samples[0].Time).Seconds()
	}
	distance := p.distance
	if distance <= 0 {
		distance = trackDistance
	}

	rec := session.Record{
		ID:        session.NewID(source, start),
		Source:    source,
		Name:      sessionName(p.sport, start),
		StartTime: start,
		Distance:  distance,
		Duration:  duration,
		Samples:   p.samples,
	}
	if err := rec.Validate(); err != nil {
		return session.Record{}, err
	}
	return rec, nil
}

func sessionName(sport string, start time.Time) string {
	sport = strings.TrimSpace(sport)
	if sport == "" || strings.EqualFold(sport, "running") {
		sport = "Run"
	}
	sport = strings.ToUpper(sport[:1]) + strings.ToLower(sport[1:])

	var part string
	switch h := start.Hour(); {
	case h < 12:
		part = "Morning"
	case h < 17:
		part = "Afternoon"
	default:
		part = "Evening"
	}
	return part + " " + sport
}
