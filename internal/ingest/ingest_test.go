package ingest

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"apexrun/internal/session"
)

const tcxRun = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase xmlns="http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
  xmlns:ns3="http://www.garmin.com/xmlschemas/ActivityExtension/v2">
  <Activities>
    <Activity Sport="Running">
      <Id>2024-06-03T07:00:00Z</Id>
      <Lap StartTime="2024-06-03T07:00:00Z">
        <TotalTimeSeconds>20</TotalTimeSeconds>
        <DistanceMeters>60</DistanceMeters>
        <Track>
          <Trackpoint>
            <Time>2024-06-03T07:00:00Z</Time>
            <Position><LatitudeDegrees>51.5</LatitudeDegrees><LongitudeDegrees>-0.12</LongitudeDegrees></Position>
            <AltitudeMeters>12.5</AltitudeMeters>
            <DistanceMeters>0</DistanceMeters>
            <HeartRateBpm><Value>120</Value></HeartRateBpm>
            <Cadence>85</Cadence>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-06-03T07:00:10Z</Time>
            <DistanceMeters>30</DistanceMeters>
            <HeartRateBpm><Value>131</Value></HeartRateBpm>
            <Extensions><ns3:TPX><ns3:RunCadence>88</ns3:RunCadence></ns3:TPX></Extensions>
          </Trackpoint>
          <Trackpoint>
            <Time>2024-06-03T07:00:20Z</Time>
            <DistanceMeters>60</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <DistanceMeters>61</DistanceMeters>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

// createTestFile writes content to name inside a temp dir
func createTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseTCX(t *testing.T) {
	path := createTestFile(t, "morning.tcx", tcxRun)

	rec, err := ParseFile(path)
	require.NoError(t, err)

	start := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	assert.Equal(t, "morning.tcx", rec.Source)
	assert.Equal(t, session.NewID("morning.tcx", start), rec.ID)
	assert.Equal(t, "Morning Run", rec.Name)
	assert.True(t, rec.StartTime.Equal(start))
	assert.Equal(t, 20.0, rec.Duration)
	assert.Equal(t, 60.0, rec.Distance)

	// the trackpoint without a time is dropped
	require.Len(t, rec.Samples, 3)

	first := rec.Samples[0]
	require.NotNil(t, first.Lat)
	assert.Equal(t, 51.5, *first.Lat)
	assert.Equal(t, 12.5, *first.Altitude)
	assert.Equal(t, 120, *first.HeartRate)
	assert.Equal(t, 170, *first.Cadence, "cadence is doubled")

	assert.Equal(t, 176, *rec.Samples[1].Cadence, "extension cadence is doubled")
	assert.Nil(t, rec.Samples[1].Lat)
	assert.Nil(t, rec.Samples[2].HeartRate)
	assert.Nil(t, rec.Samples[2].Cadence)
}

func TestParseTCXWithoutSummary(t *testing.T) {
	// Positions only: distance comes from the track, duration from the span
	content := `<TrainingCenterDatabase><Activities><Activity Sport="Other"><Lap><Track>
	  <Trackpoint><Time>2024-06-03T18:00:00Z</Time><Position><LatitudeDegrees>0</LatitudeDegrees><LongitudeDegrees>0</LongitudeDegrees></Position></Trackpoint>
	  <Trackpoint><Time>2024-06-03T18:01:00Z</Time><Position><LatitudeDegrees>0</LatitudeDegrees><LongitudeDegrees>0.01</LongitudeDegrees></Position></Trackpoint>
	</Track></Lap></Activity></Activities></TrainingCenterDatabase>`

	rec, err := Parse(strings.NewReader(content), FormatTCX, "walk.tcx")
	require.NoError(t, err)

	assert.Equal(t, "Evening Other", rec.Name)
	assert.Equal(t, 60.0, rec.Duration)
	// 0.01 degrees of longitude on the equator
	assert.InDelta(t, 1111.95, rec.Distance, 0.5)
	require.NotNil(t, rec.Samples[1].Distance)
	assert.InDelta(t, rec.Distance, *rec.Samples[1].Distance, 1e-9)
}

func TestParseErrors(t *testing.T) {
	_, err := ParseFile(createTestFile(t, "notes.gpx", "<gpx/>"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat), "got %v", err)

	empty := `<TrainingCenterDatabase><Activities><Activity Sport="Running"><Lap><Track/></Lap></Activity></Activities></TrainingCenterDatabase>`
	_, err = Parse(strings.NewReader(empty), FormatTCX, "empty.tcx")
	assert.True(t, errors.Is(err, ErrNoSamples), "got %v", err)

	_, err = Parse(strings.NewReader("not xml"), FormatTCX, "bad.tcx")
	assert.Error(t, err)

	// Samples out of order fail validation
	backwards := `<TrainingCenterDatabase><Activities><Activity><Lap><Track>
	  <Trackpoint><Time>2024-06-03T07:01:00Z</Time><DistanceMeters>10</DistanceMeters></Trackpoint>
	  <Trackpoint><Time>2024-06-03T07:00:00Z</Time><DistanceMeters>20</DistanceMeters></Trackpoint>
	</Track></Lap></Activity></Activities></TrainingCenterDatabase>`
	_, err = Parse(strings.NewReader(backwards), FormatTCX, "backwards.tcx")
	var invalid *session.InvalidSessionError
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestFITSample(t *testing.T) {
	msg := fit.NewRecordMsg()
	msg.Timestamp = time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)

	s := fitSample(msg)
	assert.Nil(t, s.Lat)
	assert.Nil(t, s.Distance)
	assert.Nil(t, s.HeartRate)
	assert.Nil(t, s.Cadence)

	msg.HeartRate = 152
	msg.Cadence = 89
	msg.Distance = 123450 // centimeters
	s = fitSample(msg)
	require.NotNil(t, s.HeartRate)
	assert.Equal(t, 152, *s.HeartRate)
	assert.Equal(t, 178, *s.Cadence)
	assert.InDelta(t, 1234.5, *s.Distance, 1e-9)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.fit", FormatFIT, false},
		{"dir/B.FIT", FormatFIT, false},
		{"run.tcx", FormatTCX, false},
		{"run.gpx", "", true},
		{"fit", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.path)
			continue
		}
		assert.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.tcx")
	bad := filepath.Join(dir, "bad.tcx")
	require.NoError(t, os.WriteFile(good, []byte(tcxRun), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	paths, err := FindFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{bad, good}, paths)

	results, err := ParseFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, bad, results[0].Path)
	assert.Error(t, results[0].Err)
	assert.Equal(t, good, results[1].Path)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Record.Samples, 3)
}

func TestParseFilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseFiles(ctx, []string{"a.tcx", "b.tcx"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionName(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Morning Run", sessionName("Running", at(6)))
	assert.Equal(t, "Afternoon Run", sessionName("", at(13)))
	assert.Equal(t, "Evening Trail running", sessionName("trail running", at(19)))
	assert.Equal(t, 0.0, finite(math.NaN()))
}
