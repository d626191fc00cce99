// Package export writes the analyzed history for tools outside apexrun.
package export

import (
	"fmt"
	"io"
	"math"
	"os"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"apexrun/internal/analysis"
)

// sessionRow is one session with its derived metrics. Missing optional
// metrics are NaN.
type sessionRow struct {
	SessionID       string  `parquet:"name=session_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Source          string  `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name            string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartUTCISO     string  `parquet:"name=start_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartUnixMs     int64   `parquet:"name=start_unix_ms, type=INT64"`
	SessionType     string  `parquet:"name=session_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Terrain         string  `parquet:"name=terrain, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DistanceM       float64 `parquet:"name=distance_m, type=DOUBLE"`
	DurationS       float64 `parquet:"name=duration_s, type=DOUBLE"`
	PaceSPerKm      float64 `parquet:"name=pace_s_per_km, type=DOUBLE"`
	GAPPaceSPerKm   float64 `parquet:"name=gap_pace_s_per_km, type=DOUBLE"`
	ElevationGainM  float64 `parquet:"name=elevation_gain_m, type=DOUBLE"`
	AvgHR           float64 `parquet:"name=avg_hr, type=DOUBLE"`
	MaxHR           float64 `parquet:"name=max_hr, type=DOUBLE"`
	HRCoverage      float64 `parquet:"name=hr_coverage, type=DOUBLE"`
	AvgCadence      float64 `parquet:"name=avg_cadence_spm, type=DOUBLE"`
	StrideLengthM   float64 `parquet:"name=stride_length_m, type=DOUBLE"`
	EfficiencyIndex float64 `parquet:"name=efficiency_index, type=DOUBLE"`
	TRIMP           float64 `parquet:"name=trimp, type=DOUBLE"`
	TSS             float64 `parquet:"name=tss, type=DOUBLE"`
	DriftPct        float64 `parquet:"name=cardiac_drift_pct, type=DOUBLE"`
	DecouplingPct   float64 `parquet:"name=decoupling_pct, type=DOUBLE"`
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func newSessionRow(s analysis.SessionAnalysis) sessionRow {
	m := s.Metrics
	row := sessionRow{
		SessionID:       m.SessionID,
		Source:          s.Source,
		Name:            s.Name,
		StartUTCISO:     m.StartTime.UTC().Format("2006-01-02T15:04:05.000Z"),
		StartUnixMs:     m.StartTime.UnixMilli(),
		SessionType:     string(s.Type),
		Terrain:         string(s.Terrain),
		DistanceM:       m.DistanceMeters,
		DurationS:       m.DurationSeconds,
		PaceSPerKm:      valueOrNaN(m.PaceSecPerKm),
		GAPPaceSPerKm:   valueOrNaN(m.GAPPaceSecPerKm),
		ElevationGainM:  m.ElevationGain,
		AvgHR:           valueOrNaN(m.AvgHR),
		MaxHR:           valueOrNaN(m.MaxHR),
		HRCoverage:      m.HRCoverage,
		AvgCadence:      valueOrNaN(m.AvgCadence),
		StrideLengthM:   valueOrNaN(m.StrideLength),
		EfficiencyIndex: valueOrNaN(m.EfficiencyIndex),
		TRIMP:           m.TRIMP,
		TSS:             m.TSS,
		DriftPct:        math.NaN(),
		DecouplingPct:   math.NaN(),
	}
	if m.Drift != nil {
		row.DriftPct = m.Drift.Percent()
	}
	if m.Decoupling != nil {
		row.DecouplingPct = m.Decoupling.Percent
	}
	return row
}

// MarshalSessionsParquet encodes one row per analyzed session, oldest first,
// as a SNAPPY compressed Parquet file
func MarshalSessionsParquet(report *analysis.Report) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(sessionRow), 4)
	if err != nil {
		return nil, fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range report.Sessions {
		if err := pw.Write(newSessionRow(s)); err != nil {
			_ = pw.WriteStop()
			return nil, fmt.Errorf("writing session %s: %w", s.Metrics.SessionID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("finishing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

// WriteSessionsParquet writes the Parquet export to w
func WriteSessionsParquet(w io.Writer, report *analysis.Report) error {
	b, err := MarshalSessionsParquet(report)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// SaveSessionsParquet writes the Parquet export to path
func SaveSessionsParquet(path string, report *analysis.Report) error {
	b, err := MarshalSessionsParquet(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
