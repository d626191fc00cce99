package service

import (
	"context"

	"apexrun/internal/analysis"
	"apexrun/internal/session"
)

// SessionDetail is everything the detail screen and API show for one session
type SessionDetail struct {
	Record   session.Record            `json:"-"`
	Analysis *analysis.SessionAnalysis `json:"analysis,omitempty"`
	Detail   analysis.SessionDetail    `json:"detail"`
	Efforts  []EffortRow               `json:"best_efforts"`

	// Downsampled series for charts
	PaceSeries []float64 `json:"pace_series"` // seconds per km
	HRSeries   []float64 `json:"hr_series"`
	Rejected   string    `json:"rejected,omitempty"` // reason the session is excluded from analysis
}

// EffortRow is the best segment of one record distance within the session
type EffortRow struct {
	Bucket string              `json:"bucket"`
	Effort analysis.BestEffort `json:"effort"`
	IsPR   bool                `json:"is_pr"`
}

// GetSessionDetail loads one session and analyzes it in the context of the
// whole history
func (q *QueryService) GetSessionDetail(ctx context.Context, id string) (*SessionDetail, error) {
	rec, err := q.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := q.Report(ctx)
	if err != nil {
		return nil, err
	}

	d := &SessionDetail{Record: *rec}
	if sa, ok := report.Session(id); ok {
		d.Analysis = &sa
	}
	for _, rej := range report.Rejected {
		if rej.SessionID == id {
			d.Rejected = rej.Reason
		}
	}
	if d.Rejected != "" {
		return d, nil
	}

	d.Detail = analysis.AnalyzeSession(*rec)
	d.Efforts = sessionEfforts(*rec, report.Records)
	d.PaceSeries, d.HRSeries = buildChartData(*rec)
	return d, nil
}

// sessionEfforts finds the session's best segment for each record distance
// and flags the ones that are the athlete's personal record
func sessionEfforts(rec session.Record, prs []analysis.PersonalRecord) []EffortRow {
	var rows []EffortRow
	for _, b := range analysis.RecordBuckets {
		effort := analysis.FindBestEffort(rec.Samples, b.DistanceMeters)
		if effort == nil {
			continue
		}
		row := EffortRow{Bucket: b.Name, Effort: *effort}
		for _, pr := range prs {
			if pr.Bucket == b.Name && pr.SessionID == rec.ID {
				row.IsPR = true
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// buildChartData averages the pace and heart rate streams into at most
// MaxChartPoints buckets
func buildChartData(rec session.Record) (pace, hr []float64) {
	points := analysis.SamplePaces(rec.Samples)
	if len(points) > 0 {
		paces := make([]float64, len(points))
		for i, p := range points {
			paces[i] = p.Pace
		}
		pace = downsample(paces, MaxChartPoints)
	}

	var hrs []float64
	for _, s := range rec.Samples {
		if s.HeartRate != nil && *s.HeartRate > 0 {
			hrs = append(hrs, float64(*s.HeartRate))
		}
	}
	hr = downsample(hrs, MaxChartPoints)
	return pace, hr
}

// downsample averages values into n equal buckets
func downsample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	out := make([]float64, n)
	size := float64(len(values)) / float64(n)
	for i := 0; i < n; i++ {
		from := int(float64(i) * size)
		to := int(float64(i+1) * size)
		if to > len(values) {
			to = len(values)
		}
		var sum float64
		for _, v := range values[from:to] {
			sum += v
		}
		out[i] = sum / float64(to-from)
	}
	return out
}
