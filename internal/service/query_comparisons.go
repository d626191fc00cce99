package service

import (
	"context"
	"time"

	"apexrun/internal/analysis"
)

// PeriodType selects calendar weeks or months
type PeriodType string

const (
	Weekly  PeriodType = "weekly"
	Monthly PeriodType = "monthly"
)

// PeriodStats holds aggregated stats for a time period
type PeriodStats struct {
	PeriodStart     time.Time `json:"period_start"`
	PeriodLabel     string    `json:"period_label"`
	RunCount        int       `json:"run_count"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	Load            float64   `json:"load"`
	AvgHR           float64   `json:"avg_hr"`
	AvgCadence      float64   `json:"avg_cadence"`
	AvgEI           float64   `json:"avg_ei"`

	hrCount, cadenceCount, eiCount int
}

// Pace returns seconds per km over the period, zero without distance
func (p PeriodStats) Pace() float64 {
	if p.DistanceMeters <= 0 {
		return 0
	}
	return p.DurationSeconds / (p.DistanceMeters / analysis.MetersPerKm)
}

func (p *PeriodStats) add(m analysis.Metrics) {
	p.RunCount++
	p.DistanceMeters += m.DistanceMeters
	p.DurationSeconds += m.DurationSeconds
	p.Load += m.TRIMP
	if m.AvgHR != nil {
		p.AvgHR += *m.AvgHR
		p.hrCount++
	}
	if m.AvgCadence != nil {
		p.AvgCadence += *m.AvgCadence
		p.cadenceCount++
	}
	if m.EfficiencyIndex != nil {
		p.AvgEI += *m.EfficiencyIndex
		p.eiCount++
	}
}

func (p *PeriodStats) finish() {
	if p.hrCount > 0 {
		p.AvgHR /= float64(p.hrCount)
	}
	if p.cadenceCount > 0 {
		p.AvgCadence /= float64(p.cadenceCount)
	}
	if p.eiCount > 0 {
		p.AvgEI /= float64(p.eiCount)
	}
}

// ComparisonStats holds two periods and their deltas
type ComparisonStats struct {
	Label         string      `json:"label"`
	Current       PeriodStats `json:"current"`
	Previous      PeriodStats `json:"previous"`
	DeltaRuns     int         `json:"delta_runs"`
	DeltaDistance float64     `json:"delta_distance_meters"`
	DeltaHR       float64     `json:"delta_hr"`
	DeltaCadence  float64     `json:"delta_cadence"`
	DeltaEI       float64     `json:"delta_ei"`
}

// GetPeriodStats returns aggregated stats for the last numPeriods weeks or
// months, oldest first
func (q *QueryService) GetPeriodStats(ctx context.Context, periodType PeriodType, numPeriods int) ([]PeriodStats, error) {
	report, err := q.Report(ctx)
	if err != nil {
		return nil, err
	}
	return periodStats(report.Metrics(), periodType, numPeriods, report.Now), nil
}

func periodStats(metrics []analysis.Metrics, periodType PeriodType, numPeriods int, now time.Time) []PeriodStats {
	stats := make([]PeriodStats, numPeriods)
	currentMonday := getMonday(now)
	currentFirst := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < numPeriods; i++ {
		if periodType == Weekly {
			start := currentMonday.AddDate(0, 0, -7*(numPeriods-1-i))
			stats[i] = PeriodStats{PeriodStart: start, PeriodLabel: start.Format("Jan 02")}
		} else {
			start := currentFirst.AddDate(0, -(numPeriods - 1 - i), 0)
			stats[i] = PeriodStats{PeriodStart: start, PeriodLabel: start.Format("Jan 2006")}
		}
	}

	for _, m := range metrics {
		if idx := findPeriodIndex(m.StartTime.In(now.Location()), stats, periodType); idx >= 0 {
			stats[idx].add(m)
		}
	}
	for i := range stats {
		stats[i].finish()
	}
	return stats
}

// findPeriodIndex returns the index of the period that contains the given date
func findPeriodIndex(date time.Time, stats []PeriodStats, periodType PeriodType) int {
	for i := range stats {
		var periodEnd time.Time
		if periodType == Weekly {
			periodEnd = stats[i].PeriodStart.AddDate(0, 0, 7)
		} else {
			periodEnd = stats[i].PeriodStart.AddDate(0, 1, 0)
		}
		if !date.Before(stats[i].PeriodStart) && date.Before(periodEnd) {
			return i
		}
	}
	return -1
}

// GetComparisons returns this week vs last week, this month vs last month,
// and the rolling 30 days vs the 30 before
func (q *QueryService) GetComparisons(ctx context.Context) ([]ComparisonStats, error) {
	report, err := q.Report(ctx)
	if err != nil {
		return nil, err
	}
	return comparisons(report.Metrics(), report.Now), nil
}

func comparisons(metrics []analysis.Metrics, now time.Time) []ComparisonStats {
	currentMonday := getMonday(now)
	lastMonday := currentMonday.AddDate(0, 0, -7)
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)
	thirtyDaysAgo := now.AddDate(0, 0, -Rolling30Days)
	sixtyDaysAgo := now.AddDate(0, 0, -Rolling30Days*2)

	// Ranges end just after now so a session starting at now counts
	end := now.Add(time.Nanosecond)
	return []ComparisonStats{
		buildComparison("This Week vs Last Week",
			statsForRange(metrics, currentMonday, end, "This Week"),
			statsForRange(metrics, lastMonday, currentMonday, "Last Week")),
		buildComparison("This Month vs Last Month",
			statsForRange(metrics, thisMonthStart, end, now.Format("Jan 2006")),
			statsForRange(metrics, lastMonthStart, thisMonthStart, lastMonthStart.Format("Jan 2006"))),
		buildComparison("Rolling 30 Days vs Prior 30",
			statsForRange(metrics, thirtyDaysAgo, end, "Last 30 Days"),
			statsForRange(metrics, sixtyDaysAgo, thirtyDaysAgo, "Prior 30 Days")),
	}
}

// statsForRange aggregates sessions starting in [start, end)
func statsForRange(metrics []analysis.Metrics, start, end time.Time, label string) PeriodStats {
	stats := PeriodStats{PeriodStart: start, PeriodLabel: label}
	for _, m := range metrics {
		if !m.StartTime.Before(start) && m.StartTime.Before(end) {
			stats.add(m)
		}
	}
	stats.finish()
	return stats
}

func buildComparison(label string, current, previous PeriodStats) ComparisonStats {
	return ComparisonStats{
		Label:         label,
		Current:       current,
		Previous:      previous,
		DeltaRuns:     current.RunCount - previous.RunCount,
		DeltaDistance: current.DistanceMeters - previous.DistanceMeters,
		DeltaHR:       current.AvgHR - previous.AvgHR,
		DeltaCadence:  current.AvgCadence - previous.AvgCadence,
		DeltaEI:       current.AvgEI - previous.AvgEI,
	}
}
