package service

import (
	"context"
	"time"

	"apexrun/internal/analysis"
)

// DashboardData contains all data needed for the overview screen
type DashboardData struct {
	Report *analysis.Report

	// Current fitness
	CurrentEI       *float64
	EITrendPct      *float64
	FormDescription string

	// Recent sessions, newest first
	Recent []analysis.SessionAnalysis

	// For charts, oldest week first
	WeeklyKm     []float64
	WeeklyLoad   []float64
	WeeklyAvgEI  []float64
	WeeklyLabels []string
}

// GetDashboardData analyzes the history and shapes it for the overview
func (q *QueryService) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	report, err := q.Report(ctx)
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Report:          report,
		CurrentEI:       report.Windows.Short.AvgEI,
		FormDescription: analysis.FormDescription(report.Fitness.TSB),
		Recent:          recentSessions(report, RecentSessionsLimit),
	}
	if report.Windows.Short.Trend != nil {
		data.EITrendPct = report.Windows.Short.Trend.EIChangePct
	}
	data.WeeklyKm, data.WeeklyLoad, data.WeeklyAvgEI, data.WeeklyLabels = buildWeeklyCharts(report.Metrics(), report.Now, ChartWeeks)
	return data, nil
}

// buildWeeklyCharts buckets sessions into the numWeeks ISO weeks ending with
// the week containing now
func buildWeeklyCharts(metrics []analysis.Metrics, now time.Time, numWeeks int) (km, load, avgEI []float64, labels []string) {
	currentWeekStart := getMonday(now)

	km = make([]float64, numWeeks)
	load = make([]float64, numWeeks)
	avgEI = make([]float64, numWeeks)
	eiCount := make([]int, numWeeks)
	labels = make([]string, numWeeks)

	for i := 0; i < numWeeks; i++ {
		weekStart := currentWeekStart.AddDate(0, 0, -7*(numWeeks-1-i))
		labels[i] = weekStart.Format("Jan 02")
	}

	for _, m := range metrics {
		idx := findWeekIndex(m.StartTime.In(now.Location()), currentWeekStart, numWeeks)
		if idx < 0 {
			continue
		}
		km[idx] += m.DistanceMeters / analysis.MetersPerKm
		load[idx] += m.TRIMP
		if m.EfficiencyIndex != nil {
			avgEI[idx] += *m.EfficiencyIndex
			eiCount[idx]++
		}
	}
	for i := range avgEI {
		if eiCount[i] > 0 {
			avgEI[i] /= float64(eiCount[i])
		}
	}
	return km, load, avgEI, labels
}

// findWeekIndex returns the index of the week bucket for the given date
func findWeekIndex(date time.Time, currentWeekStart time.Time, numWeeks int) int {
	for i := 0; i < numWeeks; i++ {
		weekStart := currentWeekStart.AddDate(0, 0, -7*(numWeeks-1-i))
		weekEnd := weekStart.AddDate(0, 0, 7)
		if !date.Before(weekStart) && date.Before(weekEnd) {
			return i
		}
	}
	return -1
}
