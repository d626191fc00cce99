package tui

import (
	"fmt"

	"apexrun/internal/service"

	"github.com/charmbracelet/lipgloss"
)

// trend direction of a delta; lowerIsBetter flips the coloring
type trend int

const (
	trendDown trend = iota - 1
	trendFlat
	trendUp
)

func (m StatsModel) renderComparisons() string {
	sections := []string{cardTitleStyle.Render("Trend Comparisons")}

	if len(m.comparisons) == 0 {
		sections = append(sections, "\n  No data available. Import or sync some runs first.")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	for _, comp := range m.comparisons {
		sections = append(sections, m.renderComparison(comp))
	}
	sections = append(sections, statusStyle.Render("\n  c: period table  r: refresh"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m StatsModel) renderComparison(comp service.ComparisonStats) string {
	titleLine := metricLabelStyle.Width(0).Render("── " + comp.Label + " ")

	header := fmt.Sprintf("                    %-14s  %-14s  %s",
		comp.Current.PeriodLabel,
		comp.Previous.PeriodLabel,
		"Delta")

	cur, prev := comp.Current, comp.Previous
	rows := []string{
		renderCompareRow("Runs", fmt.Sprint(cur.RunCount), fmt.Sprint(prev.RunCount),
			fmt.Sprintf("%+d", comp.DeltaRuns), sign(float64(comp.DeltaRuns), 0), false),
		renderCompareRow(m.units.DistanceLabelLong(), m.units.FormatDistanceValue(cur.DistanceMeters), m.units.FormatDistanceValue(prev.DistanceMeters),
			fmt.Sprintf("%+.1f", m.units.Distance(comp.DeltaDistance)), sign(comp.DeltaDistance, 5), false),
		renderCompareRow("Pace", m.units.FormatPace(cur.Pace()), m.units.FormatPace(prev.Pace()),
			paceDelta(m.units, cur.Pace(), prev.Pace()), paceTrend(cur.Pace(), prev.Pace()), true),
		renderCompareRow("Avg HR", formatNonZero(cur.AvgHR, 0), formatNonZero(prev.AvgHR, 0),
			fmt.Sprintf("%+.1f", comp.DeltaHR), sign(comp.DeltaHR, 0.05), true),
		renderCompareRow("Avg Cadence", formatNonZero(cur.AvgCadence, 0), formatNonZero(prev.AvgCadence, 0),
			fmt.Sprintf("%+.1f", comp.DeltaCadence), sign(comp.DeltaCadence, 0.05), false),
		renderCompareRow("Avg EI", formatNonZero(cur.AvgEI, 2), formatNonZero(prev.AvgEI, 2),
			fmt.Sprintf("%+.2f", comp.DeltaEI), sign(comp.DeltaEI, 0.005), false),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		titleLine,
		tableHeaderStyle.Render(header),
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderCompareRow(label, current, previous, delta string, t trend, lowerIsBetter bool) string {
	color := t
	if lowerIsBetter {
		color = -t
	}

	var styled string
	switch {
	case t == trendFlat:
		styled = trendFlatStyle.Render("0 →")
	case color == trendUp:
		styled = trendUpStyle.Render(delta + arrow(t))
	default:
		styled = trendDownStyle.Render(delta + arrow(t))
	}

	return tableRowStyle.Render(fmt.Sprintf("  %-16s  %-14s  %-14s  %s", label, current, previous, styled))
}

func arrow(t trend) string {
	if t == trendUp {
		return " ↑"
	}
	return " ↓"
}

// sign classifies d, treating anything within eps of zero as flat
func sign(d, eps float64) trend {
	switch {
	case d > eps:
		return trendUp
	case d < -eps:
		return trendDown
	default:
		return trendFlat
	}
}

func paceTrend(cur, prev float64) trend {
	if cur == 0 || prev == 0 {
		return trendFlat
	}
	return sign(cur-prev, 0.5)
}

func paceDelta(u Units, cur, prev float64) string {
	if cur == 0 || prev == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.0fs", u.Pace(cur)-u.Pace(prev))
}
