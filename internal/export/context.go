package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"apexrun/internal/analysis"
)

// RecentWeeks is the span the current-volume section averages over
const RecentWeeks = 4

// BuildContext summarizes the analyzed history as plain text for an
// external coaching assistant. The output depends only on the report.
func BuildContext(report *analysis.Report) string {
	var b strings.Builder
	ms := report.Metrics()

	b.WriteString("ATHLETE DATA\n")
	a := report.Athlete
	if a.Age > 0 || a.Gender != "" {
		fmt.Fprintf(&b, "Profile: age %d, %s\n", a.Age, orUnknown(string(a.Gender)))
	}
	fmt.Fprintf(&b, "Heart rate: max %.0f, resting %.0f bpm\n", report.Zones.MaxHR, report.Zones.RestingHR)
	fmt.Fprintf(&b, "As of: %s\n", report.Now.UTC().Format("2006-01-02"))

	if len(ms) == 0 {
		b.WriteString("\nNo runs recorded yet.\n")
		return b.String()
	}

	var totalKm, totalHours float64
	bestPace := 0.0
	var bestEI *float64
	for _, m := range ms {
		totalKm += m.DistanceMeters / analysis.MetersPerKm
		totalHours += m.DurationSeconds / 3600
		if m.PaceSecPerKm != nil && (bestPace == 0 || *m.PaceSecPerKm < bestPace) {
			bestPace = *m.PaceSecPerKm
		}
		if m.EfficiencyIndex != nil && (bestEI == nil || *m.EfficiencyIndex > *bestEI) {
			bestEI = m.EfficiencyIndex
		}
	}

	b.WriteString("\nOVERALL\n")
	fmt.Fprintf(&b, "- Runs: %d\n", len(ms))
	fmt.Fprintf(&b, "- Total distance: %.1f km\n", totalKm)
	fmt.Fprintf(&b, "- Total time: %.1f h\n", totalHours)
	fmt.Fprintf(&b, "- Best pace: %s\n", analysis.FormatPace(bestPace))
	if bestEI != nil {
		fmt.Fprintf(&b, "- Best efficiency index: %.3f m/min/bpm\n", *bestEI)
	}

	writeRecentVolume(&b, ms, report.Now)
	writePaceTrend(&b, ms)

	b.WriteString("\nFITNESS\n")
	fmt.Fprintf(&b, "- CTL %.1f, ATL %.1f, TSB %.1f (%s)\n",
		report.Fitness.CTL, report.Fitness.ATL, report.Fitness.TSB, analysis.FormDescription(report.Fitness.TSB))
	if report.AcuteChronic != nil {
		fmt.Fprintf(&b, "- Acute:chronic load ratio %.2f\n", *report.AcuteChronic)
	}

	if len(report.Records) > 0 {
		b.WriteString("\nPERSONAL RECORDS\n")
		for _, pr := range report.Records {
			fmt.Fprintf(&b, "- %s: %s (%s) on %s\n", pr.Bucket,
				analysis.FormatDuration(pr.DurationSeconds), analysis.FormatPace(pr.PaceSecPerKm),
				pr.AchievedAt.UTC().Format("2006-01-02"))
		}
	}

	if !report.Predictions.InsufficientData {
		b.WriteString("\nRACE PREDICTIONS\n")
		for _, r := range report.Predictions.Races {
			fmt.Fprintf(&b, "- %s: %s (%s confidence, from %s)\n", analysis.GetTargetLabel(r.Target),
				analysis.FormatDuration(r.PredictedSeconds), r.Confidence, r.BaseBucket)
		}
	}

	writeSessionMix(&b, report)

	if len(report.Insights) > 0 {
		b.WriteString("\nCURRENT INSIGHTS\n")
		for _, ins := range report.Insights {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", ins.Severity, ins.Title, ins.Message)
		}
	}
	return b.String()
}

// writeRecentVolume averages the last RecentWeeks weeks. Without recent runs
// it says so rather than estimating.
func writeRecentVolume(b *strings.Builder, ms []analysis.Metrics, now time.Time) {
	from := now.AddDate(0, 0, -7*RecentWeeks)
	var km, paceSum float64
	var runs, paced int
	for _, m := range ms {
		if m.StartTime.Before(from) || m.StartTime.After(now) {
			continue
		}
		runs++
		km += m.DistanceMeters / analysis.MetersPerKm
		if m.PaceSecPerKm != nil {
			paceSum += *m.PaceSecPerKm
			paced++
		}
	}

	fmt.Fprintf(b, "\nCURRENT VOLUME (last %d weeks)\n", RecentWeeks)
	if runs == 0 {
		b.WriteString("- No runs in this period\n")
		return
	}
	fmt.Fprintf(b, "- Distance per week: %.1f km\n", km/RecentWeeks)
	fmt.Fprintf(b, "- Runs per week: %.1f\n", float64(runs)/RecentWeeks)
	fmt.Fprintf(b, "- Average run: %.1f km\n", km/float64(runs))
	if paced > 0 {
		fmt.Fprintf(b, "- Average pace: %s\n", analysis.FormatPace(paceSum/float64(paced)))
	}
}

// writePaceTrend compares the last five runs with the five before them
func writePaceTrend(b *strings.Builder, ms []analysis.Metrics) {
	b.WriteString("\nPACE TREND\n")
	if len(ms) < 10 {
		b.WriteString("- Not enough runs to compare\n")
		return
	}
	recent := avgPace(ms[len(ms)-5:])
	previous := avgPace(ms[len(ms)-10 : len(ms)-5])
	if recent == 0 || previous == 0 {
		b.WriteString("- Not enough runs to compare\n")
		return
	}
	change := (previous - recent) / previous * 100
	switch {
	case change > 0:
		fmt.Fprintf(b, "- Improving: %.1f%% faster over the last 5 runs\n", change)
	case change < 0:
		fmt.Fprintf(b, "- Declining: %.1f%% slower over the last 5 runs\n", -change)
	default:
		b.WriteString("- Stable\n")
	}
}

func avgPace(ms []analysis.Metrics) float64 {
	var sum float64
	var n int
	for _, m := range ms {
		if m.PaceSecPerKm != nil {
			sum += *m.PaceSecPerKm
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func writeSessionMix(b *strings.Builder, report *analysis.Report) {
	counts := make(map[analysis.SessionType]int)
	for _, s := range report.Sessions {
		counts[s.Type]++
	}
	b.WriteString("\nSESSION MIX\n")
	for _, t := range analysis.SessionTypes {
		if n := counts[t]; n > 0 {
			fmt.Fprintf(b, "- %s: %d (%.0f%%)\n", t.Label(), n, float64(n)/float64(len(report.Sessions))*100)
		}
	}
}

// WriteContext writes BuildContext's output to w
func WriteContext(w io.Writer, report *analysis.Report) error {
	_, err := io.WriteString(w, BuildContext(report))
	return err
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
