package analysis

import (
	"fmt"
	"sort"
	"time"
)

// Cardiovascular analyzer thresholds over the most recent sessions
const (
	CardioRecentSessions  = 10
	CardioDriftIssueMin   = 3 // sessions with non-optimal drift
	CardioDecouplingMin   = 3 // sessions with poor decoupling
	CardioGoodCouplingMin = 5 // sessions with excellent or good coupling
)

// SessionCardio is the cardiovascular profile of one session
type SessionCardio struct {
	SessionID  string      `json:"session_id"`
	StartTime  time.Time   `json:"start_time"`
	Drift      *Drift      `json:"cardiac_drift,omitempty"`
	Coupling   *Coupling   `json:"coupling,omitempty"`
	Decoupling *Decoupling `json:"decoupling,omitempty"`
}

// CardioSummary is the cardiovascular analyzer's result
type CardioSummary struct {
	HasData         bool           `json:"has_data"`
	Latest          *SessionCardio `json:"latest,omitempty"`
	Recent          int            `json:"recent_sessions"`
	DriftIssues     int            `json:"drift_issues"`
	DecouplingIssue int            `json:"decoupling_issues"`
	GoodCoupling    int            `json:"good_coupling"`
	AvgDriftPct     *float64       `json:"avg_drift_pct,omitempty"`
	AvgCouplingRate *float64       `json:"avg_coupling_ratio,omitempty"`
	Insights        []string       `json:"insights"`
}

func (c SessionCardio) hasData() bool {
	return c.Drift != nil || c.Coupling != nil || c.Decoupling != nil
}

// AnalyzeCardio reviews drift, coupling and decoupling over the most recent
// sessions that carry enough heart rate data.
func AnalyzeCardio(metrics []Metrics) CardioSummary {
	var cardio []SessionCardio
	for _, m := range metrics {
		c := SessionCardio{
			SessionID:  m.SessionID,
			StartTime:  m.StartTime,
			Drift:      m.Drift,
			Coupling:   m.Coupling,
			Decoupling: m.Decoupling,
		}
		if c.hasData() {
			cardio = append(cardio, c)
		}
	}

	var summary CardioSummary
	if len(cardio) == 0 {
		summary.Insights = []string{"Not enough heart rate data for cardiovascular analysis."}
		return summary
	}
	summary.HasData = true

	// Newest first; ties broken by ID to stay deterministic
	sort.SliceStable(cardio, func(i, j int) bool {
		if !cardio[i].StartTime.Equal(cardio[j].StartTime) {
			return cardio[i].StartTime.After(cardio[j].StartTime)
		}
		return cardio[i].SessionID < cardio[j].SessionID
	})
	latest := cardio[0]
	summary.Latest = &latest

	recent := cardio
	if len(recent) > CardioRecentSessions {
		recent = recent[:CardioRecentSessions]
	}
	summary.Recent = len(recent)

	var drifts, ratios []float64
	for _, c := range recent {
		if c.Drift != nil {
			drifts = append(drifts, c.Drift.Percent())
			if !c.Drift.Optimal {
				summary.DriftIssues++
			}
		}
		if c.Coupling != nil {
			ratios = append(ratios, c.Coupling.Ratio)
			if c.Coupling.Efficiency == TierExcellent || c.Coupling.Efficiency == TierGood {
				summary.GoodCoupling++
			}
		}
		if c.Decoupling != nil && c.Decoupling.Status == TierPoor {
			summary.DecouplingIssue++
		}
	}
	if len(drifts) > 0 {
		summary.AvgDriftPct = ptr(mean(drifts))
	}
	if len(ratios) > 0 {
		summary.AvgCouplingRate = ptr(mean(ratios))
	}

	if summary.DriftIssues >= CardioDriftIssueMin {
		summary.Insights = append(summary.Insights, fmt.Sprintf(
			"Cardiac drift above %.0f%% in %d of your last %d sessions. Build more Z2 base and watch hydration.",
			DriftOptimalPct, summary.DriftIssues, summary.Recent))
	}
	if summary.DecouplingIssue >= CardioDecouplingMin {
		summary.Insights = append(summary.Insights, fmt.Sprintf(
			"Aerobic decoupling is high in %d recent sessions. Your aerobic base needs work.",
			summary.DecouplingIssue))
	}
	if summary.GoodCoupling >= CardioGoodCouplingMin {
		summary.Insights = append(summary.Insights, fmt.Sprintf(
			"Heart rate tracks pace well in %d recent sessions. Good cardiovascular efficiency.",
			summary.GoodCoupling))
	}
	return summary
}
