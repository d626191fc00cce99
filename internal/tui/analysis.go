package tui

import (
	"context"
	"fmt"
	"strings"

	"apexrun/internal/analysis"
	"apexrun/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// AnalysisModel shows the history-wide analyzers: heart rate zones, terrain,
// biomechanics and cardiovascular response
type AnalysisModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	report       *analysis.Report
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewAnalysisModel creates a new analysis model
func NewAnalysisModel(ctx context.Context, qs *service.QueryService, units Units, width, height int) AnalysisModel {
	m := AnalysisModel{
		ctx:          ctx,
		queryService: qs,
		units:        units,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-chrome)
		m.ready = true
	}
	return m
}

// Init initializes the analysis screen
func (m AnalysisModel) Init() tea.Cmd {
	return m.loadReport
}

type analysisLoadedMsg struct {
	report *analysis.Report
	err    error
}

func (m AnalysisModel) loadReport() tea.Msg {
	report, err := m.queryService.Report(m.ctx)
	return analysisLoadedMsg{report: report, err: err}
}

// Update handles messages
func (m AnalysisModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
		if m.ready && m.report != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		if m.report != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" && m.queryService != nil {
			m.loading = true
			return m, m.loadReport
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the analysis screen
func (m AnalysisModel) View() string {
	if m.loading {
		return "\n  Analyzing training history..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}
	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m AnalysisModel) renderContent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderZones(),
		m.renderTerrain(),
		m.renderBiomechanics(),
		m.renderCardio(),
	)
}

func (m AnalysisModel) renderZones() string {
	z := m.report.ZoneSummary
	lines := []string{"", divider(fmt.Sprintf("Heart Rate Zones (max %.0f, resting %.0f)", z.MaxHR, z.RestingHR), 64)}
	if !z.HasData {
		return strings.Join(append(lines, mutedStyle.Render("  No heart rate data.")), "\n")
	}

	const maxBarWidth = 30
	for i, zt := range z.Distribution.Zones {
		barWidth := int(zt.Percent / 100 * maxBarWidth)
		if barWidth < 1 && zt.Seconds > 0 {
			barWidth = 1
		}
		bar := lipgloss.NewStyle().Foreground(zoneColors[i%len(zoneColors)]).Render(strings.Repeat("█", barWidth))
		label := fmt.Sprintf("  %s %-14s", zt.Zone, zt.Zone.Name())
		lines = append(lines, fmt.Sprintf("%s%s %5.1f%% (%s)", label, bar, zt.Percent, formatHours(zt.Seconds)))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("  Mostly %s %s across %d sessions",
		z.Dominant, z.Dominant.Name(), z.Sessions)))
	return strings.Join(lines, "\n")
}

func (m AnalysisModel) renderTerrain() string {
	t := m.report.Terrain
	lines := []string{"", divider("Terrain", 64)}
	if !t.HasData {
		return strings.Join(append(lines, mutedStyle.Render("  No sessions with distance.")), "\n")
	}

	header := fmt.Sprintf("  %-12s  %4s  %6s  %8s  %8s  %5s  %7s",
		"Class", "Runs", "Share", m.units.DistanceLabelLong(), "Pace", "HR", "Gain/km")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))
	for _, c := range t.Classes {
		lines = append(lines, fmt.Sprintf("  %-12s  %4d  %5.0f%%  %8.1f  %8s  %5s  %5.1f m",
			c.Class.Label(),
			c.Sessions,
			c.SessionPct,
			m.units.Distance(c.DistanceKm*analysis.MetersPerKm),
			m.units.FormatPace(c.AvgPace),
			formatOptional(c.AvgHR, 0),
			c.AvgGainPerKm,
		))
	}
	for _, g := range t.GAPEffects {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  Grade adjustment on %s: %.0f s/km (%.1f%%)",
			strings.ToLower(g.Class.Label()), g.AvgAdjustment, g.AvgDiffPct)))
	}
	for _, r := range t.Recommendations {
		lines = append(lines, infoStyle.Render("  • "+r))
	}
	return strings.Join(lines, "\n")
}

func (m AnalysisModel) renderBiomechanics() string {
	b := m.report.Biomech
	lines := []string{"", divider("Biomechanics", 64)}
	if !b.HasData {
		return strings.Join(append(lines, mutedStyle.Render("  No cadence data.")), "\n")
	}

	status := successStyle
	if b.CadenceStatus != "optimal" {
		status = warningStyle
	}
	lines = append(lines, fmt.Sprintf("  Average cadence %.0f spm %s over %d sessions",
		b.AvgCadence, status.Render("("+b.CadenceStatus+")"), b.Sessions))

	for _, z := range b.Zones {
		mark := mutedStyle.Render("outside 170-190")
		if z.Optimal {
			mark = successStyle.Render("optimal")
		}
		lines = append(lines, fmt.Sprintf("    %-9s %3d runs  %5.0f spm  %s", z.Zone, z.Sessions, z.AvgCadence, mark))
	}

	if s := b.Stride; s != nil {
		note := ""
		switch {
		case s.Overstriding:
			note = warningStyle.Render(" overstriding")
		case s.ShortStriding:
			note = warningStyle.Render(" short stride")
		}
		lines = append(lines, fmt.Sprintf("  Stride length %.2f m ± %.2f%s", s.Avg, s.Std, note))
	}
	if e := b.Economy; e != nil {
		lines = append(lines, fmt.Sprintf("  Running economy %s (%s)",
			metricValueStyle.Render(fmt.Sprintf("%.0f/100", e.Score)), e.Rating))
	}
	for _, r := range b.Recommendations {
		lines = append(lines, infoStyle.Render("  • "+r))
	}
	return strings.Join(lines, "\n")
}

func (m AnalysisModel) renderCardio() string {
	c := m.report.Cardio
	lines := []string{"", divider("Cardiovascular", 64)}
	if !c.HasData {
		return strings.Join(append(lines, mutedStyle.Render("  Not enough heart rate data."), ""), "\n")
	}

	lines = append(lines, fmt.Sprintf("  Last %d sessions: %d with high drift, %d decoupled, %d well coupled",
		c.Recent, c.DriftIssues, c.DecouplingIssue, c.GoodCoupling))
	if c.AvgDriftPct != nil {
		lines = append(lines, fmt.Sprintf("  Average cardiac drift %.1f%%", *c.AvgDriftPct))
	}
	if c.AvgCouplingRate != nil {
		lines = append(lines, fmt.Sprintf("  Average HR:pace coupling ratio %.2f", *c.AvgCouplingRate))
	}
	if l := c.Latest; l != nil {
		lines = append(lines, mutedStyle.Render("  Latest session "+l.StartTime.Local().Format("Jan 02")))
		if l.Drift != nil {
			lines = append(lines, "    drift "+tierStyle(l.Drift.Severity).Render(fmt.Sprintf("%.1f%%", l.Drift.Percent())))
		}
		if l.Decoupling != nil {
			lines = append(lines, "    decoupling "+tierStyle(l.Decoupling.Status).Render(fmt.Sprintf("%.1f%%", l.Decoupling.Percent))+
				"  "+mutedStyle.Render(analysis.DecouplingAssessment(l.Decoupling.Status)))
		}
	}
	for _, ins := range c.Insights {
		lines = append(lines, infoStyle.Render("  • "+ins))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
