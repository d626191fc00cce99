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
	"github.com/guptarohit/asciigraph"
)

// chrome is the number of lines taken by the header, nav and footer
const chrome = 6

// SessionDetailModel is the session detail screen model
type SessionDetailModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	sessionID    string
	detail       *service.SessionDetail
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewSessionDetailModel creates a new session detail model
func NewSessionDetailModel(ctx context.Context, qs *service.QueryService, units Units, id string, width, height int) SessionDetailModel {
	m := SessionDetailModel{
		ctx:          ctx,
		queryService: qs,
		units:        units,
		sessionID:    id,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-chrome)
		m.ready = true
	}
	return m
}

// Init initializes the session detail screen
func (m SessionDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type sessionDetailLoadedMsg struct {
	detail *service.SessionDetail
	err    error
}

func (m SessionDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetSessionDetail(m.ctx, m.sessionID)
	return sessionDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m SessionDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
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
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		if msg.String() == "r" && m.queryService != nil {
			m.loading = true
			return m, m.loadDetail
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the session detail screen
func (m SessionDetailModel) View() string {
	if m.loading {
		return "\n  Loading session..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m SessionDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	sections := []string{m.renderHeader()}

	if m.detail.Rejected != "" {
		sections = append(sections,
			warningStyle.Render("  This session is excluded from analysis:"),
			"  "+m.detail.Rejected,
		)
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderSummary())
	if len(m.detail.Detail.Splits) > 0 {
		sections = append(sections, m.renderSplits())
	}
	if len(m.detail.Detail.Intervals) > 0 {
		sections = append(sections, m.renderIntervals())
	}
	if len(m.detail.Efforts) > 0 {
		sections = append(sections, m.renderEfforts())
	}
	if len(m.detail.PaceSeries) > 5 {
		sections = append(sections, m.renderChart(
			fmt.Sprintf("Pace Over Time (%s)", m.units.PaceLabel()),
			m.units.ConvertPaceSeries(m.detail.PaceSeries), 2))
	}
	if len(m.detail.HRSeries) > 5 {
		sections = append(sections, m.renderChart("Heart Rate Over Time (bpm)", m.detail.HRSeries, 0))
	}
	sections = append(sections, m.renderQuality())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SessionDetailModel) renderHeader() string {
	rec := m.detail.Record
	name := rec.Name
	if name == "" {
		name = rec.Source
	}
	title := cardTitleStyle.Render(name)

	date := rec.StartTime.Local().Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := mutedStyle.Render(date + "  •  " + rec.Source)

	stats := fmt.Sprintf("%s  •  %s", m.units.FormatDistance(rec.Distance), analysis.FormatDuration(rec.Duration))
	if rec.Distance > 0 && rec.Duration > 0 {
		stats += "  •  " + m.units.FormatPaceWithUnit(rec.Duration/(rec.Distance/analysis.MetersPerKm))
	}
	if a := m.detail.Analysis; a != nil {
		stats += "  •  " + a.Type.Label() + "  •  " + a.Terrain.Label()
	}
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m SessionDetailModel) renderSummary() string {
	lines := []string{sectionStyle.Render("Summary")}
	if m.detail.Analysis == nil {
		return strings.Join(append(lines, "  -", ""), "\n")
	}
	met := m.detail.Analysis.Metrics

	row := func(label, value string) {
		lines = append(lines, fmt.Sprintf("  %-22s%s", label+":", value))
	}

	row("Efficiency Index", formatOptional(met.EfficiencyIndex, 2))
	row("GAP Efficiency Index", formatOptional(met.GAPEfficiencyIndex, 2))
	row("Grade Adjusted Pace", m.units.FormatPacePtr(met.GAPPaceSecPerKm))
	row("Elevation Gain", fmt.Sprintf("%.0f m", met.ElevationGain))
	row("Average HR", formatOptional(met.AvgHR, 0)+" bpm")
	row("Max HR", formatOptional(met.MaxHR, 0)+" bpm")
	row("HR Coverage", fmt.Sprintf("%.0f%%", met.HRCoverage*100))
	row("Average Cadence", formatOptional(met.AvgCadence, 0)+" spm")
	row("Stride Length", formatOptional(met.StrideLength, 2)+" m")
	row("Training Impulse", fmt.Sprintf("%.0f", met.TRIMP))
	row("TSS / IF", fmt.Sprintf("%.0f / %.2f", met.TSS, met.IntensityFactor))
	row("Pace Variability", fmt.Sprintf("%.1f%%", met.PaceVariability*100))

	if met.Drift != nil {
		lines = append(lines, fmt.Sprintf("  %-22s%s", "Cardiac Drift:",
			tierStyle(met.Drift.Severity).Render(fmt.Sprintf("%.1f%% (%s)", met.Drift.Percent(), met.Drift.Severity))))
	}
	if met.Decoupling != nil {
		lines = append(lines, fmt.Sprintf("  %-22s%s", "Aerobic Decoupling:",
			tierStyle(met.Decoupling.Status).Render(fmt.Sprintf("%.1f%% (%s)", met.Decoupling.Percent, met.Decoupling.Status))))
	}
	if met.Coupling != nil {
		lines = append(lines, fmt.Sprintf("  %-22s%s", "HR:Pace Coupling:",
			tierStyle(met.Coupling.Efficiency).Render(fmt.Sprintf("%.2f (%s)", met.Coupling.Ratio, met.Coupling.Efficiency))))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderSplits() string {
	d := m.detail.Detail
	lines := []string{sectionStyle.Render("Kilometer Splits")}

	header := fmt.Sprintf("  %-4s  %8s  %8s  %5s  %7s  %7s", "Km", "Dist", "Pace", "HR", "Cadence", "Elev")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	fastest := 0.0
	for _, s := range d.Splits {
		if s.PaceSecPerKm > 0 && (fastest == 0 || s.PaceSecPerKm < fastest) {
			fastest = s.PaceSecPerKm
		}
	}

	for _, s := range d.Splits {
		elev := "-"
		if s.ElevationChange != nil {
			elev = fmt.Sprintf("%+.0f m", *s.ElevationChange)
		}
		row := fmt.Sprintf("  %-4d  %6.0f m  %8s  %5s  %7s  %7s",
			s.Number,
			s.DistanceMeters,
			m.units.FormatPace(s.PaceSecPerKm),
			formatOptional(s.AvgHR, 0),
			formatOptional(s.AvgCadence, 0),
			elev,
		)
		if s.PaceSecPerKm == fastest {
			lines = append(lines, successStyle.Bold(true).Render(row))
		} else {
			lines = append(lines, row)
		}
	}

	if p := d.Pacing; p != nil {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  Pacing: %s (first half %s, second half %s, %+.1f%%)",
			strings.ReplaceAll(string(p.Strategy), "_", " "),
			m.units.FormatPace(p.FirstHalfPace),
			m.units.FormatPace(p.SecondHalfPace),
			p.DiffPct)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderIntervals() string {
	lines := []string{sectionStyle.Render("Detected Intervals")}
	for i, iv := range m.detail.Detail.Intervals {
		lines = append(lines, fmt.Sprintf("  #%d  %6.0f m  %8s  %s  HR %s",
			i+1,
			iv.DistanceMeters,
			analysis.FormatDuration(iv.DurationSeconds),
			m.units.FormatPaceWithUnit(iv.PaceSecPerKm),
			formatOptional(iv.AvgHR, 0),
		))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderEfforts() string {
	lines := []string{sectionStyle.Render("Best Efforts")}
	for _, e := range m.detail.Efforts {
		line := fmt.Sprintf("  %-4s  %9s  %s",
			e.Bucket,
			analysis.FormatDuration(e.Effort.DurationSeconds),
			m.units.FormatPaceWithUnit(e.Effort.DurationSeconds/(e.Effort.DistanceMeters/analysis.MetersPerKm)),
		)
		if e.IsPR {
			lines = append(lines, successStyle.Render(line+"  PR"))
		} else {
			lines = append(lines, line)
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderChart(title string, data []float64, precision uint) string {
	lines := []string{sectionStyle.Render(title)}

	data = trimTrailingZeros(fillGaps(data))
	if len(data) > 2 {
		lines = append(lines, asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(precision),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderQuality() string {
	q := m.detail.Detail.Quality
	lines := []string{
		sectionStyle.Render(fmt.Sprintf("Session Quality: %d/10", q.Rating)),
		fmt.Sprintf("  Pacing %.0f/30  HR %.0f/20  Cadence %.0f/20  Completeness %.0f/15  Distance %.0f/15",
			q.Pacing, q.HRCoverage, q.Cadence, q.Completeness, q.Distance),
		"",
	}
	return strings.Join(lines, "\n")
}
