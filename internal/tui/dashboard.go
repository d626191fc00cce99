package tui

import (
	"context"
	"fmt"

	"apexrun/internal/analysis"
	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	chart        int // 0 volume, 1 efficiency, 2 load
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(ctx context.Context, qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		ctx:          ctx,
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData(m.ctx)
	return dashboardDataMsg{data: data, err: err}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		case "c":
			m.chart = (m.chart + 1) % 3
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil || len(m.data.Report.Sessions) == 0 {
		return "\n  No sessions yet. Import files with 'apexrun import' or press 's' to sync with Strava."
	}

	var sections []string

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderFitnessCard(), "  ", m.renderWeekCard())
	sections = append(sections, topRow)

	if chart := m.renderChart(); chart != "" {
		sections = append(sections, chart)
	}
	sections = append(sections, m.renderRecentSessions())
	sections = append(sections, statusStyle.Render("r: refresh  c: cycle chart  2: sessions  3: insights"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFitnessCard() string {
	r := m.data.Report
	title := cardTitleStyle.Render("Current Fitness")

	acr := "-"
	if r.AcuteChronic != nil {
		acr = formatFloat(*r.AcuteChronic, 2)
	}

	lines := []string{
		RenderMetric("Efficiency Index", formatOptional(m.data.CurrentEI, 2), formatTrendPct(m.data.EITrendPct)),
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", r.Fitness.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", r.Fitness.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.0f", r.Fitness.TSB), ""),
		RenderMetric("Acute:Chronic", acr, ""),
		"",
		mutedStyle.Render(m.data.FormDescription),
	}

	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderWeekCard() string {
	w := m.data.Report.Windows.Short
	title := cardTitleStyle.Render("Last 7 Days")

	pace := "-"
	if w.PaceSecPerKm != nil {
		pace = m.units.FormatPaceWithUnit(*w.PaceSecPerKm)
	}

	lines := []string{
		RenderMetric("Runs", fmt.Sprintf("%d", w.Sessions), ""),
		RenderMetric("Distance", m.units.FormatDistance(w.DistanceMeters), ""),
		RenderMetric("Time", formatHours(w.DurationSeconds), ""),
		RenderMetric("Pace", pace, ""),
		RenderMetric("Load (TRIMP)", fmt.Sprintf("%.0f", w.Load), ""),
	}
	if w.InsufficientData {
		lines = append(lines, "", mutedStyle.Render("Too few runs for trends"))
	}

	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderChart() string {
	var title string
	var data []float64
	precision := uint(1)

	switch m.chart {
	case 1:
		title = "Average Efficiency Index by Week"
		data = fillGaps(m.data.WeeklyAvgEI)
		precision = 2
	case 2:
		title = "Training Load (TRIMP) by Week"
		data = m.data.WeeklyLoad
		precision = 0
	default:
		title = fmt.Sprintf("Weekly Distance (%s)", m.units.DistanceLabel())
		data = m.units.ConvertDistanceSeries(m.data.WeeklyKm)
	}

	if len(data) < 2 {
		return ""
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(precision),
	)

	labels := ""
	if n := len(m.data.WeeklyLabels); n > 0 {
		labels = mutedStyle.Render(fmt.Sprintf("%s ... %s", m.data.WeeklyLabels[0], m.data.WeeklyLabels[n-1]))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render(title), graph, labels))
}

func (m DashboardModel) renderRecentSessions() string {
	title := cardTitleStyle.Render("Recent Sessions")

	if len(m.data.Recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No sessions yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-20s  %8s  %7s  %5s  %-10s",
		"Date", "Name", "Distance", "Pace", "EI", "Type"))

	rows := []string{header}
	for i, s := range m.data.Recent {
		if i >= 5 {
			break
		}
		met := s.Metrics
		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-20s  %7s%s  %7s  %5s  %-10s",
			met.StartTime.Format("Jan 02"),
			truncateName(sessionName(s), 20),
			m.units.FormatDistanceValue(met.DistanceMeters),
			m.units.DistanceLabel(),
			m.units.FormatPacePtr(met.PaceSecPerKm),
			formatOptional(met.EfficiencyIndex, 2),
			s.Type.Label(),
		))
		rows = append(rows, row)
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

// sessionName falls back to the source when a session has no name
func sessionName(s analysis.SessionAnalysis) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Source
}
