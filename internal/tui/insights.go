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

var horizonTitles = map[analysis.Horizon]string{
	analysis.HorizonShort:    "This Week",
	analysis.HorizonMedium:   "Last 30 Days",
	analysis.HorizonLong:     "Long Term",
	analysis.HorizonAnalysis: "From the Analyzers",
}

// InsightsModel is the coaching insights screen model
type InsightsModel struct {
	ctx          context.Context
	queryService *service.QueryService
	report       *analysis.Report
	filter       int // 0 all, otherwise index into HorizonOrder + 1
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewInsightsModel creates a new insights model
func NewInsightsModel(ctx context.Context, qs *service.QueryService, width, height int) InsightsModel {
	m := InsightsModel{
		ctx:          ctx,
		queryService: qs,
		loading:      true,
	}
	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-chrome)
		m.ready = true
	}
	return m
}

// Init initializes the insights screen
func (m InsightsModel) Init() tea.Cmd {
	return m.loadReport
}

type insightsLoadedMsg struct {
	report *analysis.Report
	err    error
}

func (m InsightsModel) loadReport() tea.Msg {
	report, err := m.queryService.Report(m.ctx)
	return insightsLoadedMsg{report: report, err: err}
}

// Update handles messages
func (m InsightsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case insightsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
		m.refresh()

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-chrome)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - chrome
		}
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if m.queryService != nil {
				m.loading = true
				return m, m.loadReport
			}
		case "h", "tab":
			m.filter = (m.filter + 1) % (len(analysis.HorizonOrder) + 1)
			m.refresh()
			m.viewport.GotoTop()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *InsightsModel) refresh() {
	if m.ready && m.report != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m InsightsModel) horizons() []analysis.Horizon {
	if m.filter == 0 {
		return analysis.HorizonOrder
	}
	return []analysis.Horizon{analysis.HorizonOrder[m.filter-1]}
}

// View renders the insights screen
func (m InsightsModel) View() string {
	if m.loading {
		return "\n  Analyzing training history..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  h/tab: filter horizon  j/k: scroll  r: refresh")
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.viewport.View(), footer)
}

func (m InsightsModel) renderTabs() string {
	tabs := []string{"All"}
	for _, h := range analysis.HorizonOrder {
		tabs = append(tabs, horizonTitles[h])
	}
	for i, t := range tabs {
		if i == m.filter {
			tabs[i] = navActiveStyle.Render("[" + t + "]")
		} else {
			tabs[i] = navInactiveStyle.Render(" " + t + " ")
		}
	}
	return strings.Join(tabs, " ")
}

func (m InsightsModel) renderContent() string {
	var sections []string
	for _, h := range m.horizons() {
		insights := analysis.InsightsFor(m.report.Insights, h)
		if len(insights) == 0 && m.filter == 0 {
			continue
		}
		sections = append(sections, "", divider(horizonTitles[h], 60))
		if len(insights) == 0 {
			sections = append(sections, mutedStyle.Render("  Nothing to report."))
		}
		for _, ins := range insights {
			sections = append(sections, renderInsight(ins))
		}
	}
	if len(sections) == 0 {
		return mutedStyle.Render("\n  No insights yet.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderInsight(ins analysis.Insight) string {
	style := severityStyle(ins.Severity)
	title := style.Bold(true).Render(fmt.Sprintf("  %s %s", severityIcon(ins.Severity), ins.Title))
	msg := lipgloss.NewStyle().PaddingLeft(4).Width(76).Render(ins.Message)
	return lipgloss.JoinVertical(lipgloss.Left, title, msg)
}
