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

var standardLabels = map[analysis.StandardLevel]string{
	analysis.LevelExcellent:    "excellent",
	analysis.LevelGood:         "good",
	analysis.LevelAverage:      "average",
	analysis.LevelBelowAverage: "below average",
}

// PredictionsModel is the personal records and race predictions screen model
type PredictionsModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	report       *analysis.Report
	viewport     viewport.Model
	loading      bool
	err          error
	ready        bool
}

// NewPredictionsModel creates a new predictions model
func NewPredictionsModel(ctx context.Context, qs *service.QueryService, units Units, width, height int) PredictionsModel {
	m := PredictionsModel{
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

// Init initializes the predictions screen
func (m PredictionsModel) Init() tea.Cmd {
	return m.loadPredictions
}

type predictionsLoadedMsg struct {
	report *analysis.Report
	err    error
}

func (m PredictionsModel) loadPredictions() tea.Msg {
	report, err := m.queryService.Report(m.ctx)
	return predictionsLoadedMsg{report: report, err: err}
}

// Update handles messages
func (m PredictionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionsLoadedMsg:
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
			return m, m.loadPredictions
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the predictions screen
func (m PredictionsModel) View() string {
	if m.loading {
		return "\n  Loading predictions..."
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

func (m PredictionsModel) renderContent() string {
	sections := []string{m.renderRecords()}
	if m.report.Predictions.InsufficientData {
		sections = append(sections, m.renderEmptyState())
	} else {
		sections = append(sections, m.renderPredictions(), m.renderGoals(), m.renderAbout())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m PredictionsModel) renderRecords() string {
	lines := []string{"", divider("Personal Records", 64)}
	if len(m.report.Records) == 0 {
		return strings.Join(append(lines, mutedStyle.Render("  No records yet.")), "\n")
	}

	header := fmt.Sprintf("  %-6s  %9s  %9s  %5s  %s", "Dist", "Time", "Pace", "HR", "Date")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))
	for _, pr := range m.report.Records {
		lines = append(lines, fmt.Sprintf("  %-6s  %9s  %9s  %5s  %s",
			pr.Bucket,
			analysis.FormatDuration(pr.DurationSeconds),
			m.units.FormatPace(pr.PaceSecPerKm),
			formatOptional(pr.AvgHR, 0),
			pr.AchievedAt.Local().Format("Jan 02, 2006"),
		))
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderEmptyState() string {
	lines := []string{
		"",
		divider("Race Time Predictions", 64),
		mutedStyle.Render("  No race predictions available yet."),
		mutedStyle.Render("  Predictions need at least one run of 1 km or more."),
		"",
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderPredictions() string {
	lines := []string{"", divider("Race Time Predictions", 64)}

	header := fmt.Sprintf("  %-14s  %9s  %9s  %-6s  %-10s  %s", "Race", "Predicted", "Pace", "From", "Confidence", "Standard")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, r := range m.report.Predictions.Races {
		std := "-"
		if r.Standard != nil {
			std = fmt.Sprintf("%s (%s, %+.0f%%)", standardLabels[r.Standard.Level], r.Standard.AgeGroup, r.Standard.DiffPct)
		}
		lines = append(lines, fmt.Sprintf("  %-14s  %9s  %9s  %-6s  %s  %s",
			analysis.GetTargetLabel(r.Target),
			analysis.FormatDuration(r.PredictedSeconds),
			m.units.FormatPace(r.PaceSecPerKm),
			r.BaseBucket,
			confidenceStyle(r.Confidence).Render(fmt.Sprintf("%-10s", r.Confidence)),
			std,
		))
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderGoals() string {
	lines := []string{"", divider("Goal Times", 64)}
	for _, r := range m.report.Predictions.Races {
		var goals []string
		for _, g := range r.Goals {
			goals = append(goals, fmt.Sprintf("%.0f%% faster %s (%s)",
				g.ImprovementPct, analysis.FormatDuration(g.DurationSeconds), m.units.FormatPaceWithUnit(g.PaceSecPerKm)))
		}
		lines = append(lines, fmt.Sprintf("  %-14s  %s", analysis.GetTargetLabel(r.Target), strings.Join(goals, "   ")))
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderAbout() string {
	lines := []string{
		"",
		divider("About These Predictions", 64),
		mutedStyle.Render("  Predictions use Riegel's formula T2 = T1 x (D2/D1)^1.06 from the"),
		mutedStyle.Render("  personal record closest to each race distance."),
		mutedStyle.Render("  Confidence falls with distance extrapolation and record age."),
		"",
		fmt.Sprintf("    %s - recent record close to the race distance", successStyle.Render("high")),
		fmt.Sprintf("    %s - some extrapolation or an older record", warningStyle.Render("medium")),
		fmt.Sprintf("    %s - large extrapolation, e.g. 5K to marathon", errorStyle.Render("low")),
		"",
	}
	return strings.Join(lines, "\n")
}
