package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

type keyHelp struct {
	key  string
	desc string
}

// View renders the help screen
func (m HelpModel) View() string {
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderHelpSection("Navigation", []keyHelp{
			{"1-6", "Dashboard, sessions, insights, analysis, predictions, stats"},
			{"7 or s", "Sync screen"},
			{"?", "Help (this screen)"},
			{"esc", "Back / close help"},
			{"q", "Quit"},
		}),
		renderHelpSection("Lists", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"pgdn / pgup", "Next / previous page"},
			{"enter", "Open session"},
			{"r", "Refresh"},
		}),
		renderHelpSection("Screens", []keyHelp{
			{"c", "Dashboard: cycle chart. Stats: toggle comparisons"},
			{"h / tab", "Insights: filter by horizon"},
			{"w / m", "Stats: weekly / monthly"},
			{"s / enter", "Sync: start"},
		}),
		renderMetricsHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHelpSection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func renderMetricsHelp() string {
	lines := []string{"", sectionStyle.Render("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"EI (Efficiency Index)", "Meters per minute per heartbeat. Higher means a more efficient aerobic system."},
		{"GAP", "Grade adjusted pace: distance credited with 10 m per meter climbed."},
		{"Cardiac drift", "Heart rate rise from the first to the second half. Under 5% is good."},
		{"Decoupling", "Change in HR:pace between halves. Under 5% means a solid aerobic base."},
		{"TRIMP", "Training impulse from duration and heart rate reserve."},
		{"CTL / ATL / TSB", "42 day fitness, 7 day fatigue and their difference, the form."},
		{"Acute:Chronic", "7 day load against 42 day load. Above 1.5 is a spike."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+helpDescStyle.Render(metric.desc))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
