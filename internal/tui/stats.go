package tui

import (
	"context"
	"fmt"

	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatsModel is the period stats screen model. 'c' switches between the
// period table and the side by side comparisons.
type StatsModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	stats        []service.PeriodStats // newest first, periods with runs only
	comparisons  []service.ComparisonStats
	periodType   service.PeriodType
	showCompare  bool
	loading      bool
	err          error
	cursor       int
	offset       int
	pageSize     int
}

// NewStatsModel creates a new stats model
func NewStatsModel(ctx context.Context, qs *service.QueryService, units Units) StatsModel {
	return StatsModel{
		ctx:          ctx,
		queryService: qs,
		units:        units,
		periodType:   service.Weekly,
		loading:      true,
		pageSize:     15,
	}
}

// Init initializes the stats screen
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats
}

type statsLoadedMsg struct {
	stats       []service.PeriodStats
	comparisons []service.ComparisonStats
	err         error
}

func (m StatsModel) loadStats() tea.Msg {
	numPeriods := 104 // two years of weeks
	if m.periodType == service.Monthly {
		numPeriods = 36
	}

	stats, err := m.queryService.GetPeriodStats(m.ctx, m.periodType, numPeriods)
	if err != nil {
		return statsLoadedMsg{err: err}
	}
	comparisons, err := m.queryService.GetComparisons(m.ctx)
	return statsLoadedMsg{stats: stats, comparisons: comparisons, err: err}
}

// Update handles messages
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.stats = withRunsNewestFirst(msg.stats)
		m.comparisons = msg.comparisons
		m.cursor = 0
		m.offset = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "w":
			return m.setPeriod(service.Weekly)
		case "m":
			return m.setPeriod(service.Monthly)
		case "c":
			m.showCompare = !m.showCompare
		case "r":
			m.loading = true
			return m, m.loadStats
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
			}
		case "down", "j":
			if m.cursor < m.visibleCount()-1 {
				m.cursor++
			} else if m.offset+m.visibleCount() < len(m.stats) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(0, m.offset-m.pageSize)
				m.cursor = 0
			}
		case "pgdown":
			if m.offset+m.pageSize < len(m.stats) {
				m.offset += m.pageSize
				m.cursor = 0
			}
		}
	}
	return m, nil
}

func (m StatsModel) setPeriod(p service.PeriodType) (tea.Model, tea.Cmd) {
	if m.periodType == p {
		return m, nil
	}
	m.periodType = p
	m.loading = true
	return m, m.loadStats
}

// withRunsNewestFirst drops empty periods and reverses the order
func withRunsNewestFirst(stats []service.PeriodStats) []service.PeriodStats {
	var out []service.PeriodStats
	for i := len(stats) - 1; i >= 0; i-- {
		if stats[i].RunCount > 0 {
			out = append(out, stats[i])
		}
	}
	return out
}

func (m StatsModel) visibleCount() int {
	return min(m.pageSize, len(m.stats)-m.offset)
}

// View renders the stats screen
func (m StatsModel) View() string {
	if m.loading {
		return "\n  Loading stats..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.showCompare {
		return m.renderComparisons()
	}

	var sections []string

	periodLabel := "Weekly"
	if m.periodType == service.Monthly {
		periodLabel = "Monthly"
	}

	if len(m.stats) == 0 {
		sections = append(sections,
			cardTitleStyle.Render(fmt.Sprintf("Period Stats (%s)", periodLabel)),
			"\n  No data available. Import or sync some runs first.")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	end := m.offset + m.visibleCount()
	title := cardTitleStyle.Render(fmt.Sprintf("Period Stats (%s) - %d-%d of %d", periodLabel, m.offset+1, end, len(m.stats)))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-12s  %5s  %8s  %8s  %7s  %6s  %7s  %5s",
		"Period", "Runs", m.units.DistanceLabelLong(), "Pace", "Time", "Load", "Avg HR", "EI"))
	sections = append(sections, header)

	for i := m.offset; i < end; i++ {
		s := m.stats[i]

		cursor := "  "
		if i-m.offset == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-12s  %5d  %8s  %8s  %7s  %6.0f  %7s  %5s",
			cursor,
			s.PeriodLabel,
			s.RunCount,
			m.units.FormatDistanceValue(s.DistanceMeters),
			m.units.FormatPace(s.Pace()),
			formatHours(s.DurationSeconds),
			s.Load,
			formatNonZero(s.AvgHR, 0),
			formatNonZero(s.AvgEI, 2),
		)

		if i-m.offset == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  w/m: weekly/monthly  c: comparisons  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
