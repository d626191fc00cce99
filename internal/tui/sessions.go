package tui

import (
	"context"
	"fmt"

	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionsModel is the session list screen model
type SessionsModel struct {
	ctx          context.Context
	queryService *service.QueryService
	units        Units
	rows         []service.SessionRow
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewSessionsModel creates a new sessions model
func NewSessionsModel(ctx context.Context, qs *service.QueryService, units Units) SessionsModel {
	return SessionsModel{
		ctx:          ctx,
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the sessions screen
func (m SessionsModel) Init() tea.Cmd {
	return m.loadPage
}

type sessionsLoadedMsg struct {
	page *service.SessionPage
	err  error
}

func (m SessionsModel) loadPage() tea.Msg {
	page, err := m.queryService.GetSessionsList(m.ctx, m.pageSize, m.offset)
	return sessionsLoadedMsg{page: page, err: err}
}

// Update handles messages
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.page != nil {
			m.rows = msg.page.Rows
			m.total = msg.page.Total
		}
		if m.cursor >= len(m.rows) {
			m.cursor = max(0, len(m.rows)-1)
		}

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			} else if m.offset+len(m.rows) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset = max(0, m.offset-m.pageSize)
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if m.cursor < len(m.rows) {
				id := m.rows[m.cursor].Summary.ID
				return m, func() tea.Msg {
					return OpenSessionDetailMsg{SessionID: id}
				}
			}
		}
	}
	return m, nil
}

// View renders the session list
func (m SessionsModel) View() string {
	if m.loading {
		return "\n  Loading sessions..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.rows) == 0 {
		return "\n  No sessions found. Import files or press 's' to sync with Strava."
	}

	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Sessions (%d-%d of %d)", m.offset+1, m.offset+len(m.rows), m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-24s  %8s  %7s  %5s  %5s  %-12s  %-8s",
		"Date", "Name", "Distance", "Pace", "HR", "EI", "Type", "Terrain"))
	sections = append(sections, header)

	for i, r := range m.rows {
		sections = append(sections, m.renderRow(i, r))
	}

	help := statusStyle.Render("\n  enter: view details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SessionsModel) renderRow(i int, r service.SessionRow) string {
	sum := r.Summary

	name := sum.Name
	if name == "" {
		name = sum.Source
	}

	pace, hr, ei, kind, terrain := "-", "-", "-", "rejected", ""
	if a := r.Analysis; a != nil {
		met := a.Metrics
		pace = m.units.FormatPacePtr(met.PaceSecPerKm)
		hr = formatOptional(met.AvgHR, 0)
		ei = formatOptional(met.EfficiencyIndex, 2)
		kind = a.Type.Label()
		terrain = a.Terrain.Label()
	}

	cursor := "  "
	if i == m.cursor {
		cursor = "> "
	}

	line := fmt.Sprintf("%s%-10s  %-24s  %6s%s  %7s  %5s  %5s  %-12s  %-8s",
		cursor,
		sum.StartTime.Local().Format("Jan 02 06"),
		truncateName(name, 24),
		m.units.FormatDistanceValue(sum.Distance),
		m.units.DistanceLabel(),
		pace,
		hr,
		ei,
		kind,
		terrain,
	)

	switch {
	case i == m.cursor:
		return tableSelectedStyle.Render(line)
	case r.Analysis == nil:
		return tableRowStyle.Inherit(mutedStyle).Render(line)
	default:
		return tableRowStyle.Render(line)
	}
}
