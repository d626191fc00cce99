// Package tui is the interactive terminal front end: dashboard, session
// browser, coaching insights, analyzers, predictions and Strava sync.
package tui

import (
	"context"

	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenSessions
	ScreenSessionDetail
	ScreenInsights
	ScreenAnalysis
	ScreenPredictions
	ScreenStats
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	ctx        context.Context
	screen     Screen
	prevScreen Screen

	dashboard   DashboardModel
	sessions    SessionsModel
	detail      SessionDetailModel
	insights    InsightsModel
	analyzers   AnalysisModel
	predictions PredictionsModel
	stats       StatsModel
	syncScreen  SyncModel
	help        HelpModel

	queryService *service.QueryService
	syncService  *service.SyncService
	units        Units

	width  int
	height int
}

// NewApp creates a new App. syncService may be nil when Strava is not
// configured; the sync screen then explains how to set it up.
func NewApp(ctx context.Context, qs *service.QueryService, ss *service.SyncService, units Units) *App {
	return &App{
		ctx:          ctx,
		screen:       ScreenDashboard,
		queryService: qs,
		syncService:  ss,
		units:        units,
		dashboard:    NewDashboardModel(ctx, qs, units),
		sessions:     NewSessionsModel(ctx, qs, units),
		insights:     NewInsightsModel(ctx, qs, 0, 0),
		analyzers:    NewAnalysisModel(ctx, qs, units, 0, 0),
		predictions:  NewPredictionsModel(ctx, qs, units, 0, 0),
		stats:        NewStatsModel(ctx, qs, units),
		syncScreen:   NewSyncModel(ctx, ss),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings, unless a sync is running
		if !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				return a.switchTo(ScreenDashboard)
			case "2":
				return a.switchTo(ScreenSessions)
			case "3":
				return a.switchTo(ScreenInsights)
			case "4":
				return a.switchTo(ScreenAnalysis)
			case "5":
				return a.switchTo(ScreenPredictions)
			case "6":
				return a.switchTo(ScreenStats)
			case "7", "s":
				if a.screen != ScreenSync {
					return a.switchTo(ScreenSync)
				}
				// 's' on the sync screen starts the sync
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.screen = ScreenHelp
				}
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenSessionDetail:
					a.screen = ScreenSessions
					return a, nil
				}
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Scrolling screens size their viewports from this
		var cmds []tea.Cmd
		cmds = append(cmds, a.updateScreen(ScreenSessionDetail, msg))
		cmds = append(cmds, a.updateScreen(ScreenInsights, msg))
		cmds = append(cmds, a.updateScreen(ScreenAnalysis, msg))
		cmds = append(cmds, a.updateScreen(ScreenPredictions, msg))
		return a, tea.Batch(cmds...)

	case OpenSessionDetailMsg:
		a.detail = NewSessionDetailModel(a.ctx, a.queryService, a.units, msg.SessionID, a.width, a.height)
		a.screen = ScreenSessionDetail
		return a, a.detail.Init()

	case SyncCompleteMsg:
		// Stored sessions changed; reload what depends on them
		a.dashboard = NewDashboardModel(a.ctx, a.queryService, a.units)
		a.sessions = NewSessionsModel(a.ctx, a.queryService, a.units)
		return a, nil
	}

	return a, a.updateScreen(a.screen, msg)
}

func (a *App) switchTo(s Screen) (tea.Model, tea.Cmd) {
	a.screen = s
	switch s {
	case ScreenDashboard:
		a.dashboard = NewDashboardModel(a.ctx, a.queryService, a.units)
		return a, a.dashboard.Init()
	case ScreenSessions:
		return a, a.sessions.Init()
	case ScreenInsights:
		a.insights = NewInsightsModel(a.ctx, a.queryService, a.width, a.height)
		return a, a.insights.Init()
	case ScreenAnalysis:
		a.analyzers = NewAnalysisModel(a.ctx, a.queryService, a.units, a.width, a.height)
		return a, a.analyzers.Init()
	case ScreenPredictions:
		a.predictions = NewPredictionsModel(a.ctx, a.queryService, a.units, a.width, a.height)
		return a, a.predictions.Init()
	case ScreenStats:
		return a, a.stats.Init()
	case ScreenSync:
		return a, a.syncScreen.Init()
	}
	return a, nil
}

// updateScreen delegates msg to the model of screen s
func (a *App) updateScreen(s Screen, msg tea.Msg) tea.Cmd {
	var m tea.Model
	var cmd tea.Cmd
	switch s {
	case ScreenDashboard:
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenSessions:
		m, cmd = a.sessions.Update(msg)
		a.sessions = m.(SessionsModel)
	case ScreenSessionDetail:
		m, cmd = a.detail.Update(msg)
		a.detail = m.(SessionDetailModel)
	case ScreenInsights:
		m, cmd = a.insights.Update(msg)
		a.insights = m.(InsightsModel)
	case ScreenAnalysis:
		m, cmd = a.analyzers.Update(msg)
		a.analyzers = m.(AnalysisModel)
	case ScreenPredictions:
		m, cmd = a.predictions.Update(msg)
		a.predictions = m.(PredictionsModel)
	case ScreenStats:
		m, cmd = a.stats.Update(msg)
		a.stats = m.(StatsModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}
	return cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenSessions:
		content = a.sessions.View()
	case ScreenSessionDetail:
		content = a.detail.View()
	case ScreenInsights:
		content = a.insights.View()
	case ScreenAnalysis:
		content = a.analyzers.View()
	case ScreenPredictions:
		content = a.predictions.View()
	case ScreenStats:
		content = a.stats.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("apexrun - Training Analytics")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Sessions", ScreenSessions},
		{"3", "Insights", ScreenInsights},
		{"4", "Analysis", ScreenAnalysis},
		{"5", "Predictions", ScreenPredictions},
		{"6", "Stats", ScreenStats},
		{"7", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	active := a.screen
	if active == ScreenSessionDetail {
		active = ScreenSessions
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}
		label := "[" + item.key + "] " + item.label
		if active == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}
	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// OpenSessionDetailMsg asks the app to show one session
type OpenSessionDetailMsg struct {
	SessionID string
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
