package tui

import (
	"context"
	"fmt"
	"strings"

	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SyncModel is the sync screen model
type SyncModel struct {
	ctx         context.Context
	syncService *service.SyncService
	syncing     bool
	progress    service.SyncProgress
	updates     <-chan service.SyncProgress
	done        <-chan SyncDoneMsg
	result      *service.SyncResult
	err         error
	finished    bool
}

// NewSyncModel creates a new sync model. ss is nil when Strava is not configured.
func NewSyncModel(ctx context.Context, ss *service.SyncService) SyncModel {
	return SyncModel{ctx: ctx, syncService: ss}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = service.SyncProgress(msg)
		return m, waitForSync(m.updates, m.done)

	case SyncDoneMsg:
		m.syncing = false
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		m.updates, m.done = nil, nil
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if m.syncing || m.syncService == nil {
			return m, nil
		}
		switch msg.String() {
		case "enter", "s":
			m.syncing = true
			m.finished = false
			m.err = nil
			m.result = nil
			m.progress = service.SyncProgress{}
			m.updates, m.done = m.startSync()
			return m, waitForSync(m.updates, m.done)
		}
	}
	return m, nil
}

// startSync runs the sync in the background. The progress channel is closed
// by SyncAll before the result is sent.
func (m SyncModel) startSync() (<-chan service.SyncProgress, <-chan SyncDoneMsg) {
	updates := make(chan service.SyncProgress, 16)
	done := make(chan SyncDoneMsg, 1)
	go func() {
		result, err := m.syncService.SyncAll(m.ctx, updates)
		done <- SyncDoneMsg{Result: result, Err: err}
	}()
	return updates, done
}

func waitForSync(updates <-chan service.SyncProgress, done <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-updates; ok {
			return syncProgressMsg(p)
		}
		return <-done
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	sections := []string{cardTitleStyle.Render("Strava Sync")}

	switch {
	case m.syncService == nil:
		sections = append(sections, m.renderNotConfigured())
	case m.syncing:
		sections = append(sections, m.renderProgress())
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
	case m.finished:
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderNotConfigured() string {
	lines := []string{
		"",
		"  Strava is not configured.",
		"",
		"  Add your API application's client_id and client_secret to",
		"  ~/.apexrun/config.json, then run 'apexrun sync' once to authorize.",
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderStartPrompt() string {
	short, daily := m.syncService.RateLimitStatus()
	lines := []string{
		"",
		"  This will sync your Strava runs:",
		"",
		"  1. Fetch runs newer than the last sync",
		fmt.Sprintf("  2. Download sample streams (up to %d runs per sync)", service.SyncStreamBatch),
		"  3. Store them as sessions for analysis",
		"",
		statusStyle.Render(fmt.Sprintf("  API requests left: %d (15 min), %d (daily)", short, daily)),
		"",
		statusStyle.Render("  Press 's' or Enter to start sync"),
	}
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	p := m.progress
	lines := []string{""}

	switch p.Phase {
	case "streams":
		lines = append(lines, fmt.Sprintf("  Downloading streams %d/%d", p.Completed, p.Total))
		fraction := 0.0
		if p.Total > 0 {
			fraction = float64(p.Completed) / float64(p.Total)
		}
		lines = append(lines, "  "+RenderProgressBar(fraction, 40))
		if p.CurrentSession != "" {
			lines = append(lines, mutedStyle.Render("  "+truncateName(p.CurrentSession, 50)))
		}
	default:
		lines = append(lines, fmt.Sprintf("  Fetching runs from Strava... %d found", p.Completed))
	}

	lines = append(lines, "", statusStyle.Render("  This may take a moment..."))
	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	lines := []string{""}

	if r.SessionsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d runs stored", r.SessionsStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new runs"))
	}
	if r.StreamsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d streams downloaded", r.StreamsFetched)))
	}
	if r.Remaining > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d runs left, sync again to continue", r.Remaining)))
	}
	if len(r.Errors) > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d runs skipped as invalid", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
