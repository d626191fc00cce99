// Package service connects the store, importers and Strava client to the
// analysis engine for the TUI, HTTP server and CLI.
package service

import (
	"context"
	"fmt"
	"time"

	"apexrun/internal/analysis"
	"apexrun/internal/session"
	"apexrun/internal/store"
)

// QueryService provides read-only views over the analyzed history
type QueryService struct {
	store   *store.Store
	athlete session.Athlete
	now     func() time.Time
}

// NewQueryService creates a new query service
func NewQueryService(store *store.Store, athlete session.Athlete) *QueryService {
	return &QueryService{store: store, athlete: athlete, now: time.Now}
}

// WithClock fixes the reference time used for windows and insights
func (q *QueryService) WithClock(now func() time.Time) *QueryService {
	q.now = now
	return q
}

// Athlete returns the profile the service analyzes with
func (q *QueryService) Athlete() session.Athlete {
	return q.athlete
}

// Report loads the full history and analyzes it
func (q *QueryService) Report(ctx context.Context) (*analysis.Report, error) {
	history, err := q.store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	report := analysis.Analyze(history, q.athlete, q.now())
	return &report, nil
}

// SessionRow is one line of the session list
type SessionRow struct {
	Summary  store.SessionSummary      `json:"summary"`
	Analysis *analysis.SessionAnalysis `json:"analysis,omitempty"` // nil when the session was rejected
}

// SessionPage is a page of the session list, newest first
type SessionPage struct {
	Rows   []SessionRow `json:"rows"`
	Total  int          `json:"total"`
	Offset int          `json:"offset"`
}

// GetSessionsList returns one page of sessions with their labels
func (q *QueryService) GetSessionsList(ctx context.Context, limit, offset int) (*SessionPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	summaries, err := q.store.ListSessions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	total, err := q.store.CountSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}
	report, err := q.Report(ctx)
	if err != nil {
		return nil, err
	}

	page := &SessionPage{Total: total, Offset: offset, Rows: make([]SessionRow, 0, len(summaries))}
	for _, sum := range summaries {
		row := SessionRow{Summary: sum}
		if sa, ok := report.Session(sum.ID); ok {
			row.Analysis = &sa
		}
		page.Rows = append(page.Rows, row)
	}
	return page, nil
}

// recentSessions returns up to n analyses, newest first
func recentSessions(report *analysis.Report, n int) []analysis.SessionAnalysis {
	var out []analysis.SessionAnalysis
	for i := len(report.Sessions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, report.Sessions[i])
	}
	return out
}

// getMonday returns the start of the ISO week containing t
func getMonday(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	d := t.AddDate(0, 0, 1-weekday)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
