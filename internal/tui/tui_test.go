package tui

import (
	"context"
	"strings"
	"testing"

	"apexrun/internal/config"
	"apexrun/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUnits(t *testing.T) {
	km := NewUnits(config.DisplayConfig{DistanceUnit: "km", PaceUnit: "min/km"})
	mi := NewUnits(config.DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"km distance", km.FormatDistance(10000), "10.0 km"},
		{"mi distance", mi.FormatDistance(16093.4), "10.0 mi"},
		{"zero distance value", km.FormatDistanceValue(0), "-"},
		{"km pace", km.FormatPace(300), "5:00"},
		{"mi pace", mi.FormatPace(300), "8:03"},
		{"pace with unit", km.FormatPaceWithUnit(275), "4:35/km"},
		{"mi pace with unit", mi.FormatPaceWithUnit(300), "8:03/mi"},
		{"invalid pace", km.FormatPaceWithUnit(0), "-"},
		{"nil pace", km.FormatPacePtr(nil), "-"},
		{"pace label", mi.PaceLabel(), "min/mi"},
		{"distance label", mi.DistanceLabelLong(), "miles"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}

	series := km.ConvertPaceSeries([]float64{300, 0, 240})
	if series[0] != 5 || series[1] != 0 || series[2] != 4 {
		t.Errorf("ConvertPaceSeries() = %v, want [5 0 4]", series)
	}
	if got := mi.ConvertDistanceSeries([]float64{1.60934}); got[0] < 0.9999 || got[0] > 1.0001 {
		t.Errorf("ConvertDistanceSeries() = %v, want ~1", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatHours(3900); got != "1h 05m" {
		t.Errorf("formatHours(3900) = %q", got)
	}
	if got := formatHours(2700); got != "45m" {
		t.Errorf("formatHours(2700) = %q", got)
	}
	if got := truncateName("Sunday long run by the river", 12); got != "Sunday lo..." {
		t.Errorf("truncateName() = %q", got)
	}
	if got := formatTrendPct(nil); got != "" {
		t.Errorf("formatTrendPct(nil) = %q", got)
	}
	up, down := 3.25, -1.5
	if got := formatTrendPct(&up); got != "+3.2%" && got != "+3.3%" {
		t.Errorf("formatTrendPct(3.25) = %q", got)
	}
	if got := formatTrendPct(&down); got != "-1.5%" {
		t.Errorf("formatTrendPct(-1.5) = %q", got)
	}
	if got := trimTrailingZeros([]float64{1, 2, 0, 0}); len(got) != 2 {
		t.Errorf("trimTrailingZeros() = %v", got)
	}
	if got := fillGaps([]float64{0, 3, 0, 4}); got[0] != 0 || got[2] != 3 || got[3] != 4 {
		t.Errorf("fillGaps() = %v", got)
	}
}

func TestStatsModel(t *testing.T) {
	m := NewStatsModel(context.Background(), nil, NewUnits(config.DisplayConfig{}))

	var stats []service.PeriodStats
	for i, runs := range []int{2, 0, 1, 3} {
		stats = append(stats, service.PeriodStats{PeriodLabel: string(rune('A' + i)), RunCount: runs, DistanceMeters: 5000})
	}

	model, _ := m.Update(statsLoadedMsg{stats: stats})
	m = model.(StatsModel)
	if len(m.stats) != 3 || m.stats[0].PeriodLabel != "D" || m.stats[2].PeriodLabel != "A" {
		t.Fatalf("stats = %+v, want D, C, A", m.stats)
	}

	model, _ = m.Update(keyMsg("down"))
	m = model.(StatsModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	model, _ = m.Update(keyMsg("c"))
	m = model.(StatsModel)
	if !strings.Contains(m.View(), "Trend Comparisons") {
		t.Error("comparisons view not shown after 'c'")
	}

	model, cmd := m.Update(keyMsg("m"))
	m = model.(StatsModel)
	if m.periodType != service.Monthly || !m.loading || cmd == nil {
		t.Errorf("after 'm': period %v loading %v, want monthly reload", m.periodType, m.loading)
	}
}

func TestSyncModelNotConfigured(t *testing.T) {
	m := NewSyncModel(context.Background(), nil)
	model, cmd := m.Update(keyMsg("s"))
	m = model.(SyncModel)
	if m.syncing || cmd != nil {
		t.Error("sync started without a sync service")
	}
	if !strings.Contains(m.View(), "not configured") {
		t.Errorf("View() = %q, want not configured notice", m.View())
	}
}

func TestSyncModelDone(t *testing.T) {
	m := NewSyncModel(context.Background(), nil)
	m.syncing = true

	model, cmd := m.Update(SyncDoneMsg{Result: &service.SyncResult{SessionsStored: 3, Remaining: 7}})
	m = model.(SyncModel)
	if m.syncing || !m.finished {
		t.Fatalf("syncing = %v finished = %v", m.syncing, m.finished)
	}
	if cmd == nil {
		t.Fatal("no SyncCompleteMsg command")
	}
	if _, ok := cmd().(SyncCompleteMsg); !ok {
		t.Error("command did not produce SyncCompleteMsg")
	}
}

func TestWaitForSync(t *testing.T) {
	updates := make(chan service.SyncProgress, 1)
	done := make(chan SyncDoneMsg, 1)

	updates <- service.SyncProgress{Phase: "streams", Total: 4, Completed: 1}
	if msg, ok := waitForSync(updates, done)().(syncProgressMsg); !ok || msg.Completed != 1 {
		t.Errorf("first message = %#v, want progress", msg)
	}

	close(updates)
	done <- SyncDoneMsg{Result: &service.SyncResult{}}
	if _, ok := waitForSync(updates, done)().(SyncDoneMsg); !ok {
		t.Error("closed progress channel did not yield the done message")
	}
}

func TestAppNavigation(t *testing.T) {
	app := NewApp(context.Background(), nil, nil, NewUnits(config.DisplayConfig{}))

	app.Update(OpenSessionDetailMsg{SessionID: "abc"})
	if app.screen != ScreenSessionDetail || app.detail.sessionID != "abc" {
		t.Fatalf("screen = %v, want session detail for abc", app.screen)
	}

	app.Update(keyMsg("esc"))
	if app.screen != ScreenSessions {
		t.Errorf("esc from detail: screen = %v, want sessions", app.screen)
	}

	app.Update(keyMsg("?"))
	app.Update(keyMsg("esc"))
	if app.screen != ScreenSessions {
		t.Errorf("esc from help: screen = %v, want sessions", app.screen)
	}

	app.Update(keyMsg("7"))
	if app.screen != ScreenSync {
		t.Errorf("screen = %v, want sync", app.screen)
	}
	if !strings.Contains(app.View(), "apexrun") {
		t.Error("header missing from view")
	}

	_, cmd := app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
