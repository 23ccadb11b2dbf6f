package ui

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shhac/prinbox/internal/config"
)

func testSettingsModel() SettingsModel {
	m := NewSettingsModel()
	m.Show(&config.Config{
		FilterRepo:      "cli",
		FilterLabels:    []string{"bug", "urgent"},
		PerPage:         30,
		PollIntervalMin: 5,
		RefreshSec:      60,
	})
	return m
}

func TestSettingsShowCopiesConfig(t *testing.T) {
	orig := &config.Config{FilterRepo: "cli", PerPage: 30}
	m := NewSettingsModel()
	m.Show(orig)

	m.setText(0, "other")
	if orig.FilterRepo != "cli" {
		t.Error("editing the overlay mutated the original config")
	}
	if m.Config().FilterRepo != "other" {
		t.Errorf("overlay config = %q, want %q", m.Config().FilterRepo, "other")
	}
}

func TestSettingsTextRoundTrip(t *testing.T) {
	m := testSettingsModel()

	if got := m.getText(0); got != "cli" {
		t.Errorf("repo filter = %q, want %q", got, "cli")
	}
	if got := m.getText(2); got != "bug, urgent" {
		t.Errorf("label filters = %q, want %q", got, "bug, urgent")
	}

	m.setText(2, " ci , , flaky ")
	if got := m.Config().FilterLabels; !reflect.DeepEqual(got, []string{"ci", "flaky"}) {
		t.Errorf("labels after set = %v, want [ci flaky]", got)
	}
	m.setText(3, "author, review_requested")
	if got := m.Config().FilterRoles; !reflect.DeepEqual(got, []string{"author", "review_requested"}) {
		t.Errorf("roles after set = %v", got)
	}
}

func TestSettingsAdjustNumberClamps(t *testing.T) {
	m := testSettingsModel()
	m.cursor = 4 // Per page: 10–100, step 10

	m.adjustNumber(1)
	if got := m.Config().PerPage; got != 40 {
		t.Errorf("PerPage after +1 step = %d, want 40", got)
	}
	for i := 0; i < 20; i++ {
		m.adjustNumber(1)
	}
	if got := m.Config().PerPage; got != 100 {
		t.Errorf("PerPage above max = %d, want clamped to 100", got)
	}
	for i := 0; i < 20; i++ {
		m.adjustNumber(-1)
	}
	if got := m.Config().PerPage; got != 10 {
		t.Errorf("PerPage below min = %d, want clamped to 10", got)
	}
	if !m.IsDirty() {
		t.Error("adjusting a number should mark the overlay dirty")
	}
}

// collectMsgs runs a command tree (flattening batches) and returns the
// messages it produces.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, collectMsgs(sub)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSettingsCloseEmitsConfigChangedWhenDirty(t *testing.T) {
	m := testSettingsModel()
	m.adjustNumber(1)

	m, cmd := m.Update(keyPress('q'))
	if m.IsVisible() {
		t.Error("overlay still visible after close")
	}
	var sawClosed, sawChanged bool
	for _, msg := range collectMsgs(cmd) {
		switch msg.(type) {
		case SettingsClosedMsg:
			sawClosed = true
		case ConfigChangedMsg:
			sawChanged = true
		}
	}
	if !sawClosed {
		t.Error("missing SettingsClosedMsg")
	}
	if !sawChanged {
		t.Error("missing ConfigChangedMsg for a dirty overlay")
	}
}

func TestSettingsCloseCleanSkipsConfigChanged(t *testing.T) {
	m := testSettingsModel()
	m, cmd := m.Update(keyPress('q'))
	var sawClosed, sawChanged bool
	for _, msg := range collectMsgs(cmd) {
		switch msg.(type) {
		case SettingsClosedMsg:
			sawClosed = true
		case ConfigChangedMsg:
			sawChanged = true
		}
	}
	if !sawClosed {
		t.Error("missing SettingsClosedMsg")
	}
	if sawChanged {
		t.Error("unexpected ConfigChangedMsg for an untouched overlay")
	}
	_ = m
}

func TestSplitCommaList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "bug", []string{"bug"}},
		{"trims and drops empties", " a, ,b , c,", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitCommaList(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitCommaList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
