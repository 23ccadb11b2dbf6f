package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBarModel renders the bottom status bar.
type StatusBarModel struct {
	width     int
	focused   Panel
	mode      AppMode
	activeTab ItemListTab
	badge     string // unseen count, "" when zero
	filtering bool   // true when the list filter input is active

	// Temporary flash message (e.g. "Snoozed for 1h")
	statusMessage string
	// Monotonic counter: incremented on each SetTemporaryMessage call.
	// StatusBarClearMsg carries the seq at time of scheduling; if it doesn't
	// match current seq the clear is stale and ignored.
	messageSeq int
}

func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}

func (m *StatusBarModel) SetState(focused Panel, mode AppMode, tab ItemListTab) {
	m.focused = focused
	m.mode = mode
	m.activeTab = tab
}

// SetBadge updates the unseen-count badge ("" hides it).
func (m *StatusBarModel) SetBadge(badge string) {
	m.badge = badge
}

// SetFiltering updates whether the list filter input is active.
func (m *StatusBarModel) SetFiltering(filtering bool) {
	m.filtering = filtering
}

// SetTemporaryMessage shows a flash message in the status bar.
// Returns a tea.Cmd that will send a StatusBarClearMsg after the given duration,
// which the caller must include in the returned command batch.
func (m *StatusBarModel) SetTemporaryMessage(msg string, duration time.Duration) tea.Cmd {
	m.messageSeq++
	m.statusMessage = msg
	seq := m.messageSeq
	return tea.Tick(duration, func(_ time.Time) tea.Msg {
		return StatusBarClearMsg{Seq: seq}
	})
}

// ClearMessage explicitly clears the temporary message.
func (m *StatusBarModel) ClearMessage() {
	m.statusMessage = ""
}

// ClearIfSeqMatch clears the message only if the given seq matches the current one.
// Returns true if the message was cleared.
func (m *StatusBarModel) ClearIfSeqMatch(seq int) bool {
	if seq == m.messageSeq {
		m.statusMessage = ""
		return true
	}
	return false
}

func (m StatusBarModel) View() string {
	var leftHints string
	if m.statusMessage != "" {
		leftHints = " " + m.statusMessage
	} else {
		leftHints = m.keyHints()
	}
	rightInfo := m.contextInfo()

	leftRendered := statusBarAccentStyle.Render(leftHints)
	rightRendered := rightInfo

	leftWidth := lipgloss.Width(leftRendered)
	rightWidth := lipgloss.Width(rightRendered)
	padding := m.width - leftWidth - rightWidth
	if padding < 0 {
		padding = 0
	}

	bar := leftRendered +
		statusBarStyle.Render(strings.Repeat(" ", padding)) +
		rightRendered

	return statusBarStyle.Width(m.width).Render(bar)
}

func (m StatusBarModel) keyHints() string {
	if m.filtering {
		return " [Esc]cancel [Enter]apply [type]filter"
	}

	if m.mode == ModeSnooze {
		return " snooze for: [1]1h [2]8h [3]1d [4]7d [Esc]cancel"
	}

	switch m.focused {
	case PanelList:
		if m.activeTab == TabSnoozed {
			return " [h/l]tab [j/k]move [Enter]open [u]wake [U]wake all [s]sort [?]help"
		}
		return " [h/l]tab [j/k]move [Enter]open [z]snooze [p]pin [m]read [/]filter [r]refresh [?]help"
	case PanelDetail:
		return " [j/k]scroll [o]open [Tab]back to list [?]help"
	default:
		return " [Tab]panel [?]help [q]quit"
	}
}

func (m StatusBarModel) contextInfo() string {
	modeStr := ""
	switch m.mode {
	case ModeSnooze:
		modeStr = " SNOOZE "
	case ModeOverlay:
		modeStr = " OVERLAY "
	default:
		modeStr = " NAV "
	}

	out := statusBarStyle.Render(modeStr)
	if m.badge != "" {
		out = statusBarBadgeStyle.Render(m.badge) + out
	}
	return out
}
