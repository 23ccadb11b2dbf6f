package ui

import (
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

// -- Inbox data --

// InboxLoadedMsg is sent when a reconciliation pass has completed.
type InboxLoadedMsg struct {
	Page   int
	Result *inbox.Result
}

// InboxErrorMsg is sent when reconciliation fails.
type InboxErrorMsg struct {
	Err error
}

// SnoozesLoadedMsg is sent when the snooze table has been read.
type SnoozesLoadedMsg struct {
	Entries map[string]inbox.SnoozeEntry
	Err     error
}

// -- Item action requests (emitted by the list panel) --

// ItemOpenRequestMsg is sent when the user opens a notification.
type ItemOpenRequestMsg struct {
	Item github.Item
}

// ItemPinRequestMsg is sent when the user toggles a pin.
type ItemPinRequestMsg struct {
	Item github.Item
}

// ItemSnoozeRequestMsg is sent when the user starts picking a snooze duration.
type ItemSnoozeRequestMsg struct {
	Item github.Item
}

// ItemMarkReadRequestMsg is sent when the user marks a thread read upstream.
type ItemMarkReadRequestMsg struct {
	Item github.Item
}

// LoadMoreRequestMsg is sent when the user asks for the next notification page.
type LoadMoreRequestMsg struct {
	Page int
}

// UnsnoozeRequestMsg is sent when the user wakes a single snoozed item.
type UnsnoozeRequestMsg struct {
	Key string
}

// UnsnoozeAllRequestMsg is sent when the user wakes every snoozed item.
type UnsnoozeAllRequestMsg struct{}

// -- Item action results --

// ItemOpenedMsg is sent after an item was opened in the browser and marked seen.
type ItemOpenedMsg struct {
	Key string
	Err error
}

// MarkReadDoneMsg is sent after an upstream mark-read attempt finishes.
type MarkReadDoneMsg struct {
	Key string
	Err error
}

// PinToggledMsg is sent after a pin toggle has been persisted.
type PinToggledMsg struct {
	Key string
	Err error
}

// SnoozeDoneMsg is sent after a snooze has been stored and its wakeup scheduled.
type SnoozeDoneMsg struct {
	Key    string
	Choice string
	Err    error
}

// UnsnoozeDoneMsg is sent after a single snooze has been removed.
type UnsnoozeDoneMsg struct {
	Key string
	Err error
}

// UnsnoozeAllDoneMsg is sent after all snoozes have been cleared.
type UnsnoozeAllDoneMsg struct {
	Err error
}

// -- Repo metadata --

// RepoMetaLoadedMsg is sent when repository metadata for the detail panel arrives.
type RepoMetaLoadedMsg struct {
	Repo string
	Meta *github.RepoMeta
	Err  error
}

// BadgeRefreshMsg carries a recomputed unseen count and the current snooze table.
type BadgeRefreshMsg struct {
	Count   int
	Entries map[string]inbox.SnoozeEntry
}

// -- Background events & timers --

// busEventMsg wraps an event from the background service.
type busEventMsg struct {
	Event bus.Event
}

// refreshTickMsg fires on the periodic foreground refresh interval.
type refreshTickMsg struct{}

// snoozeTickMsg fires every second while the Snoozed tab is visible so the
// remaining-time labels stay current and expired entries flip to "waking up".
type snoozeTickMsg struct{}

// StatusBarClearMsg clears a temporary status bar message if its seq is current.
type StatusBarClearMsg struct {
	Seq int
}

// -- Overlays --

// SettingsClosedMsg is sent when the settings overlay is dismissed.
type SettingsClosedMsg struct{}

// ConfigChangedMsg is sent when settings were modified and should be persisted.
type ConfigChangedMsg struct{}
