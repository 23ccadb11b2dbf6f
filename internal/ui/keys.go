package ui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeyMap defines keys available in navigation mode regardless of focused panel.
type GlobalKeyMap struct {
	Quit         key.Binding
	Help         key.Binding
	Tab          key.Binding
	ShiftTab     key.Binding
	Refresh      key.Binding
	OpenBrowser  key.Binding
	Settings     key.Binding
	ToggleDetail key.Binding
}

var GlobalKeys = GlobalKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next panel"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("Shift+Tab", "prev panel"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	OpenBrowser: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open in browser"),
	),
	Settings: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "settings & filters"),
	),
	ToggleDetail: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "toggle detail panel"),
	),
}

// ItemListKeyMap defines keys for the notification list panel.
type ItemListKeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	PrevTab     key.Binding
	NextTab     key.Binding
	Pin         key.Binding
	Snooze      key.Binding
	MarkRead    key.Binding
	LoadMore    key.Binding
	Unsnooze    key.Binding
	UnsnoozeAll key.Binding
	SortCycle   key.Binding
}

var ItemListKeys = ItemListKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "open in browser"),
	),
	PrevTab: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h", "prev tab"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l", "next tab"),
	),
	Pin: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pin/unpin"),
	),
	Snooze: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "snooze…"),
	),
	MarkRead: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark read"),
	),
	LoadMore: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "load more"),
	),
	Unsnooze: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "unsnooze"),
	),
	UnsnoozeAll: key.NewBinding(
		key.WithKeys("U"),
		key.WithHelp("U", "unsnooze all"),
	),
	SortCycle: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort"),
	),
}
