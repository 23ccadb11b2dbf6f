package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/prinbox/internal/config"
)

// settingKind describes the type of a setting entry.
type settingKind int

const (
	settingText settingKind = iota
	settingNumber
)

// settingItem describes a single configurable setting.
type settingItem struct {
	label string
	desc  string
	kind  settingKind
	min   int // for settingNumber
	max   int // for settingNumber
	step  int // for settingNumber
	unit  string
}

var settingsSchema = []settingItem{
	{label: "Repo filter", desc: "Keep items whose repo contains this text", kind: settingText},
	{label: "Author filter", desc: "Keep items authored by this login", kind: settingText},
	{label: "Label filters", desc: "Comma-separated label names", kind: settingText},
	{label: "Role filters", desc: "Comma-separated reasons (author, review_requested…)", kind: settingText},
	{label: "Per page", desc: "Notifications fetched per page", kind: settingNumber, min: 10, max: 100, step: 10},
	{label: "Poll interval", desc: "Minutes between background polls", kind: settingNumber, min: 1, max: 60, step: 1, unit: "min"},
	{label: "Auto refresh", desc: "Seconds between in-app refreshes (0 = off)", kind: settingNumber, min: 0, max: 600, step: 30, unit: "s"},
	{label: "Theme", desc: "auto, dark or light (applies on restart)", kind: settingText},
}

// SettingsModel manages the settings & filters overlay.
type SettingsModel struct {
	cfg     *config.Config
	input   textinput.Model
	width   int
	height  int
	visible bool
	cursor  int
	editing bool // a text field is being edited
	dirty   bool // whether settings have been modified
}

// NewSettingsModel creates a settings model.
func NewSettingsModel() SettingsModel {
	ti := textinput.New()
	ti.CharLimit = 120
	return SettingsModel{input: ti}
}

// Show makes the settings overlay visible with the given config.
func (m *SettingsModel) Show(cfg *config.Config) {
	m.visible = true
	m.cursor = 0
	m.editing = false
	m.dirty = false
	// Work on a copy so we can save atomically on close
	c := *cfg
	m.cfg = &c
}

// Hide dismisses the settings overlay.
func (m *SettingsModel) Hide() {
	m.visible = false
	m.editing = false
}

// IsVisible returns whether the settings overlay is currently shown.
func (m SettingsModel) IsVisible() bool {
	return m.visible
}

// SetSize updates the overlay dimensions.
func (m *SettingsModel) SetSize(termWidth, termHeight int) {
	m.width = termWidth
	m.height = termHeight
}

// Config returns the current (possibly modified) config.
func (m SettingsModel) Config() *config.Config {
	return m.cfg
}

// IsDirty returns whether settings have been modified.
func (m SettingsModel) IsDirty() bool {
	return m.dirty
}

// Update handles key events in the settings overlay.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch kmsg.String() {
		case "enter":
			m.setText(m.cursor, m.input.Value())
			m.dirty = true
			m.editing = false
			return m, nil
		case "esc":
			m.editing = false
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(kmsg)
			return m, cmd
		}
	}

	switch {
	case kmsg.String() == "esc" || kmsg.String() == "q":
		return m.close()

	case key.Matches(kmsg, GlobalKeys.Settings):
		return m.close()

	case kmsg.String() == "j" || kmsg.String() == "down":
		if m.cursor < len(settingsSchema)-1 {
			m.cursor++
		}
		return m, nil

	case kmsg.String() == "k" || kmsg.String() == "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case kmsg.String() == "enter":
		if settingsSchema[m.cursor].kind == settingText {
			m.input.SetValue(m.getText(m.cursor))
			m.input.CursorEnd()
			m.input.Focus()
			m.editing = true
		} else {
			m.adjustNumber(1)
		}
		return m, nil

	case kmsg.String() == "l" || kmsg.String() == "right" || kmsg.String() == "+":
		m.adjustNumber(1)
		return m, nil

	case kmsg.String() == "h" || kmsg.String() == "left" || kmsg.String() == "-":
		m.adjustNumber(-1)
		return m, nil
	}

	return m, nil
}

func (m SettingsModel) close() (SettingsModel, tea.Cmd) {
	m.Hide()
	var cmds []tea.Cmd
	cmds = append(cmds, func() tea.Msg { return SettingsClosedMsg{} })
	if m.dirty {
		cmds = append(cmds, func() tea.Msg { return ConfigChangedMsg{} })
	}
	return m, tea.Batch(cmds...)
}

// adjustNumber changes a number setting by the given direction (-1 or +1).
func (m *SettingsModel) adjustNumber(dir int) {
	item := settingsSchema[m.cursor]
	if item.kind != settingNumber {
		return
	}
	val := m.getNumber(m.cursor) + dir*item.step
	if val < item.min {
		val = item.min
	}
	if val > item.max {
		val = item.max
	}
	m.setNumber(m.cursor, val)
	m.dirty = true
}

// getText returns the string value for a text setting by index.
func (m SettingsModel) getText(idx int) string {
	switch settingsSchema[idx].label {
	case "Repo filter":
		return m.cfg.FilterRepo
	case "Author filter":
		return m.cfg.FilterAuthor
	case "Label filters":
		return strings.Join(m.cfg.FilterLabels, ", ")
	case "Role filters":
		return strings.Join(m.cfg.FilterRoles, ", ")
	case "Theme":
		return m.cfg.Theme
	}
	return ""
}

// setText sets the string value for a text setting by index.
func (m *SettingsModel) setText(idx int, val string) {
	switch settingsSchema[idx].label {
	case "Repo filter":
		m.cfg.FilterRepo = strings.TrimSpace(val)
	case "Author filter":
		m.cfg.FilterAuthor = strings.TrimSpace(val)
	case "Label filters":
		m.cfg.FilterLabels = splitCommaList(val)
	case "Role filters":
		m.cfg.FilterRoles = splitCommaList(val)
	case "Theme":
		t := strings.ToLower(strings.TrimSpace(val))
		switch t {
		case "dark", "light":
			m.cfg.Theme = t
		default:
			m.cfg.Theme = "auto"
		}
	}
}

// getNumber returns the numeric value for a number setting by index.
func (m SettingsModel) getNumber(idx int) int {
	switch settingsSchema[idx].label {
	case "Per page":
		return m.cfg.PerPage
	case "Poll interval":
		return m.cfg.PollIntervalMin
	case "Auto refresh":
		return m.cfg.RefreshSec
	}
	return 0
}

// setNumber sets the numeric value for a number setting by index.
func (m *SettingsModel) setNumber(idx int, val int) {
	switch settingsSchema[idx].label {
	case "Per page":
		m.cfg.PerPage = val
	case "Poll interval":
		m.cfg.PollIntervalMin = val
	case "Auto refresh":
		m.cfg.RefreshSec = val
	}
}

// splitCommaList splits a comma-separated string into trimmed non-empty parts.
func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// View renders the settings overlay.
func (m SettingsModel) View() string {
	if !m.visible {
		return ""
	}

	overlayW, overlayH := m.overlayDimensions()
	innerW := overlayW - 6 // border + padding
	if innerW < 1 {
		innerW = 1
	}

	// Title
	title := settingsTitleStyle.Render(" Settings & Filters ")
	titleLine := lipgloss.PlaceHorizontal(innerW, lipgloss.Center, title)

	// Footer
	footer := settingsFooterStyle.Render(" j/k navigate · Enter edit · h/l adjust · Esc close ")
	if m.editing {
		footer = settingsFooterStyle.Render(" Enter save · Esc cancel ")
	}
	footerLine := lipgloss.PlaceHorizontal(innerW, lipgloss.Center, footer)

	// Setting rows
	var rows []string
	for i, item := range settingsSchema {
		rows = append(rows, m.renderSettingRow(i, item))
	}

	// Dirty indicator
	if m.dirty {
		rows = append(rows, "")
		rows = append(rows, settingsDirtyStyle.Render("  Changes will be saved on close"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)

	box := lipgloss.JoinVertical(lipgloss.Left, titleLine, "", content, "", footerLine)

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(overlayW - 2).
		Height(overlayH - 2)

	rendered := overlayStyle.Render(box)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, rendered)
}

// renderSettingRow renders a single setting row.
func (m SettingsModel) renderSettingRow(idx int, item settingItem) string {
	isFocused := idx == m.cursor

	marker := "  "
	if isFocused {
		marker = settingsMarkerStyle.Render("▸ ")
	}

	labelStyle := settingsLabelStyle
	if isFocused {
		labelStyle = settingsLabelFocusedStyle
	}

	label := labelStyle.Render(padRight(item.label, 16))

	var value string
	switch item.kind {
	case settingText:
		if isFocused && m.editing {
			value = m.input.View()
		} else {
			text := m.getText(idx)
			if text == "" {
				value = settingsOffStyle.Render("(none)")
			} else {
				value = settingsTextStyle.Render(text)
			}
		}
	case settingNumber:
		numStr := fmt.Sprintf("%d%s", m.getNumber(idx), item.unit)
		if isFocused {
			value = settingsNumberFocusedStyle.Render(fmt.Sprintf("◂ %s ▸", numStr))
		} else {
			value = settingsNumberStyle.Render(fmt.Sprintf("  %s  ", numStr))
		}
	}

	desc := settingsDescStyle.Render(item.desc)

	return marker + label + value + "  " + desc
}

// overlayDimensions returns the outer dimensions of the settings overlay box.
func (m SettingsModel) overlayDimensions() (width, height int) {
	width = int(float64(m.width) * 0.7)
	height = len(settingsSchema) + 10 // rows + chrome
	if width < 70 {
		width = min(70, m.width)
	}
	if height < 12 {
		height = 12
	}
	if height > m.height-2 {
		height = m.height - 2
	}
	return width, height
}

// Settings overlay styles
var (
	settingsTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)

	settingsFooterStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)

	settingsMarkerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	settingsLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	settingsLabelFocusedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("42")).
					Bold(true)

	settingsOffStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	settingsTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	settingsNumberStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214"))

	settingsNumberFocusedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("214")).
					Bold(true)

	settingsDescStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)

	settingsDirtyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("214")).
				Italic(true)
)
