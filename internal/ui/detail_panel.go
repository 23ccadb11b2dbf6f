package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

// DetailPanelModel renders the selected item's metadata.
type DetailPanelModel struct {
	viewport viewport.Model
	width    int
	height   int
	focused  bool
	ready    bool

	// Current subject: either an inbox item or a snoozed entry.
	item      github.Item
	hasItem   bool
	snoozeKey string
	snooze    inbox.SnoozeEntry
	hasSnooze bool

	// Repository metadata, filled in asynchronously.
	metaRepo string
	meta     *github.RepoMeta
	metaErr  bool
}

func NewDetailPanelModel() DetailPanelModel {
	return DetailPanelModel{}
}

// SetItem shows an inbox item in the panel.
func (m *DetailPanelModel) SetItem(item github.Item) {
	m.item = item
	m.hasItem = true
	m.hasSnooze = false
	if item.RepoFullName != m.metaRepo {
		m.meta = nil
		m.metaErr = false
	}
	m.refreshContent()
}

// SetSnooze shows a snoozed entry in the panel.
func (m *DetailPanelModel) SetSnooze(key string, entry inbox.SnoozeEntry) {
	m.snoozeKey = key
	m.snooze = entry
	m.hasSnooze = true
	m.hasItem = false
	m.refreshContent()
}

// Clear empties the panel.
func (m *DetailPanelModel) Clear() {
	m.hasItem = false
	m.hasSnooze = false
	m.refreshContent()
}

// RepoForMeta returns the repository whose metadata the panel wants,
// or "" when metadata is already present or not applicable.
func (m DetailPanelModel) RepoForMeta() string {
	if !m.hasItem || m.item.RepoFullName == "" {
		return ""
	}
	if m.meta != nil && m.metaRepo == m.item.RepoFullName {
		return ""
	}
	return m.item.RepoFullName
}

// SetRepoMeta records fetched repository metadata.
func (m *DetailPanelModel) SetRepoMeta(repo string, meta *github.RepoMeta, err error) {
	m.metaRepo = repo
	m.meta = meta
	m.metaErr = err != nil
	m.refreshContent()
}

func (m *DetailPanelModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	innerW := width - 4
	innerH := height - 4
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	if !m.ready {
		m.viewport = viewport.New(innerW, innerH)
		m.ready = true
	} else {
		m.viewport.Width = innerW
		m.viewport.Height = innerH
	}
	m.refreshContent()
}

func (m *DetailPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

func (m DetailPanelModel) Update(msg tea.Msg) (DetailPanelModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DetailPanelModel) View() string {
	header := panelHeaderStyle(m.focused).Render(" Detail")

	var content string
	if m.ready {
		content = m.viewport.View()
	}

	sections := []string{header, content}
	if m.ready {
		if indicator := scrollIndicator(m.viewport, m.viewport.Width); indicator != "" {
			sections = append(sections, indicator)
		}
	}
	inner := lipgloss.JoinVertical(lipgloss.Left, sections...)

	style := panelStyle(m.focused, false, m.width-2, m.height-2)
	return style.Render(inner)
}

func (m *DetailPanelModel) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

func (m DetailPanelModel) renderContent() string {
	switch {
	case m.hasItem:
		return m.renderItem()
	case m.hasSnooze:
		return m.renderSnooze()
	default:
		return renderEmptyState("Nothing selected", "Move the cursor in the list")
	}
}

func (m DetailPanelModel) renderItem() string {
	var b strings.Builder

	b.WriteString(" " + detailTitleStyle.Render(m.item.Title))
	b.WriteString("\n\n")

	writeDetailRow(&b, "Repo", m.item.RepoFullName)
	if m.item.Number > 0 {
		writeDetailRow(&b, "Number", fmt.Sprintf("#%d", m.item.Number))
	}
	if m.item.User != "" {
		writeDetailRow(&b, "Author", m.item.User)
	}
	if m.item.Reason != "" {
		writeDetailRow(&b, "Reason", strings.ReplaceAll(m.item.Reason, "_", " "))
	}
	if !m.item.UpdatedAt.IsZero() {
		writeDetailRow(&b, "Updated", relTime(m.item.UpdatedAt, time.Now()))
	}

	if len(m.item.Labels) > 0 {
		chips := make([]string, len(m.item.Labels))
		for i, l := range m.item.Labels {
			chips[i] = labelChipStyle.Render(l)
		}
		b.WriteString("\n " + strings.Join(chips, " ") + "\n")
	}

	if m.meta != nil {
		b.WriteString("\n")
		if m.meta.Description != "" {
			b.WriteString(" " + detailValueStyle.Render(m.meta.Description) + "\n")
		}
		var bits []string
		if m.meta.Language != "" {
			bits = append(bits, detailLangStyle.Render(m.meta.Language))
		}
		if m.meta.Stars > 0 {
			bits = append(bits, detailStarStyle.Render(fmt.Sprintf("★ %d", m.meta.Stars)))
		}
		if len(bits) > 0 {
			b.WriteString(" " + strings.Join(bits, "  ") + "\n")
		}
	}

	if url := m.item.WebURL(); url != "" {
		b.WriteString("\n " + detailURLStyle.Render(url) + "\n")
	}

	return b.String()
}

func (m DetailPanelModel) renderSnooze() string {
	var b strings.Builder

	title := m.snooze.Title
	if title == "" {
		title = m.snoozeKey
	}
	b.WriteString(" " + detailTitleStyle.Render(title))
	b.WriteString("\n\n")

	writeDetailRow(&b, "Wakes", m.snooze.Until.Local().Format("Mon 2 Jan 15:04"))
	remaining := time.Until(m.snooze.Until)
	if remaining > 0 {
		writeDetailRow(&b, "In", formatRemaining(remaining))
	} else {
		writeDetailRow(&b, "In", "waking up…")
	}

	if m.snooze.URL != "" {
		b.WriteString("\n " + detailURLStyle.Render(m.snooze.URL) + "\n")
	}

	return b.String()
}

func writeDetailRow(b *strings.Builder, label, value string) {
	b.WriteString(" " + detailLabelStyle.Render(padRight(label, 9)) + detailValueStyle.Render(value) + "\n")
}
