package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

// ItemListTab identifies which sub-tab is active.
type ItemListTab int

const (
	TabInbox ItemListTab = iota
	TabSnoozed
)

// snoozeSortOrder controls how the Snoozed tab is ordered.
type snoozeSortOrder int

const (
	sortSoonest snoozeSortOrder = iota
	sortLatest
	sortTitle
)

func (o snoozeSortOrder) String() string {
	switch o {
	case sortLatest:
		return "latest"
	case sortTitle:
		return "title"
	default:
		return "soonest"
	}
}

// loadState tracks the data-fetch lifecycle.
type loadState int

const (
	stateLoading loadState = iota
	stateLoaded
	stateError
)

// inboxEntry represents a notification in the Inbox tab.
type inboxEntry struct {
	item github.Item
}

func (e inboxEntry) FilterValue() string {
	return e.item.Title + " " + e.item.User + " " + e.item.RepoFullName
}
func (e inboxEntry) Title() string { return e.item.Title }
func (e inboxEntry) Description() string {
	repo := e.item.RepoFullName
	if e.item.Number > 0 {
		repo = fmt.Sprintf("%s#%d", repo, e.item.Number)
	}
	parts := []string{repo}
	if e.item.User != "" {
		parts = append(parts, e.item.User)
	}
	if !e.item.UpdatedAt.IsZero() {
		parts = append(parts, relTime(e.item.UpdatedAt, time.Now()))
	}
	return strings.Join(parts, " · ")
}

// snoozeEntryRow represents an entry in the Snoozed tab.
type snoozeEntryRow struct {
	key   string
	entry inbox.SnoozeEntry
}

func (r snoozeEntryRow) FilterValue() string {
	return r.entry.Title + " " + r.key
}
func (r snoozeEntryRow) Title() string {
	if r.entry.Title != "" {
		return r.entry.Title
	}
	return r.key
}
func (r snoozeEntryRow) Description() string {
	remaining := time.Until(r.entry.Until)
	if remaining <= 0 {
		return "waking up…"
	}
	return "wakes in " + formatRemaining(remaining)
}

// itemDelegate renders list rows with NEW / pin badges and distinct cursor
// and selected states. The "selected" item (shown in the detail panel) gets
// a ▸ marker prefix.
type itemDelegate struct {
	selectedKey *string // points to ItemListModel.selectedKey
}

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 1 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	if m.Width() <= 0 {
		return
	}

	var title, desc, rowKey string
	var badges string
	badgeWidth := 0

	switch row := item.(type) {
	case inboxEntry:
		title = row.Title()
		desc = row.Description()
		rowKey = row.item.Key()
		if row.item.Pinned {
			b := pinnedMarkerStyle.Render(" ⚲")
			badges += b
			badgeWidth += 2
		}
		if row.item.IsNew {
			b := " " + newBadgeStyle.Render("NEW")
			badges += b
			badgeWidth += 4
		}
		if row.item.Reason == github.ReasonAuthor || row.item.Reason == github.ReasonGraphQL {
			b := " " + mineBadgeStyle.Render("MINE")
			badges += b
			badgeWidth += 5
		}
	case snoozeEntryRow:
		title = row.Title()
		desc = snoozeRemainStyle.Render(row.Description())
		rowKey = row.key
	default:
		return
	}

	isCursor := index == m.Index()
	isActive := d.selectedKey != nil && *d.selectedKey != "" && rowKey == *d.selectedKey

	// Truncate text to fit — leave 2 chars for prefix (▸ or padding)
	textWidth := m.Width() - 4
	if textWidth < 1 {
		textWidth = 1
	}
	titleWidth := textWidth - badgeWidth
	if titleWidth < 1 {
		titleWidth = 1
	}
	title = ansi.Truncate(title, titleWidth, "…")
	desc = ansi.Truncate(desc, textWidth, "…")

	switch {
	case isCursor && isActive:
		// Cursor on the item shown in detail: left border + accent color
		titleStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("62")).
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Padding(0, 0, 0, 1)
		descStyle := titleStyle.Bold(false).Foreground(lipgloss.Color("99"))
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	case isCursor:
		// Cursor on another item: stock Bubbletea selected style
		titleStyle := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#F793FF", Dark: "#AD58B4"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}).
			Padding(0, 0, 0, 1)
		descStyle := titleStyle.Foreground(lipgloss.AdaptiveColor{Light: "#F793FF", Dark: "#AD58B4"})
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	case isActive:
		// Shown in detail without cursor: ▸ marker in accent color
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Render("▸ ")
		titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
		descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 0, 0, 2)
		title = marker + titleStyle.Render(title)
		desc = descStyle.Render(desc)
	default:
		titleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}).
			Padding(0, 0, 0, 2)
		descStyle := titleStyle.Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"})
		title = titleStyle.Render(title)
		desc = descStyle.Render(desc)
	}

	fmt.Fprintf(w, "%s%s\n%s", title, badges, desc)
}

// ItemListModel manages the notification list panel.
type ItemListModel struct {
	list      list.Model
	spinner   spinner.Model
	activeTab ItemListTab
	width     int
	height    int
	focused   bool

	// Key of the item currently shown in the detail panel ("" = none).
	// Heap-allocated so the delegate's pointer survives value copies.
	selectedKey *string

	// Data state
	state      loadState
	errMsg     string
	inboxRows  []list.Item
	snoozeRows []list.Item
	snoozeSort snoozeSortOrder

	// Pagination & empty-state diagnostics from the last reconciliation
	page             int
	hasNext          bool
	rawCount         int
	prCandidateCount int
	samples          []github.NotifSample
	usedFallback     bool
}

func NewItemListModel() ItemListModel {
	selected := new(string) // heap-allocated, shared with delegate

	delegate := itemDelegate{selectedKey: selected}

	l := list.New(nil, delegate, 0, 0)
	l.Title = ""
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.FilterInput.Placeholder = "title, author, repo…"
	l.DisableQuitKeybindings()

	return ItemListModel{
		list:        l,
		spinner:     newLoadingSpinner(),
		activeTab:   TabInbox,
		state:       stateLoading,
		selectedKey: selected,
		page:        1,
	}
}

// SetSelectedKey marks which item is currently shown in the detail panel.
func (m *ItemListModel) SetSelectedKey(key string) {
	*m.selectedKey = key
}

// SetLoading puts the panel into loading state.
func (m *ItemListModel) SetLoading() {
	m.state = stateLoading
	m.errMsg = ""
}

// SetError puts the panel into error state with a message.
func (m *ItemListModel) SetError(err string) {
	m.state = stateError
	m.errMsg = err
}

// SetItems replaces the Inbox tab with a fresh page-1 reconciliation result.
func (m *ItemListModel) SetItems(res *inbox.Result) {
	m.inboxRows = convertItems(res.Items)
	m.applyResultMeta(res, 1)
	m.refreshActiveTab()
}

// AppendItems appends a later page's items to the Inbox tab, skipping keys
// already present.
func (m *ItemListModel) AppendItems(res *inbox.Result, page int) {
	known := make(map[string]bool, len(m.inboxRows))
	for _, row := range m.inboxRows {
		if e, ok := row.(inboxEntry); ok {
			known[e.item.Key()] = true
		}
	}
	for _, it := range res.Items {
		if known[it.Key()] {
			continue
		}
		m.inboxRows = append(m.inboxRows, inboxEntry{item: it})
	}
	m.applyResultMeta(res, page)
	m.refreshActiveTab()
}

func (m *ItemListModel) applyResultMeta(res *inbox.Result, page int) {
	m.state = stateLoaded
	m.errMsg = ""
	m.page = page
	m.hasNext = res.HasNext
	m.rawCount = res.RawCount
	m.prCandidateCount = res.PRCandidateCount
	m.samples = res.Samples
	m.usedFallback = res.UsedFallback
}

// SetSnoozes replaces the Snoozed tab contents.
func (m *ItemListModel) SetSnoozes(entries map[string]inbox.SnoozeEntry) {
	rows := make([]snoozeEntryRow, 0, len(entries))
	for k, e := range entries {
		rows = append(rows, snoozeEntryRow{key: k, entry: e})
	}
	m.snoozeRows = sortSnoozeRows(rows, m.snoozeSort)
	m.refreshActiveTab()
}

// sortSnoozeRows orders snooze rows by the given sort order.
func sortSnoozeRows(rows []snoozeEntryRow, order snoozeSortOrder) []list.Item {
	sort.SliceStable(rows, func(i, j int) bool {
		switch order {
		case sortLatest:
			return rows[i].entry.Until.After(rows[j].entry.Until)
		case sortTitle:
			return strings.ToLower(rows[i].Title()) < strings.ToLower(rows[j].Title())
		default:
			return rows[i].entry.Until.Before(rows[j].entry.Until)
		}
	})
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return items
}

// refreshActiveTab pushes the active tab's dataset into the inner list.
func (m *ItemListModel) refreshActiveTab() {
	if m.state != stateLoaded {
		return
	}
	switch m.activeTab {
	case TabInbox:
		m.list.SetItems(m.inboxRows)
	case TabSnoozed:
		m.list.SetItems(m.snoozeRows)
	}
}

// ActiveTab returns the currently visible tab.
func (m ItemListModel) ActiveTab() ItemListTab {
	return m.activeTab
}

// Page returns the highest notification page loaded so far.
func (m ItemListModel) Page() int {
	return m.page
}

// HasNext reports whether another notification page is available.
func (m ItemListModel) HasNext() bool {
	return m.hasNext
}

// InboxItems returns the items currently loaded in the Inbox tab.
func (m ItemListModel) InboxItems() []github.Item {
	items := make([]github.Item, 0, len(m.inboxRows))
	for _, row := range m.inboxRows {
		if e, ok := row.(inboxEntry); ok {
			items = append(items, e.item)
		}
	}
	return items
}

// SelectedInboxItem returns the item under the cursor on the Inbox tab.
func (m ItemListModel) SelectedInboxItem() (github.Item, bool) {
	if m.activeTab != TabInbox {
		return github.Item{}, false
	}
	e, ok := m.list.SelectedItem().(inboxEntry)
	if !ok {
		return github.Item{}, false
	}
	return e.item, true
}

// SelectedSnooze returns the entry under the cursor on the Snoozed tab.
func (m ItemListModel) SelectedSnooze() (string, inbox.SnoozeEntry, bool) {
	if m.activeTab != TabSnoozed {
		return "", inbox.SnoozeEntry{}, false
	}
	r, ok := m.list.SelectedItem().(snoozeEntryRow)
	if !ok {
		return "", inbox.SnoozeEntry{}, false
	}
	return r.key, r.entry, true
}

// IsFiltering returns true when the user is actively typing in the filter input.
func (m ItemListModel) IsFiltering() bool {
	return m.list.FilterState() == list.Filtering
}

// HasActiveFilter returns true when a filter is being typed or has been applied.
func (m ItemListModel) HasActiveFilter() bool {
	fs := m.list.FilterState()
	return fs == list.Filtering || fs == list.FilterApplied
}

func (m ItemListModel) Update(msg tea.Msg) (ItemListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state == stateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.KeyMsg:
		// While filtering, let the inner list handle all keys —
		// except Enter on empty input, which should clear the filter.
		if m.IsFiltering() {
			if msg.Type == tea.KeyEnter && m.list.FilterInput.Value() == "" {
				m.list.ResetFilter()
				return m, nil
			}
			break
		}
		switch {
		case key.Matches(msg, ItemListKeys.PrevTab):
			if m.activeTab == TabSnoozed {
				m.activeTab = TabInbox
				m.list.ResetFilter()
				m.refreshActiveTab()
			}
			return m, nil
		case key.Matches(msg, ItemListKeys.NextTab):
			if m.activeTab == TabInbox {
				m.activeTab = TabSnoozed
				m.list.ResetFilter()
				m.refreshActiveTab()
			}
			return m, nil
		case key.Matches(msg, ItemListKeys.Open):
			if item, ok := m.SelectedInboxItem(); ok {
				return m, func() tea.Msg { return ItemOpenRequestMsg{Item: item} }
			}
			if _, entry, ok := m.SelectedSnooze(); ok && entry.URL != "" {
				it := github.Item{Title: entry.Title, HTMLURL: entry.URL}
				return m, func() tea.Msg { return ItemOpenRequestMsg{Item: it} }
			}
		case key.Matches(msg, ItemListKeys.Pin):
			if item, ok := m.SelectedInboxItem(); ok {
				return m, func() tea.Msg { return ItemPinRequestMsg{Item: item} }
			}
		case key.Matches(msg, ItemListKeys.Snooze):
			if item, ok := m.SelectedInboxItem(); ok {
				return m, func() tea.Msg { return ItemSnoozeRequestMsg{Item: item} }
			}
		case key.Matches(msg, ItemListKeys.MarkRead):
			if item, ok := m.SelectedInboxItem(); ok && item.ThreadID != "" {
				return m, func() tea.Msg { return ItemMarkReadRequestMsg{Item: item} }
			}
		case key.Matches(msg, ItemListKeys.LoadMore):
			if m.activeTab == TabInbox && m.hasNext {
				next := m.page + 1
				return m, func() tea.Msg { return LoadMoreRequestMsg{Page: next} }
			}
		case key.Matches(msg, ItemListKeys.Unsnooze):
			if k, _, ok := m.SelectedSnooze(); ok {
				return m, func() tea.Msg { return UnsnoozeRequestMsg{Key: k} }
			}
		case key.Matches(msg, ItemListKeys.UnsnoozeAll):
			if m.activeTab == TabSnoozed && len(m.snoozeRows) > 0 {
				return m, func() tea.Msg { return UnsnoozeAllRequestMsg{} }
			}
		case key.Matches(msg, ItemListKeys.SortCycle):
			if m.activeTab == TabSnoozed {
				m.snoozeSort = (m.snoozeSort + 1) % 3
				rows := make([]snoozeEntryRow, 0, len(m.snoozeRows))
				for _, it := range m.snoozeRows {
					if r, ok := it.(snoozeEntryRow); ok {
						rows = append(rows, r)
					}
				}
				m.snoozeRows = sortSnoozeRows(rows, m.snoozeSort)
				m.refreshActiveTab()
			}
			return m, nil
		}
	}

	// Only delegate to the inner list when we have data
	if m.state == stateLoaded {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *ItemListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Account for borders (2), header (2), footer (1), padding
	innerWidth := width - 4
	innerHeight := height - 6
	if innerWidth < 1 {
		innerWidth = 1
	}
	if innerHeight < 1 {
		innerHeight = 1
	}
	m.list.SetSize(innerWidth, innerHeight)
}

func (m *ItemListModel) SetFocused(focused bool) {
	m.focused = focused
}

func (m ItemListModel) View() string {
	header := m.renderTabs()

	var content string
	switch m.state {
	case stateLoading:
		content = m.renderLoading()
	case stateError:
		content = m.renderError()
	case stateLoaded:
		if m.activeTabEmpty() {
			content = m.renderEmpty()
		} else {
			content = m.list.View()
		}
	}

	sections := []string{header}
	if m.HasActiveFilter() && !m.IsFiltering() {
		sections = append(sections, m.renderFilterBadge())
	}
	sections = append(sections, content)
	if footer := m.renderFooter(); footer != "" {
		sections = append(sections, footer)
	}
	inner := lipgloss.JoinVertical(lipgloss.Left, sections...)

	style := panelStyle(m.focused, false, m.width-2, m.height-2)
	return style.Render(inner)
}

func (m ItemListModel) renderTabs() string {
	var tabs []string

	inboxLabel := "Inbox"
	snoozedLabel := "Snoozed"

	if m.state == stateLoaded {
		inboxLabel = fmt.Sprintf("Inbox (%d)", len(m.inboxRows))
		snoozedLabel = fmt.Sprintf("Snoozed (%d)", len(m.snoozeRows))
	}

	if m.activeTab == TabInbox {
		tabs = append(tabs, activeTabStyle().Render(inboxLabel))
		tabs = append(tabs, inactiveTabStyle().Render(snoozedLabel))
	} else {
		tabs = append(tabs, inactiveTabStyle().Render(inboxLabel))
		tabs = append(tabs, activeTabStyle().Render(snoozedLabel))
	}

	return strings.Join(tabs, " ")
}

func (m ItemListModel) renderFooter() string {
	if m.state != stateLoaded {
		return ""
	}
	switch m.activeTab {
	case TabInbox:
		if m.hasNext {
			return itemMetaStyle.Render(fmt.Sprintf(" [L] load page %d", m.page+1))
		}
	case TabSnoozed:
		if len(m.snoozeRows) > 0 {
			return snoozeSortStyle.Render(fmt.Sprintf(" sort: %s · [s] cycle [u] wake [U] wake all", m.snoozeSort))
		}
	}
	return ""
}

func (m ItemListModel) renderFilterBadge() string {
	badge := lipgloss.NewStyle().
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62")).
		Bold(true).
		Padding(0, 1).
		Render("FILTERED")
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Render(" [Esc]clear [/]edit")
	return badge + hint
}

func (m ItemListModel) renderLoading() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(1, 2).
		Render(m.spinner.View() + " Loading notifications...")
}

func (m ItemListModel) renderError() string {
	return renderErrorWithHint(formatUserError(m.errMsg), "Press r to retry")
}

// activeTabEmpty returns true if the current tab has zero items after loading.
func (m ItemListModel) activeTabEmpty() bool {
	switch m.activeTab {
	case TabInbox:
		return len(m.inboxRows) == 0
	case TabSnoozed:
		return len(m.snoozeRows) == 0
	}
	return false
}

func (m ItemListModel) renderEmpty() string {
	switch m.activeTab {
	case TabInbox:
		return m.renderEmptyInbox()
	case TabSnoozed:
		return renderEmptyState("Nothing snoozed", "Press z on an inbox item to snooze it")
	}
	return ""
}

// renderEmptyInbox shows what the feed contained so an empty inbox is
// explainable rather than silent.
func (m ItemListModel) renderEmptyInbox() string {
	base := renderEmptyState("No PR notifications", "Review-requested PRs land here automatically")

	var b strings.Builder
	b.WriteString(diagHeaderStyle.Render("  Last fetch"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", diagRowStyle.Render(fmt.Sprintf("  %d notifications · %d looked like PRs", m.rawCount, m.prCandidateCount)))
	if m.rawCount == 0 && !m.usedFallback {
		b.WriteString(diagRowStyle.Render("  private-repo PRs need a token with the repo scope"))
		b.WriteString("\n")
	}
	if m.usedFallback {
		b.WriteString(diagRowStyle.Render("  shown items came from the authored-PR fallback"))
		b.WriteString("\n")
	}
	for i, s := range m.samples {
		if i >= 3 {
			break
		}
		title := ansi.Truncate(s.Title, 40, "…")
		fmt.Fprintf(&b, "%s\n", diagRowStyle.Render(fmt.Sprintf("  · [%s] %s", s.Type, title)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, base, "", b.String())
}

// convertItems converts github.Item slice to list.Item slice.
func convertItems(items []github.Item) []list.Item {
	rows := make([]list.Item, len(items))
	for i, it := range items {
		rows[i] = inboxEntry{item: it}
	}
	return rows
}

// relTime renders a compact relative timestamp like "3h ago".
func relTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatRemaining renders a compact duration like "7h 59m" or "6d 23h".
func formatRemaining(d time.Duration) string {
	if d < time.Minute {
		return "under a minute"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
