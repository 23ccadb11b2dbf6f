package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/config"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
	"go.uber.org/zap"
)

const flashDuration = 3 * time.Second

// Deps carries the services the UI depends on.
type Deps struct {
	Inbox   InboxService
	Store   ItemStore
	Threads ThreadService
	Snoozer SnoozeService
	Events  <-chan bus.Event
	Config  *config.Config
	Log     *zap.Logger

	// Rebuild produces a fresh InboxService after the filters change.
	Rebuild func(cfg *config.Config) InboxService
}

// App is the root Bubbletea model for the notification inbox.
type App struct {
	// Panel models
	itemList  ItemListModel
	detail    DetailPanelModel
	statusBar StatusBarModel

	// Overlays
	helpOverlay HelpOverlayModel
	settings    SettingsModel

	// Services
	inboxSvc InboxService
	store    ItemStore
	threads  ThreadService
	snoozer  SnoozeService
	events   <-chan bus.Event
	rebuild  func(cfg *config.Config) InboxService

	appConfig *config.Config
	log       *zap.Logger

	// Layout state
	focused       Panel
	width         int
	height        int
	detailVisible bool
	initialized   bool

	// Mode
	mode AppMode

	// Item awaiting a snooze duration choice (valid while mode == ModeSnooze).
	snoozeTarget github.Item

	refreshInterval time.Duration
	snoozeTicking   bool
}

// NewApp creates the root model.
func NewApp(deps Deps) App {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return App{
		itemList:        NewItemListModel(),
		detail:          NewDetailPanelModel(),
		statusBar:       NewStatusBarModel(),
		helpOverlay:     NewHelpOverlayModel(),
		settings:        NewSettingsModel(),
		inboxSvc:        deps.Inbox,
		store:           deps.Store,
		threads:         deps.Threads,
		snoozer:         deps.Snoozer,
		events:          deps.Events,
		rebuild:         deps.Rebuild,
		appConfig:       deps.Config,
		log:             log,
		focused:         PanelList,
		detailVisible:   true,
		mode:            ModeNavigation,
		refreshInterval: deps.Config.RefreshInterval(),
	}
}

func (m App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		runReconcilerCmd(m.inboxSvc, 1),
		loadSnoozesCmd(m.store),
		m.itemList.spinner.Tick,
	}
	if m.events != nil {
		cmds = append(cmds, listenBusCmd(m.events))
	}
	if m.refreshInterval > 0 {
		cmds = append(cmds, refreshTickCmd(m.refreshInterval))
	}
	return tea.Batch(cmds...)
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case InboxLoadedMsg:
		return m.handleInboxLoaded(msg)

	case InboxErrorMsg:
		m.itemList.SetError(msg.Err.Error())
		return m, nil

	case SnoozesLoadedMsg:
		if msg.Err != nil {
			m.log.Warn("snooze read failed", zap.Error(msg.Err))
			return m, nil
		}
		m.itemList.SetSnoozes(msg.Entries)
		return m.syncDetail(nil)

	case BadgeRefreshMsg:
		m.statusBar.SetBadge(inbox.BadgeText(msg.Count))
		m.itemList.SetSnoozes(msg.Entries)
		return m.syncDetail(nil)

	case busEventMsg:
		return m.handleBusEvent(msg.Event)

	case refreshTickMsg:
		cmds := []tea.Cmd{runReconcilerCmd(m.inboxSvc, 1)}
		if m.refreshInterval > 0 {
			cmds = append(cmds, refreshTickCmd(m.refreshInterval))
		}
		return m, tea.Batch(cmds...)

	case snoozeTickMsg:
		if m.itemList.ActiveTab() == TabSnoozed {
			return m, snoozeTickCmd()
		}
		m.snoozeTicking = false
		return m, nil

	case ItemOpenRequestMsg:
		return m, tea.Batch(
			openItemCmd(m.store, msg.Item),
			markThreadReadCmd(m.threads, msg.Item),
		)

	case ItemPinRequestMsg:
		return m, togglePinCmd(m.store, msg.Item.Key())

	case ItemSnoozeRequestMsg:
		m.mode = ModeSnooze
		m.snoozeTarget = msg.Item
		m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
		return m, nil

	case ItemMarkReadRequestMsg:
		return m, markThreadReadCmd(m.threads, msg.Item)

	case LoadMoreRequestMsg:
		flash := m.statusBar.SetTemporaryMessage(fmt.Sprintf("Loading page %d…", msg.Page), flashDuration)
		return m, tea.Batch(runReconcilerCmd(m.inboxSvc, msg.Page), flash)

	case UnsnoozeRequestMsg:
		return m, unsnoozeCmd(m.snoozer, msg.Key)

	case UnsnoozeAllRequestMsg:
		return m, unsnoozeAllCmd(m.snoozer)

	case ItemOpenedMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Open failed: "+msg.Err.Error(), flashDuration)
		}
		return m, tea.Batch(
			m.statusBar.SetTemporaryMessage("Opened in browser", flashDuration),
			runReconcilerCmd(m.inboxSvc, 1),
		)

	case MarkReadDoneMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Mark read failed: "+msg.Err.Error(), flashDuration)
		}
		return m, runReconcilerCmd(m.inboxSvc, 1)

	case PinToggledMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Pin failed: "+msg.Err.Error(), flashDuration)
		}
		return m, runReconcilerCmd(m.inboxSvc, 1)

	case SnoozeDoneMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Snooze failed: "+msg.Err.Error(), flashDuration)
		}
		return m, tea.Batch(
			m.statusBar.SetTemporaryMessage("Snoozed for "+msg.Choice, flashDuration),
			runReconcilerCmd(m.inboxSvc, 1),
			loadSnoozesCmd(m.store),
		)

	case UnsnoozeDoneMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Unsnooze failed: "+msg.Err.Error(), flashDuration)
		}
		return m, tea.Batch(runReconcilerCmd(m.inboxSvc, 1), loadSnoozesCmd(m.store))

	case UnsnoozeAllDoneMsg:
		if msg.Err != nil {
			return m, m.statusBar.SetTemporaryMessage("Unsnooze failed: "+msg.Err.Error(), flashDuration)
		}
		return m, tea.Batch(
			m.statusBar.SetTemporaryMessage("All items awake", flashDuration),
			runReconcilerCmd(m.inboxSvc, 1),
			loadSnoozesCmd(m.store),
		)

	case RepoMetaLoadedMsg:
		m.detail.SetRepoMeta(msg.Repo, msg.Meta, msg.Err)
		return m, nil

	case HelpClosedMsg, SettingsClosedMsg:
		m.mode = ModeNavigation
		m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
		return m, nil

	case ConfigChangedMsg:
		return m.handleConfigChanged()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.itemList, cmd = m.itemList.Update(msg)
		return m, cmd

	case StatusBarClearMsg:
		m.statusBar.ClearIfSeqMatch(msg.Seq)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// handleWindowSize processes terminal resize events.
func (m App) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.helpOverlay.SetSize(m.width, m.height)
	m.settings.SetSize(m.width, m.height)
	if !m.initialized {
		m.initialized = true
		if m.width < collapseThreshold {
			m.detailVisible = false
			m.focused = PanelList
		}
	}
	m.recalcLayout()
	return m, nil
}

func (m App) handleInboxLoaded(msg InboxLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Page <= 1 {
		m.itemList.SetItems(msg.Result)
	} else {
		m.itemList.AppendItems(msg.Result, msg.Page)
	}
	m.statusBar.SetBadge(inbox.BadgeText(msg.Result.Badge))
	return m.syncDetail(nil)
}

// handleBusEvent reacts to background-service broadcasts.
func (m App) handleBusEvent(ev bus.Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenBusCmd(m.events)}
	switch ev {
	case bus.ReloadPRs:
		cmds = append(cmds, runReconcilerCmd(m.inboxSvc, 1), loadSnoozesCmd(m.store))
	case bus.UpdateBadge:
		cmds = append(cmds, refreshBadgeCmd(m.store))
	}
	return m, tea.Batch(cmds...)
}

// handleConfigChanged persists edited settings and rebuilds the reconciler
// with the new filters.
func (m App) handleConfigChanged() (tea.Model, tea.Cmd) {
	cfg := m.settings.Config()
	if cfg == nil {
		return m, nil
	}
	*m.appConfig = *cfg
	if err := config.Save(m.appConfig); err != nil {
		m.log.Warn("config save failed", zap.Error(err))
		return m, m.statusBar.SetTemporaryMessage("Settings not saved: "+err.Error(), flashDuration)
	}
	if m.rebuild != nil {
		m.inboxSvc = m.rebuild(m.appConfig)
	}
	m.refreshInterval = m.appConfig.RefreshInterval()
	m.itemList.SetLoading()
	return m, tea.Batch(
		m.statusBar.SetTemporaryMessage("Settings saved", flashDuration),
		runReconcilerCmd(m.inboxSvc, 1),
		m.itemList.spinner.Tick,
	)
}

func (m App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays swallow all keys while visible.
	if m.helpOverlay.IsVisible() {
		var cmd tea.Cmd
		m.helpOverlay, cmd = m.helpOverlay.Update(msg)
		return m, cmd
	}
	if m.settings.IsVisible() {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	}

	// Snooze duration picker.
	if m.mode == ModeSnooze {
		if msg.String() == "esc" {
			m.mode = ModeNavigation
			m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
			return m, nil
		}
		if choice := snoozeChoiceForKey(msg.String()); choice != "" {
			target := m.snoozeTarget
			m.mode = ModeNavigation
			m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
			return m, snoozeItemCmd(m.snoozer, target, choice)
		}
		return m, nil
	}

	// While the list filter input is active, every key belongs to the list.
	if m.focused == PanelList && m.itemList.IsFiltering() {
		var cmd tea.Cmd
		m.itemList, cmd = m.itemList.Update(msg)
		return m.syncDetail(cmd)
	}

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, GlobalKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, GlobalKeys.Help):
		m.mode = ModeOverlay
		m.helpOverlay.Show(m.itemList.ActiveTab())
		m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
		return m, nil

	case key.Matches(msg, GlobalKeys.Settings):
		m.mode = ModeOverlay
		m.settings.Show(m.appConfig)
		m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
		return m, nil

	case key.Matches(msg, GlobalKeys.Tab), key.Matches(msg, GlobalKeys.ShiftTab):
		if m.detailVisible {
			m.focusPanel(m.focused.Next())
		}
		return m, nil

	case key.Matches(msg, GlobalKeys.ToggleDetail):
		m.detailVisible = !m.detailVisible
		if !m.detailVisible {
			m.focusPanel(PanelList)
		}
		m.recalcLayout()
		return m, nil

	case key.Matches(msg, GlobalKeys.Refresh):
		m.itemList.SetLoading()
		return m, tea.Batch(
			runReconcilerCmd(m.inboxSvc, 1),
			loadSnoozesCmd(m.store),
			m.itemList.spinner.Tick,
		)

	case key.Matches(msg, GlobalKeys.OpenBrowser):
		if item, ok := m.itemList.SelectedInboxItem(); ok {
			return m, tea.Batch(
				openItemCmd(m.store, item),
				markThreadReadCmd(m.threads, item),
			)
		}
		if _, entry, ok := m.itemList.SelectedSnooze(); ok && entry.URL != "" {
			it := github.Item{Title: entry.Title, HTMLURL: entry.URL}
			return m, openItemCmd(m.store, it)
		}
		return m, nil
	}

	// Route to the focused panel.
	switch m.focused {
	case PanelList:
		var cmd tea.Cmd
		m.itemList, cmd = m.itemList.Update(msg)
		return m.syncDetail(cmd)
	case PanelDetail:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	return m, nil
}

// syncDetail mirrors the list selection into the detail panel and kicks off
// a repo metadata fetch when needed.
func (m App) syncDetail(prev tea.Cmd) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{prev}

	if item, ok := m.itemList.SelectedInboxItem(); ok {
		m.itemList.SetSelectedKey(item.Key())
		m.detail.SetItem(item)
	} else if k, entry, ok := m.itemList.SelectedSnooze(); ok {
		m.itemList.SetSelectedKey(k)
		m.detail.SetSnooze(k, entry)
	} else {
		m.itemList.SetSelectedKey("")
		m.detail.Clear()
	}

	if repo := m.detail.RepoForMeta(); repo != "" {
		cmds = append(cmds, fetchRepoMetaCmd(m.store, m.threads, repo))
	}

	if m.itemList.ActiveTab() == TabSnoozed && !m.snoozeTicking {
		m.snoozeTicking = true
		cmds = append(cmds, snoozeTickCmd())
	}

	return m, tea.Batch(cmds...)
}

// focusPanel sets focus to the given panel.
func (m *App) focusPanel(p Panel) {
	if p == PanelDetail && !m.detailVisible {
		p = PanelList
	}
	m.focused = p
	m.itemList.SetFocused(p == PanelList)
	m.detail.SetFocused(p == PanelDetail)
	m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
}

func (m *App) recalcLayout() {
	sizes := CalculatePanelSizes(m.width, m.height, m.detailVisible)
	if sizes.TooSmall {
		return
	}

	m.itemList.SetSize(sizes.ListWidth, sizes.PanelHeight)
	if sizes.DetailWidth > 0 {
		m.detail.SetSize(sizes.DetailWidth, sizes.PanelHeight)
	} else if m.focused == PanelDetail {
		m.focusPanel(PanelList)
	}
	m.statusBar.SetWidth(m.width)
	m.statusBar.SetState(m.focused, m.mode, m.itemList.ActiveTab())
	m.itemList.SetFocused(m.focused == PanelList)
	m.detail.SetFocused(m.focused == PanelDetail)
}

func (m App) View() string {
	sizes := CalculatePanelSizes(m.width, m.height, m.detailVisible)

	if sizes.TooSmall {
		msg := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Render("Terminal too small. Please resize to at least 60×6.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}

	var panelViews []string
	panelViews = append(panelViews, m.itemList.View())
	if sizes.DetailWidth > 0 {
		panelViews = append(panelViews, m.detail.View())
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top, panelViews...)
	m.statusBar.SetFiltering(m.focused == PanelList && m.itemList.IsFiltering())
	bar := m.statusBar.View()

	base := lipgloss.JoinVertical(lipgloss.Left, panels, bar)

	if m.helpOverlay.IsVisible() {
		return m.helpOverlay.View()
	}
	if m.settings.IsVisible() {
		return m.settings.View()
	}

	return base
}
