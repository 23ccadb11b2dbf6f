package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
	"github.com/shhac/prinbox/internal/notify"
)

// runReconcilerCmd returns a command that runs a full reconciliation pass
// for the given page.
func runReconcilerCmd(svc InboxService, page int) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Run(context.Background(), page)
		if err != nil {
			return InboxErrorMsg{Err: err}
		}
		return InboxLoadedMsg{Page: page, Result: res}
	}
}

// loadSnoozesCmd returns a command that reads the snooze table.
func loadSnoozesCmd(st ItemStore) tea.Cmd {
	return func() tea.Msg {
		entries, err := st.Snoozes(context.Background())
		return SnoozesLoadedMsg{Entries: entries, Err: err}
	}
}

// openItemCmd returns a command that opens an item in the browser and marks
// it seen locally. The upstream thread is marked read separately so a flaky
// GitHub call never blocks the browser from opening.
func openItemCmd(st ItemStore, item github.Item) tea.Cmd {
	return func() tea.Msg {
		key := item.Key()
		if err := st.MarkSeen(context.Background(), key); err != nil {
			return ItemOpenedMsg{Key: key, Err: err}
		}
		_ = notify.OpenBrowser(item.WebURL())
		return ItemOpenedMsg{Key: key}
	}
}

// markThreadReadCmd returns a command that marks the item's notification
// thread read on GitHub. No-op for items without a thread (search-sourced).
func markThreadReadCmd(threads ThreadService, item github.Item) tea.Cmd {
	return func() tea.Msg {
		if item.ThreadID == "" {
			return nil
		}
		err := threads.MarkThreadRead(context.Background(), item.ThreadID)
		return MarkReadDoneMsg{Key: item.Key(), Err: err}
	}
}

// togglePinCmd returns a command that toggles an item's pin.
func togglePinCmd(st ItemStore, key string) tea.Cmd {
	return func() tea.Msg {
		_, err := st.TogglePin(context.Background(), key)
		return PinToggledMsg{Key: key, Err: err}
	}
}

// snoozeItemCmd returns a command that snoozes an item for the chosen bucket.
func snoozeItemCmd(svc SnoozeService, item github.Item, choice string) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.Snooze(context.Background(), item, choice)
		return SnoozeDoneMsg{Key: item.Key(), Choice: choice, Err: err}
	}
}

// unsnoozeCmd returns a command that wakes a single snoozed item.
func unsnoozeCmd(svc SnoozeService, key string) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.Unsnooze(context.Background(), key)
		return UnsnoozeDoneMsg{Key: key, Err: err}
	}
}

// unsnoozeAllCmd returns a command that wakes every snoozed item.
func unsnoozeAllCmd(svc SnoozeService) tea.Cmd {
	return func() tea.Msg {
		return UnsnoozeAllDoneMsg{Err: svc.UnsnoozeAll(context.Background())}
	}
}

// fetchRepoMetaCmd returns a command that loads repository metadata for the
// detail panel, reading through the store cache.
func fetchRepoMetaCmd(st ItemStore, threads ThreadService, repo string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if meta, ok, err := st.RepoMeta(ctx, repo); err == nil && ok {
			return RepoMetaLoadedMsg{Repo: repo, Meta: &meta}
		}
		meta, err := threads.GetRepoMeta(ctx, repo)
		if err != nil {
			return RepoMetaLoadedMsg{Repo: repo, Err: err}
		}
		// Cache write failure is non-fatal.
		_ = st.SaveRepoMeta(ctx, repo, *meta)
		return RepoMetaLoadedMsg{Repo: repo, Meta: meta}
	}
}

// refreshBadgeCmd recomputes the unseen badge from the store without hitting
// the network. The count runs over the persisted page-1 cache, like the
// reconciler's. Errors are silently dropped; the next reconciliation corrects it.
func refreshBadgeCmd(st ItemStore) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cache, _, err := st.PRCache(ctx)
		if err != nil {
			return nil
		}
		seen, err := st.SeenKeys(ctx)
		if err != nil {
			return nil
		}
		snoozes, err := st.Snoozes(ctx)
		if err != nil {
			return nil
		}
		return BadgeRefreshMsg{
			Count:   inbox.BadgeCount(cache.Items, seen, snoozes, time.Now()),
			Entries: snoozes,
		}
	}
}

// listenBusCmd returns a command that waits for the next background event.
func listenBusCmd(ch <-chan bus.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return busEventMsg{Event: ev}
	}
}

// refreshTickCmd returns a command that fires after the foreground refresh interval.
func refreshTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(_ time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// snoozeTickCmd drives the once-a-second countdown refresh on the Snoozed tab.
func snoozeTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return snoozeTickMsg{}
	})
}

// snoozeChoiceForKey maps a duration-picker key to a snooze bucket.
// Returns "" for keys that are not a bucket choice.
func snoozeChoiceForKey(k string) string {
	switch k {
	case "1":
		return "1h"
	case "2":
		return "8h"
	case "3":
		return "1d"
	case "4":
		return "7d"
	default:
		return ""
	}
}
