// Package snooze runs the snooze lifecycle: create an entry, schedule a
// wake-up at its deadline, notify and clear on expiry. The scheduled set is
// rebuilt from storage on every map change so it always mirrors the
// un-expired entries, whatever path mutated them.
package snooze

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/shhac/prinbox/internal/alarm"
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

const (
	alarmPrefix   = "snooze_"
	expireTimeout = 10 * time.Second
)

// Duration maps a snooze choice to its duration. Unrecognized choices get
// the shortest bucket.
func Duration(choice string) time.Duration {
	switch choice {
	case "8h":
		return 8 * time.Hour
	case "1d":
		return 24 * time.Hour
	case "7d":
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}

// Choices lists the snooze buckets in menu order.
func Choices() []string {
	return []string{"1h", "8h", "1d", "7d"}
}

// Store is the persistence slice the manager needs.
type Store interface {
	Snoozes(ctx context.Context) (map[string]inbox.SnoozeEntry, error)
	GetSnooze(ctx context.Context, key string) (inbox.SnoozeEntry, bool, error)
	PutSnooze(ctx context.Context, key string, e inbox.SnoozeEntry) error
	DeleteSnooze(ctx context.Context, key string) (bool, error)
	ClearSnoozes(ctx context.Context) error
}

// Notifier raises the expiry notification.
type Notifier interface {
	Notify(title, body, url string) string
}

// Manager owns snooze mutations and their wake-ups.
type Manager struct {
	store    Store
	sched    *alarm.Scheduler
	notifier Notifier
	bus      *bus.Bus
	log      *zap.Logger
	now      func() time.Time
}

func NewManager(store Store, sched *alarm.Scheduler, notifier Notifier, b *bus.Bus, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    store,
		sched:    sched,
		notifier: notifier,
		bus:      b,
		log:      log,
		now:      time.Now,
	}
}

// Snooze suppresses an item until now plus the chosen bucket and returns the
// deadline.
func (m *Manager) Snooze(ctx context.Context, item github.Item, choice string) (time.Time, error) {
	until := m.now().Add(Duration(choice))
	entry := inbox.SnoozeEntry{Until: until, Title: item.Title, URL: item.WebURL()}
	if err := m.store.PutSnooze(ctx, item.Key(), entry); err != nil {
		return time.Time{}, err
	}
	m.afterChange(ctx)
	return until, nil
}

// Unsnooze removes one entry, reporting whether it existed.
func (m *Manager) Unsnooze(ctx context.Context, key string) (bool, error) {
	deleted, err := m.store.DeleteSnooze(ctx, key)
	if err != nil {
		return false, err
	}
	m.afterChange(ctx)
	return deleted, nil
}

// UnsnoozeAll removes every entry.
func (m *Manager) UnsnoozeAll(ctx context.Context) error {
	if err := m.store.ClearSnoozes(ctx); err != nil {
		return err
	}
	m.afterChange(ctx)
	return nil
}

// RescheduleAll rebuilds the wake-up set from storage: every previously
// scheduled snooze wake-up is cancelled and one is scheduled per entry whose
// deadline is still ahead. Safe to call at startup and after any mutation.
func (m *Manager) RescheduleAll(ctx context.Context) error {
	entries, err := m.store.Snoozes(ctx)
	if err != nil {
		return err
	}
	m.sched.ClearPrefix(alarmPrefix)
	now := m.now()
	for key, entry := range entries {
		if !entry.Active(now) {
			continue
		}
		key := key
		m.sched.Schedule(alarmName(key), entry.Until, func() { m.expire(key) })
	}
	return nil
}

func (m *Manager) afterChange(ctx context.Context) {
	if err := m.RescheduleAll(ctx); err != nil {
		m.log.Warn("snooze reschedule failed", zap.Error(err))
	}
	m.bus.Publish(bus.ReloadPRs)
	m.bus.Publish(bus.UpdateBadge)
}

// expire handles a fired wake-up. The entry is re-read first: it may have
// been removed or extended since scheduling, in which case this is a no-op.
func (m *Manager) expire(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	entry, ok, err := m.store.GetSnooze(ctx, key)
	if err != nil {
		m.log.Warn("snooze expiry read failed", zap.String("key", key), zap.Error(err))
		return
	}
	if !ok || entry.Until.After(m.now()) {
		return
	}

	if _, err := m.store.DeleteSnooze(ctx, key); err != nil {
		m.log.Warn("snooze expiry delete failed", zap.String("key", key), zap.Error(err))
	}

	title := entry.Title
	if title == "" {
		title = key
	}
	m.notifier.Notify("Snooze expired", title, entry.URL)
	m.log.Info("snooze expired", zap.String("key", key))

	m.afterChange(ctx)
}

func alarmName(key string) string {
	return alarmPrefix + url.QueryEscape(key)
}
