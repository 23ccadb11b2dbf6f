package snooze

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/prinbox/internal/alarm"
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

type memStore struct {
	mu      sync.Mutex
	entries map[string]inbox.SnoozeEntry
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]inbox.SnoozeEntry)}
}

func (s *memStore) Snoozes(context.Context) (map[string]inbox.SnoozeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]inbox.SnoozeEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) GetSnooze(_ context.Context, key string) (inbox.SnoozeEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *memStore) PutSnooze(_ context.Context, key string, e inbox.SnoozeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *memStore) DeleteSnooze(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok, nil
}

func (s *memStore) ClearSnoozes(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]inbox.SnoozeEntry)
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	urls  []string
	fired chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{fired: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(title, body, url string) string {
	n.mu.Lock()
	n.calls = append(n.calls, body)
	n.urls = append(n.urls, url)
	n.mu.Unlock()
	n.fired <- struct{}{}
	return "id"
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func newTestManager(t *testing.T) (*Manager, *memStore, *recordingNotifier, *alarm.Scheduler) {
	t.Helper()
	store := newMemStore()
	sched := alarm.NewScheduler()
	t.Cleanup(sched.Stop)
	notifier := newRecordingNotifier()
	m := NewManager(store, sched, notifier, bus.New(), nil)
	return m, store, notifier, sched
}

func TestDuration(t *testing.T) {
	tests := []struct {
		choice string
		want   time.Duration
	}{
		{"1h", time.Hour},
		{"8h", 8 * time.Hour},
		{"1d", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"", time.Hour},
		{"2w", time.Hour},
	}
	for _, tt := range tests {
		if got := Duration(tt.choice); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.choice, got, tt.want)
		}
	}
}

func TestSnoozeCreatesEntryAndWakeup(t *testing.T) {
	m, store, _, sched := newTestManager(t)
	ctx := context.Background()

	item := github.Item{Title: "Add frobnicate", HTMLURL: "https://github.com/a/1"}
	until, err := m.Snooze(ctx, item, "8h")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), until, time.Minute)

	entry, ok, err := store.GetSnooze(ctx, "https://github.com/a/1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Add frobnicate", entry.Title)
	assert.Equal(t, "https://github.com/a/1", entry.URL)

	assert.Len(t, sched.Pending(), 1)
}

func TestRescheduleAllMirrorsFutureEntries(t *testing.T) {
	m, store, _, sched := newTestManager(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.PutSnooze(ctx, "k1", inbox.SnoozeEntry{Until: now.Add(time.Hour)}))
	require.NoError(t, store.PutSnooze(ctx, "k2", inbox.SnoozeEntry{Until: now.Add(2 * time.Hour)}))
	require.NoError(t, store.PutSnooze(ctx, "k3", inbox.SnoozeEntry{Until: now.Add(-time.Hour)}))

	// A stale wake-up from an earlier state must be cleared.
	sched.Schedule("snooze_stale", now.Add(time.Hour), func() {})

	require.NoError(t, m.RescheduleAll(ctx))

	pending := sched.Pending()
	require.Len(t, pending, 2)
	assert.True(t, pending[alarmName("k1")].Equal(now.Add(time.Hour)))
	assert.True(t, pending[alarmName("k2")].Equal(now.Add(2*time.Hour)))
}

func TestExpiryDeletesAndNotifies(t *testing.T) {
	m, store, notifier, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, store.PutSnooze(ctx, "https://github.com/a/1", inbox.SnoozeEntry{
		Until: time.Now().Add(30 * time.Millisecond),
		Title: "Add frobnicate",
		URL:   "https://github.com/a/1",
	}))
	require.NoError(t, m.RescheduleAll(ctx))

	select {
	case <-notifier.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry never notified")
	}

	_, ok, err := store.GetSnooze(ctx, "https://github.com/a/1")
	require.NoError(t, err)
	assert.False(t, ok, "expired entry should be removed")
	assert.Equal(t, []string{"https://github.com/a/1"}, notifier.urls)
}

func TestExpiryOfRemovedEntryIsNoop(t *testing.T) {
	m, _, notifier, _ := newTestManager(t)
	m.expire("never-stored")
	assert.Equal(t, 0, notifier.count())
}

func TestExpiryOfExtendedEntryIsNoop(t *testing.T) {
	m, store, notifier, _ := newTestManager(t)
	ctx := context.Background()

	// The wake-up fires but the entry was extended in the meantime.
	require.NoError(t, store.PutSnooze(ctx, "k1", inbox.SnoozeEntry{Until: time.Now().Add(time.Hour)}))
	m.expire("k1")

	assert.Equal(t, 0, notifier.count())
	_, ok, _ := store.GetSnooze(ctx, "k1")
	assert.True(t, ok, "extended entry must survive the stale wake-up")
}

func TestUnsnooze(t *testing.T) {
	m, store, _, sched := newTestManager(t)
	ctx := context.Background()

	_, err := m.Snooze(ctx, github.Item{HTMLURL: "https://github.com/a/1"}, "1h")
	require.NoError(t, err)

	removed, err := m.Unsnooze(ctx, "https://github.com/a/1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, sched.Pending())

	removed, err = m.Unsnooze(ctx, "https://github.com/a/1")
	require.NoError(t, err)
	assert.False(t, removed)

	all, _ := store.Snoozes(ctx)
	assert.Empty(t, all)
}

func TestUnsnoozeAll(t *testing.T) {
	m, store, _, sched := newTestManager(t)
	ctx := context.Background()

	_, err := m.Snooze(ctx, github.Item{HTMLURL: "https://github.com/a/1"}, "1h")
	require.NoError(t, err)
	_, err = m.Snooze(ctx, github.Item{HTMLURL: "https://github.com/b/2"}, "1d")
	require.NoError(t, err)
	require.Len(t, sched.Pending(), 2)

	require.NoError(t, m.UnsnoozeAll(ctx))
	assert.Empty(t, sched.Pending())
	all, _ := store.Snoozes(ctx)
	assert.Empty(t, all)
}

func TestSnoozeBroadcasts(t *testing.T) {
	store := newMemStore()
	sched := alarm.NewScheduler()
	t.Cleanup(sched.Stop)
	b := bus.New()
	m := NewManager(store, sched, newRecordingNotifier(), b, nil)

	events, cancel := b.Subscribe()
	defer cancel()

	_, err := m.Snooze(context.Background(), github.Item{HTMLURL: "https://github.com/a/1"}, "1h")
	require.NoError(t, err)

	got := map[bus.Event]bool{}
	for i := 0; i < 2; i++ {
		select {
		case e := <-events:
			got[e] = true
		case <-time.After(time.Second):
			t.Fatal("missing broadcast")
		}
	}
	assert.True(t, got[bus.ReloadPRs])
	assert.True(t, got[bus.UpdateBadge])
}
