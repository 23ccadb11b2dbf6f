// Package background runs the long-lived side of the app: the periodic poll
// that announces newly discovered review-requested PRs, the badge recount
// fallback timer, and snooze wake-up restoration at startup.
package background

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

const (
	pollTimeout   = time.Minute
	badgeInterval = time.Minute
)

// Fetcher is the upstream slice the poll needs.
type Fetcher interface {
	SearchInvolvedPRs(ctx context.Context, login string) ([]github.Item, error)
}

// Store is the persistence slice the poll needs.
type Store interface {
	NotifiedKeys(ctx context.Context) (map[string]bool, error)
	MarkNotified(ctx context.Context, keys ...string) error
	SeenKeys(ctx context.Context) (map[string]bool, error)
	Snoozes(ctx context.Context) (map[string]inbox.SnoozeEntry, error)
}

// Notifier raises the new-PR notification.
type Notifier interface {
	Notify(title, body, url string) string
}

// SnoozeRestorer rebuilds snooze wake-ups from storage at startup.
type SnoozeRestorer interface {
	RescheduleAll(ctx context.Context) error
}

// Service schedules the background jobs.
type Service struct {
	fetcher  Fetcher
	store    Store
	notifier Notifier
	snoozes  SnoozeRestorer
	bus      *bus.Bus
	log      *zap.Logger

	login        string
	pollInterval time.Duration
	cron         *cron.Cron
	now          func() time.Time
}

func NewService(fetcher Fetcher, store Store, notifier Notifier, snoozes SnoozeRestorer, b *bus.Bus, log *zap.Logger, login string, pollInterval time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	return &Service{
		fetcher:      fetcher,
		store:        store,
		notifier:     notifier,
		snoozes:      snoozes,
		bus:          b,
		log:          log,
		login:        login,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Start restores snooze wake-ups and begins the periodic jobs. The badge
// recount timer is a fallback for recounts no other event triggers.
func (s *Service) Start(ctx context.Context) error {
	if s.snoozes != nil {
		if err := s.snoozes.RescheduleAll(ctx); err != nil {
			s.log.Warn("snooze restore failed", zap.Error(err))
		}
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.pollInterval), func() { s.poll() }); err != nil {
		return fmt.Errorf("failed to schedule poll: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", badgeInterval), func() {
		s.bus.Publish(bus.UpdateBadge)
	}); err != nil {
		return fmt.Errorf("failed to schedule badge recount: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the periodic jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Service) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	if n, err := s.PollOnce(ctx); err != nil {
		s.log.Warn("poll failed", zap.Error(err))
	} else if n > 0 {
		s.log.Info("poll announced new items", zap.Int("count", n))
	}
}

// PollOnce fetches the user's review-requested and assigned PRs and raises
// one notification per item not already announced, opened, or snoozed.
// Returns the number of notifications raised.
func (s *Service) PollOnce(ctx context.Context) (int, error) {
	items, err := s.fetcher.SearchInvolvedPRs(ctx, s.login)
	if err != nil {
		return 0, fmt.Errorf("involved search failed: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	notified, err := s.store.NotifiedKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("notified set read failed: %w", err)
	}
	seen, err := s.store.SeenKeys(ctx)
	if err != nil {
		s.log.Warn("seen set read failed", zap.Error(err))
	}
	snoozes, err := s.store.Snoozes(ctx)
	if err != nil {
		s.log.Warn("snooze map read failed", zap.Error(err))
	}

	now := s.now()
	var announced []string
	for _, item := range items {
		key := item.Key()
		if notified[key] || seen[key] {
			continue
		}
		if e, ok := snoozes[key]; ok && e.Active(now) {
			continue
		}
		s.notifier.Notify("PR needs your attention", item.Title, item.WebURL())
		announced = append(announced, key)
	}
	if len(announced) == 0 {
		return 0, nil
	}

	if err := s.store.MarkNotified(ctx, announced...); err != nil {
		// Next poll may re-announce; better than never announcing.
		s.log.Warn("notified set write failed", zap.Error(err))
	}
	s.bus.Publish(bus.ReloadPRs)
	s.bus.Publish(bus.UpdateBadge)
	return len(announced), nil
}
