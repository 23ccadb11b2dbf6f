package ui

import (
	"context"
	"time"

	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
)

// InboxService runs a reconciliation pass over the notification sources.
// *inbox.Reconciler satisfies this interface.
type InboxService interface {
	Run(ctx context.Context, page int) (*inbox.Result, error)
}

// ItemStore defines the persistence operations used by the UI layer.
// *store.Store satisfies this interface.
type ItemStore interface {
	MarkSeen(ctx context.Context, key string) error
	PRCache(ctx context.Context) (inbox.Cache, bool, error)
	SeenKeys(ctx context.Context) (map[string]bool, error)
	TogglePin(ctx context.Context, key string) (bool, error)
	Snoozes(ctx context.Context) (map[string]inbox.SnoozeEntry, error)
	RepoMeta(ctx context.Context, repoFullName string) (github.RepoMeta, bool, error)
	SaveRepoMeta(ctx context.Context, repoFullName string, meta github.RepoMeta) error
}

// ThreadService defines the upstream notification operations used by the UI layer.
// *github.Client satisfies this interface.
type ThreadService interface {
	MarkThreadRead(ctx context.Context, threadID string) error
	GetRepoMeta(ctx context.Context, fullName string) (*github.RepoMeta, error)
}

// SnoozeService manages the snooze lifecycle.
// *snooze.Manager satisfies this interface.
type SnoozeService interface {
	Snooze(ctx context.Context, item github.Item, choice string) (time.Time, error)
	Unsnooze(ctx context.Context, key string) (bool, error)
	UnsnoozeAll(ctx context.Context) error
}
