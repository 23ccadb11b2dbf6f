package inbox

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shhac/prinbox/internal/github"
)

// Cache is the persisted snapshot of the last fresh page-1 notifications
// fetch. It is an optimization only: reused verbatim when the feed reports
// not-modified, and mined for the previous cycle's thread ids when deciding
// which items are new.
type Cache struct {
	ETag             string               `json:"etag"`
	Items            []github.Item        `json:"items"`
	RawCount         int                  `json:"rawCount"`
	PRCandidateCount int                  `json:"prCandidateCount"`
	Samples          []github.NotifSample `json:"samples,omitempty"`
	FetchedAt        time.Time            `json:"fetchedAt"`
}

// ThreadIDs returns the set of notification thread ids present in the cache.
func (c Cache) ThreadIDs() map[string]bool {
	ids := make(map[string]bool, len(c.Items))
	for _, it := range c.Items {
		if it.ThreadID != "" {
			ids[it.ThreadID] = true
		}
	}
	return ids
}

// Fetcher is the upstream surface the Reconciler pulls from.
type Fetcher interface {
	GetPRNotifications(ctx context.Context, page, perPage int, ifNoneMatch string) (*github.NotificationsPage, error)
	SearchAuthoredPRs(ctx context.Context, login string) ([]github.Item, error)
	SearchPRsGraphQL(ctx context.Context, login string) ([]github.Item, error)
}

// LabelSource resolves the labels on one issue or PR. Implementations are
// expected to cache; the Reconciler calls it once per deferred item per run.
type LabelSource interface {
	IssueLabels(ctx context.Context, repoFullName string, number int) ([]string, error)
}

// State is the persisted triage state the Reconciler reads, and the cache
// slot it writes back.
type State interface {
	PRCache(ctx context.Context) (Cache, bool, error)
	SavePRCache(ctx context.Context, c Cache) error
	SeenKeys(ctx context.Context) (map[string]bool, error)
	PinnedKeys(ctx context.Context) (map[string]bool, error)
	Snoozes(ctx context.Context) (map[string]SnoozeEntry, error)
}

// Result is one reconciled page ready to render.
type Result struct {
	Items            []github.Item
	HasNext          bool
	RawCount         int
	PRCandidateCount int
	Samples          []github.NotifSample
	FromCache        bool // page 1 served from the not-modified cache
	UsedFallback     bool // GraphQL fallback contributed the items
	Badge            int  // unseen, not actively snoozed
}

// Reconciler merges the three upstream sources with the persisted triage
// state into the ordered list the UI renders.
type Reconciler struct {
	fetcher Fetcher
	labels  LabelSource
	state   State
	log     *zap.Logger

	login   string
	filters Filters
	perPage int
	now     func() time.Time
}

func NewReconciler(fetcher Fetcher, labels LabelSource, state State, log *zap.Logger, login string, filters Filters, perPage int) *Reconciler {
	if perPage <= 0 {
		perPage = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		fetcher: fetcher,
		labels:  labels,
		state:   state,
		log:     log,
		login:   login,
		filters: filters,
		perPage: perPage,
		now:     time.Now,
	}
}

// Run produces the reconciled item list for one page. A primary-source
// failure is terminal for the cycle; the secondary sources degrade to
// contributing nothing.
func (r *Reconciler) Run(ctx context.Context, page int) (*Result, error) {
	now := r.now()

	prev, havePrev, err := r.state.PRCache(ctx)
	if err != nil {
		r.log.Warn("pr cache read failed", zap.Error(err))
		havePrev = false
	}

	etag := ""
	if page == 1 && havePrev {
		etag = prev.ETag
	}

	feed, err := r.fetcher.GetPRNotifications(ctx, page, r.perPage, etag)
	if err != nil {
		return nil, err
	}

	res := &Result{
		HasNext:          feed.HasNext,
		RawCount:         feed.RawCount,
		PRCandidateCount: feed.PRCandidateCount,
		Samples:          feed.Samples,
	}

	items := feed.Items
	if feed.NotModified {
		items = prev.Items
		res.FromCache = true
		res.RawCount = prev.RawCount
		res.PRCandidateCount = prev.PRCandidateCount
		res.Samples = prev.Samples
	}

	if authored, err := r.fetcher.SearchAuthoredPRs(ctx, r.login); err != nil {
		r.log.Warn("authored search failed", zap.Error(err))
	} else {
		items = MergeUnshift(items, authored)
	}

	if len(items) == 0 && page == 1 {
		if fallback, err := r.fetcher.SearchPRsGraphQL(ctx, r.login); err != nil {
			r.log.Warn("graphql fallback failed", zap.Error(err))
		} else if len(fallback) > 0 {
			items = MergeUnshift(items, fallback)
			res.UsedFallback = true
		}
	}

	seen, err := r.state.SeenKeys(ctx)
	if err != nil {
		r.log.Warn("seen set read failed", zap.Error(err))
	}
	prevThreads := map[string]bool{}
	if havePrev {
		prevThreads = prev.ThreadIDs()
	}
	AnnotateNew(items, seen, prevThreads, now)

	items = r.applyFilters(ctx, items)

	pinned, err := r.state.PinnedKeys(ctx)
	if err != nil {
		r.log.Warn("pin set read failed", zap.Error(err))
	}
	snoozes, err := r.state.Snoozes(ctx)
	if err != nil {
		r.log.Warn("snooze map read failed", zap.Error(err))
	}
	res.Items = Partition(items, pinned, snoozes, now)

	// The badge counts the cached notification items, not the display list:
	// filtered-out items still count, merged search results never do, and a
	// page-N load leaves the count anchored to page 1.
	badgeItems := prev.Items
	if page == 1 && !feed.NotModified {
		badgeItems = feed.Items
	}
	res.Badge = BadgeCount(badgeItems, seen, snoozes, now)

	if page == 1 && !feed.NotModified {
		cache := Cache{
			ETag:             feed.ETag,
			Items:            feed.Items,
			RawCount:         feed.RawCount,
			PRCandidateCount: feed.PRCandidateCount,
			Samples:          feed.Samples,
			FetchedAt:        now,
		}
		if err := r.state.SavePRCache(ctx, cache); err != nil {
			r.log.Warn("pr cache write failed", zap.Error(err))
		}
	}

	return res, nil
}

// applyFilters keeps items passing the lookup-free dimensions outright and
// runs the deferred label lookups concurrently for the rest. A failed label
// fetch drops only that item.
func (r *Reconciler) applyFilters(ctx context.Context, items []github.Item) []github.Item {
	if r.filters.Empty() {
		return items
	}

	keep := make([]bool, len(items))
	var deferred []int
	for i, it := range items {
		switch {
		case r.filters.Matches(it):
			keep[i] = true
		case r.filters.NeedsLabelCheck(it):
			deferred = append(deferred, i)
		}
	}

	if len(deferred) > 0 && r.labels != nil {
		var wg sync.WaitGroup
		for _, i := range deferred {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				it := items[i]
				labels, err := r.labels.IssueLabels(ctx, it.RepoFullName, it.Number)
				if err != nil {
					r.log.Debug("label lookup failed",
						zap.String("repo", it.RepoFullName), zap.Int("number", it.Number), zap.Error(err))
					return
				}
				keep[i] = r.filters.MatchesLabels(labels)
			}(i)
		}
		wg.Wait()
	}

	out := items[:0:0]
	for i, it := range items {
		if keep[i] {
			out = append(out, it)
		}
	}
	return out
}
