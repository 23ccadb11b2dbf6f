// Package inbox holds the list algebra behind the PR inbox: merging the
// upstream sources into one deduplicated list, deciding which items count as
// new, applying the user's filters, and ordering the result around pins and
// snoozes. Everything here is pure; fetching and persistence live elsewhere.
package inbox

import (
	"strconv"
	"strings"
	"time"

	"github.com/shhac/prinbox/internal/github"
)

// How recently an item must have been updated to count as new when there is
// no notification thread to compare against.
const freshnessWindow = 7 * 24 * time.Hour

// SnoozeEntry suppresses one item until a deadline. A zero or past Until is
// logically expired and suppresses nothing, even before it is cleaned up.
type SnoozeEntry struct {
	Until time.Time `json:"until"`
	Title string    `json:"title"`
	URL   string    `json:"url,omitempty"`
}

// Active reports whether the entry still suppresses its item at now.
func (e SnoozeEntry) Active(now time.Time) bool {
	return !e.Until.IsZero() && e.Until.After(now)
}

// Filters is the user's visibility configuration. An item passes if it
// matches any configured dimension; with nothing configured everything
// passes. Label matching needs a lookup and is handled separately, see
// NeedsLabelCheck.
type Filters struct {
	Repo   string
	Author string
	Labels []string
	Roles  []string
}

// Empty reports whether no filter dimension is configured.
func (f Filters) Empty() bool {
	return f.Repo == "" && f.Author == "" && len(f.Labels) == 0 && len(f.Roles) == 0
}

// Matches applies the lookup-free dimensions: repo substring, exact author,
// role membership. All case-insensitive.
func (f Filters) Matches(item github.Item) bool {
	if f.Empty() {
		return true
	}
	if f.Repo != "" && strings.Contains(strings.ToLower(item.RepoFullName), strings.ToLower(f.Repo)) {
		return true
	}
	if f.Author != "" && strings.EqualFold(item.User, f.Author) {
		return true
	}
	for _, role := range f.Roles {
		if strings.EqualFold(item.Reason, role) {
			return true
		}
	}
	return false
}

// NeedsLabelCheck reports whether an item that failed Matches should still be
// held for the deferred label lookup instead of being dropped outright.
func (f Filters) NeedsLabelCheck(item github.Item) bool {
	return len(f.Labels) > 0 && item.RepoFullName != "" && item.Number != 0
}

// MatchesLabels reports whether any fetched label matches a configured one.
func (f Filters) MatchesLabels(labels []string) bool {
	for _, want := range f.Labels {
		for _, got := range labels {
			if strings.EqualFold(want, got) {
				return true
			}
		}
	}
	return false
}

// MergeUnshift prepends every extra item whose key is not already present in
// base. Extras keep their relative order at the front; base keeps its order
// behind them. Duplicate keys within extra collapse to the first occurrence.
func MergeUnshift(base, extra []github.Item) []github.Item {
	known := make(map[string]bool, len(base)+len(extra))
	for _, it := range base {
		known[it.Key()] = true
	}
	var fresh []github.Item
	for _, it := range extra {
		k := it.Key()
		if known[k] {
			continue
		}
		known[k] = true
		fresh = append(fresh, it)
	}
	if len(fresh) == 0 {
		return base
	}
	return append(fresh, base...)
}

// AnnotateNew sets IsNew on each item. Seen membership always wins. For
// notification-sourced items (ThreadID set) new means the thread was absent
// from the previous fetch cycle. Search and GraphQL items have no thread to
// compare, so new falls back to a recent-update window.
func AnnotateNew(items []github.Item, seen map[string]bool, prevThreadIDs map[string]bool, now time.Time) {
	for i := range items {
		it := &items[i]
		switch {
		case seen[it.Key()]:
			it.IsNew = false
		case it.ThreadID != "":
			it.IsNew = !prevThreadIDs[it.ThreadID]
		case it.UpdatedAt.IsZero():
			it.IsNew = false
		default:
			it.IsNew = now.Sub(it.UpdatedAt) < freshnessWindow
		}
	}
}

// Partition orders items for display: snoozed-and-still-suppressed items are
// dropped, pinned items lead, and each partition keeps its incoming relative
// order. Pinned is also stamped on the surviving items.
func Partition(items []github.Item, pinned map[string]bool, snoozes map[string]SnoozeEntry, now time.Time) []github.Item {
	var lead, rest []github.Item
	for _, it := range items {
		k := it.Key()
		if e, ok := snoozes[k]; ok && e.Active(now) {
			continue
		}
		it.Pinned = pinned[k]
		if it.Pinned {
			lead = append(lead, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(lead, rest...)
}

// BadgeCount is the number of cached items the user has neither opened nor
// actively snoozed. Expired snoozes count again.
func BadgeCount(items []github.Item, seen map[string]bool, snoozes map[string]SnoozeEntry, now time.Time) int {
	n := 0
	for _, it := range items {
		k := it.Key()
		if seen[k] {
			continue
		}
		if e, ok := snoozes[k]; ok && e.Active(now) {
			continue
		}
		n++
	}
	return n
}

// BadgeText renders a badge count the way the platform shows it: empty when
// zero.
func BadgeText(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
