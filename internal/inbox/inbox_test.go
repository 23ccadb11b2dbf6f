package inbox

import (
	"testing"
	"time"

	"github.com/shhac/prinbox/internal/github"
)

func linkItem(url string) github.Item {
	return github.Item{Title: url, HTMLURL: url}
}

func TestBadgeCount(t *testing.T) {
	now := time.Now()
	a := linkItem("https://github.com/a/1")
	b := linkItem("https://github.com/b/2")

	tests := []struct {
		name    string
		items   []github.Item
		seen    map[string]bool
		snoozes map[string]SnoozeEntry
		want    int
	}{
		{
			name:  "nothing triaged",
			items: []github.Item{a, b},
			want:  2,
		},
		{
			name:  "seen item excluded",
			items: []github.Item{a, b},
			seen:  map[string]bool{"https://github.com/a/1": true},
			want:  1,
		},
		{
			name:    "active snooze excluded",
			items:   []github.Item{a, b},
			snoozes: map[string]SnoozeEntry{"https://github.com/a/1": {Until: now.Add(10 * time.Second)}},
			want:    1,
		},
		{
			name:    "expired snooze counts again",
			items:   []github.Item{a},
			snoozes: map[string]SnoozeEntry{"https://github.com/a/1": {Until: now.Add(-time.Second)}},
			want:    1,
		},
		{
			name:    "malformed snooze without deadline counts",
			items:   []github.Item{a},
			snoozes: map[string]SnoozeEntry{"https://github.com/a/1": {Title: "no until"}},
			want:    1,
		},
		{
			name: "empty list",
			want: 0,
		},
		{
			name:    "seen wins over snooze",
			items:   []github.Item{a},
			seen:    map[string]bool{"https://github.com/a/1": true},
			snoozes: map[string]SnoozeEntry{"https://github.com/a/1": {Until: now.Add(time.Hour)}},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BadgeCount(tt.items, tt.seen, tt.snoozes, now); got != tt.want {
				t.Errorf("BadgeCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBadgeText(t *testing.T) {
	if got := BadgeText(0); got != "" {
		t.Errorf("BadgeText(0) = %q, want empty", got)
	}
	if got := BadgeText(12); got != "12" {
		t.Errorf("BadgeText(12) = %q", got)
	}
}

func TestMergeUnshift(t *testing.T) {
	a := linkItem("https://github.com/a/1")
	b := linkItem("https://github.com/b/2")
	c := linkItem("https://github.com/c/3")

	t.Run("new items lead", func(t *testing.T) {
		got := MergeUnshift([]github.Item{a}, []github.Item{b, c})
		wantOrder := []string{b.HTMLURL, c.HTMLURL, a.HTMLURL}
		if len(got) != 3 {
			t.Fatalf("got %d items, want 3", len(got))
		}
		for i, want := range wantOrder {
			if got[i].HTMLURL != want {
				t.Errorf("got[%d] = %q, want %q", i, got[i].HTMLURL, want)
			}
		}
	})

	t.Run("shared key yields one entry", func(t *testing.T) {
		dup := github.Item{Title: "same PR, other source", HTMLURL: a.HTMLURL}
		got := MergeUnshift([]github.Item{a, b}, []github.Item{dup})
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2", len(got))
		}
		// Base copy wins.
		if got[0].Title != a.Title {
			t.Errorf("got[0].Title = %q, want %q", got[0].Title, a.Title)
		}
	})

	t.Run("key falls back through subject url to repo#number", func(t *testing.T) {
		x := github.Item{SubjectURL: "https://api.github.com/repos/a/b/pulls/1"}
		y := github.Item{RepoFullName: "a/b", Number: 7}
		dupY := github.Item{RepoFullName: "a/b", Number: 7, Title: "dup"}
		got := MergeUnshift([]github.Item{x, y}, []github.Item{dupY})
		if len(got) != 2 {
			t.Fatalf("got %d items, want 2", len(got))
		}
	})
}

func TestAnnotateNew(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-2 * 24 * time.Hour)
	stale := now.Add(-10 * 24 * time.Hour)

	items := []github.Item{
		{HTMLURL: "u1", ThreadID: "t1", UpdatedAt: stale},           // unseen thread: new despite stale update
		{HTMLURL: "u2", ThreadID: "t2", UpdatedAt: fresh},           // known thread: not new
		{HTMLURL: "u3", UpdatedAt: fresh},                           // no thread, fresh: new
		{HTMLURL: "u4", UpdatedAt: stale},                           // no thread, stale: not new
		{HTMLURL: "u5", ThreadID: "t5", UpdatedAt: fresh},           // seen wins
		{HTMLURL: "u6"},                                             // no thread, no timestamp: not new
	}
	seen := map[string]bool{"u5": true}
	prev := map[string]bool{"t2": true}

	AnnotateNew(items, seen, prev, now)

	want := []bool{true, false, true, false, false, false}
	for i, w := range want {
		if items[i].IsNew != w {
			t.Errorf("items[%d] (%s) IsNew = %v, want %v", i, items[i].HTMLURL, items[i].IsNew, w)
		}
	}
}

func TestPartition(t *testing.T) {
	now := time.Now()
	a := linkItem("a")
	b := linkItem("b")
	c := linkItem("c")
	d := linkItem("d")

	t.Run("pinned lead in relative order", func(t *testing.T) {
		got := Partition([]github.Item{a, b, c, d}, map[string]bool{"b": true, "d": true}, nil, now)
		wantOrder := []string{"b", "d", "a", "c"}
		for i, w := range wantOrder {
			if got[i].HTMLURL != w {
				t.Errorf("got[%d] = %q, want %q", i, got[i].HTMLURL, w)
			}
		}
		if !got[0].Pinned || got[2].Pinned {
			t.Error("Pinned flag not stamped correctly")
		}
	})

	t.Run("active snooze excluded from both partitions", func(t *testing.T) {
		snoozes := map[string]SnoozeEntry{
			"a": {Until: now.Add(time.Hour)},
			"b": {Until: now.Add(time.Hour)},
		}
		got := Partition([]github.Item{a, b, c}, map[string]bool{"b": true}, snoozes, now)
		if len(got) != 1 || got[0].HTMLURL != "c" {
			t.Fatalf("got %v, want only c", got)
		}
	})

	t.Run("expired snooze stays visible", func(t *testing.T) {
		snoozes := map[string]SnoozeEntry{"a": {Until: now.Add(-time.Minute)}}
		got := Partition([]github.Item{a}, nil, snoozes, now)
		if len(got) != 1 {
			t.Fatalf("got %d items, want 1", len(got))
		}
	})
}

func TestFilters(t *testing.T) {
	item := github.Item{
		RepoFullName: "alice/Widget-Factory",
		User:         "Bob",
		Reason:       "review_requested",
		Number:       7,
	}

	tests := []struct {
		name string
		f    Filters
		want bool
	}{
		{"empty passes all", Filters{}, true},
		{"repo substring case-insensitive", Filters{Repo: "widget"}, true},
		{"repo substring miss", Filters{Repo: "gadget"}, false},
		{"author exact case-insensitive", Filters{Author: "bob"}, true},
		{"author partial miss", Filters{Author: "bo"}, false},
		{"role match", Filters{Roles: []string{"assignee", "review_requested"}}, true},
		{"role miss", Filters{Roles: []string{"author"}}, false},
		{"any dimension suffices", Filters{Repo: "nope", Author: "bob"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Matches(item); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("label filter defers instead of dropping", func(t *testing.T) {
		f := Filters{Repo: "gadget", Labels: []string{"urgent"}}
		if f.Matches(item) {
			t.Fatal("item should fail direct match")
		}
		if !f.NeedsLabelCheck(item) {
			t.Error("item with label filter configured should defer")
		}
		if !f.MatchesLabels([]string{"Bug", "URGENT"}) {
			t.Error("label match should be case-insensitive")
		}
		if f.MatchesLabels([]string{"bug"}) {
			t.Error("unrelated labels should not match")
		}
	})
}
