package notify

import (
	"errors"
	"testing"
)

func TestDispatcherClickRoutesOnce(t *testing.T) {
	var sent, opened []string
	d := NewTestDispatcher(
		func(title, body string) error { sent = append(sent, title); return nil },
		func(url string) error { opened = append(opened, url); return nil },
	)

	id := d.Notify("PR ready", "Add frobnicate", "https://github.com/a/1")
	if len(sent) != 1 || sent[0] != "PR ready" {
		t.Fatalf("sent = %v", sent)
	}

	if !d.Click(id) {
		t.Fatal("first click should route")
	}
	if len(opened) != 1 || opened[0] != "https://github.com/a/1" {
		t.Fatalf("opened = %v", opened)
	}

	// The mapping is consumed.
	if d.Click(id) {
		t.Error("second click should be a plain dismiss")
	}
	if len(opened) != 1 {
		t.Errorf("opened = %v, want no second open", opened)
	}
}

func TestDispatcherUnknownIDDismisses(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { t.Error("open called for unknown id"); return nil },
	)
	if d.Click("bogus") {
		t.Error("unknown id should not route")
	}
}

func TestDispatcherNoURLNoRoute(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { t.Error("open called without a url"); return nil },
	)
	id := d.Notify("heads up", "no link here", "")
	if d.Click(id) {
		t.Error("notification without url should not route")
	}
}

func TestDispatcherDismissDropsRoute(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { t.Error("open called after dismiss"); return nil },
	)
	id := d.Notify("PR ready", "body", "https://github.com/a/1")
	d.Dismiss(id)
	if d.Click(id) {
		t.Error("dismissed notification should not route")
	}
}

func TestDispatcherSendFailureStillRoutes(t *testing.T) {
	var opened int
	d := NewTestDispatcher(
		func(string, string) error { return errors.New("no notification daemon") },
		func(string) error { opened++; return nil },
	)
	id := d.Notify("PR ready", "body", "https://github.com/a/1")
	if !d.Click(id) {
		t.Fatal("click should still route after delivery failure")
	}
	if opened != 1 {
		t.Errorf("opened = %d, want 1", opened)
	}
}

func TestDispatcherRouteTableBounded(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { return nil },
	)

	var first string
	for i := 0; i < maxRoutes+10; i++ {
		id := d.Notify("PR ready", "body", "https://github.com/a/1")
		if i == 0 {
			first = id
		}
	}

	if len(d.routes) != maxRoutes {
		t.Errorf("routes = %d entries, want capped at %d", len(d.routes), maxRoutes)
	}
	if d.Click(first) {
		t.Error("evicted route should no longer route")
	}
}

func TestDispatcherEvictionSkipsURLLessNotifications(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { return nil },
	)

	// URL-less notifications consume ids but never occupy the table.
	for i := 0; i < maxRoutes; i++ {
		d.Notify("routed", "body", "https://github.com/a/1")
		d.Notify("plain", "no link", "")
	}
	d.Notify("one more", "body", "https://github.com/a/2")

	if len(d.routes) != maxRoutes {
		t.Errorf("routes = %d entries, want capped at %d", len(d.routes), maxRoutes)
	}
	if len(d.order) > maxRoutes*2 {
		t.Errorf("order queue = %d entries, want compacted", len(d.order))
	}
}

func TestDispatcherIDsAreUnique(t *testing.T) {
	d := NewTestDispatcher(
		func(string, string) error { return nil },
		func(string) error { return nil },
	)
	id1 := d.Notify("a", "", "https://github.com/a/1")
	id2 := d.Notify("b", "", "https://github.com/b/2")
	if id1 == id2 {
		t.Errorf("ids collide: %q", id1)
	}
}
