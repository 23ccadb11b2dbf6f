package github

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
)

func TestIsPRSubject(t *testing.T) {
	tests := []struct {
		name        string
		subjectType string
		url         string
		want        bool
	}{
		{"pull request type", "PullRequest", "https://api.github.com/repos/a/b/pulls/1", true},
		{"issue url", "Issue", "https://api.github.com/repos/a/b/issues/9", true},
		{"pull path with other type", "Unknown", "https://api.github.com/repos/a/b/pulls/3", true},
		{"singular pull path", "Unknown", "https://api.github.com/repos/a/b/pull/3", true},
		{"release", "Release", "https://api.github.com/repos/a/b/releases/4", false},
		{"empty url", "PullRequest", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPRSubject(tt.subjectType, tt.url); got != tt.want {
				t.Errorf("IsPRSubject(%q, %q) = %v, want %v", tt.subjectType, tt.url, got, tt.want)
			}
		})
	}
}

func TestPRAPIURLToWeb(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.github.com/repos/alice/widget/pulls/42", "https://github.com/alice/widget/pull/42"},
		{"https://api.github.com/repos/alice/widget/issues/42", "https://github.com/alice/widget/issues/42"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PRAPIURLToWeb(tt.in); got != tt.want {
			t.Errorf("PRAPIURLToWeb(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

const notifFeedBody = `[
	{"id":"n1","reason":"review_requested","unread":true,
	 "subject":{"title":"Add frobnicate","url":"https://api.github.com/repos/alice/widget/pulls/42","type":"PullRequest"},
	 "repository":{"full_name":"alice/widget"}},
	{"id":"n2","reason":"subscribed","unread":true,
	 "subject":{"title":"v1.2 released","url":"https://api.github.com/repos/alice/widget/releases/3","type":"Release"},
	 "repository":{"full_name":"alice/widget"}},
	{"id":"n3","reason":"assign","unread":true,
	 "subject":{"title":"Old and closed","url":"https://api.github.com/repos/alice/widget/pulls/40","type":"PullRequest"},
	 "repository":{"full_name":"alice/widget"}}
]`

func notifResponses() map[string]fakeResponse {
	return map[string]fakeResponse{
		"GET https://api.github.com/notifications": {
			status: 200,
			body:   notifFeedBody,
			header: http.Header{
				"Etag": []string{`"etag-1"`},
				"Link": []string{`<https://api.github.com/notifications?page=2>; rel="next"`},
			},
		},
		"/repos/alice/widget/pulls/42": {status: 200, body: `{
			"title":"Add frobnicate","html_url":"https://github.com/alice/widget/pull/42",
			"state":"open","number":42,"updated_at":"2026-08-22T12:00:00Z","user":{"login":"bob"}}`},
		"/repos/alice/widget/pulls/40": {status: 200, body: `{
			"title":"Old and closed","html_url":"https://github.com/alice/widget/pull/40",
			"state":"closed","number":40,"updated_at":"2026-06-01T12:00:00Z","user":{"login":"bob"}}`},
	}
}

func TestGetPRNotifications(t *testing.T) {
	client := NewTestClient("tok", fakeDoer(notifResponses()))

	page, err := client.GetPRNotifications(context.Background(), 1, 30, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NotModified {
		t.Fatal("NotModified = true, want false")
	}
	if page.RawCount != 3 {
		t.Errorf("RawCount = %d, want 3", page.RawCount)
	}
	if page.PRCandidateCount != 2 {
		t.Errorf("PRCandidateCount = %d, want 2", page.PRCandidateCount)
	}
	// The closed PR is dropped after resolution.
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}
	it := page.Items[0]
	if it.ThreadID != "n1" {
		t.Errorf("ThreadID = %q, want n1", it.ThreadID)
	}
	if it.Reason != "review_requested" {
		t.Errorf("Reason = %q", it.Reason)
	}
	if it.HTMLURL != "https://github.com/alice/widget/pull/42" {
		t.Errorf("HTMLURL = %q", it.HTMLURL)
	}
	if !page.HasNext {
		t.Error("HasNext = false, want true")
	}
	if page.ETag != `"etag-1"` {
		t.Errorf("ETag = %q", page.ETag)
	}
	if len(page.Samples) != 2 {
		t.Errorf("got %d samples, want 2", len(page.Samples))
	}
}

func TestGetPRNotifications_NotModified(t *testing.T) {
	client := NewTestClient("tok", fakeDoer(map[string]fakeResponse{
		"/notifications": {status: 304, header: http.Header{"Etag": []string{`"etag-1"`}}},
	}))

	page, err := client.GetPRNotifications(context.Background(), 1, 30, `"etag-1"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !page.NotModified {
		t.Fatal("NotModified = false, want true")
	}
	if len(page.Items) != 0 {
		t.Errorf("got %d items, want 0", len(page.Items))
	}
}

func TestGetPRNotifications_SendsIfNoneMatch(t *testing.T) {
	var gotHeader string
	client := NewTestClient("tok", func(req *http.Request) (*http.Response, error) {
		gotHeader = req.Header.Get("If-None-Match")
		return fakeDoer(map[string]fakeResponse{"/notifications": {status: 200, body: "[]"}})(req)
	})

	if _, err := client.GetPRNotifications(context.Background(), 1, 30, `"etag-9"`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHeader != `"etag-9"` {
		t.Errorf("If-None-Match = %q, want %q", gotHeader, `"etag-9"`)
	}
}

func TestGetPRNotifications_SubjectFetchFailureSkipsItem(t *testing.T) {
	responses := notifResponses()
	responses["/repos/alice/widget/pulls/42"] = fakeResponse{status: 500, body: "boom"}
	client := NewTestClient("tok", fakeDoer(responses))

	page, err := client.GetPRNotifications(context.Background(), 1, 30, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 0 {
		t.Errorf("got %d items, want 0 (resolution failures skip)", len(page.Items))
	}
	if page.PRCandidateCount != 2 {
		t.Errorf("PRCandidateCount = %d, want 2 (counted pre-resolution)", page.PRCandidateCount)
	}
}

func TestGetPRNotifications_UpstreamError(t *testing.T) {
	client := NewTestClient("tok", fakeDoer(map[string]fakeResponse{
		"/notifications": {status: 403, body: `{"message":"rate limited"}`},
	}))

	_, err := client.GetPRNotifications(context.Background(), 1, 30, "")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestMarkThreadRead(t *testing.T) {
	client := NewTestClient("tok", fakeDoer(map[string]fakeResponse{
		"PATCH https://api.github.com/notifications/threads/n1": {status: 205},
	}))

	if err := client.MarkThreadRead(context.Background(), "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkThreadRead_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	client := NewTestClient("tok", func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		status := 500
		if n >= 2 {
			status = 205
		}
		return fakeDoer(map[string]fakeResponse{"/threads/": {status: status}})(req)
	})

	if err := client.MarkThreadRead(context.Background(), "n1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestMarkThreadRead_Exhausted(t *testing.T) {
	var calls int32
	client := NewTestClient("tok", func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return fakeDoer(map[string]fakeResponse{"/threads/": {status: 500, body: "boom"}})(req)
	})

	err := client.MarkThreadRead(context.Background(), "n1")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != markReadAttempts {
		t.Errorf("calls = %d, want %d", calls, markReadAttempts)
	}
}
