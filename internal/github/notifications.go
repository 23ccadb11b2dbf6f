package github

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// NotifSample is a small diagnostic slice of the raw feed, kept alongside the
// cache so empty states can explain what the feed actually contained.
type NotifSample struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// NotificationsPage is the envelope returned by GetPRNotifications.
// When NotModified is set the feed has not changed since the supplied ETag
// and Items is empty; the caller must substitute its cached items.
type NotificationsPage struct {
	Items            []Item
	NotModified      bool
	HasNext          bool
	RawCount         int // notifications inspected
	PRCandidateCount int // subset matching the pull-request shape, pre-resolution
	Samples          []NotifSample
	ETag             string
}

// Wire shapes for the notifications feed and subject resolution.
type ghNotification struct {
	ID      string `json:"id"`
	Reason  string `json:"reason"`
	Subject struct {
		Title string `json:"title"`
		URL   string `json:"url"`
		Type  string `json:"type"`
	} `json:"subject"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

type ghSubject struct {
	Title       string    `json:"title"`
	HTMLURL     string    `json:"html_url"`
	State       string    `json:"state"`
	Number      int       `json:"number"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        *struct {
		Login string `json:"login"`
	} `json:"user"`
	PullRequest *struct {
		URL     string `json:"url"`
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
	Base *struct {
		Repo struct {
			FullName string `json:"full_name"`
		} `json:"repo"`
	} `json:"base"`
}

var prPathPattern = regexp.MustCompile(`/(pulls?|issues)/`)

// IsPRSubject reports whether a notification subject looks like a pull
// request. Issues are included because PR threads sometimes surface with an
// issue subject URL; detail resolution sorts them out. Best-effort
// classifier, not a grammar.
func IsPRSubject(subjectType, subjectURL string) bool {
	if subjectURL == "" {
		return false
	}
	return subjectType == "PullRequest" || prPathPattern.MatchString(subjectURL)
}

// GetPRNotifications fetches one page of the participating-notifications
// feed and resolves PR candidates to full Items. ifNoneMatch is honored only
// for page 1; pass "" to force a fresh fetch. Closed subjects are dropped.
func (c *Client) GetPRNotifications(ctx context.Context, page, perPage int, ifNoneMatch string) (*NotificationsPage, error) {
	url := fmt.Sprintf("/notifications?participating=true&per_page=%d&page=%d", perPage, page)
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ifNoneMatch != "" {
		req.Header.Set("If-None-Match", ifNoneMatch)
	}

	res, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("notifications request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotModified {
		return &NotificationsPage{NotModified: true, ETag: res.Header.Get("ETag")}, nil
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, apiError("notifications", res)
	}

	var notifs []ghNotification
	if err := decodeBody(res, &notifs); err != nil {
		return nil, fmt.Errorf("failed to parse notifications: %w", err)
	}

	hasNext := strings.Contains(res.Header.Get("Link"), `rel="next"`)

	var candidates []ghNotification
	for _, n := range notifs {
		if IsPRSubject(n.Subject.Type, n.Subject.URL) {
			candidates = append(candidates, n)
		}
	}

	items := make([]Item, 0, len(candidates))
	for _, n := range candidates {
		item, ok := c.resolveSubject(ctx, n)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	samples := make([]NotifSample, 0, 5)
	for _, n := range candidates {
		if len(samples) == 5 {
			break
		}
		samples = append(samples, NotifSample{
			ID:    n.ID,
			Title: n.Subject.Title,
			URL:   n.Subject.URL,
			Type:  n.Subject.Type,
		})
	}

	return &NotificationsPage{
		Items:            items,
		HasNext:          hasNext,
		RawCount:         len(notifs),
		PRCandidateCount: len(candidates),
		Samples:          samples,
		ETag:             res.Header.Get("ETag"),
	}, nil
}

// resolveSubject fetches the subject detail for a candidate notification and
// normalizes it to an Item. Returns ok=false when the subject cannot be
// resolved or is not an open PR/issue; per-item failures never abort the page.
func (c *Client) resolveSubject(ctx context.Context, n ghNotification) (Item, bool) {
	var subj ghSubject
	if err := c.getJSON(ctx, n.Subject.URL, "subject", &subj); err != nil {
		return Item{}, false
	}

	// An issue that references a pull request: prefer the PR detail.
	if subj.PullRequest != nil && subj.PullRequest.URL != "" {
		var pr ghSubject
		if err := c.getJSON(ctx, subj.PullRequest.URL, "pull request", &pr); err == nil {
			subj = pr
		}
	}

	if subj.State != "" && subj.State != "open" {
		return Item{}, false
	}

	title := subj.Title
	if title == "" {
		title = n.Subject.Title
	}
	htmlURL := subj.HTMLURL
	if htmlURL == "" && subj.PullRequest != nil {
		htmlURL = subj.PullRequest.HTMLURL
	}
	repoFull := n.Repository.FullName
	if repoFull == "" && subj.Base != nil {
		repoFull = subj.Base.Repo.FullName
	}
	user := ""
	if subj.User != nil {
		user = subj.User.Login
	}

	return Item{
		Title:        title,
		HTMLURL:      htmlURL,
		SubjectURL:   n.Subject.URL,
		RepoFullName: repoFull,
		Number:       subj.Number,
		Reason:       n.Reason,
		ThreadID:     n.ID,
		User:         user,
		UpdatedAt:    subj.UpdatedAt,
	}, true
}

// Mark-as-read retry budget.
const (
	markReadAttempts     = 3
	markReadInitialDelay = 300 * time.Millisecond
)

// MarkThreadRead marks a notification thread as read. The API signals
// success with 205 Reset Content. This is the only retried call: up to 3
// attempts with exponential backoff.
func (c *Client) MarkThreadRead(ctx context.Context, threadID string) error {
	delay := markReadInitialDelay
	var lastErr error
	for attempt := 0; attempt < markReadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		lastErr = c.markThreadReadOnce(ctx, threadID)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("mark thread %s read failed after %d attempts: %w", threadID, markReadAttempts, lastErr)
}

func (c *Client) markThreadReadOnce(ctx context.Context, threadID string) error {
	req, err := c.newRequest(ctx, http.MethodPatch, "/notifications/threads/"+threadID, nil)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return fmt.Errorf("mark read request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusResetContent {
		return apiError("mark read", res)
	}
	return nil
}
