package github

import (
	"fmt"
	"strings"
	"time"
)

// Reason values carried by Items. Notification-sourced items use the feed's
// own reason strings (review_requested, assign, mention, ...); the other
// fetchers tag their origin.
const (
	ReasonAuthor          = "author"
	ReasonGraphQL         = "graphql"
	ReasonReviewRequested = "review_requested"
)

// Item is a reviewable unit normalized from any upstream source.
// Items are recomputed on every fetch cycle; only the page-1 notification
// cache persists them, as an optimization rather than a source of truth.
type Item struct {
	Title        string    `json:"title"`
	HTMLURL      string    `json:"html_url,omitempty"`
	SubjectURL   string    `json:"subject_url,omitempty"`
	RepoFullName string    `json:"repo_full_name"`
	Number       int       `json:"number,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	ThreadID     string    `json:"thread_id,omitempty"` // set only for notification-sourced items
	User         string    `json:"user,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
	Labels       []string  `json:"labels,omitempty"`

	// Derived at render time, never persisted.
	IsNew  bool `json:"-"`
	Pinned bool `json:"-"`
}

// Key returns the canonical identity for an Item. Two Items with equal keys
// are the same logical entity regardless of which source produced them.
func (it Item) Key() string {
	if it.HTMLURL != "" {
		return it.HTMLURL
	}
	if it.SubjectURL != "" {
		return it.SubjectURL
	}
	return fmt.Sprintf("%s#%d", it.RepoFullName, it.Number)
}

// WebURL returns the best browser-openable link for the item.
func (it Item) WebURL() string {
	if it.HTMLURL != "" {
		return it.HTMLURL
	}
	return PRAPIURLToWeb(it.SubjectURL)
}

// PRAPIURLToWeb converts a PR API resource URL to its web URL, e.g.
// https://api.github.com/repos/owner/repo/pulls/123 -> https://github.com/owner/repo/pull/123.
// Returns "" for an empty input.
func PRAPIURLToWeb(apiURL string) string {
	if apiURL == "" {
		return ""
	}
	web := strings.Replace(apiURL, "https://api.github.com/repos/", "https://github.com/", 1)
	return strings.Replace(web, "/pulls/", "/pull/", 1)
}

// RepoFromRepositoryURL extracts "owner/repo" from a search-result
// repository_url like "https://api.github.com/repos/owner/repo".
func RepoFromRepositoryURL(repoURL string) string {
	return strings.TrimPrefix(repoURL, "https://api.github.com/repos/")
}
