package github

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ghSearchResult is the /search/issues response shape.
type ghSearchResult struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Title         string    `json:"title"`
		HTMLURL       string    `json:"html_url"`
		URL           string    `json:"url"`
		RepositoryURL string    `json:"repository_url"`
		Number        int       `json:"number"`
		UpdatedAt     time.Time `json:"updated_at"`
		User          *struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"items"`
}

// SearchAuthoredPRs returns open PRs authored by login, normalized with
// reason=author and no thread id.
func (c *Client) SearchAuthoredPRs(ctx context.Context, login string) ([]Item, error) {
	if login == "" {
		return nil, nil
	}
	q := fmt.Sprintf("is:pr is:open author:%s", login)
	return c.searchIssues(ctx, q, ReasonAuthor)
}

// SearchInvolvedPRs returns open PRs where login is review-requested or
// assigned. Used by the background poll to discover newly incoming items.
func (c *Client) SearchInvolvedPRs(ctx context.Context, login string) ([]Item, error) {
	if login == "" {
		return nil, nil
	}
	q := fmt.Sprintf("is:pr is:open (review-requested:%s OR assignee:%s)", login, login)
	return c.searchIssues(ctx, q, ReasonReviewRequested)
}

func (c *Client) searchIssues(ctx context.Context, q, reason string) ([]Item, error) {
	path := "/search/issues?q=" + url.QueryEscape(q) + "&per_page=50"
	var result ghSearchResult
	if err := c.getJSON(ctx, path, "search", &result); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(result.Items))
	for _, it := range result.Items {
		user := ""
		if it.User != nil {
			user = it.User.Login
		}
		items = append(items, Item{
			Title:        it.Title,
			HTMLURL:      it.HTMLURL,
			SubjectURL:   it.URL,
			RepoFullName: RepoFromRepositoryURL(it.RepositoryURL),
			Number:       it.Number,
			Reason:       reason,
			User:         user,
			UpdatedAt:    it.UpdatedAt,
		})
	}
	return items, nil
}
