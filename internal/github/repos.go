package github

import (
	"context"
	"fmt"
)

// RepoMeta is the subset of repository metadata rendered on item cards.
type RepoMeta struct {
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stars"`
}

// GetRepoMeta fetches repository metadata for a full name like "owner/repo".
func (c *Client) GetRepoMeta(ctx context.Context, fullName string) (*RepoMeta, error) {
	if fullName == "" {
		return nil, fmt.Errorf("empty repo name")
	}
	var raw struct {
		Description string `json:"description"`
		Language    string `json:"language"`
		Stars       int    `json:"stargazers_count"`
	}
	if err := c.getJSON(ctx, "/repos/"+fullName, "repo", &raw); err != nil {
		return nil, err
	}
	return &RepoMeta{Description: raw.Description, Language: raw.Language, Stars: raw.Stars}, nil
}

// GetIssueLabels fetches the label names on an issue or PR.
func (c *Client) GetIssueLabels(ctx context.Context, repoFullName string, number int) ([]string, error) {
	if repoFullName == "" || number == 0 {
		return nil, nil
	}
	var raw struct {
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	}
	path := fmt.Sprintf("/repos/%s/issues/%d", repoFullName, number)
	if err := c.getJSON(ctx, path, "issue", &raw); err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(raw.Labels))
	for _, l := range raw.Labels {
		labels = append(labels, l.Name)
	}
	return labels, nil
}
