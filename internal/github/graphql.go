package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// searchPRsQuery covers accounts whose notifications feed is empty or
// restricted; it is the fallback source, queried only when the primary
// sources produced nothing.
const searchPRsQuery = `query SearchPRs($q: String!, $first: Int!) { search(query: $q, type: ISSUE, first: $first) { nodes { ... on PullRequest { number title url repository { nameWithOwner } updatedAt author { login } } } } }`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		Search struct {
			Nodes []struct {
				Number     int    `json:"number"`
				Title      string `json:"title"`
				URL        string `json:"url"`
				Repository *struct {
					NameWithOwner string `json:"nameWithOwner"`
				} `json:"repository"`
				UpdatedAt time.Time `json:"updatedAt"`
				Author    *struct {
					Login string `json:"login"`
				} `json:"author"`
			} `json:"nodes"`
		} `json:"search"`
	} `json:"data"`
}

// SearchPRsGraphQL returns open PRs where login is review-requested,
// assigned, or the author, via a single GraphQL search.
func (c *Client) SearchPRsGraphQL(ctx context.Context, login string) ([]Item, error) {
	if login == "" {
		return nil, nil
	}
	q := fmt.Sprintf("is:pr is:open (review-requested:%s OR assignee:%s OR author:%s)", login, login, login)
	payload, err := json.Marshal(graphQLRequest{
		Query:     searchPRsQuery,
		Variables: map[string]interface{}{"q": q, "first": 50},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graphql query: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/graphql", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	// The GraphQL endpoint wants bearer auth and a JSON body.
	req.Header.Set("Authorization", "bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, apiError("graphql", res)
	}

	var decoded graphQLResponse
	if err := decodeBody(res, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse graphql response: %w", err)
	}

	nodes := decoded.Data.Search.Nodes
	items := make([]Item, 0, len(nodes))
	for _, n := range nodes {
		// Non-PR search nodes decode as zero values; skip them.
		if n.URL == "" && n.Number == 0 {
			continue
		}
		repo := ""
		if n.Repository != nil {
			repo = n.Repository.NameWithOwner
		}
		user := ""
		if n.Author != nil {
			user = n.Author.Login
		}
		items = append(items, Item{
			Title:        n.Title,
			HTMLURL:      n.URL,
			RepoFullName: repo,
			Number:       n.Number,
			Reason:       ReasonGraphQL,
			User:         user,
			UpdatedAt:    n.UpdatedAt,
		})
	}
	return items, nil
}
