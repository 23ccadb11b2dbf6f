package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// ErrNoToken indicates no personal access token has been configured.
// Callers surface this as a prompt to run `prinbox auth`, not as a retryable failure.
var ErrNoToken = errors.New("github token not configured")

// Doer executes a prepared HTTP request and returns its response.
// The default implementation is http.DefaultClient.Do.
// Tests can inject a mock implementation.
type Doer func(req *http.Request) (*http.Response, error)

// APIError is a non-2xx response from the GitHub API.
type APIError struct {
	Op         string // short operation name, e.g. "notifications"
	Status     int
	StatusText string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s %s", e.Op, e.Status, e.StatusText, e.Body)
}

// IsAuthError reports whether err is a 401/403 API response.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// Client talks to the GitHub REST and GraphQL APIs with a personal access token.
type Client struct {
	baseURL string
	token   string
	do      Doer
}

// NewClient creates a Client for the given token.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		do:      httpClient.Do,
	}, nil
}

// NewTestClient creates a Client with a custom Doer for testing.
func NewTestClient(token string, do Doer) *Client {
	return &Client{baseURL: DefaultBaseURL, token: token, do: do}
}

// User is the authenticated GitHub user.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// GetUser fetches the authenticated user.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/user", "user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// newRequest builds an authenticated request. When rawURL is absolute it is
// used as-is (subject detail URLs come back absolute from the API).
func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	if !strings.HasPrefix(rawURL, "https://") && !strings.HasPrefix(rawURL, "http://") {
		rawURL = c.baseURL + rawURL
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	return req, nil
}

// getJSON performs a GET and decodes the JSON body into dest.
func (c *Client) getJSON(ctx context.Context, rawURL, op string, dest interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	res, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return apiError(op, res)
	}
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", op, err)
	}
	return nil
}

// decodeBody decodes a JSON response body into dest.
func decodeBody(res *http.Response, dest interface{}) error {
	return json.NewDecoder(res.Body).Decode(dest)
}

// apiError drains the response body into an APIError.
func apiError(op string, res *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &APIError{
		Op:         op,
		Status:     res.StatusCode,
		StatusText: http.StatusText(res.StatusCode),
		Body:       strings.TrimSpace(string(body)),
	}
}
