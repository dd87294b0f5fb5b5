package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finitefield.org/hanko-blog/internal/wordpress"
)

// APIClient reads posts from a running server's /api/posts route.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// APIClientOption customises APIClient.
type APIClientOption func(*APIClient)

// WithAPIHTTPClient replaces the HTTP client.
func WithAPIHTTPClient(client *http.Client) APIClientOption {
	return func(c *APIClient) {
		if client != nil {
			c.http = client
		}
	}
}

// NewAPIClient returns a client for the server at baseURL.
func NewAPIClient(baseURL string, opts ...APIClientOption) (*APIClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("blog: invalid server url %q", baseURL)
	}
	c := &APIClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListPosts implements PostLister.
func (c *APIClient) ListPosts(ctx context.Context, category string) ([]wordpress.PostSummary, error) {
	endpoint := c.baseURL + "/api/posts"
	if category = strings.TrimSpace(category); category != "" {
		endpoint += "?category=" + url.QueryEscape(category)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blog: list posts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("blog: list posts: unexpected status %d", resp.StatusCode)
	}
	var posts []wordpress.PostSummary
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("blog: decode posts: %w", err)
	}
	if posts == nil {
		posts = []wordpress.PostSummary{}
	}
	return posts, nil
}
