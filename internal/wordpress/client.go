package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"
)

const defaultClientTimeout = 10 * time.Second

// Executor sends one GraphQL document and returns the response "data" member.
type Executor interface {
	Exec(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
}

// ExecutorFunc adapts ordinary functions to Executor.
type ExecutorFunc func(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)

// Exec calls the wrapped function.
func (f ExecutorFunc) Exec(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	return f(ctx, query, variables)
}

// Client talks to a single WordPress GraphQL endpoint. Construct one per process and share it.
type Client struct {
	endpoint string
	gql      *graphql.Client
}

// ClientOption customises NewClient.
type ClientOption func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    http.Header
}

// WithHTTPClient supplies the transport used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithTimeout sets the transport timeout when no custom HTTP client is supplied.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithHeader adds a header to every request, e.g. Authorization for private endpoints.
func WithHeader(key, value string) ClientOption {
	return func(o *clientOptions) {
		if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			return
		}
		o.headers.Set(key, value)
	}
}

// WithBearerToken authenticates requests with the supplied token.
func WithBearerToken(token string) ClientOption {
	token = strings.TrimSpace(token)
	if token == "" {
		return func(*clientOptions) {}
	}
	return WithHeader("Authorization", "Bearer "+token)
}

// NewClient constructs a Client for endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("wordpress: endpoint is required")
	}
	options := clientOptions{
		timeout: defaultClientTimeout,
		headers: http.Header{},
	}
	for _, opt := range opts {
		opt(&options)
	}
	hc := options.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: options.timeout}
	}

	gql := graphql.NewClient(endpoint, hc)
	if len(options.headers) > 0 {
		headers := options.headers.Clone()
		gql = gql.WithRequestModifier(func(r *http.Request) {
			for key, values := range headers {
				for _, v := range values {
					r.Header.Add(key, v)
				}
			}
		})
	}
	return &Client{endpoint: endpoint, gql: gql}, nil
}

// Endpoint returns the configured GraphQL URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Exec implements Executor. Transport failures, non-2xx statuses and GraphQL errors are all returned as errors.
func (c *Client) Exec(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	data, err := c.gql.ExecRaw(ctx, query, variables)
	if err != nil {
		return nil, fmt.Errorf("wordpress: graphql request: %w", err)
	}
	return json.RawMessage(data), nil
}
