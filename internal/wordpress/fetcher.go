package wordpress

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/platform/observability"
)

// DefaultPostLimit mirrors the page size WordPress front ends usually request.
const DefaultPostLimit = 50

// Fetcher turns logical content requests into GraphQL calls and normalised results.
// It holds no mutable state and is safe for concurrent use.
type Fetcher struct {
	exec         Executor
	logger       *zap.Logger
	defaultLimit int
}

// FetcherOption customises NewFetcher.
type FetcherOption func(*Fetcher)

// WithLogger sets the logger used when no request-scoped logger is on the context.
func WithLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDefaultLimit sets the page size used when callers pass a non-positive limit.
func WithDefaultLimit(limit int) FetcherOption {
	return func(f *Fetcher) {
		if limit > 0 {
			f.defaultLimit = limit
		}
	}
}

// NewFetcher constructs a Fetcher over exec.
func NewFetcher(exec Executor, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		exec:         exec,
		logger:       zap.NewNop(),
		defaultLimit: DefaultPostLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAllPosts returns up to limit recent posts. It never fails; an empty slice means no data.
func (f *Fetcher) FetchAllPosts(ctx context.Context, limit int) []PostSummary {
	variants := buildSummaryVariants(summaryQuery{
		operation: "AllPosts",
		limit:     f.limit(limit),
	})
	return Resolve(ctx, f.exec, f.log(ctx, "AllPosts"), variants, []PostSummary{})
}

// FetchPostsByCategory returns up to limit posts in the category named by slug.
// A blank slug returns an empty slice without contacting the endpoint.
func (f *Fetcher) FetchPostsByCategory(ctx context.Context, slug string, limit int) []PostSummary {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return []PostSummary{}
	}
	variants := buildSummaryVariants(summaryQuery{
		operation:   "PostsByCategory",
		limit:       f.limit(limit),
		variables:   map[string]any{"category": slug},
		definitions: []string{"$category: String!"},
		where:       ", where: { categoryName: $category }",
	})
	return Resolve(ctx, f.exec, f.log(ctx, "PostsByCategory"), variants, []PostSummary{})
}

// FetchPostBySlug returns the post with slug, or nil when it does not exist or cannot be fetched.
func (f *Fetcher) FetchPostBySlug(ctx context.Context, slug string) *PostDetail {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil
	}
	return Resolve(ctx, f.exec, f.log(ctx, "SinglePost"), buildDetailVariants(slug), (*PostDetail)(nil))
}

// FetchAllCategories returns every category. Unlike the post lookups, failures are returned to the caller.
func (f *Fetcher) FetchAllCategories(ctx context.Context) ([]Category, error) {
	data, err := f.exec.Exec(ctx, allCategoriesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("wordpress: fetch categories: %w", err)
	}
	var resp categoriesResponse
	if err := decodeData(data, &resp); err != nil {
		return nil, fmt.Errorf("wordpress: decode categories: %w", err)
	}
	return mapCategories(resp.Categories), nil
}

// FetchAllSlugs lists the slugs of every known post, skipping posts without one.
func (f *Fetcher) FetchAllSlugs(ctx context.Context) []string {
	posts := f.FetchAllPosts(ctx, 0)
	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		if strings.TrimSpace(p.Slug) == "" {
			continue
		}
		slugs = append(slugs, p.Slug)
	}
	return slugs
}

func (f *Fetcher) limit(limit int) int {
	if limit > 0 {
		return limit
	}
	return f.defaultLimit
}

func (f *Fetcher) log(ctx context.Context, operation string) *zap.Logger {
	return observability.LoggerOr(ctx, f.logger).With(zap.String("operation", operation))
}
