// Package api exposes WordPress content as JSON for the page layer and external clients.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/platform/httpx"
	"finitefield.org/hanko-blog/internal/platform/observability"
	"finitefield.org/hanko-blog/internal/wordpress"
)

const defaultMaxAge = 60 * time.Second

// ContentSource is the subset of the WordPress fetcher the JSON routes need.
type ContentSource interface {
	FetchAllPosts(ctx context.Context, limit int) []wordpress.PostSummary
	FetchPostsByCategory(ctx context.Context, slug string, limit int) []wordpress.PostSummary
	FetchPostBySlug(ctx context.Context, slug string) *wordpress.PostDetail
	FetchAllCategories(ctx context.Context) ([]wordpress.Category, error)
}

// ContentHandlers serves the /api content routes.
type ContentHandlers struct {
	source ContentSource
	maxAge time.Duration
	logger *zap.Logger
}

// ContentOption customises ContentHandlers.
type ContentOption func(*ContentHandlers)

// WithMaxAge sets the Cache-Control max-age advertised on successful responses.
func WithMaxAge(d time.Duration) ContentOption {
	return func(h *ContentHandlers) {
		if d > 0 {
			h.maxAge = d
		}
	}
}

// WithLogger sets the logger used when no request logger is on the context.
func WithLogger(logger *zap.Logger) ContentOption {
	return func(h *ContentHandlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewContentHandlers constructs handlers backed by source.
func NewContentHandlers(source ContentSource, opts ...ContentOption) *ContentHandlers {
	h := &ContentHandlers{
		source: source,
		maxAge: defaultMaxAge,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the content endpoints on r.
func (h *ContentHandlers) Routes(r chi.Router) {
	r.Get("/posts", h.listPosts)
	r.Get("/posts/{slug}", h.getPost)
	r.Get("/categories", h.listCategories)
}

// listPosts answers 200 with whatever the fetcher produced; post lookups never fail.
func (h *ContentHandlers) listPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	var posts []wordpress.PostSummary
	if category != "" {
		posts = h.source.FetchPostsByCategory(ctx, category, 0)
	} else {
		posts = h.source.FetchAllPosts(ctx, 0)
	}
	if posts == nil {
		posts = []wordpress.PostSummary{}
	}
	h.writeJSON(w, r, posts)
}

func (h *ContentHandlers) getPost(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	post := h.source.FetchPostBySlug(r.Context(), slug)
	if post == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("post_not_found", fmt.Sprintf("post %q not found", slug), http.StatusNotFound))
		return
	}
	h.writeJSON(w, r, post)
}

// listCategories absorbs category failures at this boundary so the route always answers 200.
func (h *ContentHandlers) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.source.FetchAllCategories(r.Context())
	if err != nil {
		observability.LoggerOr(r.Context(), h.logger).Error("api: list categories failed", zap.Error(err))
		w.Header().Set("Cache-Control", "no-store")
		_ = httpx.WriteJSON(w, []wordpress.Category{})
		return
	}
	if categories == nil {
		categories = []wordpress.Category{}
	}
	h.writeJSON(w, r, categories)
}

func (h *ContentHandlers) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	if err := httpx.WriteJSON(w, v); err != nil {
		observability.LoggerOr(r.Context(), h.logger).Warn("api: encode response", zap.Error(err))
	}
}
