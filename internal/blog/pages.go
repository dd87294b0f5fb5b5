// Package blog renders the post list and post detail pages, caches them, and serves the filter widget.
package blog

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/hanko-blog/internal/platform/observability"
	"finitefield.org/hanko-blog/internal/wordpress"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets/*
var assetFS embed.FS

const (
	defaultSiteName       = "Blog"
	defaultRevalidate     = 60 * time.Second
	descriptionLimit      = 160
	defaultPrerenderLimit = 4
	allCategories         = "all"
)

// Assets returns the static files served under /assets/.
func Assets() fs.FS {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// ContentSource is the subset of the WordPress fetcher the pages read from.
type ContentSource interface {
	FetchAllPosts(ctx context.Context, limit int) []wordpress.PostSummary
	FetchPostsByCategory(ctx context.Context, slug string, limit int) []wordpress.PostSummary
	FetchPostBySlug(ctx context.Context, slug string) *wordpress.PostDetail
	FetchAllCategories(ctx context.Context) ([]wordpress.Category, error)
	FetchAllSlugs(ctx context.Context) []string
}

// Pages renders blog pages through a PageCache.
type Pages struct {
	source     ContentSource
	renderer   *Renderer
	cache      *PageCache
	revalidate time.Duration
	siteName   string
	language   string
	apiPath    string
	logger     *zap.Logger
	prerender  int

	list     *template.Template
	detail   *template.Template
	notFound *template.Template
}

// Option customises Pages.
type Option func(*Pages)

// WithSiteName sets the name shown in titles and the header.
func WithSiteName(name string) Option {
	return func(p *Pages) {
		if name = strings.TrimSpace(name); name != "" {
			p.siteName = name
		}
	}
}

// WithLanguage sets the document language tag.
func WithLanguage(tag string) Option {
	return func(p *Pages) {
		if tag = strings.TrimSpace(tag); tag != "" {
			p.language = tag
		}
	}
}

// WithRevalidate sets how long a rendered page is served before it is rebuilt.
func WithRevalidate(d time.Duration) Option {
	return func(p *Pages) {
		if d > 0 {
			p.revalidate = d
		}
	}
}

// WithLogger sets the logger used when no request logger is on the context.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pages) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithAPIPath sets the posts endpoint the filter widget calls.
func WithAPIPath(path string) Option {
	return func(p *Pages) {
		if path = strings.TrimSpace(path); path != "" {
			p.apiPath = path
		}
	}
}

// WithPrerenderConcurrency bounds how many pages Prerender renders at once.
func WithPrerenderConcurrency(n int) Option {
	return func(p *Pages) {
		if n > 0 {
			p.prerender = n
		}
	}
}

// NewPages parses the embedded templates and returns the page set.
func NewPages(source ContentSource, opts ...Option) (*Pages, error) {
	p := &Pages{
		source:     source,
		renderer:   NewRenderer(),
		revalidate: defaultRevalidate,
		siteName:   defaultSiteName,
		language:   "en",
		apiPath:    "/api/posts",
		logger:     zap.NewNop(),
		prerender:  defaultPrerenderLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cache = NewPageCache(p.revalidate)

	var err error
	if p.list, err = parsePage("list.tmpl"); err != nil {
		return nil, err
	}
	if p.detail, err = parsePage("detail.tmpl"); err != nil {
		return nil, err
	}
	if p.notFound, err = parsePage("notfound.tmpl"); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePage(name string) (*template.Template, error) {
	t, err := template.New("base").ParseFS(templateFS, "templates/base.tmpl", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("blog: parse %s: %w", name, err)
	}
	return t, nil
}

// Cache exposes the page cache, mainly for prerendering and tests.
func (p *Pages) Cache() *PageCache {
	return p.cache
}

// Routes registers the page routes on r.
func (p *Pages) Routes(r chi.Router) {
	r.Get("/", p.redirectHome)
	r.Get("/blog", p.servePostList)
	r.Get("/blog/{slug}", p.servePost)
}

func (p *Pages) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/blog", http.StatusFound)
}

func (p *Pages) servePostList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	key := listPath(category)
	p.serve(w, r, key, func(ctx context.Context) (Page, error) {
		return p.RenderList(ctx, category)
	})
}

func (p *Pages) servePost(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	p.serve(w, r, detailPath(slug), func(ctx context.Context) (Page, error) {
		return p.RenderPost(ctx, slug)
	})
}

func (p *Pages) serve(w http.ResponseWriter, r *http.Request, key string, render RenderFunc) {
	page, err := p.cache.Get(r.Context(), key, render)
	if err != nil {
		observability.LoggerOr(r.Context(), p.logger).Error("blog: render page failed", zap.String("page", key), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page.Status == http.StatusOK {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(p.revalidate.Seconds())))
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(page.Status)
	_, _ = w.Write(page.Body)
}

// RenderList renders the post list, optionally narrowed to one category.
// Posts and categories load concurrently; a category failure hides the filter instead of failing the page.
func (p *Pages) RenderList(ctx context.Context, category string) (Page, error) {
	var (
		posts      []wordpress.PostSummary
		categories []wordpress.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if category == "" || category == allCategories {
			posts = p.source.FetchAllPosts(gctx, 0)
		} else {
			posts = p.source.FetchPostsByCategory(gctx, category, 0)
		}
		return nil
	})
	g.Go(func() error {
		cats, err := p.source.FetchAllCategories(gctx)
		if err != nil {
			observability.LoggerOr(ctx, p.logger).Error("blog: categories unavailable, rendering without filter", zap.Error(err))
			return nil
		}
		categories = cats
		return nil
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	// Fetches degrade to empty results once ctx is done; that must not become a cached empty list.
	if err := ctx.Err(); err != nil {
		return Page{}, fmt.Errorf("blog: render list: %w", err)
	}

	selected := category
	if selected == "" {
		selected = allCategories
	}
	view := listView{
		Meta:     p.meta("", ""),
		APIPath:  p.apiPath,
		Selected: selected,
	}
	for _, c := range categories {
		view.Categories = append(view.Categories, categoryLink{
			Name:   c.Name,
			Slug:   c.Slug,
			URL:    listPath(c.Slug),
			Active: c.Slug == selected,
		})
	}
	for _, post := range posts {
		view.Posts = append(view.Posts, p.card(post))
	}
	return p.execute(p.list, http.StatusOK, view)
}

// RenderPost renders the detail page for slug, or the not-found page.
func (p *Pages) RenderPost(ctx context.Context, slug string) (Page, error) {
	post := p.source.FetchPostBySlug(ctx, slug)
	if err := ctx.Err(); err != nil {
		return Page{}, fmt.Errorf("blog: render post: %w", err)
	}
	if post == nil {
		return p.execute(p.notFound, http.StatusNotFound, notFoundView{
			Meta: p.meta("Not found", ""),
		})
	}

	title := PlainText(post.Title)
	description := Summarize(post.Excerpt, descriptionLimit)
	view := detailView{
		Meta:     p.meta(title, description),
		Slug:     post.Slug,
		Title:    p.renderer.Inline(post.Title),
		Date:     FormatDate(post.Date),
		ImageURL: post.FeaturedImageURL(),
		ImageAlt: title,
		Content:  p.renderer.HTML(post.Content),
	}
	view.Meta.JSONLD = postStructuredData(p.siteName, post, title, description)
	if post.CustomField != nil && strings.TrimSpace(*post.CustomField) != "" {
		view.HasCustomField = true
		view.CustomField = p.renderer.Markdown(*post.CustomField)
	}
	for _, c := range post.Categories {
		view.Categories = append(view.Categories, categoryLink{Name: c.Name, Slug: c.Slug, URL: listPath(c.Slug)})
	}
	return p.execute(p.detail, http.StatusOK, view)
}

func (p *Pages) meta(title, description string) pageMeta {
	return pageMeta{
		SiteName:    p.siteName,
		Lang:        p.language,
		Title:       title,
		Description: description,
	}
}

func (p *Pages) card(post wordpress.PostSummary) postCard {
	return postCard{
		Slug:     post.Slug,
		URL:      detailPath(post.Slug),
		Title:    p.renderer.Inline(post.Title),
		Excerpt:  p.renderer.HTML(post.Excerpt),
		Date:     FormatDate(post.Date),
		ImageURL: post.FeaturedImageURL(),
		ImageAlt: PlainText(post.Title),
	}
}

func (p *Pages) execute(t *template.Template, status int, data any) (Page, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return Page{}, fmt.Errorf("blog: execute template: %w", err)
	}
	return Page{Status: status, Body: buf.Bytes()}, nil
}

func listPath(category string) string {
	if category == "" || category == allCategories {
		return "/blog"
	}
	return "/blog?category=" + url.QueryEscape(category)
}

func detailPath(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

type pageMeta struct {
	SiteName    string
	Lang        string
	Title       string
	Description string
	JSONLD      template.JS
}

type categoryLink struct {
	Name   string
	Slug   string
	URL    string
	Active bool
}

type postCard struct {
	Slug     string
	URL      string
	Title    template.HTML
	Excerpt  template.HTML
	Date     string
	ImageURL string
	ImageAlt string
}

type listView struct {
	Meta       pageMeta
	APIPath    string
	Selected   string
	Categories []categoryLink
	Posts      []postCard
}

type detailView struct {
	Meta           pageMeta
	Slug           string
	Title          template.HTML
	Date           string
	ImageURL       string
	ImageAlt       string
	Content        template.HTML
	HasCustomField bool
	CustomField    template.HTML
	Categories     []categoryLink
}

type notFoundView struct {
	Meta pageMeta
}
