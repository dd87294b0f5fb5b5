package blog

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Page is a rendered response body with its status.
type Page struct {
	Status     int
	Body       []byte
	RenderedAt time.Time
}

// RenderFunc produces a page for a cache key.
type RenderFunc func(ctx context.Context) (Page, error)

// PageCache keeps rendered pages and re-renders entries older than the revalidate window.
// Only 200 pages are kept. A failed re-render keeps serving the previous page.
type PageCache struct {
	revalidate    time.Duration
	renderTimeout time.Duration
	now           func() time.Time

	mu      sync.RWMutex
	entries map[string]Page
	group   singleflight.Group
}

// NewPageCache returns a cache with the given revalidate window. Non-positive windows disable caching.
func NewPageCache(revalidate time.Duration) *PageCache {
	return &PageCache{
		revalidate:    revalidate,
		renderTimeout: defaultRenderTimeout,
		now:           time.Now,
		entries:       map[string]Page{},
	}
}

const defaultRenderTimeout = 30 * time.Second

// Get returns the cached page for key, rendering it when missing or stale.
// Concurrent callers for the same key share one render. The shared render is detached from the
// caller's cancellation and bounded by its own timeout; a caller that goes away gets the stale page
// or its context error while the render carries on for the others.
func (c *PageCache) Get(ctx context.Context, key string, render RenderFunc) (Page, error) {
	if c.revalidate <= 0 {
		return render(ctx)
	}
	cached, ok := c.lookup(key)
	if ok && c.now().Sub(cached.RenderedAt) < c.revalidate {
		return cached, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.renderTimeout)
		defer cancel()
		page, err := render(rctx)
		if err != nil {
			return Page{}, err
		}
		if page.Status == 0 {
			page.Status = http.StatusOK
		}
		page.RenderedAt = c.now()
		if page.Status == http.StatusOK {
			c.store(key, page)
		}
		return page, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		if ok {
			return cached, nil
		}
		return Page{}, ctx.Err()
	}
	if res.Err != nil {
		if ok {
			return cached, nil
		}
		return Page{}, res.Err
	}
	return res.Val.(Page), nil
}

// Put stores page under key, stamping it as freshly rendered.
func (c *PageCache) Put(key string, page Page) {
	if page.Status == 0 {
		page.Status = http.StatusOK
	}
	page.RenderedAt = c.now()
	c.store(key, page)
}

// Invalidate drops key so the next Get renders it again.
func (c *PageCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports how many pages are cached.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PageCache) lookup(key string) (Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	page, ok := c.entries[key]
	return page, ok
}

func (c *PageCache) store(key string, page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = page
}
