package blog

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/hanko-blog/internal/platform/observability"
)

// PrerenderResult reports what Prerender stored.
type PrerenderResult struct {
	Pages    int
	NotFound []string
}

// Prerender renders the list page and every known post into the cache.
// Slugs whose post has vanished are reported, not cached.
func (p *Pages) Prerender(ctx context.Context) (PrerenderResult, error) {
	logger := observability.LoggerOr(ctx, p.logger)
	slugs := p.source.FetchAllSlugs(ctx)

	list, err := p.RenderList(ctx, "")
	if err != nil {
		return PrerenderResult{}, fmt.Errorf("blog: prerender list: %w", err)
	}
	p.cache.Put(listPath(""), list)

	results := make([]Page, len(slugs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.prerender)
	for i, slug := range slugs {
		g.Go(func() error {
			page, err := p.RenderPost(gctx, slug)
			if err != nil {
				return fmt.Errorf("blog: prerender %s: %w", slug, err)
			}
			results[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PrerenderResult{}, err
	}

	res := PrerenderResult{Pages: 1}
	for i, page := range results {
		if page.Status != http.StatusOK {
			res.NotFound = append(res.NotFound, slugs[i])
			continue
		}
		p.cache.Put(detailPath(slugs[i]), page)
		res.Pages++
	}
	logger.Info("blog: prerendered pages", zap.Int("pages", res.Pages), zap.Int("not_found", len(res.NotFound)))
	return res, nil
}
