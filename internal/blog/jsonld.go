package blog

import (
	"encoding/json"
	"html/template"
	"strings"

	"finitefield.org/hanko-blog/internal/wordpress"
)

// jsonLD marshals schema.org payloads for a <script type="application/ld+json"> block.
// encoding/json escapes <, > and &, so the output cannot close the script element.
func jsonLD(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

type breadcrumbItem struct {
	Name string
	Item string
}

func breadcrumbList(items []breadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

func blogPosting(post *wordpress.PostDetail, headline, description string) map[string]any {
	m := map[string]any{
		"@type":    "BlogPosting",
		"headline": headline,
		"url":      detailPath(post.Slug),
	}
	if description != "" {
		m["description"] = description
	}
	if post.Date != nil && strings.TrimSpace(*post.Date) != "" {
		m["datePublished"] = strings.TrimSpace(*post.Date)
	}
	if src := post.FeaturedImageURL(); src != "" {
		m["image"] = src
	}
	if len(post.Categories) > 0 {
		sections := make([]string, 0, len(post.Categories))
		for _, c := range post.Categories {
			sections = append(sections, c.Name)
		}
		m["articleSection"] = sections
	}
	return m
}

// postStructuredData builds the @graph for a post detail page.
func postStructuredData(siteName string, post *wordpress.PostDetail, headline, description string) template.JS {
	return jsonLD(map[string]any{
		"@context": "https://schema.org",
		"@graph": []any{
			blogPosting(post, headline, description),
			breadcrumbList([]breadcrumbItem{
				{Name: siteName, Item: "/blog"},
				{Name: headline, Item: detailPath(post.Slug)},
			}),
		},
	})
}
