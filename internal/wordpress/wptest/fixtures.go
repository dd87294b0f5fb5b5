package wptest

// PostNode builds a raw GraphQL post node with the fields every query selects.
func PostNode(id, slug, title string, categories ...map[string]any) map[string]any {
	if categories == nil {
		categories = []map[string]any{}
	}
	return map[string]any{
		"id":            id,
		"title":         title,
		"date":          "2025-01-10T09:00:00",
		"slug":          slug,
		"excerpt":       "<p>" + title + " excerpt</p>",
		"featuredImage": nil,
		"categories":    map[string]any{"nodes": categories},
	}
}

// CategoryNode builds a raw category node.
func CategoryNode(name, slug string) map[string]any {
	return map[string]any{"name": name, "slug": slug}
}

// With returns a copy of node with key set to value.
func With(node map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(node)+1)
	for k, v := range node {
		out[k] = v
	}
	out[key] = value
	return out
}

// PostsData wraps nodes in the posts connection shape.
func PostsData(nodes ...map[string]any) map[string]any {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	return map[string]any{"posts": map[string]any{"nodes": nodes}}
}

// PostData wraps a single post node; a nil node models an unknown slug.
func PostData(node map[string]any) map[string]any {
	if node == nil {
		return map[string]any{"post": nil}
	}
	return map[string]any{"post": node}
}

// CategoriesData wraps nodes in the categories connection shape.
func CategoriesData(nodes ...map[string]any) map[string]any {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	return map[string]any{"categories": map[string]any{"nodes": nodes}}
}
