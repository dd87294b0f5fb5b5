package wordpress

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

// normalizeCustomField picks the first non-nil custom field shape: direct, customFields group, posts group.
func normalizeCustomField(node *rawPost) *string {
	if node == nil {
		return nil
	}
	if node.TestPost != nil {
		return cloneString(node.TestPost)
	}
	if node.CustomFields != nil && node.CustomFields.TestPost != nil {
		return cloneString(node.CustomFields.TestPost)
	}
	if node.Posts != nil && node.Posts.TestPost != nil {
		return cloneString(node.Posts.TestPost)
	}
	return nil
}

func mapCategory(node *rawCategory) Category {
	if node == nil {
		return Category{}
	}
	return Category{
		Name: stringOrEmpty(node.Name),
		Slug: stringOrEmpty(node.Slug),
	}
}

func mapCategories(conn *rawCategoryConnection) []Category {
	if conn == nil {
		return []Category{}
	}
	out := make([]Category, 0, len(conn.Nodes))
	for _, node := range conn.Nodes {
		out = append(out, mapCategory(node))
	}
	return out
}

func mapFeaturedImage(img *rawFeaturedImage) *FeaturedImage {
	if img == nil || img.Node == nil || img.Node.SourceURL == nil || *img.Node.SourceURL == "" {
		return nil
	}
	return &FeaturedImage{Node: ImageNode{SourceURL: *img.Node.SourceURL}}
}

func mapPostSummary(node *rawPost) PostSummary {
	if node == nil {
		return PostSummary{Categories: []Category{}}
	}
	return PostSummary{
		ID:            stringOrEmpty(node.ID),
		Title:         stringOrEmpty(node.Title),
		Slug:          stringOrEmpty(node.Slug),
		Excerpt:       stringOrEmpty(node.Excerpt),
		Date:          cloneString(node.Date),
		CustomField:   normalizeCustomField(node),
		FeaturedImage: mapFeaturedImage(node.FeaturedImage),
		Categories:    mapCategories(node.Categories),
	}
}

func mapPostSummaries(conn *rawPostConnection) []PostSummary {
	if conn == nil {
		return []PostSummary{}
	}
	out := make([]PostSummary, 0, len(conn.Nodes))
	for _, node := range conn.Nodes {
		out = append(out, mapPostSummary(node))
	}
	return out
}

func mapPostDetail(node *rawPost) *PostDetail {
	if node == nil {
		return nil
	}
	return &PostDetail{
		PostSummary: mapPostSummary(node),
		Content:     stringOrEmpty(node.Content),
	}
}
