package wordpress

// Raw GraphQL payloads. Every field is optional; normalisation in normalize.go is the only
// place these pointers are dereferenced.

type rawCategory struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

type rawCategoryConnection struct {
	Nodes []*rawCategory `json:"nodes"`
}

type rawMediaItem struct {
	SourceURL *string `json:"sourceUrl"`
}

type rawFeaturedImage struct {
	Node *rawMediaItem `json:"node"`
}

type rawCustomFieldGroup struct {
	TestPost *string `json:"testPost"`
}

type rawPost struct {
	ID            *string                `json:"id"`
	Title         *string                `json:"title"`
	Date          *string                `json:"date"`
	Slug          *string                `json:"slug"`
	Excerpt       *string                `json:"excerpt"`
	Content       *string                `json:"content"`
	FeaturedImage *rawFeaturedImage      `json:"featuredImage"`
	Categories    *rawCategoryConnection `json:"categories"`
	TestPost      *string                `json:"testPost"`
	CustomFields  *rawCustomFieldGroup   `json:"customFields"`
	Posts         *rawCustomFieldGroup   `json:"posts"`
}

type rawPostConnection struct {
	Nodes []*rawPost `json:"nodes"`
}

type postsResponse struct {
	Posts *rawPostConnection `json:"posts"`
}

type postResponse struct {
	Post *rawPost `json:"post"`
}

type categoriesResponse struct {
	Categories *rawCategoryConnection `json:"categories"`
}
