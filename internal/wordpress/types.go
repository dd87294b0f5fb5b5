// Package wordpress reads posts and categories from a headless WordPress GraphQL endpoint.
package wordpress

// Category is a WordPress category. Slug is its identity.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// FeaturedImage keeps the WordPress media shape so JSON clients can read featuredImage.node.sourceUrl.
type FeaturedImage struct {
	Node ImageNode `json:"node"`
}

// ImageNode holds the media source URL.
type ImageNode struct {
	SourceURL string `json:"sourceUrl"`
}

// PostSummary is the list representation of a post.
type PostSummary struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Excerpt       string         `json:"excerpt"`
	Date          *string        `json:"date"`
	CustomField   *string        `json:"testPost"`
	FeaturedImage *FeaturedImage `json:"featuredImage"`
	Categories    []Category     `json:"categories"`
}

// FeaturedImageURL returns the featured image source or "".
func (p PostSummary) FeaturedImageURL() string {
	if p.FeaturedImage == nil {
		return ""
	}
	return p.FeaturedImage.Node.SourceURL
}

// PostDetail is a single post including its rendered HTML body.
type PostDetail struct {
	PostSummary
	Content string `json:"content"`
}
