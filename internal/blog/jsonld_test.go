package blog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/wordpress"
)

func TestPostStructuredData(t *testing.T) {
	date := "2025-01-10T09:00:00"
	post := &wordpress.PostDetail{PostSummary: wordpress.PostSummary{
		Slug:          "hello-world",
		Date:          &date,
		FeaturedImage: &wordpress.FeaturedImage{Node: wordpress.ImageNode{SourceURL: "https://cdn.example.com/a.jpg"}},
		Categories:    []wordpress.Category{{Name: "News", Slug: "news"}},
	}}

	raw := postStructuredData("Field Notes", post, "Hello </script>", "Intro")

	assert.NotContains(t, string(raw), "</script>")
	var doc struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "https://schema.org", doc.Context)
	require.Len(t, doc.Graph, 2)
	assert.Equal(t, "BlogPosting", doc.Graph[0]["@type"])
	assert.Equal(t, "Hello </script>", doc.Graph[0]["headline"])
	assert.Equal(t, date, doc.Graph[0]["datePublished"])
	assert.Equal(t, []any{"News"}, doc.Graph[0]["articleSection"])
	assert.Equal(t, "BreadcrumbList", doc.Graph[1]["@type"])
}

func TestBlogPostingOmitsMissingFields(t *testing.T) {
	m := blogPosting(&wordpress.PostDetail{PostSummary: wordpress.PostSummary{Slug: "a"}}, "A", "")
	assert.NotContains(t, m, "image")
	assert.NotContains(t, m, "datePublished")
	assert.NotContains(t, m, "description")
	assert.Equal(t, "/blog/a", m["url"])
}
