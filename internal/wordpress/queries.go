package wordpress

import (
	"encoding/json"
	"fmt"
	"strings"
)

const postSummaryFragment = `fragment PostSummaryFields on Post {
  id
  title
  date
  slug
  excerpt
  featuredImage {
    node {
      sourceUrl
    }
  }
  categories {
    nodes {
      name
      slug
    }
  }
}`

const postDetailFragment = postSummaryFragment + `
fragment PostDetailFields on Post {
  ...PostSummaryFields
  content
}`

const allCategoriesQuery = `query AllCategories {
  categories {
    nodes {
      name
      slug
    }
  }
}`

// customFieldSelection is one way a WordPress install may expose the testPost custom field.
type customFieldSelection struct {
	suffix    string
	selection string
}

// customFieldSelections is ordered by priority; the last entry omits the field entirely.
var customFieldSelections = []customFieldSelection{
	{suffix: "DirectACF", selection: "testPost"},
	{suffix: "CustomFieldsACF", selection: "customFields { testPost }"},
	{suffix: "PostsGroupACF", selection: "posts { testPost }"},
	{suffix: "Fallback"},
}

// summaryQuery describes a posts(...) list request.
type summaryQuery struct {
	operation   string
	limit       int
	variables   map[string]any
	definitions []string
	where       string
}

func buildSummaryVariants(q summaryQuery) []Variant[[]PostSummary] {
	definitions := append([]string{"$first: Int!"}, q.definitions...)
	signature := strings.Join(definitions, ", ")
	postsClause := fmt.Sprintf("posts(first: $first%s)", q.where)

	variants := make([]Variant[[]PostSummary], 0, len(customFieldSelections))
	for _, sel := range customFieldSelections {
		name := q.operation + "_" + sel.suffix
		query := fmt.Sprintf(`%s
query %s(%s) {
  %s {
    nodes {
      ...PostSummaryFields%s
    }
  }
}`, postSummaryFragment, name, signature, postsClause, extraSelection(sel, "      "))

		variables := map[string]any{"first": q.limit}
		for k, v := range q.variables {
			variables[k] = v
		}

		variants = append(variants, Variant[[]PostSummary]{
			Name:      name,
			Query:     query,
			Variables: variables,
			Extract:   extractPostSummaries,
		})
	}
	return variants
}

func buildDetailVariants(slug string) []Variant[*PostDetail] {
	variants := make([]Variant[*PostDetail], 0, len(customFieldSelections))
	for _, sel := range customFieldSelections {
		name := "SinglePost_" + sel.suffix
		query := fmt.Sprintf(`%s
query %s($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    ...PostDetailFields%s
  }
}`, postDetailFragment, name, extraSelection(sel, "    "))

		variants = append(variants, Variant[*PostDetail]{
			Name:      name,
			Query:     query,
			Variables: map[string]any{"slug": slug},
			Extract:   extractPostDetail,
		})
	}
	return variants
}

func extraSelection(sel customFieldSelection, indent string) string {
	if sel.selection == "" {
		return ""
	}
	return "\n" + indent + sel.selection
}

func extractPostSummaries(data json.RawMessage) ([]PostSummary, bool, error) {
	var resp postsResponse
	if err := decodeData(data, &resp); err != nil {
		return nil, false, err
	}
	if resp.Posts == nil {
		return []PostSummary{}, true, nil
	}
	return mapPostSummaries(resp.Posts), true, nil
}

// extractPostDetail treats "post": null as a usable answer: the post does not exist.
func extractPostDetail(data json.RawMessage) (*PostDetail, bool, error) {
	var resp postResponse
	if err := decodeData(data, &resp); err != nil {
		return nil, false, err
	}
	return mapPostDetail(resp.Post), true, nil
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
