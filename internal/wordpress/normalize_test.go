package wordpress

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func TestMapPostSummaryDefaults(t *testing.T) {
	got := mapPostSummary(&rawPost{})
	want := PostSummary{Categories: []Category{}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapPostSummary mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(want, mapPostSummary(nil)); diff != "" {
		t.Fatalf("mapPostSummary(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeCustomFieldPriority(t *testing.T) {
	tests := []struct {
		name string
		node *rawPost
		want *string
	}{
		{name: "none", node: &rawPost{}},
		{name: "direct wins", node: &rawPost{
			TestPost:     strPtr("direct"),
			CustomFields: &rawCustomFieldGroup{TestPost: strPtr("custom")},
			Posts:        &rawCustomFieldGroup{TestPost: strPtr("posts")},
		}, want: strPtr("direct")},
		{name: "customFields before posts", node: &rawPost{
			CustomFields: &rawCustomFieldGroup{TestPost: strPtr("custom")},
			Posts:        &rawCustomFieldGroup{TestPost: strPtr("posts")},
		}, want: strPtr("custom")},
		{name: "empty group falls through", node: &rawPost{
			CustomFields: &rawCustomFieldGroup{},
			Posts:        &rawCustomFieldGroup{TestPost: strPtr("posts")},
		}, want: strPtr("posts")},
		{name: "empty string is a value", node: &rawPost{TestPost: strPtr("")}, want: strPtr("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, normalizeCustomField(tt.node)); diff != "" {
				t.Fatalf("custom field mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractPostSummariesFromPayload(t *testing.T) {
	payload := `{"posts":{"nodes":[
		{"id":"1","title":"Hello","slug":"hello","excerpt":null,"date":null,
		 "featuredImage":{"node":null},"categories":null,"posts":{"testPost":"grouped"}},
		null
	]}}`

	got, ok, err := extractPostSummaries(json.RawMessage(payload))
	if err != nil || !ok {
		t.Fatalf("extractPostSummaries ok=%v err=%v", ok, err)
	}
	want := []PostSummary{
		{ID: "1", Title: "Hello", Slug: "hello", CustomField: strPtr("grouped"), Categories: []Category{}},
		{Categories: []Category{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractPostSummariesMissingConnection(t *testing.T) {
	got, ok, err := extractPostSummaries(json.RawMessage(`{"posts":null}`))
	if err != nil || !ok {
		t.Fatalf("expected defined empty result, ok=%v err=%v", ok, err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestExtractPostSummariesRejectsMalformedPayload(t *testing.T) {
	if _, _, err := extractPostSummaries(json.RawMessage(`{"posts":{"nodes":"nope"}}`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFeaturedImageRequiresSource(t *testing.T) {
	if img := mapFeaturedImage(&rawFeaturedImage{Node: &rawMediaItem{SourceURL: strPtr("")}}); img != nil {
		t.Fatalf("expected nil image for empty source, got %#v", img)
	}
	img := mapFeaturedImage(&rawFeaturedImage{Node: &rawMediaItem{SourceURL: strPtr("https://cdn/x.jpg")}})
	if img == nil || img.Node.SourceURL != "https://cdn/x.jpg" {
		t.Fatalf("unexpected image %#v", img)
	}
}

func TestPostSummaryJSONShape(t *testing.T) {
	raw, err := json.Marshal(PostSummary{ID: "1", Categories: []Category{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(raw)
	for _, fragment := range []string{`"date":null`, `"testPost":null`, `"featuredImage":null`, `"categories":[]`, `"excerpt":""`} {
		if !strings.Contains(got, fragment) {
			t.Errorf("expected %s in %s", fragment, got)
		}
	}
}

func TestSummaryVariantsShape(t *testing.T) {
	variants := buildSummaryVariants(summaryQuery{operation: "AllPosts", limit: 3})
	if len(variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(variants))
	}
	wantSelections := []string{"testPost", "customFields { testPost }", "posts { testPost }", ""}
	wantNames := []string{"AllPosts_DirectACF", "AllPosts_CustomFieldsACF", "AllPosts_PostsGroupACF", "AllPosts_Fallback"}
	for i, v := range variants {
		if v.Name != wantNames[i] {
			t.Errorf("variant %d name = %s, want %s", i, v.Name, wantNames[i])
		}
		if !strings.Contains(v.Query, "query "+wantNames[i]+"($first: Int!)") {
			t.Errorf("variant %d query missing signature:\n%s", i, v.Query)
		}
		if wantSelections[i] != "" && !strings.Contains(v.Query, "...PostSummaryFields\n      "+wantSelections[i]) {
			t.Errorf("variant %d missing selection %q:\n%s", i, wantSelections[i], v.Query)
		}
		if v.Variables["first"] != 3 {
			t.Errorf("variant %d first = %v", i, v.Variables["first"])
		}
	}
	if strings.Contains(variants[3].Query, "testPost") {
		t.Errorf("fallback variant must not select the custom field:\n%s", variants[3].Query)
	}
}

func TestDetailVariantsShape(t *testing.T) {
	variants := buildDetailVariants("hello")
	if len(variants) != 4 {
		t.Fatalf("expected 4 variants, got %d", len(variants))
	}
	for _, v := range variants {
		if !strings.Contains(v.Query, "fragment PostDetailFields on Post") || !strings.Contains(v.Query, "fragment PostSummaryFields on Post") {
			t.Errorf("variant %s missing fragments", v.Name)
		}
		if v.Variables["slug"] != "hello" {
			t.Errorf("variant %s slug = %v", v.Name, v.Variables["slug"])
		}
	}
}
