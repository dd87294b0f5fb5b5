package blog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClientListPosts(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/posts", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","title":"T","slug":"t","excerpt":"","date":null,"testPost":null,"featuredImage":null,"categories":[]}]`))
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL + "/")
	require.NoError(t, err)

	posts, err := client.ListPosts(context.Background(), "news & views")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "t", posts[0].Slug)
	assert.Nil(t, posts[0].CustomField)
	assert.Equal(t, "category=news+%26+views", gotQuery)

	_, err = client.ListPosts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestAPIClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewAPIClient(srv.URL)
	require.NoError(t, err)

	f := NewFilter(client, nil)
	state := f.Select(context.Background(), "news")
	assert.Equal(t, LoadErrorMessage, state.Error)
	assert.Empty(t, state.Posts)
}

func TestNewAPIClientRejectsRelativeURL(t *testing.T) {
	_, err := NewAPIClient("/api")
	assert.Error(t, err)
}
