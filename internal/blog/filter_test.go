package blog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/wordpress"
)

type listerFunc func(ctx context.Context, category string) ([]wordpress.PostSummary, error)

func (f listerFunc) ListPosts(ctx context.Context, category string) ([]wordpress.PostSummary, error) {
	return f(ctx, category)
}

func TestFilterSelectLoadsCategory(t *testing.T) {
	var requested []string
	lister := listerFunc(func(_ context.Context, category string) ([]wordpress.PostSummary, error) {
		requested = append(requested, category)
		return []wordpress.PostSummary{{Slug: "a-" + category}}, nil
	})
	f := NewFilter(lister, nil)
	assert.Equal(t, "all", f.State().Selected)

	state := f.Select(context.Background(), "news")
	assert.Equal(t, "news", state.Selected)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
	require.Len(t, state.Posts, 1)
	assert.Equal(t, "a-news", state.Posts[0].Slug)

	state = f.Select(context.Background(), "all")
	assert.Equal(t, "all", state.Selected)
	assert.Equal(t, []string{"news", ""}, requested)
}

func TestFilterSelectFailure(t *testing.T) {
	initial := []wordpress.PostSummary{{Slug: "kept"}}
	f := NewFilter(listerFunc(func(context.Context, string) ([]wordpress.PostSummary, error) {
		return nil, errors.New("network down")
	}), initial)

	state := f.Select(context.Background(), "news")

	assert.Equal(t, "Unable to load posts. Please try again.", state.Error)
	assert.Empty(t, state.Posts)
	assert.NotNil(t, state.Posts)
	assert.False(t, state.Loading)
}

func TestFilterErrorClearsOnNextSuccess(t *testing.T) {
	fail := true
	f := NewFilter(listerFunc(func(context.Context, string) ([]wordpress.PostSummary, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []wordpress.PostSummary{{Slug: "x"}}, nil
	}), nil)

	f.Select(context.Background(), "news")
	fail = false
	state := f.Select(context.Background(), "news")

	assert.Empty(t, state.Error)
	assert.Len(t, state.Posts, 1)
}

func TestFilterLoadingWhileInFlight(t *testing.T) {
	var f *Filter
	var during FilterState
	f = NewFilter(listerFunc(func(context.Context, string) ([]wordpress.PostSummary, error) {
		during = f.State()
		return nil, nil
	}), nil)

	f.Select(context.Background(), "guides")

	assert.True(t, during.Loading)
	assert.Equal(t, "guides", during.Selected)
	assert.False(t, f.State().Loading)
}

func TestFilterIgnoresSupersededResult(t *testing.T) {
	var f *Filter
	nested := false
	f = NewFilter(listerFunc(func(ctx context.Context, category string) ([]wordpress.PostSummary, error) {
		if category == "slow" && !nested {
			nested = true
			f.Select(ctx, "fast")
			return []wordpress.PostSummary{{Slug: "stale"}}, nil
		}
		return []wordpress.PostSummary{{Slug: "fresh"}}, nil
	}), nil)

	state := f.Select(context.Background(), "slow")

	assert.Equal(t, "fast", state.Selected)
	require.Len(t, state.Posts, 1)
	assert.Equal(t, "fresh", state.Posts[0].Slug)
}
