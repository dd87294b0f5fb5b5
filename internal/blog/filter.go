package blog

import (
	"context"
	"strings"
	"sync"

	"finitefield.org/hanko-blog/internal/wordpress"
)

// LoadErrorMessage is shown when the filtered post list cannot be loaded.
const LoadErrorMessage = "Unable to load posts. Please try again."

// PostLister loads posts for a category; an empty category means all posts.
type PostLister interface {
	ListPosts(ctx context.Context, category string) ([]wordpress.PostSummary, error)
}

// FilterState is the widget state after a selection.
type FilterState struct {
	Selected string
	Posts    []wordpress.PostSummary
	Loading  bool
	Error    string
}

// Filter holds the category widget state. Only the latest selection may update it.
type Filter struct {
	lister PostLister

	mu    sync.Mutex
	seq   uint64
	state FilterState
}

// NewFilter starts with "all" selected and the given posts.
func NewFilter(lister PostLister, initial []wordpress.PostSummary) *Filter {
	if initial == nil {
		initial = []wordpress.PostSummary{}
	}
	return &Filter{
		lister: lister,
		state:  FilterState{Selected: allCategories, Posts: initial},
	}
}

// State returns a snapshot of the current state.
func (f *Filter) State() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// Select switches to slug and reloads the list. A failed load clears the posts and sets Error.
func (f *Filter) Select(ctx context.Context, slug string) FilterState {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = allCategories
	}

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state.Selected = slug
	f.state.Loading = true
	f.state.Error = ""
	f.mu.Unlock()

	category := slug
	if category == allCategories {
		category = ""
	}
	posts, err := f.lister.ListPosts(ctx, category)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		// A newer selection owns the state.
		return f.snapshot()
	}
	f.state.Loading = false
	if err != nil {
		f.state.Posts = []wordpress.PostSummary{}
		f.state.Error = LoadErrorMessage
		return f.snapshot()
	}
	if posts == nil {
		posts = []wordpress.PostSummary{}
	}
	f.state.Posts = posts
	return f.snapshot()
}

func (f *Filter) snapshot() FilterState {
	out := f.state
	out.Posts = append([]wordpress.PostSummary(nil), f.state.Posts...)
	if out.Posts == nil {
		out.Posts = []wordpress.PostSummary{}
	}
	return out
}
