package feed

import (
	"testing"
	"time"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func post(id, author string, minutes int, likes ...string) *models.Post {
	return &models.Post{
		ID:         id,
		AuthorID:   author,
		AuthorName: "name-" + author,
		Text:       "text of " + id,
		CreatedAt:  base.Add(time.Duration(minutes) * time.Minute),
		LikedBy:    likes,
	}
}

func ids(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func fixture() []*models.Post {
	return []*models.Post{
		post("p1", "u1", 1, "u2"),
		post("p2", "u2", 2),
		post("p3", "u3", 3, "u1", "u2"),
		post("p4", "u2", 4, "u3"),
	}
}

func TestCompose_HomeScopeIsUnfiltered(t *testing.T) {
	t.Parallel()
	viewer := &models.User{ID: "u1"}
	got := Compose(fixture(), viewer, Query{Scope: ScopeHome, Sort: SortLatest})
	assert.Equal(t, []string{"p4", "p3", "p2", "p1"}, ids(got))
}

func TestCompose_FeedScopeOnlyViewerAndFollowed(t *testing.T) {
	t.Parallel()
	viewer := &models.User{ID: "u1", Following: []string{"u2"}}
	got := Compose(fixture(), viewer, Query{Scope: ScopeFeed})
	assert.Equal(t, []string{"p4", "p2", "p1"}, ids(got))
	for _, p := range got {
		assert.True(t, p.AuthorID == viewer.ID || viewer.IsFollowing(p.AuthorID))
	}
}

func TestCompose_FeedScopeWithoutViewerIsHome(t *testing.T) {
	t.Parallel()
	got := Compose(fixture(), nil, Query{Scope: ScopeFeed})
	assert.Len(t, got, 4)
}

func TestCompose_SortModes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortLatest, []string{"p4", "p3", "p2", "p1"}},
		{SortOldest, []string{"p1", "p2", "p3", "p4"}},
		{SortMostLiked, []string{"p3", "p1", "p4", "p2"}},
		{"", []string{"p4", "p3", "p2", "p1"}},
		{"random", []string{"p4", "p3", "p2", "p1"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Compose(fixture(), nil, Query{Sort: tt.mode})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestCompose_MostLikedIsStableOnTies(t *testing.T) {
	t.Parallel()
	posts := []*models.Post{
		post("a", "u1", 5, "x"),
		post("b", "u1", 1),
		post("c", "u1", 9, "y"),
		post("d", "u1", 3),
		post("e", "u1", 7, "x", "y"),
	}
	got := Compose(posts, nil, Query{Sort: SortMostLiked})
	assert.Equal(t, []string{"e", "a", "c", "b", "d"}, ids(got))
}

func TestCompose_SearchMatchesTextAuthorAndComments(t *testing.T) {
	t.Parallel()
	posts := fixture()
	posts[1].Text = "Hello World"
	posts[2].Comments = []models.Comment{{ID: "c1", AuthorName: "Walter", Text: "nice"}}
	posts[3].AuthorName = "Oswald"

	got := Compose(posts, nil, Query{Search: "  WAL ", Sort: SortOldest})
	assert.Equal(t, []string{"p3", "p4"}, ids(got))

	got = Compose(posts, nil, Query{Search: "world"})
	assert.Equal(t, []string{"p2"}, ids(got))

	got = Compose(posts, nil, Query{Search: "nothing matches this"})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	posts := fixture()
	before := ids(posts)

	got := Compose(posts, nil, Query{Sort: SortMostLiked})
	require.Len(t, got, len(posts))
	assert.Equal(t, before, ids(posts))

	got[0] = nil
	assert.NotNil(t, posts[0])
}

func TestParseScopeAndSort(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ScopeFeed, ParseScope(" Feed "))
	assert.Equal(t, ScopeHome, ParseScope("home"))
	assert.Equal(t, ScopeHome, ParseScope("everything"))
	assert.Equal(t, SortMostLiked, ParseSortMode("MOST-LIKED"))
	assert.Equal(t, SortOldest, ParseSortMode("oldest"))
	assert.Equal(t, SortLatest, ParseSortMode(""))
}

func TestProfilePosts(t *testing.T) {
	t.Parallel()
	got := ProfilePosts(fixture(), "u2")
	assert.Equal(t, []string{"p4", "p2"}, ids(got))
	assert.Empty(t, ProfilePosts(fixture(), "nobody"))
}
