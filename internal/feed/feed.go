// Package feed composes the ordered list of posts a viewer sees.
//
// Compose is pure: it never mutates its inputs and keeps no state between
// calls, since the backing store may change between them.
package feed

import (
	"slices"
	"strings"

	"socialfeed/internal/models"
)

// Scope selects which authors' posts are visible.
type Scope string

const (
	// ScopeHome shows every post.
	ScopeHome Scope = "home"
	// ScopeFeed shows posts by the viewer and the users they follow.
	ScopeFeed Scope = "feed"
)

// SortMode orders the composed feed.
type SortMode string

const (
	SortLatest    SortMode = "latest"
	SortOldest    SortMode = "oldest"
	SortMostLiked SortMode = "most-liked"
)

// ParseScope maps user input to a Scope, defaulting to ScopeHome.
func ParseScope(s string) Scope {
	if Scope(strings.ToLower(strings.TrimSpace(s))) == ScopeFeed {
		return ScopeFeed
	}
	return ScopeHome
}

// ParseSortMode maps user input to a SortMode, defaulting to SortLatest.
func ParseSortMode(s string) SortMode {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SortOldest, SortMostLiked:
		return m
	default:
		return SortLatest
	}
}

// Query holds the feed parameters chosen by the viewer.
type Query struct {
	Scope  Scope
	Search string
	Sort   SortMode
}

// Compose filters posts by scope, then by search term, then sorts them.
// A nil viewer makes ScopeFeed behave like ScopeHome.
func Compose(posts []*models.Post, viewer *models.User, q Query) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range posts {
		if p == nil {
			continue
		}
		if q.Scope == ScopeFeed && viewer != nil && !visibleInFeed(p, viewer) {
			continue
		}
		if term != "" && !MatchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	sortPosts(out, ParseSortMode(string(q.Sort)))
	return out
}

func visibleInFeed(p *models.Post, viewer *models.User) bool {
	return p.AuthorID == viewer.ID || viewer.IsFollowing(p.AuthorID)
}

// MatchesTerm reports whether the post text, author name, or any comment's
// text or author name contains term. term must already be lowercased.
func MatchesTerm(p *models.Post, term string) bool {
	if containsFold(p.Text, term) || containsFold(p.AuthorName, term) {
		return true
	}
	for _, c := range p.Comments {
		if containsFold(c.Text, term) || containsFold(c.AuthorName, term) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

func sortPosts(posts []*models.Post, mode SortMode) {
	switch mode {
	case SortOldest:
		slices.SortStableFunc(posts, func(a, b *models.Post) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortMostLiked:
		slices.SortStableFunc(posts, func(a, b *models.Post) int {
			return b.LikeCount() - a.LikeCount()
		})
	default:
		slices.SortStableFunc(posts, func(a, b *models.Post) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
}

// ProfilePosts returns the posts authored by authorID, newest first.
func ProfilePosts(posts []*models.Post, authorID string) []*models.Post {
	out := make([]*models.Post, 0)
	for _, p := range posts {
		if p != nil && p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	sortPosts(out, SortLatest)
	return out
}
