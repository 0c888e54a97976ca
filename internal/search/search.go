// Package search runs ad hoc substring queries over users, posts and comments.
package search

import (
	"strings"

	"socialfeed/internal/models"
)

// CommentMatch pairs a matching comment with its parent post.
type CommentMatch struct {
	Comment models.Comment `json:"comment"`
	Post    *models.Post   `json:"post"`
}

// Results holds the three independent match lists in source order.
type Results struct {
	Users    []*models.User `json:"users"`
	Posts    []*models.Post `json:"posts"`
	Comments []CommentMatch `json:"comments"`
}

// Empty reports whether nothing matched.
func (r Results) Empty() bool {
	return len(r.Users) == 0 && len(r.Posts) == 0 && len(r.Comments) == 0
}

// Truncate caps every list at n entries for display. n <= 0 leaves the results untouched.
func (r Results) Truncate(n int) Results {
	if n <= 0 {
		return r
	}
	if len(r.Users) > n {
		r.Users = r.Users[:n]
	}
	if len(r.Posts) > n {
		r.Posts = r.Posts[:n]
	}
	if len(r.Comments) > n {
		r.Comments = r.Comments[:n]
	}
	return r
}

// Search matches term case-insensitively against:
// users by username, email or handle; posts by text; comments by text or author name.
// A blank term matches nothing.
func Search(term string, users []*models.User, posts []*models.Post) Results {
	res := Results{
		Users:    []*models.User{},
		Posts:    []*models.Post{},
		Comments: []CommentMatch{},
	}
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return res
	}

	for _, u := range users {
		if u == nil {
			continue
		}
		if contains(u.Username, q) || contains(u.Email, q) || contains(u.EffectiveHandle(), q) {
			res.Users = append(res.Users, u)
		}
	}

	for _, p := range posts {
		if p == nil {
			continue
		}
		if contains(p.Text, q) {
			res.Posts = append(res.Posts, p)
		}
		for _, c := range p.Comments {
			if contains(c.Text, q) || contains(c.AuthorName, q) {
				res.Comments = append(res.Comments, CommentMatch{Comment: c, Post: p})
			}
		}
	}
	return res
}

func contains(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
