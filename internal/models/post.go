package models

import (
	"slices"
	"time"
)

// Post represents a post with its nested comments and like set.
type Post struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	// AuthorName is a snapshot of the author's username, resynced only by a profile rename.
	AuthorName string     `json:"author_name"`
	Text       string     `json:"text"`
	ImageRef   string     `json:"image_ref,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
	Edited     bool       `json:"edited"`
	LikedBy    []string   `json:"liked_by"`
	Comments   []Comment  `json:"comments"`
}

// Comment is an immutable reply owned by its parent post.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// LikeCount is always derived from the like set.
func (p *Post) LikeCount() int {
	return len(p.LikedBy)
}

// IsLikedBy reports whether userID is in the like set.
func (p *Post) IsLikedBy(userID string) bool {
	return slices.Contains(p.LikedBy, userID)
}

// ToggleLike flips userID in the like set and returns whether it is now liked.
func (p *Post) ToggleLike(userID string) bool {
	if i := slices.Index(p.LikedBy, userID); i >= 0 {
		p.LikedBy = slices.Delete(p.LikedBy, i, i+1)
		return false
	}
	p.LikedBy = append(p.LikedBy, userID)
	return true
}

// Clone returns a deep copy so callers can mutate without touching a shared snapshot.
func (p *Post) Clone() *Post {
	cp := *p
	cp.LikedBy = slices.Clone(p.LikedBy)
	cp.Comments = slices.Clone(p.Comments)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}

// Posts is a snapshot of the posts collection in store order.
type Posts []*Post

// ByID returns the post with the given id, or nil.
func (ps Posts) ByID(id string) *Post {
	for _, p := range ps {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// IndexOf returns the position of the post with the given id, or -1.
func (ps Posts) IndexOf(id string) int {
	return slices.IndexFunc(ps, func(p *Post) bool { return p.ID == id })
}

// CountByAuthor returns how many posts userID has authored.
func (ps Posts) CountByAuthor(userID string) int {
	n := 0
	for _, p := range ps {
		if p.AuthorID == userID {
			n++
		}
	}
	return n
}
