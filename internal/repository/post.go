package repository

import (
	"context"

	"socialfeed/internal/models"
	"socialfeed/internal/store"
)

// PostRepository reads and writes the posts collection.
type PostRepository interface {
	List(ctx context.Context) (models.Posts, error)
	SaveAll(ctx context.Context, posts models.Posts) error
}

type postRepository struct {
	store store.Store
	key   string
}

// NewPostRepository returns a PostRepository over s.
func NewPostRepository(s store.Store, keys store.Keys) PostRepository {
	return &postRepository{store: s, key: keys.Posts()}
}

func (r *postRepository) List(ctx context.Context) (models.Posts, error) {
	var posts models.Posts
	if err := loadCollection(ctx, r.store, r.key, store.CollectionPosts, &posts); err != nil {
		return nil, err
	}
	out := posts[:0]
	for _, p := range posts {
		if p == nil || p.ID == "" {
			continue
		}
		p.LikedBy = uniqueIDs(p.LikedBy, "")
		out = append(out, p)
	}
	return out, nil
}

func (r *postRepository) SaveAll(ctx context.Context, posts models.Posts) error {
	if posts == nil {
		posts = models.Posts{}
	}
	return saveCollection(ctx, r.store, r.key, store.CollectionPosts, posts)
}
