package service

import (
	"context"

	"socialfeed/internal/feed"
	"socialfeed/internal/models"
	"socialfeed/internal/search"
)

// QueryService runs the read-only views over a fresh snapshot.
type QueryService struct {
	*core
}

// Feed composes the viewer's feed. An empty viewerID composes without a viewer.
func (s *QueryService) Feed(ctx context.Context, viewerID string, q feed.Query) ([]*models.Post, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	return feed.Compose(posts, users.ByID(viewerID), q), nil
}

// ProfilePosts lists authorID's posts, newest first.
func (s *QueryService) ProfilePosts(ctx context.Context, authorID string) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	return feed.ProfilePosts(posts, authorID), nil
}

func (s *QueryService) Search(ctx context.Context, term string) (search.Results, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return search.Results{}, internalErr(err)
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return search.Results{}, internalErr(err)
	}
	return search.Search(term, users, posts), nil
}
