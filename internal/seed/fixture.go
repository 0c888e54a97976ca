// Package seed loads fixture and demo data into the feed engine.
// Everything goes through the service layer so notifications fan out as they
// would for real activity. Intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"socialfeed/internal/service"

	"gopkg.in/yaml.v3"
)

// Fixture is a declarative data set. Users and posts are referenced by their
// fixture-local Key rather than by generated id.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Key      string   `yaml:"key"`
	Username string   `yaml:"username"`
	Email    string   `yaml:"email"`
	Handle   string   `yaml:"handle,omitempty"`
	Bio      string   `yaml:"bio,omitempty"`
	PhotoRef string   `yaml:"photo,omitempty"`
	Follows  []string `yaml:"follows,omitempty"`
}

type FixturePost struct {
	Key      string           `yaml:"key"`
	Author   string           `yaml:"author"`
	Text     string           `yaml:"text"`
	ImageRef string           `yaml:"image,omitempty"`
	Likes    []string         `yaml:"likes,omitempty"`
	Comments []FixtureComment `yaml:"comments,omitempty"`
}

type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// Summary counts what a fixture application created.
type Summary struct {
	Users         int `json:"users"`
	Follows       int `json:"follows"`
	Posts         int `json:"posts"`
	Likes         int `json:"likes"`
	Comments      int `json:"comments"`
	Notifications int `json:"notifications"`
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// LoadFixtureFile decodes the YAML fixture at path.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(f)
}

// Seeder applies fixtures through the services.
type Seeder struct {
	svc *service.Services
}

func NewSeeder(svc *service.Services) *Seeder {
	return &Seeder{svc: svc}
}

// Apply creates the fixture's users, follows, posts, likes and comments in that order.
// It stops at the first failure; anything already created stays.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	ids := make(map[string]string, len(fx.Users))
	posts := make(map[string]string, len(fx.Posts))

	for _, fu := range fx.Users {
		if fu.Key == "" {
			return sum, fmt.Errorf("user %q: missing key", fu.Username)
		}
		if _, dup := ids[fu.Key]; dup {
			return sum, fmt.Errorf("user %q: duplicate key", fu.Key)
		}
		u, err := s.svc.Users.CreateUser(ctx, service.CreateUserInput{
			Username: fu.Username,
			Email:    fu.Email,
			Handle:   fu.Handle,
			Bio:      fu.Bio,
			PhotoRef: fu.PhotoRef,
		})
		if err != nil {
			return sum, fmt.Errorf("user %q: %w", fu.Key, err)
		}
		ids[fu.Key] = u.ID
		sum.Users++
	}

	lookup := func(key string) (string, error) {
		id, ok := ids[key]
		if !ok {
			return "", fmt.Errorf("unknown user key %q", key)
		}
		return id, nil
	}

	for _, fu := range fx.Users {
		sess := service.Session{UserID: ids[fu.Key]}
		for _, target := range fu.Follows {
			targetID, err := lookup(target)
			if err != nil {
				return sum, err
			}
			res, err := s.svc.Follows.ToggleFollow(ctx, sess, targetID)
			if err != nil {
				return sum, fmt.Errorf("follow %s -> %s: %w", fu.Key, target, err)
			}
			sum.Follows++
			sum.Notifications += len(res.Notifications)
		}
	}

	for _, fp := range fx.Posts {
		authorID, err := lookup(fp.Author)
		if err != nil {
			return sum, fmt.Errorf("post %q: %w", fp.Key, err)
		}
		res, err := s.svc.Posts.CreatePost(ctx, service.Session{UserID: authorID}, service.CreatePostInput{
			Text:     fp.Text,
			ImageRef: fp.ImageRef,
		})
		if err != nil {
			return sum, fmt.Errorf("post %q: %w", fp.Key, err)
		}
		if fp.Key != "" {
			posts[fp.Key] = res.Post.ID
		}
		sum.Posts++
		sum.Notifications += len(res.Notifications)

		for _, liker := range fp.Likes {
			likerID, err := lookup(liker)
			if err != nil {
				return sum, fmt.Errorf("post %q: %w", fp.Key, err)
			}
			like, err := s.svc.Posts.ToggleLike(ctx, service.Session{UserID: likerID}, res.Post.ID)
			if err != nil {
				return sum, fmt.Errorf("like %q by %s: %w", fp.Key, liker, err)
			}
			sum.Likes++
			sum.Notifications += len(like.Notifications)
		}

		for _, fc := range fp.Comments {
			commenterID, err := lookup(fc.Author)
			if err != nil {
				return sum, fmt.Errorf("post %q: %w", fp.Key, err)
			}
			c, err := s.svc.Posts.AddComment(ctx, service.Session{UserID: commenterID}, res.Post.ID, fc.Text)
			if err != nil {
				return sum, fmt.Errorf("comment on %q by %s: %w", fp.Key, fc.Author, err)
			}
			sum.Comments++
			sum.Notifications += len(c.Notifications)
		}
	}

	log.Printf("seed: %d users, %d follows, %d posts, %d likes, %d comments, %d notifications",
		sum.Users, sum.Follows, sum.Posts, sum.Likes, sum.Comments, sum.Notifications)
	return sum, nil
}
