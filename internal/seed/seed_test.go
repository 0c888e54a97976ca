package seed

import (
	"context"
	"strings"
	"testing"

	"socialfeed/internal/models"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"
	"socialfeed/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixture = `
users:
  - key: alice
    username: Alice
    email: alice@example.com
    follows: [bob]
  - key: bob
    username: Bob
    email: bob@example.com
    handle: bobby
posts:
  - key: hello
    author: bob
    text: hello world
    likes: [alice]
    comments:
      - author: alice
        text: nice!
`

func newServices(t *testing.T) *service.Services {
	t.Helper()
	s := store.NewMemory()
	keys := store.Keys{Namespace: "seed"}
	return service.New(service.Deps{
		Users:         repository.NewUserRepository(s, keys),
		Posts:         repository.NewPostRepository(s, keys),
		Notifications: repository.NewNotificationRepository(s, keys),
	})
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()
	fx, err := LoadFixture(strings.NewReader(sampleFixture))
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)
	assert.Equal(t, []string{"bob"}, fx.Users[0].Follows)
	assert.Equal(t, "bobby", fx.Users[1].Handle)
	require.Len(t, fx.Posts, 1)
	assert.Equal(t, "nice!", fx.Posts[0].Comments[0].Text)

	empty, err := LoadFixture(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Users)

	_, err = LoadFixture(strings.NewReader("users:\n  - key: a\n    nickname: x\n"))
	assert.Error(t, err)
}

func TestSeeder_ApplyFixture(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	fx, err := LoadFixture(strings.NewReader(sampleFixture))
	require.NoError(t, err)

	sum, err := NewSeeder(svc).Apply(ctx, fx)
	require.NoError(t, err)
	// follow + post + like + comment
	assert.Equal(t, Summary{Users: 2, Follows: 1, Posts: 1, Likes: 1, Comments: 1, Notifications: 4}, sum)

	alice, err := svc.Users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	bob, err := svc.Users.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{bob.ID}, alice.Following)

	inbox, err := svc.Notifications.Inbox(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, models.NotificationComment, inbox[0].Kind)

	results, err := svc.Queries.Search(ctx, "world")
	require.NoError(t, err)
	assert.Len(t, results.Posts, 1)
	assert.Empty(t, results.Comments)
}

func TestSeeder_ApplyRejectsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	fx := &Fixture{
		Users: []FixtureUser{{Key: "a", Username: "A", Email: "a@example.com", Follows: []string{"ghost"}}},
	}
	_, err := NewSeeder(newServices(t)).Apply(ctx, fx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown user key "ghost"`)
}

func TestGenerator_IsDeterministic(t *testing.T) {
	t.Parallel()
	opts := DefaultOptions()
	a := NewGenerator(42).Fixture(opts)
	b := NewGenerator(42).Fixture(opts)
	assert.Equal(t, a, b)
	assert.Len(t, a.Users, opts.Users)
	assert.Len(t, a.Posts, opts.Posts)

	for _, u := range a.Users {
		assert.NotContains(t, u.Follows, u.Key)
		assert.LessOrEqual(t, len(u.Follows), opts.MaxFollows)
	}
	for _, p := range a.Posts {
		assert.LessOrEqual(t, len(p.Likes), opts.MaxLikes)
		assert.LessOrEqual(t, len(p.Comments), opts.MaxComments)
	}
}

func TestGenerator_FixtureApplies(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t)
	fx := NewGenerator(7).Fixture(Options{Users: 5, Posts: 10, MaxFollows: 3, MaxLikes: 3, MaxComments: 2})

	sum, err := NewSeeder(svc).Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Users)
	assert.Equal(t, 10, sum.Posts)

	posts, err := svc.Posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 10)
	for _, p := range posts {
		assert.Equal(t, len(p.LikedBy), p.LikeCount())
	}
}

func TestLoadFixtureFile_DemoFixtureApplies(t *testing.T) {
	ctx := context.Background()
	fx, err := LoadFixtureFile("../../fixtures/demo.yml")
	require.NoError(t, err)

	sum, err := NewSeeder(newServices(t)).Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Users)
	assert.Equal(t, 3, sum.Posts)
	assert.Equal(t, 3, sum.Comments)

	_, err = LoadFixtureFile("does-not-exist.yml")
	assert.Error(t, err)
}
