package service

import (
	"context"
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"))
	sess := Session{UserID: "u1"}

	tests := []struct {
		name    string
		in      CreatePostInput
		wantErr bool
	}{
		{name: "blank text no image", in: CreatePostInput{Text: "   "}, wantErr: true},
		{name: "image only", in: CreatePostInput{ImageRef: "img://cat"}},
		{name: "text only", in: CreatePostInput{Text: " hi "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.svc.Posts.CreatePost(ctx, sess, tt.in)
			if tt.wantErr {
				assertAppError(t, err, models.CodeValidation)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, res.Post.UpdatedAt)
			assert.False(t, res.Post.Edited)
			assert.Empty(t, res.Post.LikedBy)
			assert.Empty(t, res.Post.Comments)
			assert.Equal(t, "alice", res.Post.AuthorName)
		})
	}

	posts, err := env.svc.Posts.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "hi", posts[1].Text)
}

func TestPostService_CreatePostNotifiesFollowersOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t,
		user("u1", "alice"),
		user("u2", "bob", "u1"),
		user("u3", "carol", "u1"),
		user("u4", "dave"),
	)

	res, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "news"})
	require.NoError(t, err)
	require.Len(t, res.Notifications, 2)
	assert.Equal(t, "u2", res.Notifications[0].RecipientID)
	assert.Equal(t, "u3", res.Notifications[1].RecipientID)

	assert.Empty(t, env.inbox(t, "u1"))
	assert.Len(t, env.inbox(t, "u2"), 1)
	assert.Len(t, env.inbox(t, "u3"), 1)
	assert.Empty(t, env.inbox(t, "u4"))
}

func TestPostService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"), user("u2", "bob"))
	created, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "like me"})
	require.NoError(t, err)
	postID := created.Post.ID

	t.Run("missing post is a no-op", func(t *testing.T) {
		res, err := env.svc.Posts.ToggleLike(ctx, Session{UserID: "u2"}, "nope")
		require.NoError(t, err)
		assert.False(t, res.Found)
		assert.Empty(t, res.Notifications)
	})

	t.Run("self like does not notify", func(t *testing.T) {
		res, err := env.svc.Posts.ToggleLike(ctx, Session{UserID: "u1"}, postID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Empty(t, res.Notifications)
		assert.Empty(t, env.inbox(t, "u1"))
	})

	t.Run("like then unlike notifies once", func(t *testing.T) {
		res, err := env.svc.Posts.ToggleLike(ctx, Session{UserID: "u2"}, postID)
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, 2, res.LikeCount)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, models.NotificationLike, res.Notifications[0].Kind)

		res, err = env.svc.Posts.ToggleLike(ctx, Session{UserID: "u2"}, postID)
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, 1, res.LikeCount)
		assert.Empty(t, res.Notifications)

		inbox := env.inbox(t, "u1")
		require.Len(t, inbox, 1)
		assert.Equal(t, "bob liked your post", inbox[0].Message)
	})

	post, err := env.svc.Posts.GetPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, len(post.LikedBy), post.LikeCount())
}

func TestPostService_AddComment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"), user("u2", "bob"))
	created, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "thoughts?"})
	require.NoError(t, err)
	postID := created.Post.ID

	_, err = env.svc.Posts.AddComment(ctx, Session{UserID: "u2"}, postID, "  ")
	assertAppError(t, err, models.CodeValidation)

	_, err = env.svc.Posts.AddComment(ctx, Session{UserID: "u2"}, "missing", "hello")
	assertAppError(t, err, models.CodeNotFound)

	own, err := env.svc.Posts.AddComment(ctx, Session{UserID: "u1"}, postID, "me first")
	require.NoError(t, err)
	assert.Empty(t, own.Notifications)

	res, err := env.svc.Posts.AddComment(ctx, Session{UserID: "u2"}, postID, "great post")
	require.NoError(t, err)
	require.Len(t, res.Post.Comments, 2)
	assert.Equal(t, "me first", res.Post.Comments[0].Text)
	assert.Equal(t, "great post", res.Comment.Text)
	assert.Equal(t, "bob", res.Comment.AuthorName)
	assert.True(t, res.Post.Comments[1].CreatedAt.After(res.Post.Comments[0].CreatedAt))

	inbox := env.inbox(t, "u1")
	require.Len(t, inbox, 1)
	assert.Equal(t, "bob commented on your post", inbox[0].Message)
	assert.Equal(t, postID, inbox[0].PostID)
}

func TestPostService_EditPost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"), user("u2", "bob"))
	created, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "draft", ImageRef: "img://a"})
	require.NoError(t, err)
	postID := created.Post.ID

	_, err = env.svc.Posts.EditPost(ctx, Session{UserID: "u1"}, EditPostInput{PostID: "missing", Text: "x"})
	assertAppError(t, err, models.CodeNotFound)

	_, err = env.svc.Posts.EditPost(ctx, Session{UserID: "u2"}, EditPostInput{PostID: postID, Text: "hijack"})
	assertAppError(t, err, models.CodeForbidden)

	edited, err := env.svc.Posts.EditPost(ctx, Session{UserID: "u1"}, EditPostInput{PostID: postID, Text: "  final  "})
	require.NoError(t, err)
	assert.Equal(t, "final", edited.Text)
	assert.Empty(t, edited.ImageRef)
	assert.True(t, edited.Edited)
	require.NotNil(t, edited.UpdatedAt)
	assert.True(t, edited.UpdatedAt.After(edited.CreatedAt))

	assert.Empty(t, env.inbox(t, "u1"))
	assert.Empty(t, env.inbox(t, "u2"))
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"), user("u2", "bob"))
	created, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "mine"})
	require.NoError(t, err)
	postID := created.Post.ID

	before, _, err := env.store.Load(ctx, testKeys.Posts())
	require.NoError(t, err)

	outcome, err := env.svc.Posts.DeletePost(ctx, Session{UserID: "u2"}, postID)
	require.NoError(t, err)
	assert.Equal(t, DeleteForbidden, outcome)

	outcome, err = env.svc.Posts.DeletePost(ctx, Session{UserID: "u1"}, "missing")
	require.NoError(t, err)
	assert.Equal(t, DeleteNotFound, outcome)

	after, _, err := env.store.Load(ctx, testKeys.Posts())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	outcome, err = env.svc.Posts.DeletePost(ctx, Session{UserID: "u1"}, postID)
	require.NoError(t, err)
	assert.Equal(t, DeleteDeleted, outcome)

	_, err = env.svc.Posts.GetPost(ctx, postID)
	assertAppError(t, err, models.CodeNotFound)
}

func TestPostService_RenameAuthorAcrossPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"), user("u2", "bob"))
	p1, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "one"})
	require.NoError(t, err)
	_, err = env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "two"})
	require.NoError(t, err)
	_, err = env.svc.Posts.CreatePost(ctx, Session{UserID: "u2"}, CreatePostInput{Text: "three"})
	require.NoError(t, err)
	_, err = env.svc.Posts.AddComment(ctx, Session{UserID: "u1"}, p1.Post.ID, "self reply")
	require.NoError(t, err)

	changed, err := env.svc.Posts.RenameAuthorAcrossPosts(ctx, "u1", "alicia")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	posts, err := env.svc.Posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alicia", posts[0].AuthorName)
	assert.Equal(t, "alicia", posts[1].AuthorName)
	assert.Equal(t, "bob", posts[2].AuthorName)
	assert.Equal(t, "alice", posts[0].Comments[0].AuthorName)

	count, err := env.svc.Posts.PostCountByAuthor(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestPostService_StoreFailureIsInternal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, user("u1", "alice"))
	env.svc = New(Deps{
		Users:         env.users,
		Posts:         &postRepoStub{listFn: func(context.Context) (models.Posts, error) { return nil, errBoom }},
		Notifications: env.notes,
	})

	_, err := env.svc.Posts.CreatePost(ctx, Session{UserID: "u1"}, CreatePostInput{Text: "x"})
	assertAppError(t, err, models.CodeInternal)

	_, err = env.svc.Posts.DeletePost(ctx, Session{UserID: "u1"}, "p1")
	assertAppError(t, err, models.CodeInternal)
}
