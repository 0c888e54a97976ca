package service

import (
	"context"
	"strings"

	"socialfeed/internal/models"
)

const maxTextLen = 10000

// PostService handles posts, likes and comments.
type PostService struct {
	*core
}

type CreatePostInput struct {
	Text     string
	ImageRef string
}

type EditPostInput struct {
	PostID   string
	Text     string
	ImageRef string
}

// PostResult carries the stored post and the notifications its creation emitted.
type PostResult struct {
	Post          *models.Post               `json:"post"`
	Notifications []models.NotificationEvent `json:"notifications"`
}

// LikeResult reports the like state after a toggle. Found is false when the post no longer exists.
type LikeResult struct {
	Found         bool                       `json:"found"`
	Liked         bool                       `json:"liked"`
	LikeCount     int                        `json:"like_count"`
	Notifications []models.NotificationEvent `json:"notifications"`
}

type CommentResult struct {
	Post          *models.Post               `json:"post"`
	Comment       models.Comment             `json:"comment"`
	Notifications []models.NotificationEvent `json:"notifications"`
}

// DeleteOutcome distinguishes the three results of a delete request.
type DeleteOutcome string

const (
	DeleteDeleted   DeleteOutcome = "deleted"
	DeleteForbidden DeleteOutcome = "forbidden"
	DeleteNotFound  DeleteOutcome = "not_found"
)

// CreatePost stores a new post and notifies the author's followers.
func (s *PostService) CreatePost(ctx context.Context, sess Session, in CreatePostInput) (res PostResult, err error) {
	text := strings.TrimSpace(in.Text)
	imageRef := strings.TrimSpace(in.ImageRef)
	if text == "" && imageRef == "" {
		return PostResult{}, models.NewValidationError("Post text or image is required")
	}
	if len(text) > maxTextLen {
		return PostResult{}, models.NewValidationError("Post text too long (max 10000 characters)")
	}

	ctx, done := s.startOperation(ctx, "PostService.CreatePost", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return PostResult{}, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return PostResult{}, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return PostResult{}, internalErr(err)
	}

	post := &models.Post{
		ID:         s.newID("post"),
		AuthorID:   me.ID,
		AuthorName: me.Username,
		Text:       text,
		ImageRef:   imageRef,
		CreatedAt:  s.now(),
		LikedBy:    []string{},
		Comments:   []models.Comment{},
	}
	posts = append(posts, post)
	if err := s.posts.SaveAll(ctx, posts); err != nil {
		return PostResult{}, internalErr(err)
	}

	var pending []pendingNotification
	for _, followerID := range users.Followers(me.ID) {
		pending = append(pending, pendingNotification{
			recipientID: followerID,
			message:     postMessage(me.Username),
			kind:        models.NotificationPost,
			meta:        models.NotificationMeta{FromUserID: me.ID, PostID: post.ID},
		})
	}
	return PostResult{Post: post.Clone(), Notifications: s.fanOut(ctx, pending)}, nil
}

// ToggleLike flips the session user's like on postID. A missing post is a silent no-op.
func (s *PostService) ToggleLike(ctx context.Context, sess Session, postID string) (res LikeResult, err error) {
	ctx, done := s.startOperation(ctx, "PostService.ToggleLike", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return LikeResult{}, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return LikeResult{}, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return LikeResult{}, internalErr(err)
	}
	post := posts.ByID(postID)
	if post == nil {
		return LikeResult{Notifications: []models.NotificationEvent{}}, nil
	}

	liked := post.ToggleLike(me.ID)
	if err := s.posts.SaveAll(ctx, posts); err != nil {
		return LikeResult{}, internalErr(err)
	}

	res = LikeResult{Found: true, Liked: liked, LikeCount: post.LikeCount()}
	var pending []pendingNotification
	if liked && post.AuthorID != me.ID {
		pending = append(pending, pendingNotification{
			recipientID: post.AuthorID,
			message:     likeMessage(me.Username),
			kind:        models.NotificationLike,
			meta:        models.NotificationMeta{FromUserID: me.ID, PostID: post.ID},
		})
	}
	res.Notifications = s.fanOut(ctx, pending)
	return res, nil
}

// AddComment appends a comment to postID and notifies the post author.
func (s *PostService) AddComment(ctx context.Context, sess Session, postID, text string) (res CommentResult, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CommentResult{}, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxTextLen {
		return CommentResult{}, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	ctx, done := s.startOperation(ctx, "PostService.AddComment", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return CommentResult{}, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return CommentResult{}, err
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return CommentResult{}, internalErr(err)
	}
	post := posts.ByID(postID)
	if post == nil {
		return CommentResult{}, models.NewNotFoundError("Post", postID)
	}

	comment := models.Comment{
		ID:         s.newID("comment"),
		AuthorID:   me.ID,
		AuthorName: me.Username,
		Text:       text,
		CreatedAt:  s.now(),
	}
	post.Comments = append(post.Comments, comment)
	if err := s.posts.SaveAll(ctx, posts); err != nil {
		return CommentResult{}, internalErr(err)
	}

	var pending []pendingNotification
	if post.AuthorID != me.ID {
		pending = append(pending, pendingNotification{
			recipientID: post.AuthorID,
			message:     commentMessage(me.Username),
			kind:        models.NotificationComment,
			meta:        models.NotificationMeta{FromUserID: me.ID, PostID: post.ID},
		})
	}
	return CommentResult{
		Post:          post.Clone(),
		Comment:       comment,
		Notifications: s.fanOut(ctx, pending),
	}, nil
}

// EditPost replaces the text and image of a post owned by the session user.
func (s *PostService) EditPost(ctx context.Context, sess Session, in EditPostInput) (post *models.Post, err error) {
	text := strings.TrimSpace(in.Text)
	if len(text) > maxTextLen {
		return nil, models.NewValidationError("Post text too long (max 10000 characters)")
	}

	ctx, done := s.startOperation(ctx, "PostService.EditPost", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	post = posts.ByID(in.PostID)
	if post == nil {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if sess.UserID == "" || post.AuthorID != sess.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	now := s.now()
	post.Text = text
	post.ImageRef = strings.TrimSpace(in.ImageRef)
	post.UpdatedAt = &now
	post.Edited = true
	if err := s.posts.SaveAll(ctx, posts); err != nil {
		return nil, internalErr(err)
	}
	return post.Clone(), nil
}

// DeletePost removes postID when the session user is its author. Anything else
// is a no-op reported through the outcome; notifications already sent remain.
func (s *PostService) DeletePost(ctx context.Context, sess Session, postID string) (outcome DeleteOutcome, err error) {
	ctx, done := s.startOperation(ctx, "PostService.DeletePost", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return "", internalErr(err)
	}
	i := posts.IndexOf(postID)
	if i < 0 {
		return DeleteNotFound, nil
	}
	if sess.UserID == "" || posts[i].AuthorID != sess.UserID {
		return DeleteForbidden, nil
	}

	remaining := make(models.Posts, 0, len(posts)-1)
	remaining = append(remaining, posts[:i]...)
	remaining = append(remaining, posts[i+1:]...)
	if err := s.posts.SaveAll(ctx, remaining); err != nil {
		return "", internalErr(err)
	}
	return DeleteDeleted, nil
}

// RenameAuthorAcrossPosts rewrites the author name on every post by userID and
// returns how many posts changed. Comments keep the name they were written under.
func (s *PostService) RenameAuthorAcrossPosts(ctx context.Context, userID, newName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renameAuthor(ctx, userID, newName)
}

// renameAuthor requires c.mu.
func (c *core) renameAuthor(ctx context.Context, userID, newName string) (int, error) {
	posts, err := c.posts.List(ctx)
	if err != nil {
		return 0, internalErr(err)
	}
	changed := 0
	for _, p := range posts {
		if p.AuthorID == userID && p.AuthorName != newName {
			p.AuthorName = newName
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	if err := c.posts.SaveAll(ctx, posts); err != nil {
		return 0, internalErr(err)
	}
	return changed, nil
}

// ListPosts returns the stored posts in store order.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	if posts == nil {
		return []*models.Post{}, nil
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	post := posts.ByID(postID)
	if post == nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// PostCountByAuthor counts the posts written by userID.
func (s *PostService) PostCountByAuthor(ctx context.Context, userID string) (int, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return 0, internalErr(err)
	}
	return posts.CountByAuthor(userID), nil
}
