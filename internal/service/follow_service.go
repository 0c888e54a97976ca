package service

import (
	"context"

	"socialfeed/internal/models"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	*core
}

// FollowResult reports the follow state after a toggle.
type FollowResult struct {
	Following     bool                       `json:"following"`
	Notifications []models.NotificationEvent `json:"notifications"`
}

// Suggestion is another user annotated with whether the viewer follows them.
type Suggestion struct {
	User      *models.User `json:"user"`
	Following bool         `json:"following"`
}

// ProfileStats are the counts shown on a profile header.
type ProfileStats struct {
	Posts     int `json:"posts"`
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// ToggleFollow flips whether the session user follows targetID.
// Following yourself or an unknown user leaves state untouched.
func (s *FollowService) ToggleFollow(ctx context.Context, sess Session, targetID string) (res FollowResult, err error) {
	ctx, done := s.startOperation(ctx, "FollowService.ToggleFollow", sess)
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.List(ctx)
	if err != nil {
		return FollowResult{}, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return FollowResult{}, err
	}
	if targetID == me.ID {
		return FollowResult{}, models.NewValidationError("You cannot follow yourself")
	}
	target := users.ByID(targetID)
	if target == nil {
		return FollowResult{}, models.NewNotFoundError("User", targetID)
	}

	nowFollowing := me.ToggleFollowing(target.ID)
	if err := s.users.SaveAll(ctx, users); err != nil {
		return FollowResult{}, internalErr(err)
	}

	res = FollowResult{Following: nowFollowing, Notifications: []models.NotificationEvent{}}
	if nowFollowing {
		res.Notifications = s.fanOut(ctx, []pendingNotification{{
			recipientID: target.ID,
			message:     followMessage(me.Username),
			kind:        models.NotificationFollow,
			meta:        models.NotificationMeta{FromUserID: me.ID},
		}})
	}
	return res, nil
}

// IsFollowing reports whether actorID follows targetID.
func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return false, internalErr(err)
	}
	u := users.ByID(actorID)
	if u == nil {
		return false, nil
	}
	return u.IsFollowing(targetID), nil
}

// FollowerCount counts users whose following set contains userID.
func (s *FollowService) FollowerCount(ctx context.Context, userID string) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, internalErr(err)
	}
	return len(users.Followers(userID)), nil
}

func (s *FollowService) FollowingCount(ctx context.Context, userID string) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, internalErr(err)
	}
	u := users.ByID(userID)
	if u == nil {
		return 0, models.NewNotFoundError("User", userID)
	}
	return len(u.Following), nil
}

// Followers returns the ids of users following userID, in store order.
func (s *FollowService) Followers(ctx context.Context, userID string) ([]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	ids := users.Followers(userID)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Suggestions lists every other user in store order.
func (s *FollowService) Suggestions(ctx context.Context, sess Session) ([]Suggestion, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	me, err := actor(users, sess)
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(users))
	for _, u := range users {
		if u.ID == me.ID {
			continue
		}
		out = append(out, Suggestion{User: u, Following: me.IsFollowing(u.ID)})
	}
	return out, nil
}

// Stats returns post, follower and following counts for userID.
func (s *FollowService) Stats(ctx context.Context, userID string) (ProfileStats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return ProfileStats{}, internalErr(err)
	}
	u := users.ByID(userID)
	if u == nil {
		return ProfileStats{}, models.NewNotFoundError("User", userID)
	}
	posts, err := s.posts.List(ctx)
	if err != nil {
		return ProfileStats{}, internalErr(err)
	}
	return ProfileStats{
		Posts:     posts.CountByAuthor(userID),
		Followers: len(users.Followers(userID)),
		Following: len(u.Following),
	}, nil
}
