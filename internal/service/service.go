// Package service implements the feed engine's operations on top of the repositories.
//
// Every mutation runs as one snapshot-read, mutate, snapshot-write round trip
// while holding a single writer lock shared by all services built by New.
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Session identifies the user performing an operation.
type Session struct {
	UserID string
}

// Publisher forwards a freshly stored notification to live listeners.
type Publisher interface {
	PublishUser(ctx context.Context, userID string, notification *models.Notification) error
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Users         repository.UserRepository
	Posts         repository.PostRepository
	Notifications repository.NotificationRepository
	// Publisher is optional.
	Publisher Publisher
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
	// NewID defaults to prefix + "_" + a random UUID.
	NewID func(prefix string) string
}

// Services groups the engine's services around one writer lock.
type Services struct {
	Users         *UserService
	Follows       *FollowService
	Posts         *PostService
	Notifications *NotificationService
	Queries       *QueryService
}

type core struct {
	mu            sync.Mutex
	users         repository.UserRepository
	posts         repository.PostRepository
	notifications repository.NotificationRepository
	publisher     Publisher
	now           func() time.Time
	newID         func(prefix string) string
	log           *observability.StructuredLogger
}

// New wires the services together.
func New(d Deps) *Services {
	c := &core{
		users:         d.Users,
		posts:         d.Posts,
		notifications: d.Notifications,
		publisher:     d.Publisher,
		now:           d.Clock,
		newID:         d.NewID,
		log:           observability.NewStructuredLogger(),
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.newID == nil {
		c.newID = NewID
	}
	return &Services{
		Users:         &UserService{core: c},
		Follows:       &FollowService{core: c},
		Posts:         &PostService{core: c},
		Notifications: &NotificationService{core: c},
		Queries:       &QueryService{core: c},
	}
}

// NewID returns a fresh identifier such as "post_6f1c...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// startOperation opens a span for a service mutation and returns a finisher
// that records the outcome.
func (c *core) startOperation(ctx context.Context, name string, sess Session) (context.Context, func(error)) {
	span, ctx := observability.NewSpan(ctx, name, attribute.String("actor_id", sess.UserID))
	c.log.LogServiceCall(ctx, strings.SplitN(name, ".", 2)[0], name, map[string]interface{}{
		"actor_id": sess.UserID,
	})
	return ctx, func(err error) {
		span.SetError(err)
		span.End()
		observability.RecordMutation(name, err)
	}
}

// actor resolves the session's user within a users snapshot.
func actor(users models.Users, sess Session) (*models.User, error) {
	if strings.TrimSpace(sess.UserID) == "" {
		return nil, models.NewValidationError("An active session is required")
	}
	u := users.ByID(sess.UserID)
	if u == nil {
		return nil, models.NewNotFoundError("User", sess.UserID)
	}
	return u, nil
}

func internalErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*models.AppError); ok {
		return err
	}
	return models.NewInternalError(err)
}
