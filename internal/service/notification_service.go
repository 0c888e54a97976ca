package service

import (
	"context"
	"strings"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
)

// NotificationService owns the per-recipient inboxes.
type NotificationService struct {
	*core
}

type pendingNotification struct {
	recipientID string
	message     string
	kind        models.NotificationKind
	meta        models.NotificationMeta
}

func followMessage(username string) string  { return username + " started following you" }
func postMessage(username string) string    { return username + " posted a new update" }
func likeMessage(username string) string    { return username + " liked your post" }
func commentMessage(username string) string { return username + " commented on your post" }

// Notify prepends a notification to recipientID's inbox. An empty recipient is a no-op.
func (s *NotificationService) Notify(
	ctx context.Context,
	recipientID, message string,
	kind models.NotificationKind,
	meta models.NotificationMeta,
) (*models.NotificationEvent, error) {
	if strings.TrimSpace(recipientID) == "" {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inboxes, err := s.notifications.LoadAll(ctx)
	if err != nil {
		return nil, internalErr(err)
	}
	n := s.prepend(inboxes, pendingNotification{recipientID: recipientID, message: message, kind: kind, meta: meta})
	if err := s.notifications.SaveAll(ctx, inboxes); err != nil {
		return nil, internalErr(err)
	}
	s.announce(ctx, recipientID, n)
	return &models.NotificationEvent{Kind: kind, RecipientID: recipientID, NotificationID: n.ID}, nil
}

// MarkAllRead flags every entry in the inbox as read. An empty inbox is not written.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inboxes, err := s.notifications.LoadAll(ctx)
	if err != nil {
		return internalErr(err)
	}
	list := inboxes[userID]
	if len(list) == 0 {
		return nil
	}
	for _, n := range list {
		n.Read = true
	}
	return internalErr(s.notifications.SaveAll(ctx, inboxes))
}

// Clear discards the user's inbox.
func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inboxes, err := s.notifications.LoadAll(ctx)
	if err != nil {
		return internalErr(err)
	}
	inboxes[userID] = []*models.Notification{}
	return internalErr(s.notifications.SaveAll(ctx, inboxes))
}

// Inbox returns the user's notifications, newest first.
func (s *NotificationService) Inbox(ctx context.Context, userID string) ([]*models.Notification, error) {
	list, err := s.notifications.Inbox(ctx, userID)
	if err != nil {
		return nil, internalErr(err)
	}
	if list == nil {
		list = []*models.Notification{}
	}
	return list, nil
}

// HasUnread is recomputed from the stored inbox on every call.
func (s *NotificationService) HasUnread(ctx context.Context, userID string) (bool, error) {
	list, err := s.notifications.Inbox(ctx, userID)
	if err != nil {
		return false, internalErr(err)
	}
	return models.HasUnread(list), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	list, err := s.notifications.Inbox(ctx, userID)
	if err != nil {
		return 0, internalErr(err)
	}
	return models.UnreadCount(list), nil
}

func (c *core) prepend(inboxes models.Inboxes, p pendingNotification) *models.Notification {
	n := &models.Notification{
		ID:         c.newID("notif"),
		Message:    p.message,
		Kind:       p.kind,
		CreatedAt:  c.now(),
		FromUserID: p.meta.FromUserID,
		PostID:     p.meta.PostID,
	}
	list := make([]*models.Notification, 0, len(inboxes[p.recipientID])+1)
	list = append(list, n)
	inboxes[p.recipientID] = append(list, inboxes[p.recipientID]...)
	return n
}

// announce counts the notification and publishes it to live listeners.
func (c *core) announce(ctx context.Context, recipientID string, n *models.Notification) {
	observability.NotificationsEmitted.WithLabelValues(string(n.Kind)).Inc()
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishUser(ctx, recipientID, n); err != nil {
		c.log.LogDeliveryFailure(ctx, recipientID, string(n.Kind), err)
	}
}

// fanOut delivers pending notifications in one inbox write. Callers hold c.mu.
// Failures are logged and never reach the actor.
func (c *core) fanOut(ctx context.Context, pending []pendingNotification) []models.NotificationEvent {
	events := []models.NotificationEvent{}
	if len(pending) == 0 {
		return events
	}

	inboxes, err := c.notifications.LoadAll(ctx)
	if err != nil {
		for _, p := range pending {
			c.log.LogDeliveryFailure(ctx, p.recipientID, string(p.kind), err)
		}
		return events
	}

	created := make([]*models.Notification, 0, len(pending))
	recipients := make([]string, 0, len(pending))
	for _, p := range pending {
		if p.recipientID == "" {
			continue
		}
		created = append(created, c.prepend(inboxes, p))
		recipients = append(recipients, p.recipientID)
	}
	if len(created) == 0 {
		return events
	}

	if err := c.notifications.SaveAll(ctx, inboxes); err != nil {
		for i, n := range created {
			c.log.LogDeliveryFailure(ctx, recipients[i], string(n.Kind), err)
		}
		return events
	}

	for i, n := range created {
		c.announce(ctx, recipients[i], n)
		events = append(events, models.NotificationEvent{
			Kind:           n.Kind,
			RecipientID:    recipients[i],
			NotificationID: n.ID,
		})
	}
	return events
}
