package repository

import (
	"context"

	"socialfeed/internal/models"
	"socialfeed/internal/store"
)

// NotificationRepository reads and writes the per-recipient notification map.
type NotificationRepository interface {
	LoadAll(ctx context.Context) (models.Inboxes, error)
	SaveAll(ctx context.Context, inboxes models.Inboxes) error
	Inbox(ctx context.Context, userID string) ([]*models.Notification, error)
}

type notificationRepository struct {
	store store.Store
	key   string
}

// NewNotificationRepository returns a NotificationRepository over s.
func NewNotificationRepository(s store.Store, keys store.Keys) NotificationRepository {
	return &notificationRepository{store: s, key: keys.Notifications()}
}

func (r *notificationRepository) LoadAll(ctx context.Context) (models.Inboxes, error) {
	var inboxes models.Inboxes
	if err := loadCollection(ctx, r.store, r.key, store.CollectionNotifications, &inboxes); err != nil {
		return nil, err
	}
	if inboxes == nil {
		inboxes = models.Inboxes{}
	}
	for userID, list := range inboxes {
		out := list[:0]
		for _, n := range list {
			if n != nil {
				out = append(out, n)
			}
		}
		inboxes[userID] = out
	}
	return inboxes, nil
}

func (r *notificationRepository) SaveAll(ctx context.Context, inboxes models.Inboxes) error {
	if inboxes == nil {
		inboxes = models.Inboxes{}
	}
	return saveCollection(ctx, r.store, r.key, store.CollectionNotifications, inboxes)
}

func (r *notificationRepository) Inbox(ctx context.Context, userID string) ([]*models.Notification, error) {
	inboxes, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return inboxes[userID], nil
}
