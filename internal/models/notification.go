package models

import "time"

// NotificationKind identifies the event that produced a notification.
type NotificationKind string

const (
	// NotificationFollow is sent when someone starts following the recipient.
	NotificationFollow NotificationKind = "follow"
	// NotificationPost is sent to followers when an author posts.
	NotificationPost NotificationKind = "post"
	// NotificationLike is sent to an author when their post is liked.
	NotificationLike NotificationKind = "like"
	// NotificationComment is sent to an author when their post receives a comment.
	NotificationComment NotificationKind = "comment"
)

// Notification is an inbox entry owned by its recipient.
type Notification struct {
	ID         string           `json:"id"`
	Message    string           `json:"message"`
	Kind       NotificationKind `json:"type"`
	CreatedAt  time.Time        `json:"created_at"`
	Read       bool             `json:"read"`
	FromUserID string           `json:"from_user_id,omitempty"`
	PostID     string           `json:"post_id,omitempty"`
}

// NotificationMeta carries optional traceability fields for a new notification.
type NotificationMeta struct {
	FromUserID string
	PostID     string
}

// NotificationEvent describes a notification emitted by a mutation.
type NotificationEvent struct {
	Kind           NotificationKind `json:"kind"`
	RecipientID    string           `json:"recipient_id"`
	NotificationID string           `json:"notification_id"`
}

// Inboxes maps recipient user ids to their notifications, newest first.
type Inboxes map[string][]*Notification

// HasUnread reports whether any entry in the list is unread.
func HasUnread(list []*Notification) bool {
	for _, n := range list {
		if !n.Read {
			return true
		}
	}
	return false
}

// UnreadCount counts unread entries in the list.
func UnreadCount(list []*Notification) int {
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}
