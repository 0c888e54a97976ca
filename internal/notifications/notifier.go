// Package notifications publishes inbox updates over Redis pub/sub so a
// presentation layer can refresh without polling the record store.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const userChannelPattern = "notifications:user:*"

// UserChannel returns the pub/sub channel for a recipient.
func UserChannel(userID string) string {
	return "notifications:user:" + userID
}

// Payload is the JSON message published for every new inbox entry.
type Payload struct {
	RecipientID  string               `json:"recipient_id"`
	Notification *models.Notification `json:"notification"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID string, notification *models.Notification) error {
	if n.rdb == nil {
		return nil
	}
	body, err := json.Marshal(Payload{RecipientID: userID, Notification: notification})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(userID), body).Err()
}

// StartPatternSubscriber subscribes to every user channel and calls onMessage
// for each decoded payload until ctx is cancelled.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(Payload)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", userChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p Payload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					observability.GlobalLogger.WarnContext(ctx, "dropping undecodable notification payload",
						slog.String("channel", msg.Channel), slog.String("error", err.Error()))
					continue
				}
				deliver(ctx, onMessage, p)
			}
		}
	}()

	return nil
}

// deliver runs one callback, keeping the subscriber alive if it panics.
func deliver(ctx context.Context, onMessage func(Payload), p Payload) {
	defer func() {
		if r := recover(); r != nil {
			observability.GlobalLogger.ErrorContext(ctx, "notification subscriber callback panicked",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	onMessage(p)
}
