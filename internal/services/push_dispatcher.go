package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/creatorhub/gateway/internal/events"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PushDispatcher subscribes to the per-user push channels and routes inbound
// events into the notification and chat state, then forwards the resulting
// deltas (and toasts) to the user's connected clients.
type PushDispatcher struct {
	subscriber    events.Subscriber
	notifications *NotificationService
	chats         *ChatService
	notifier      Notifier
	log           *zap.Logger
}

func NewPushDispatcher(
	subscriber events.Subscriber,
	notifications *NotificationService,
	chats *ChatService,
	notifier Notifier,
	log *zap.Logger,
) *PushDispatcher {
	return &PushDispatcher{
		subscriber:    subscriber,
		notifications: notifications,
		chats:         chats,
		notifier:      notifier,
		log:           log,
	}
}

func (d *PushDispatcher) Start(ctx context.Context) error {
	return d.subscriber.SubscribePattern(ctx, "push:user:*", func(channel string, event events.Event) {
		userID, err := userFromChannel(channel)
		if err != nil {
			d.log.Error("push event on unparseable channel", zap.String("channel", channel), zap.Error(err))
			return
		}
		d.Dispatch(ctx, userID, event)
	})
}

// Dispatch applies one push event to the owning user's state.
func (d *PushDispatcher) Dispatch(ctx context.Context, userID uuid.UUID, event events.Event) {
	switch event.Type {
	case events.EventNewNotification:
		n, err := decodeNotification(event.Payload)
		if err != nil {
			d.log.Error("malformed notification event", zap.Error(err))
			return
		}
		n.UserID = userID
		toast := d.notifications.Ingest(ctx, userID, n)
		d.forward(userID, event)
		if toast {
			d.forward(userID, events.Event{
				Type: events.EventToast,
				Payload: map[string]any{
					"title":   n.Title,
					"message": n.Message,
				},
			})
		}

	case events.EventNewMessage:
		msg, err := decodeMessage(event.Payload)
		if err != nil {
			d.log.Error("malformed message event", zap.Error(err))
			return
		}
		d.chats.IngestMessage(ctx, userID, msg)

	default:
		d.log.Debug("ignoring push event", zap.String("type", event.Type))
	}
}

func (d *PushDispatcher) forward(userID uuid.UUID, event events.Event) {
	if d.notifier == nil {
		return
	}
	d.notifier.SendToUser(userID, event)
}

func userFromChannel(channel string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(channel, "push:user:"))
}

func decodeNotification(payload map[string]any) (models.Notification, error) {
	var n models.Notification
	err := roundtrip(payload, &n)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return n, err
}

func decodeMessage(payload map[string]any) (models.Message, error) {
	var m models.Message
	// The chat payload nests the message under "message"; fall back to the
	// flat shape for older backend versions.
	if inner, ok := payload["message"].(map[string]any); ok {
		payload = inner
	}
	err := roundtrip(payload, &m)
	return m, err
}

func roundtrip(payload map[string]any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
