package events

import (
	"context"

	"github.com/google/uuid"
)

// Event types pushed on per-user channels
const (
	EventNewNotification = "new_notification"
	EventNewMessage      = "new_message"
	EventStateRefreshed  = "state_refreshed"
	EventToast           = "toast"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// UserChannel names the private push channel for a single user.
func UserChannel(userID uuid.UUID) string {
	return "push:user:" + userID.String()
}

type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, handler func(Event)) error
	// SubscribePattern subscribes to a glob pattern of channels; the handler
	// additionally receives the concrete channel the event arrived on.
	SubscribePattern(ctx context.Context, pattern string, handler func(channel string, event Event)) error
}
