package cache

import (
	"context"

	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
)

// Store mirrors per-user view state for fast reload. Writes are wholesale
// overwrites with last-write-wins semantics; there is no cross-writer
// coordination. A miss is not an error.
type Store interface {
	SaveChats(ctx context.Context, userID uuid.UUID, chats []models.Chat) error
	LoadChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, bool, error)

	SaveMessages(ctx context.Context, userID uuid.UUID, roomID string, messages []models.Message) error
	LoadMessages(ctx context.Context, userID uuid.UUID, roomID string) ([]models.Message, bool, error)

	SaveNotifications(ctx context.Context, userID uuid.UUID, notifications []models.Notification, unread int) error
	LoadNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, int, bool, error)
}
