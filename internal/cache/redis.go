package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the view-state mirror in Redis with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl, log: log}
}

func chatsKey(userID uuid.UUID) string { return "cache:chats:" + userID.String() }

func messagesKey(userID uuid.UUID, roomID string) string {
	return fmt.Sprintf("cache:messages:%s:%s", userID, roomID)
}

func notificationsKey(userID uuid.UUID) string { return "cache:notifications:" + userID.String() }

func (s *RedisStore) SaveChats(ctx context.Context, userID uuid.UUID, chats []models.Chat) error {
	return s.save(ctx, chatsKey(userID), chats)
}

func (s *RedisStore) LoadChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, bool, error) {
	var chats []models.Chat
	ok, err := s.load(ctx, chatsKey(userID), &chats)
	return chats, ok, err
}

func (s *RedisStore) SaveMessages(ctx context.Context, userID uuid.UUID, roomID string, messages []models.Message) error {
	return s.save(ctx, messagesKey(userID, roomID), messages)
}

func (s *RedisStore) LoadMessages(ctx context.Context, userID uuid.UUID, roomID string) ([]models.Message, bool, error) {
	var messages []models.Message
	ok, err := s.load(ctx, messagesKey(userID, roomID), &messages)
	return messages, ok, err
}

type notificationSnapshot struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}

func (s *RedisStore) SaveNotifications(ctx context.Context, userID uuid.UUID, notifications []models.Notification, unread int) error {
	return s.save(ctx, notificationsKey(userID), notificationSnapshot{Notifications: notifications, Unread: unread})
}

func (s *RedisStore) LoadNotifications(ctx context.Context, userID uuid.UUID) ([]models.Notification, int, bool, error) {
	var snap notificationSnapshot
	ok, err := s.load(ctx, notificationsKey(userID), &snap)
	return snap.Notifications, snap.Unread, ok, err
}

func (s *RedisStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string, out any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		s.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}
