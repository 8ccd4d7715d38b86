package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/cache"
	"github.com/creatorhub/gateway/internal/events"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatAPI interface {
	ListChats(ctx context.Context, s backend.Session) ([]models.Chat, error)
	ListMessages(ctx context.Context, s backend.Session, roomID string) ([]models.Message, error)
	SendMessage(ctx context.Context, s backend.Session, roomID, content string) (*models.Message, error)
	SendFile(ctx context.Context, s backend.Session, roomID, caption, fileName string, file io.Reader) (*models.Message, error)
}

// Notifier delivers state deltas to a user's connected clients.
type Notifier interface {
	SendToUser(userID uuid.UUID, event events.Event)
}

// ChatService keeps the per-user chat list (most-recently-active first) and
// per-room message history. Room selection paints the cached history
// immediately and revalidates in the background; a monotonically increasing
// fetch sequence discards responses superseded by a newer selection instead
// of cancelling them. Sends are optimistic: a temporary message with a local
// id is appended, then replaced in place by the authoritative one or removed
// on failure.
type ChatService struct {
	api      ChatAPI
	store    cache.Store
	notifier Notifier
	log      *zap.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*chatState
}

type chatState struct {
	chats       []models.Chat
	messages    map[string][]models.Message
	currentRoom string
	fetchSeq    uint64
	loaded      bool
}

func NewChatService(api ChatAPI, store cache.Store, notifier Notifier, log *zap.Logger) *ChatService {
	return &ChatService{
		api:      api,
		store:    store,
		notifier: notifier,
		log:      log,
		states:   make(map[uuid.UUID]*chatState),
	}
}

func (s *ChatService) state(userID uuid.UUID) *chatState {
	st, ok := s.states[userID]
	if !ok {
		st = &chatState{messages: make(map[string][]models.Message)}
		s.states[userID] = st
	}
	return st
}

// CurrentRoom reports the room the user currently has open, or "".
func (s *ChatService) CurrentRoom(userID uuid.UUID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(userID).currentRoom
}

// LoadChats returns the chat list, painting the cached copy first and
// replacing it with the backend's on success.
func (s *ChatService) LoadChats(ctx context.Context, sess backend.Session) ([]models.Chat, error) {
	s.mu.Lock()
	st := s.state(sess.UserID)
	if !st.loaded && s.store != nil {
		if cached, ok, _ := s.store.LoadChats(ctx, sess.UserID); ok {
			st.chats = cached
		}
	}
	s.mu.Unlock()

	chats, err := s.api.ListChats(ctx, sess)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return snapshotChats(st), err
	}

	s.mu.Lock()
	st.chats = chats
	st.loaded = true
	s.mirrorChatsLocked(ctx, sess.UserID, st)
	out := snapshotChats(st)
	s.mu.Unlock()

	return out, nil
}

// SelectChat opens a room. Re-selecting the already open room is a no-op.
// The cached history is returned immediately; a background fetch revalidates
// it and pushes the refreshed history to the user's clients unless a newer
// selection superseded this one (last request wins, by sequence comparison).
func (s *ChatService) SelectChat(ctx context.Context, sess backend.Session, roomID string) ([]models.Message, error) {
	s.mu.Lock()
	st := s.state(sess.UserID)

	if st.currentRoom == roomID {
		out := snapshotMessages(st.messages[roomID])
		s.mu.Unlock()
		return out, nil
	}

	st.currentRoom = roomID
	st.fetchSeq++
	seq := st.fetchSeq

	cached, have := st.messages[roomID]
	if !have && s.store != nil {
		if fromStore, ok, _ := s.store.LoadMessages(ctx, sess.UserID, roomID); ok {
			st.messages[roomID] = fromStore
			cached = fromStore
		}
	}

	// Opening a room clears its unread badge.
	for i := range st.chats {
		if st.chats[i].RoomID == roomID {
			st.chats[i].UnreadCount = 0
			break
		}
	}
	s.mirrorChatsLocked(ctx, sess.UserID, st)
	out := snapshotMessages(cached)
	s.mu.Unlock()

	go s.revalidate(sess, roomID, seq)

	return out, nil
}

// revalidate fetches the room history and applies it only if no newer
// selection happened while the fetch was in flight.
func (s *ChatService) revalidate(sess backend.Session, roomID string, seq uint64) {
	ctx := context.Background()
	messages, err := s.api.ListMessages(ctx, sess, roomID)
	if err != nil {
		s.log.Warn("room history fetch failed",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	st := s.state(sess.UserID)
	if st.fetchSeq != seq || st.currentRoom != roomID {
		s.mu.Unlock()
		s.log.Debug("discarding superseded room fetch", zap.String("room_id", roomID))
		return
	}
	st.messages[roomID] = messages
	s.mirrorMessagesLocked(ctx, sess.UserID, roomID, st)
	out := snapshotMessages(messages)
	s.mu.Unlock()

	s.notify(sess.UserID, events.Event{
		Type: events.EventStateRefreshed,
		Payload: map[string]any{
			"room_id":  roomID,
			"messages": out,
		},
	})
}

// SendMessage posts a text message with an optimistic temporary entry.
func (s *ChatService) SendMessage(ctx context.Context, sess backend.Session, roomID, content string) (*models.Message, error) {
	temp := models.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  sess.UserID,
		Content:   content,
		Type:      models.MessageTypeText,
		Pending:   true,
		CreatedAt: time.Now(),
	}
	s.appendOptimistic(ctx, sess.UserID, temp)

	msg, err := s.api.SendMessage(ctx, sess, roomID, content)
	return s.settleOptimistic(ctx, sess.UserID, temp, msg, err)
}

// SendFile posts a file message; the optimistic preview carries the filename.
func (s *ChatService) SendFile(ctx context.Context, sess backend.Session, roomID, caption, fileName string, file io.Reader) (*models.Message, error) {
	preview := caption
	if preview == "" {
		preview = fileName
	}
	temp := models.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  sess.UserID,
		Content:   preview,
		Type:      models.MessageTypeFile,
		FileName:  fileName,
		Pending:   true,
		CreatedAt: time.Now(),
	}
	s.appendOptimistic(ctx, sess.UserID, temp)

	msg, err := s.api.SendFile(ctx, sess, roomID, caption, fileName, file)
	return s.settleOptimistic(ctx, sess.UserID, temp, msg, err)
}

func (s *ChatService) appendOptimistic(ctx context.Context, userID uuid.UUID, temp models.Message) {
	s.mu.Lock()
	st := s.state(userID)
	st.messages[temp.RoomID] = append(st.messages[temp.RoomID], temp)
	s.touchRoomLocked(st, temp, userID)
	s.mirrorMessagesLocked(ctx, userID, temp.RoomID, st)
	s.mirrorChatsLocked(ctx, userID, st)
	s.mu.Unlock()
}

// settleOptimistic replaces the temporary entry in place on success and
// removes it on failure; no automatic retry either way.
func (s *ChatService) settleOptimistic(ctx context.Context, userID uuid.UUID, temp models.Message, msg *models.Message, err error) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	list := st.messages[temp.RoomID]

	if err != nil {
		for i := range list {
			if list[i].ID == temp.ID {
				st.messages[temp.RoomID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		s.refreshPreviewLocked(st, temp.RoomID)
		s.mirrorMessagesLocked(ctx, userID, temp.RoomID, st)
		s.mirrorChatsLocked(ctx, userID, st)
		return nil, err
	}

	for i := range list {
		if list[i].ID == temp.ID {
			list[i] = *msg
			break
		}
	}
	s.touchRoomLocked(st, *msg, userID)
	s.mirrorMessagesLocked(ctx, userID, temp.RoomID, st)
	s.mirrorChatsLocked(ctx, userID, st)
	return msg, nil
}

// IngestMessage merges a push-delivered message: the room moves to the front
// of the chat list and its unread counter grows only when the sender is
// remote and the room is not the one currently open.
func (s *ChatService) IngestMessage(ctx context.Context, userID uuid.UUID, msg models.Message) {
	s.mu.Lock()
	st := s.state(userID)
	if _, loaded := st.messages[msg.RoomID]; loaded {
		st.messages[msg.RoomID] = append(st.messages[msg.RoomID], msg)
		s.mirrorMessagesLocked(ctx, userID, msg.RoomID, st)
	}
	s.touchRoomLocked(st, msg, userID)
	s.mirrorChatsLocked(ctx, userID, st)
	out := snapshotChats(st)
	s.mu.Unlock()

	s.notify(userID, events.Event{
		Type: events.EventNewMessage,
		Payload: map[string]any{
			"room_id": msg.RoomID,
			"message": msg,
			"chats":   out,
		},
	})
}

// Chats returns the current chat list snapshot.
func (s *ChatService) Chats(userID uuid.UUID) []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotChats(s.state(userID))
}

// Messages returns the in-memory history for a room.
func (s *ChatService) Messages(userID uuid.UUID, roomID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotMessages(s.state(userID).messages[roomID])
}

// touchRoomLocked updates the room's last-message preview and moves it to the
// front. The unread counter grows only for remote senders posting into a room
// the user does not have open.
func (s *ChatService) touchRoomLocked(st *chatState, msg models.Message, userID uuid.UUID) {
	idx := -1
	for i := range st.chats {
		if st.chats[i].RoomID == msg.RoomID {
			idx = i
			break
		}
	}

	var chat models.Chat
	if idx >= 0 {
		chat = st.chats[idx]
		st.chats = append(st.chats[:idx], st.chats[idx+1:]...)
	} else {
		chat = models.Chat{RoomID: msg.RoomID}
	}

	chat.LastMessage = msg.Content
	at := msg.CreatedAt
	chat.LastMessageAt = &at
	if msg.SenderID != userID && st.currentRoom != msg.RoomID {
		chat.UnreadCount++
	}

	st.chats = append([]models.Chat{chat}, st.chats...)
}

// refreshPreviewLocked recomputes the room preview after an optimistic entry
// was removed.
func (s *ChatService) refreshPreviewLocked(st *chatState, roomID string) {
	for i := range st.chats {
		if st.chats[i].RoomID != roomID {
			continue
		}
		list := st.messages[roomID]
		if len(list) == 0 {
			st.chats[i].LastMessage = ""
			st.chats[i].LastMessageAt = nil
			return
		}
		last := list[len(list)-1]
		st.chats[i].LastMessage = last.Content
		at := last.CreatedAt
		st.chats[i].LastMessageAt = &at
		return
	}
}

func (s *ChatService) notify(userID uuid.UUID, event events.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.SendToUser(userID, event)
}

func (s *ChatService) mirrorChatsLocked(ctx context.Context, userID uuid.UUID, st *chatState) {
	if s.store == nil {
		return
	}
	_ = s.store.SaveChats(ctx, userID, st.chats)
}

func (s *ChatService) mirrorMessagesLocked(ctx context.Context, userID uuid.UUID, roomID string, st *chatState) {
	if s.store == nil {
		return
	}
	_ = s.store.SaveMessages(ctx, userID, roomID, st.messages[roomID])
}

func snapshotChats(st *chatState) []models.Chat {
	out := make([]models.Chat, len(st.chats))
	copy(out, st.chats)
	return out
}

func snapshotMessages(list []models.Message) []models.Message {
	out := make([]models.Message, len(list))
	copy(out, list)
	return out
}
