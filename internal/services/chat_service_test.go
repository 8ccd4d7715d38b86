package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/events"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeChatAPI struct {
	mu        sync.Mutex
	chats     []models.Chat
	history   map[string][]models.Message
	gates     map[string]chan struct{} // ListMessages blocks on the room's gate until it is closed
	listCalls map[string]int
	sendErr   error
}

func newFakeChatAPI() *fakeChatAPI {
	return &fakeChatAPI{
		history:   make(map[string][]models.Message),
		gates:     make(map[string]chan struct{}),
		listCalls: make(map[string]int),
	}
}

func (f *fakeChatAPI) ListChats(ctx context.Context, s backend.Session) ([]models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Chat, len(f.chats))
	copy(out, f.chats)
	return out, nil
}

func (f *fakeChatAPI) ListMessages(ctx context.Context, s backend.Session, roomID string) ([]models.Message, error) {
	f.mu.Lock()
	f.listCalls[roomID]++
	gate := f.gates[roomID]
	history := make([]models.Message, len(f.history[roomID]))
	copy(history, f.history[roomID])
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return history, nil
}

func (f *fakeChatAPI) SendMessage(ctx context.Context, s backend.Session, roomID, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := models.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  s.UserID,
		Content:   content,
		Type:      models.MessageTypeText,
		CreatedAt: time.Now(),
	}
	return &msg, nil
}

func (f *fakeChatAPI) SendFile(ctx context.Context, s backend.Session, roomID, caption, fileName string, file io.Reader) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	msg := models.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  s.UserID,
		Content:   caption,
		Type:      models.MessageTypeFile,
		FileName:  fileName,
		CreatedAt: time.Now(),
	}
	return &msg, nil
}

type chanNotifier struct {
	events chan events.Event
}

func (f *chanNotifier) SendToUser(userID uuid.UUID, e events.Event) {
	f.events <- e
}

func (f *chanNotifier) waitFor(t *testing.T, typ string) events.Event {
	t.Helper()
	select {
	case e := <-f.events:
		if e.Type != typ {
			t.Fatalf("event type = %q, want %q", e.Type, typ)
		}
		return e
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q event", typ)
		return events.Event{}
	}
}

func chatMsg(roomID string, senderID uuid.UUID, content string) models.Message {
	return models.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Type:      models.MessageTypeText,
		CreatedAt: time.Now(),
	}
}

func newChatFixture() (*ChatService, *fakeChatAPI, *chanNotifier, backend.Session) {
	api := newFakeChatAPI()
	notifier := &chanNotifier{events: make(chan events.Event, 16)}
	svc := NewChatService(api, nil, notifier, zap.NewNop())
	sess := backend.Session{UserID: uuid.New(), Token: "t"}
	return svc, api, notifier, sess
}

func TestSelectChatLastRequestWins(t *testing.T) {
	svc, api, notifier, sess := newChatFixture()
	other := uuid.New()
	api.history["room-a"] = []models.Message{chatMsg("room-a", other, "stale a")}
	api.history["room-b"] = []models.Message{chatMsg("room-b", other, "fresh b")}

	gateA := make(chan struct{})
	api.gates["room-a"] = gateA

	// Open A: its history fetch parks on the gate.
	if _, err := svc.SelectChat(context.Background(), sess, "room-a"); err != nil {
		t.Fatalf("SelectChat a: %v", err)
	}
	// Open B before A's fetch returns; B's fetch completes immediately.
	if _, err := svc.SelectChat(context.Background(), sess, "room-b"); err != nil {
		t.Fatalf("SelectChat b: %v", err)
	}
	notifier.waitFor(t, events.EventStateRefreshed)

	// Let A's in-flight fetch finish; it is superseded and must be discarded.
	close(gateA)
	time.Sleep(50 * time.Millisecond)

	if got := svc.Messages(sess.UserID, "room-a"); len(got) != 0 {
		t.Errorf("superseded fetch was applied: room-a has %d messages", len(got))
	}
	if got := svc.Messages(sess.UserID, "room-b"); len(got) != 1 || got[0].Content != "fresh b" {
		t.Errorf("room-b history = %+v, want the fetched message", got)
	}
	select {
	case e := <-notifier.events:
		t.Errorf("unexpected extra event %q after discard", e.Type)
	default:
	}
}

func TestSelectChatSameRoomIsIdempotent(t *testing.T) {
	svc, api, notifier, sess := newChatFixture()
	api.history["room-a"] = []models.Message{chatMsg("room-a", uuid.New(), "hi")}

	if _, err := svc.SelectChat(context.Background(), sess, "room-a"); err != nil {
		t.Fatalf("SelectChat: %v", err)
	}
	notifier.waitFor(t, events.EventStateRefreshed)

	got, err := svc.SelectChat(context.Background(), sess, "room-a")
	if err != nil {
		t.Fatalf("re-select: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}

	api.mu.Lock()
	calls := api.listCalls["room-a"]
	api.mu.Unlock()
	if calls != 1 {
		t.Errorf("history fetches = %d, want 1 (re-select must not refetch)", calls)
	}
}

func TestSendMessageReplacesOptimisticEntryInPlace(t *testing.T) {
	svc, _, _, sess := newChatFixture()

	msg, err := svc.SendMessage(context.Background(), sess, "room-a", "olá")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Pending {
		t.Error("settled message still pending")
	}

	history := svc.Messages(sess.UserID, "room-a")
	if len(history) != 1 {
		t.Fatalf("len = %d, want 1", len(history))
	}
	if history[0].ID != msg.ID || history[0].Pending {
		t.Error("optimistic entry was not replaced by the authoritative message")
	}

	chats := svc.Chats(sess.UserID)
	if len(chats) != 1 || chats[0].LastMessage != "olá" {
		t.Errorf("chat preview = %+v, want room-a with preview %q", chats, "olá")
	}
	if chats[0].UnreadCount != 0 {
		t.Errorf("own message incremented unread to %d", chats[0].UnreadCount)
	}
}

func TestSendMessageFailureLeavesNoOrphan(t *testing.T) {
	svc, api, notifier, sess := newChatFixture()
	other := uuid.New()
	api.history["room-a"] = []models.Message{chatMsg("room-a", other, "anterior")}
	api.chats = []models.Chat{{RoomID: "room-a", LastMessage: "anterior"}}
	if _, err := svc.LoadChats(context.Background(), sess); err != nil {
		t.Fatalf("LoadChats: %v", err)
	}
	if _, err := svc.SelectChat(context.Background(), sess, "room-a"); err != nil {
		t.Fatalf("SelectChat: %v", err)
	}
	notifier.waitFor(t, events.EventStateRefreshed)
	api.sendErr = errors.New("503")

	if _, err := svc.SendMessage(context.Background(), sess, "room-a", "nunca chega"); err == nil {
		t.Fatal("expected error")
	}

	for _, m := range svc.Messages(sess.UserID, "room-a") {
		if m.Pending {
			t.Fatal("orphaned temporary message left in history")
		}
		if m.Content == "nunca chega" {
			t.Fatal("failed message left in history")
		}
	}
	chats := svc.Chats(sess.UserID)
	if len(chats) != 1 || chats[0].LastMessage != "anterior" {
		t.Errorf("preview = %+v, want it rolled back to the previous message", chats)
	}
}

func TestIngestMessageReordersAndCounts(t *testing.T) {
	svc, api, notifier, sess := newChatFixture()
	other := uuid.New()
	api.chats = []models.Chat{
		{RoomID: "room-a", UnreadCount: 0},
		{RoomID: "room-b", UnreadCount: 2},
	}
	if _, err := svc.LoadChats(context.Background(), sess); err != nil {
		t.Fatalf("LoadChats: %v", err)
	}

	// User is reading room B.
	if _, err := svc.SelectChat(context.Background(), sess, "room-b"); err != nil {
		t.Fatalf("SelectChat: %v", err)
	}
	notifier.waitFor(t, events.EventStateRefreshed)

	// Remote message lands in room A: A jumps to the front and gains a badge.
	svc.IngestMessage(context.Background(), sess.UserID, chatMsg("room-a", other, "nova proposta"))
	notifier.waitFor(t, events.EventNewMessage)

	chats := svc.Chats(sess.UserID)
	if len(chats) != 2 {
		t.Fatalf("len = %d, want 2", len(chats))
	}
	if chats[0].RoomID != "room-a" || chats[0].UnreadCount != 1 {
		t.Errorf("front chat = %s unread %d, want room-a/1", chats[0].RoomID, chats[0].UnreadCount)
	}
	if chats[0].LastMessage != "nova proposta" {
		t.Errorf("preview = %q, want %q", chats[0].LastMessage, "nova proposta")
	}

	// Remote message into the open room reorders but stays read.
	svc.IngestMessage(context.Background(), sess.UserID, chatMsg("room-b", other, "no quarto aberto"))
	notifier.waitFor(t, events.EventNewMessage)

	chats = svc.Chats(sess.UserID)
	if chats[0].RoomID != "room-b" || chats[0].UnreadCount != 0 {
		t.Errorf("front chat = %s unread %d, want room-b/0", chats[0].RoomID, chats[0].UnreadCount)
	}
}

func TestSelectChatClearsUnreadBadge(t *testing.T) {
	svc, api, _, sess := newChatFixture()
	api.chats = []models.Chat{{RoomID: "room-b", UnreadCount: 2}}
	if _, err := svc.LoadChats(context.Background(), sess); err != nil {
		t.Fatalf("LoadChats: %v", err)
	}

	if _, err := svc.SelectChat(context.Background(), sess, "room-b"); err != nil {
		t.Fatalf("SelectChat: %v", err)
	}

	chats := svc.Chats(sess.UserID)
	if chats[0].UnreadCount != 0 {
		t.Errorf("unread = %d, want 0 after opening the room", chats[0].UnreadCount)
	}
}
