package services

import (
	"context"
	"sync"

	"github.com/creatorhub/gateway/internal/backend"
	"github.com/creatorhub/gateway/internal/cache"
	"github.com/creatorhub/gateway/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationAPI interface {
	List(ctx context.Context, s backend.Session, page, perPage int) ([]models.Notification, *backend.Pagination, error)
	UnreadCount(ctx context.Context, s backend.Session) (int, error)
	MarkRead(ctx context.Context, s backend.Session, id uuid.UUID) error
	MarkAllRead(ctx context.Context, s backend.Session) error
	Delete(ctx context.Context, s backend.Session, id uuid.UUID) error
}

// RoomTracker reports the chat room a user currently has open, or "".
type RoomTracker interface {
	CurrentRoom(userID uuid.UUID) string
}

// NotificationService keeps a per-user newest-first notification list and a
// derived unread counter consistent under three sources: the initial
// paginated fetch, optimistic user mutations, and asynchronous push events.
// User mutations are applied optimistically; on backend failure the state is
// resynchronized from the backend (a compensating fetch, not a precise undo,
// since pushed events may have arrived in between).
type NotificationService struct {
	api     NotificationAPI
	store   cache.Store
	rooms   RoomTracker
	perPage int
	log     *zap.Logger

	mu     sync.Mutex
	states map[uuid.UUID]*notifState
}

type notifState struct {
	notifications []models.Notification // newest first
	unread        int
	loaded        bool
}

func NewNotificationService(api NotificationAPI, store cache.Store, rooms RoomTracker, perPage int, log *zap.Logger) *NotificationService {
	if perPage <= 0 {
		perPage = 20
	}
	return &NotificationService{
		api:     api,
		store:   store,
		rooms:   rooms,
		perPage: perPage,
		log:     log,
		states:  make(map[uuid.UUID]*notifState),
	}
}

func (s *NotificationService) state(userID uuid.UUID) *notifState {
	st, ok := s.states[userID]
	if !ok {
		st = &notifState{}
		s.states[userID] = st
	}
	return st
}

// Load populates the user's state: cached snapshot first for instant paint,
// then the authoritative fetch (first page plus unread count).
func (s *NotificationService) Load(ctx context.Context, sess backend.Session) ([]models.Notification, int, error) {
	s.mu.Lock()
	st := s.state(sess.UserID)
	if !st.loaded && s.store != nil {
		if cached, unread, ok, _ := s.store.LoadNotifications(ctx, sess.UserID); ok {
			st.notifications = cached
			st.unread = unread
		}
	}
	s.mu.Unlock()

	notifications, _, err := s.api.List(ctx, sess, 1, s.perPage)
	if err != nil {
		// Stale cache is still better than nothing.
		s.mu.Lock()
		defer s.mu.Unlock()
		return snapshotNotifications(st), st.unread, err
	}
	unread, err := s.api.UnreadCount(ctx, sess)
	if err != nil {
		unread = countUnread(notifications)
	}

	s.mu.Lock()
	st.notifications = notifications
	st.unread = unread
	st.loaded = true
	s.mirrorLocked(ctx, sess.UserID, st)
	out := snapshotNotifications(st)
	s.mu.Unlock()

	return out, unread, nil
}

// Snapshot returns the current in-memory list and counter without fetching.
func (s *NotificationService) Snapshot(userID uuid.UUID) ([]models.Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	return snapshotNotifications(st), st.unread
}

// MarkAsRead flips a single notification optimistically. It is a no-op when
// the id is unknown or the entry is already read. On backend failure the
// whole list and counter are refetched.
func (s *NotificationService) MarkAsRead(ctx context.Context, sess backend.Session, id uuid.UUID) error {
	s.mu.Lock()
	st := s.state(sess.UserID)
	var flipped bool
	for i := range st.notifications {
		if st.notifications[i].ID == id {
			if st.notifications[i].IsRead {
				s.mu.Unlock()
				return nil
			}
			st.notifications[i].IsRead = true
			flipped = true
			break
		}
	}
	if !flipped {
		s.mu.Unlock()
		return nil
	}
	if st.unread > 0 {
		st.unread--
	}
	s.mirrorLocked(ctx, sess.UserID, st)
	s.mu.Unlock()

	if err := s.api.MarkRead(ctx, sess, id); err != nil {
		s.resync(ctx, sess)
		return err
	}
	return nil
}

// MarkAllAsRead flips every entry and zeroes the counter optimistically.
// Unlike the single-entry path in the system this replaces, a backend failure
// here also triggers a full resynchronization.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, sess backend.Session) error {
	s.mu.Lock()
	st := s.state(sess.UserID)
	for i := range st.notifications {
		st.notifications[i].IsRead = true
	}
	st.unread = 0
	s.mirrorLocked(ctx, sess.UserID, st)
	s.mu.Unlock()

	if err := s.api.MarkAllRead(ctx, sess); err != nil {
		s.resync(ctx, sess)
		return err
	}
	return nil
}

// DeleteNotification removes an entry optimistically, decrementing the
// counter only when the entry was unread.
func (s *NotificationService) DeleteNotification(ctx context.Context, sess backend.Session, id uuid.UUID) error {
	s.mu.Lock()
	st := s.state(sess.UserID)
	var removed, wasUnread bool
	for i := range st.notifications {
		if st.notifications[i].ID == id {
			wasUnread = !st.notifications[i].IsRead
			st.notifications = append(st.notifications[:i], st.notifications[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		s.mu.Unlock()
		return nil
	}
	if wasUnread && st.unread > 0 {
		st.unread--
	}
	s.mirrorLocked(ctx, sess.UserID, st)
	s.mu.Unlock()

	if err := s.api.Delete(ctx, sess, id); err != nil {
		s.resync(ctx, sess)
		return err
	}
	return nil
}

// Ingest merges a pushed notification: prepended unconditionally, counter
// incremented unconditionally. The returned flag says whether the UI should
// be alerted; it is false when the event points at the chat room the user is
// already viewing.
func (s *NotificationService) Ingest(ctx context.Context, userID uuid.UUID, n models.Notification) (toast bool) {
	s.mu.Lock()
	st := s.state(userID)
	st.notifications = append([]models.Notification{n}, st.notifications...)
	st.unread++
	s.mirrorLocked(ctx, userID, st)
	s.mu.Unlock()

	if room := n.RoomID(); room != "" && s.rooms != nil && s.rooms.CurrentRoom(userID) == room {
		return false
	}
	return true
}

// resync replaces the optimistic state with the backend's view after a failed
// mutation. A failed resync keeps the optimistic state; the next Load wins.
func (s *NotificationService) resync(ctx context.Context, sess backend.Session) {
	notifications, _, err := s.api.List(ctx, sess, 1, s.perPage)
	if err != nil {
		s.log.Warn("notification resync failed", zap.String("user_id", sess.UserID.String()), zap.Error(err))
		return
	}
	unread, err := s.api.UnreadCount(ctx, sess)
	if err != nil {
		unread = countUnread(notifications)
	}

	s.mu.Lock()
	st := s.state(sess.UserID)
	st.notifications = notifications
	st.unread = unread
	s.mirrorLocked(ctx, sess.UserID, st)
	s.mu.Unlock()
}

func (s *NotificationService) mirrorLocked(ctx context.Context, userID uuid.UUID, st *notifState) {
	if s.store == nil {
		return
	}
	_ = s.store.SaveNotifications(ctx, userID, st.notifications, st.unread)
}

func snapshotNotifications(st *notifState) []models.Notification {
	out := make([]models.Notification, len(st.notifications))
	copy(out, st.notifications)
	return out
}

func countUnread(notifications []models.Notification) int {
	n := 0
	for i := range notifications {
		if !notifications[i].IsRead {
			n++
		}
	}
	return n
}
