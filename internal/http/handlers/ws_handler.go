package handlers

import (
	"encoding/json"
	"sync"

	"github.com/creatorhub/gateway/internal/auth"
	"github.com/creatorhub/gateway/internal/config"
	"github.com/creatorhub/gateway/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// wsConn is the write surface of a websocket connection.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// wsClient serializes writes to one connection. The websocket library allows
// a single concurrent writer per connection and panics otherwise, while
// SendToUser is called from the push dispatcher and from chat revalidation
// goroutines at the same time.
type wsClient struct {
	mu   sync.Mutex
	conn wsConn
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub tracks each user's open websocket connections and delivers state
// deltas to them. It is the delivery end of the push pipeline; ingestion and
// routing happen in the services layer.
type WSHub struct {
	cfg     *config.Config
	log     *zap.Logger
	mu      sync.RWMutex
	clients map[uuid.UUID][]*wsClient
}

func NewWSHub(cfg *config.Config, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:     cfg,
		log:     log,
		clients: make(map[uuid.UUID][]*wsClient),
	}
}

func (h *WSHub) register(userID uuid.UUID, client *wsClient) {
	h.mu.Lock()
	h.clients[userID] = append(h.clients[userID], client)
	h.mu.Unlock()
}

func (h *WSHub) unregister(userID uuid.UUID, client *wsClient) {
	h.mu.Lock()
	clients := h.clients[userID]
	for i, c := range clients {
		if c == client {
			h.clients[userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	h.mu.Unlock()
}

func (h *WSHub) SendToUser(userID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, len(h.clients[userID]))
	copy(clients, h.clients[userID])
	h.mu.RUnlock()

	for _, client := range clients {
		_ = client.write(data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Extract token from query
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	userID := claims.UserID
	client := &wsClient{conn: conn}
	h.register(userID, client)

	defer func() {
		h.unregister(userID, client)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
