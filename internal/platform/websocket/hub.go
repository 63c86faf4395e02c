// Package websocket streams identity state to browsers. Each connection is
// bound to the identity that opened it and receives the current state first,
// then every change for that identity.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agendarbrasil/agendar/internal/platform/auth"
	"github.com/agendarbrasil/agendar/internal/platform/events"
)

// IdentityView is the identity as the browser sees it.
type IdentityView struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// Frame is one message on the stream. Identity is null when signed out.
type Frame struct {
	Type      string        `json:"type"`
	Identity  *IdentityView `json:"identity"`
	Timestamp time.Time     `json:"timestamp"`
}

const frameType = "identity"

// Topic returns the hub topic for uid.
func Topic(uid string) string {
	return "identity/" + uid
}

// Client represents a single WebSocket connection.
type Client struct {
	ID    string
	Topic string
	Send  chan []byte
}

// Hub tracks clients by topic. All operations are safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> clients
	all     map[*Client]struct{}
	logger  zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub under its topic. Clients with an empty
// topic are tracked but receive no broadcasts.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	if client.Topic == "" {
		return
	}
	if h.clients[client.Topic] == nil {
		h.clients[client.Topic] = make(map[*Client]struct{})
	}
	h.clients[client.Topic][client] = struct{}{}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	if subscribers, ok := h.clients[client.Topic]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.clients, client.Topic)
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Broadcast sends a frame to every client on topic. Clients whose buffer is
// full miss the frame.
func (h *Hub) Broadcast(topic string, frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket: marshal frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn().Str("client_id", client.ID).Msg("websocket: send buffer full, frame dropped")
		}
	}
}

// OnIdentityEvent is the broker callback that turns identity events into
// frames for that identity's connections.
func (h *Hub) OnIdentityEvent(_ context.Context, ev events.IdentityEvent) {
	frame := Frame{Type: frameType, Timestamp: ev.At}
	if ev.SignedInNow() {
		frame.Identity = &IdentityView{
			UID:         ev.UID,
			Email:       ev.Email,
			DisplayName: ev.DisplayName,
			Provider:    ev.Provider,
		}
	}
	h.Broadcast(Topic(ev.UID), frame)
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount returns the number of clients connected for a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Handler upgrades /ws/sessao requests and runs the per-connection pumps.
type Handler struct {
	hub      *Hub
	upgrader gorillawebsocket.Upgrader
}

// NewHandler creates a handler bound to hub. allowedOrigins is the CORS
// allow-list; an empty list accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		hub: hub,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (wh *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/sessao", wh.HandleConnect)
}

// HandleConnect upgrades the connection, queues the current identity state
// as the first frame and registers the client for later changes.
func (wh *Handler) HandleConnect(c echo.Context) error {
	ws, err := wh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.NewString(),
		Send: make(chan []byte, sendBuffer),
	}

	first := Frame{Type: frameType, Timestamp: time.Now().UTC()}
	if p, ok := auth.PrincipalFromContext(c.Request().Context()); ok {
		client.Topic = Topic(p.UID)
		first.Identity = &IdentityView{
			UID:         p.UID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			Provider:    p.Provider,
		}
	}
	data, err := json.Marshal(first)
	if err != nil {
		ws.Close()
		return err
	}
	client.Send <- data

	wh.hub.Register(client)

	go wh.writePump(client, ws)
	go wh.readPump(client, ws)

	return nil
}

// readPump drains inbound frames so control messages are processed. The
// stream is server-to-client only.
func (wh *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		wh.hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (wh *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
