// Package realtime pushes in-app events to connected browser sessions over WebSocket.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"repairhub-backend/pkg/logger"
	"repairhub-backend/pkg/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

var log = logger.For("realtime")

// Event is the envelope written to clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Frame is a message sent by a client.
type Frame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
}

// FrameHandler receives client frames other than ping.
type FrameHandler func(userID, userType string, frame Frame)

// DisconnectHandler fires when a user's last connection closes.
type DisconnectHandler func(userID, userType string)

type client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	userID   string
	userType string
}

// Hub tracks every open connection per user; a user may have several tabs or devices.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]map[*client]struct{}
	upgrader     websocket.Upgrader
	onFrame      FrameHandler
	onDisconnect DisconnectHandler
}

func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

func (h *Hub) OnFrame(fn FrameHandler) { h.onFrame = fn }

func (h *Hub) OnDisconnect(fn DisconnectHandler) { h.onDisconnect = fn }

func key(userID, userType string) string {
	return userType + ":" + userID
}

// ServeWS upgrades the request and blocks until the connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID, userType string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID, userType: userType}
	h.register(c)

	go c.writePump()
	c.readPump()
	return nil
}

func (h *Hub) register(c *client) {
	k := key(c.userID, c.userType)
	h.mu.Lock()
	if h.clients[k] == nil {
		h.clients[k] = make(map[*client]struct{})
	}
	h.clients[k][c] = struct{}{}
	n := len(h.clients[k])
	h.mu.Unlock()

	metrics.ConnectionOpened()
	log.WithField("user_id", c.userID).Debugf("connected (%d open)", n)
}

func (h *Hub) unregister(c *client) {
	k := key(c.userID, c.userType)
	h.mu.Lock()
	conns, ok := h.clients[k]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(conns, c)
	close(c.send)
	last := len(conns) == 0
	if last {
		delete(h.clients, k)
	}
	h.mu.Unlock()

	metrics.ConnectionClosed()
	log.WithField("user_id", c.userID).Debug("disconnected")
	if last && h.onDisconnect != nil {
		h.onDisconnect(c.userID, c.userType)
	}
}

// SendToUser queues an event on every connection of the user and returns how many received it.
// Slow connections with a full buffer are skipped rather than blocking the caller.
func (h *Hub) SendToUser(userID, userType, eventType string, data interface{}) int {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		log.WithError(err).Error("failed to encode event")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.clients[key(userID, userType)] {
		select {
		case c.send <- payload:
			delivered++
		default:
			log.WithField("user_id", userID).Warn("send buffer full, dropping event")
		}
	}
	return delivered
}

// Connections returns the number of open connections for the user.
func (h *Hub) Connections(userID, userType string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[key(userID, userType)])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*client
	for _, conns := range h.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.conn.Close()
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("user_id", c.userID).Debug("read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if f.Type == "ping" {
			c.enqueue(Event{Type: "pong"})
			continue
		}
		if c.hub.onFrame != nil {
			c.hub.onFrame(c.userID, c.userType, f)
		}
	}
}

func (c *client) enqueue(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[key(c.userID, c.userType)][c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
